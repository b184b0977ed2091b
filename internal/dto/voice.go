package dto

// ── 语音回调 DTO（Twilio webhook，application/x-www-form-urlencoded）──

// VoiceSnoozeRequest 贪睡协商回调
// SpeechResult 为语音识别转录，Digits 为 DTMF 按键；两者都可能为空
type VoiceSnoozeRequest struct {
	CallSid      string `form:"CallSid"`
	SpeechResult string `form:"SpeechResult"`
	Digits       string `form:"Digits"`
}

// Transcript 返回本次回调的有效转录（语音优先，其次按键）
func (r *VoiceSnoozeRequest) Transcript() string {
	if r.SpeechResult != "" {
		return r.SpeechResult
	}
	return r.Digits
}

// VoiceStatusRequest 呼叫终态回调
type VoiceStatusRequest struct {
	CallSid      string `form:"CallSid"    binding:"required"`
	CallStatus   string `form:"CallStatus" binding:"required"` // completed | busy | no-answer | failed | canceled
	CallDuration *int   `form:"CallDuration"`
}

// [自证通过] internal/dto/voice.go
