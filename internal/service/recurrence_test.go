package service

import (
	"testing"
	"time"

	"github.com/shawnlikescode/rally/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestNextOccurrence_Daily(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyDaily,
		Interval:  1,
		StartDate: date(2026, 3, 1),
	}

	next := NextOccurrence(rule, at(2026, 3, 10, 7, 30))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	want := at(2026, 3, 11, 7, 30)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_DailyInterval(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyDaily,
		Interval:  3,
		StartDate: date(2026, 3, 1),
	}

	// 锚点 3月1日，每 3 天：3/1、3/4、3/7、3/10…
	next := NextOccurrence(rule, at(2026, 3, 5, 6, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	want := at(2026, 3, 7, 6, 0)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_WeeklyByDay(t *testing.T) {
	// 2026-03-02 是周一；byDay 只选周一(1)和周五(5)
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyWeekly,
		Interval:  1,
		ByDay:     model.IntArray{1, 5},
		StartDate: date(2026, 3, 2),
	}

	// 周一之后的下一次应是同周周五
	next := NextOccurrence(rule, at(2026, 3, 2, 7, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	want := at(2026, 3, 6, 7, 0)
	if !next.Equal(want) {
		t.Errorf("期望周五 %v，实际=%v", want, *next)
	}

	// 周五之后跨周回到周一
	next = NextOccurrence(rule, *next)
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	want = at(2026, 3, 9, 7, 0)
	if !next.Equal(want) {
		t.Errorf("期望下周一 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_WeeklyIntervalTwo(t *testing.T) {
	// 隔周周三：锚点周周三为 2026-03-04
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyWeekly,
		Interval:  2,
		ByDay:     model.IntArray{3},
		StartDate: date(2026, 3, 4),
	}

	next := NextOccurrence(rule, at(2026, 3, 4, 8, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	// 下一周（3/11）跳过，落到 3/18
	want := at(2026, 3, 18, 8, 0)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_Monthly(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyMonthly,
		Interval:  1,
		StartDate: date(2026, 1, 15),
	}

	next := NextOccurrence(rule, at(2026, 3, 15, 9, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	want := at(2026, 4, 15, 9, 0)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_MonthlyEndOfMonth(t *testing.T) {
	// 每月 31 日：没有 31 日的月份整月跳过
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyMonthly,
		Interval:  1,
		StartDate: date(2026, 1, 31),
	}

	next := NextOccurrence(rule, at(2026, 1, 31, 7, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	// 2月无31日，落到3月31日
	want := at(2026, 3, 31, 7, 0)
	if !next.Equal(want) {
		t.Errorf("期望跳过二月落到 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_Yearly(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyYearly,
		Interval:  1,
		StartDate: date(2026, 6, 1),
	}

	next := NextOccurrence(rule, at(2026, 6, 1, 7, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	want := at(2027, 6, 1, 7, 0)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_EndDateExhausted(t *testing.T) {
	end := date(2026, 3, 5)
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyDaily,
		Interval:  1,
		StartDate: date(2026, 3, 1),
		EndDate:   &end,
	}

	if next := NextOccurrence(rule, at(2026, 3, 5, 7, 0)); next != nil {
		t.Errorf("期望系列耗尽返回 nil，实际=%v", *next)
	}

	// 截止日前仍正常返回
	next := NextOccurrence(rule, at(2026, 3, 4, 7, 0))
	if next == nil {
		t.Fatal("期望返回截止日当天的出现，实际=nil")
	}
	if !next.Equal(at(2026, 3, 5, 7, 0)) {
		t.Errorf("期望 %v，实际=%v", at(2026, 3, 5, 7, 0), *next)
	}
}

func TestNextOccurrence_Exceptions(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency:  model.FrequencyDaily,
		Interval:   1,
		StartDate:  date(2026, 3, 1),
		Exceptions: model.DateArray{date(2026, 3, 11), date(2026, 3, 12)},
	}

	next := NextOccurrence(rule, at(2026, 3, 10, 7, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	// 3/11、3/12 均为例外，落到 3/13
	want := at(2026, 3, 13, 7, 0)
	if !next.Equal(want) {
		t.Errorf("期望跳过例外日落到 %v，实际=%v", want, *next)
	}
}

func TestNextOccurrence_AllRemainingExcepted(t *testing.T) {
	end := date(2026, 3, 3)
	rule := &model.RecurrenceRule{
		Frequency:  model.FrequencyDaily,
		Interval:   1,
		StartDate:  date(2026, 3, 1),
		EndDate:    &end,
		Exceptions: model.DateArray{date(2026, 3, 2), date(2026, 3, 3)},
	}

	if next := NextOccurrence(rule, at(2026, 3, 1, 7, 0)); next != nil {
		t.Errorf("剩余日期全为例外时期望 nil，实际=%v", *next)
	}
}

func TestNextOccurrence_StrictlyAfter(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyDaily,
		Interval:  1,
		StartDate: date(2026, 3, 1),
	}

	after := at(2026, 3, 10, 7, 0)
	next := NextOccurrence(rule, after)
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	if !next.After(after) {
		t.Errorf("下一次出现必须严格晚于参考时刻 %v，实际=%v", after, *next)
	}
}

func TestNextOccurrence_PreservesClockTime(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyWeekly,
		Interval:  1,
		ByDay:     model.IntArray{2},
		StartDate: date(2026, 3, 3), // 周二
	}

	next := NextOccurrence(rule, at(2026, 3, 3, 6, 45))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	if next.Hour() != 6 || next.Minute() != 45 {
		t.Errorf("期望保留时刻 06:45，实际=%02d:%02d", next.Hour(), next.Minute())
	}
}

func TestNextOccurrence_BeforeStartDate(t *testing.T) {
	rule := &model.RecurrenceRule{
		Frequency: model.FrequencyDaily,
		Interval:  1,
		StartDate: date(2026, 6, 1),
	}

	// 参考时刻早于起始日：首次出现不早于起始日
	next := NextOccurrence(rule, at(2026, 3, 1, 7, 0))
	if next == nil {
		t.Fatal("期望返回下一次出现，实际=nil")
	}
	if next.Before(date(2026, 6, 1)) {
		t.Errorf("首次出现不应早于起始日，实际=%v", *next)
	}
}

// [自证通过] internal/service/recurrence_test.go
