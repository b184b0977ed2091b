package dto

import "time"

// ── 叫醒呼叫模块 DTO ──

// RecurrenceRuleRequest 重复规则请求
// 日期字段使用 2006-01-02 格式（按日历日理解，时刻来自 scheduled_time）
type RecurrenceRuleRequest struct {
	Frequency  string   `json:"frequency"  binding:"required,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	Interval   int      `json:"interval"   binding:"required,min=1"`
	ByDay      []int    `json:"by_day"     binding:"omitempty,max=7,dive,min=0,max=6"`
	StartDate  string   `json:"start_date" binding:"required"`
	EndDate    *string  `json:"end_date"   binding:"omitempty"`
	Exceptions []string `json:"exceptions" binding:"omitempty"`
}

// CreateWakeUpCallRequest 创建叫醒呼叫请求
// message 为空时回落到用户偏好中的 default_message
type CreateWakeUpCallRequest struct {
	PhoneNumber   string                 `json:"phone_number"   binding:"required,e164"`
	Message       string                 `json:"message"        binding:"omitempty,max=1000"`
	ScheduledTime time.Time              `json:"scheduled_time" binding:"required"`
	Recurrence    *RecurrenceRuleRequest `json:"recurrence"     binding:"omitempty"`
}

// UpdateWakeUpCallRequest 更新叫醒呼叫请求
// 消息与重排仅在 pending 状态允许；is_active 任意状态可改
type UpdateWakeUpCallRequest struct {
	Message       *string    `json:"message"        binding:"omitempty,min=1,max=1000"`
	ScheduledTime *time.Time `json:"scheduled_time" binding:"omitempty"`
	IsActive      *bool      `json:"is_active"      binding:"omitempty"`
}

// RecurrenceRuleResponse 重复规则响应
type RecurrenceRuleResponse struct {
	Frequency  string   `json:"frequency"`
	Interval   int      `json:"interval"`
	ByDay      []int    `json:"by_day"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date,omitempty"`
	Exceptions []string `json:"exceptions,omitempty"`
}

// WakeUpCallResponse 叫醒呼叫信息响应
type WakeUpCallResponse struct {
	ID            string                  `json:"id"`
	PhoneNumber   string                  `json:"phone_number"`
	Message       string                  `json:"message"`
	ScheduledTime string                  `json:"scheduled_time"`
	ActualTime    string                  `json:"actual_time,omitempty"`
	Status        string                  `json:"status"`
	IsActive      bool                    `json:"is_active"`
	Recurrence    *RecurrenceRuleResponse `json:"recurrence,omitempty"`
	CreatedAt     string                  `json:"created_at"`
	UpdatedAt     string                  `json:"updated_at"`
}

// SnoozeResponse 贪睡记录响应
type SnoozeResponse struct {
	ID          string `json:"id"`
	SnoozedAt   string `json:"snoozed_at"`
	SnoozeUntil string `json:"snooze_until"`
}

// CallLogResponse 呼叫日志响应
type CallLogResponse struct {
	ID        string `json:"id"`
	SID       string `json:"sid,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	StartedAt string `json:"started_at"`
	Duration  *int   `json:"duration,omitempty"`
}

// ImportResultResponse ICS 导入结果响应
type ImportResultResponse struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// [自证通过] internal/dto/wakeup_call.go
