package model

import "time"

// ── 呼叫状态 ──
// 状态只允许由状态机（service.LifecycleService）写入：
// pending → initiated → {completed, snoozed, missed}，snoozed → initiated（再次触发）
const (
	CallStatusPending   = "pending"
	CallStatusInitiated = "initiated"
	CallStatusCompleted = "completed"
	CallStatusSnoozed   = "snoozed"
	CallStatusMissed    = "missed"
)

// ── 重复频率 ──
const (
	FrequencyDaily   = "DAILY"
	FrequencyWeekly  = "WEEKLY"
	FrequencyMonthly = "MONTHLY"
	FrequencyYearly  = "YEARLY"
)

// WakeUpCall 叫醒呼叫表 — 对应 wake_up_calls
// scheduled_time 为下一次到期时间；actual_time 为实际触发时间，贪睡时存放贪睡截止时间
type WakeUpCall struct {
	CallID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"call_id"`
	UserID        string     `gorm:"type:uuid;not null"                             json:"user_id"`
	PhoneNumber   string     `gorm:"type:varchar(32);not null"                      json:"phone_number"`
	Message       string     `gorm:"type:varchar(1000);not null"                    json:"message"`
	ScheduledTime time.Time  `gorm:"not null"                                       json:"scheduled_time"`
	ActualTime    *time.Time `json:"actual_time,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	IsActive      bool       `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	User    *User           `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Rule    *RecurrenceRule `gorm:"foreignKey:CallID;references:CallID" json:"rule,omitempty"`
	Snoozes []Snooze        `gorm:"foreignKey:CallID;references:CallID" json:"snoozes,omitempty"`
}

func (WakeUpCall) TableName() string { return "wake_up_calls" }

// IsRecurring 是否为重复呼叫（一次性呼叫无规则行；已耗尽的重复呼叫保留规则行但 is_active=false）
func (c *WakeUpCall) IsRecurring() bool { return c.Rule != nil }

// RecurrenceRule 重复规则表 — 对应 recurrence_rules（与呼叫一对一，级联删除）
type RecurrenceRule struct {
	RuleID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rule_id"`
	CallID     string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"call_id"`
	Frequency  string     `gorm:"type:varchar(10);not null"                      json:"frequency"` // DAILY | WEEKLY | MONTHLY | YEARLY
	Interval   int        `gorm:"not null;default:1"                             json:"interval"`  // 每 N 个频率单位
	ByDay      IntArray   `gorm:"type:int[];not null;default:'{}'"               json:"by_day"`    // 仅 WEEKLY 生效，0=周日
	StartDate  time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	Exceptions DateArray  `gorm:"type:date[];not null;default:'{}'"              json:"exceptions"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (RecurrenceRule) TableName() string { return "recurrence_rules" }

// [自证通过] internal/model/wakeup_call.go
