package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shawnlikescode/rally/config"
	"github.com/shawnlikescode/rally/internal/model"
	"github.com/shawnlikescode/rally/internal/repository"
	"github.com/shawnlikescode/rally/internal/telephony"
	pkgerrors "github.com/shawnlikescode/rally/pkg/errors"
)

// ── 叫醒呼叫生命周期状态机 ──
//
// 状态写入全部收敛到本组件：pending → initiated → {completed, snoozed, missed}，
// snoozed → initiated（贪睡到期再次触发）。其他代码路径一律不得直接写 status。
// 非法来源状态的转换是完整性错误（ErrInvalidTransition），上报而非静默吞掉。

var ErrCallNotFound = errors.New("叫醒呼叫不存在")

// 默认偏好兜底值（用户偏好行缺失时使用，与建表默认值一致）
const (
	fallbackSnoozeDuration = 5
	fallbackMaxSnoozeCount = 5
)

// SnoozeOutcome 贪睡协商结果。
// 贪睡被禁用、达到上限等属于正常的会话分支，以 Success=false + 提示语表达，不是错误。
type SnoozeOutcome struct {
	Success     bool
	Markup      string // 通道语音标记（对核心不透明）
	SnoozeUntil *time.Time
}

// LifecycleService 叫醒呼叫生命周期业务接口
type LifecycleService interface {
	// Initiate 触发呼叫：pending/snoozed → initiated，返回首次接通的语音标记与呼叫记录
	Initiate(ctx context.Context, callID string) (string, *model.WakeUpCall, error)
	// Complete 呼叫正常结束：initiated → completed；重复呼叫立即重新武装
	Complete(ctx context.Context, callID string) error
	// Snooze 贪睡协商：仅 initiated 状态有效
	Snooze(ctx context.Context, callID, transcript string) (*SnoozeOutcome, error)
	// Miss 超时未响应：initiated/snoozed → missed；重复呼叫与 Complete 一致地重新武装
	Miss(ctx context.Context, callID string) error
}

type lifecycleService struct {
	cfg      *config.Config
	repo     *repository.Repository
	prompter telephony.Prompter
	logger   *zap.Logger
}

// NewLifecycleService 创建 LifecycleService 实例
func NewLifecycleService(
	cfg *config.Config,
	repo *repository.Repository,
	prompter telephony.Prompter,
	logger *zap.Logger,
) LifecycleService {
	return &lifecycleService{
		cfg:      cfg,
		repo:     repo,
		prompter: prompter,
		logger:   logger,
	}
}

// ────────────────────── Initiate ──────────────────────

func (s *lifecycleService) Initiate(ctx context.Context, callID string) (string, *model.WakeUpCall, error) {
	call, err := s.repo.WakeUpCall.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrCallNotFound
		}
		s.logger.Error("查询叫醒呼叫失败", zap.String("call_id", callID), zap.Error(err))
		return "", nil, err
	}

	now := time.Now()
	err = s.repo.WakeUpCall.UpdateStatus(ctx, callID,
		[]string{model.CallStatusPending, model.CallStatusSnoozed},
		map[string]interface{}{
			"status":      model.CallStatusInitiated,
			"actual_time": now,
		})
	if err != nil {
		return "", nil, err
	}

	markup, err := s.prompter.InitialPrompt(call.Message, s.snoozeActionURL(callID))
	if err != nil {
		s.logger.Error("生成首次接通提示失败", zap.String("call_id", callID), zap.Error(err))
		return "", nil, err
	}

	return markup, call, nil
}

// ────────────────────── Complete ──────────────────────

func (s *lifecycleService) Complete(ctx context.Context, callID string) error {
	call, err := s.repo.WakeUpCall.GetWithOwner(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallNotFound
		}
		s.logger.Error("查询叫醒呼叫失败", zap.String("call_id", callID), zap.Error(err))
		return err
	}

	err = s.repo.WakeUpCall.UpdateStatus(ctx, callID,
		[]string{model.CallStatusInitiated},
		map[string]interface{}{
			"status":      model.CallStatusCompleted,
			"actual_time": time.Now(),
		})
	if err != nil {
		return err
	}

	return s.rearm(ctx, call, model.CallStatusCompleted)
}

// ────────────────────── Snooze ──────────────────────

func (s *lifecycleService) Snooze(ctx context.Context, callID, transcript string) (*SnoozeOutcome, error) {
	call, err := s.repo.WakeUpCall.GetWithOwner(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		s.logger.Error("查询叫醒呼叫失败", zap.String("call_id", callID), zap.Error(err))
		return nil, err
	}

	allowSnooze := true
	defaultDuration := fallbackSnoozeDuration
	maxCount := fallbackMaxSnoozeCount
	if call.User != nil && call.User.Preferences != nil {
		prefs := call.User.Preferences
		allowSnooze = prefs.AllowSnooze
		if prefs.DefaultSnoozeDuration > 0 {
			defaultDuration = prefs.DefaultSnoozeDuration
		}
		maxCount = prefs.MaxSnoozeCount
	}

	// 1. 用户已禁用贪睡：正常会话分支，状态保持 initiated，由通道结束呼叫
	if !allowSnooze {
		return s.failureOutcome("You have disabled snoozing for this call. The call will end now.")
	}

	// 2. 解析转录；未识别时回落到默认时长并在提示语中说明
	minutes, recognized := ParseSnoozeDuration(transcript)
	var confirm string
	if !recognized {
		minutes = defaultDuration
		confirm = fmt.Sprintf("I didn't understand that. I'll snooze for the default %d minutes.", minutes)
	} else {
		confirm = fmt.Sprintf("Okay, I'll call you back in %d minutes.", minutes)
	}

	// 3+4. 计数-校验-插入-置为 snoozed 在单个事务内完成（行锁串行化并发回调）
	now := time.Now()
	snoozeUntil := now.Add(time.Duration(minutes) * time.Minute)
	err = s.repo.Snooze.CreateWithinLimit(ctx, callID, now, snoozeUntil, maxCount)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrSnoozeLimitReached) {
			return s.failureOutcome("Maximum snooze limit reached. The call will end now.")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		// 含 ErrInvalidTransition：呼叫不在 initiated，属竞态/过期客户端
		return nil, err
	}

	markup, err := s.prompter.ResponsePrompt(confirm)
	if err != nil {
		return nil, err
	}
	return &SnoozeOutcome{Success: true, Markup: markup, SnoozeUntil: &snoozeUntil}, nil
}

// ────────────────────── Miss ──────────────────────

func (s *lifecycleService) Miss(ctx context.Context, callID string) error {
	call, err := s.repo.WakeUpCall.GetWithOwner(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallNotFound
		}
		s.logger.Error("查询叫醒呼叫失败", zap.String("call_id", callID), zap.Error(err))
		return err
	}

	err = s.repo.WakeUpCall.UpdateStatus(ctx, callID,
		[]string{model.CallStatusInitiated, model.CallStatusSnoozed},
		map[string]interface{}{"status": model.CallStatusMissed})
	if err != nil {
		return err
	}

	s.logger.Warn("呼叫超时未响应，置为 missed", zap.String("call_id", callID))
	return s.rearm(ctx, call, model.CallStatusMissed)
}

// ── 内部辅助方法 ──

// rearm 重复呼叫到达终态后重新武装：计算下一次出现并回到 pending；
// 系列耗尽时仅置 is_active=false，终态保留。一次性呼叫不做处理。
func (s *lifecycleService) rearm(ctx context.Context, call *model.WakeUpCall, terminal string) error {
	if call.Rule == nil {
		return nil
	}

	// 在用户时区内展开规则，跨 DST 时保持本地时刻不变
	ref := call.ScheduledTime
	if call.User != nil && call.User.Preferences != nil {
		if loc, err := time.LoadLocation(call.User.Preferences.Timezone); err == nil {
			ref = ref.In(loc)
		}
	}

	next := NextOccurrence(call.Rule, ref)
	if next == nil {
		s.logger.Info("重复系列已耗尽，呼叫置为不活跃", zap.String("call_id", call.CallID))
		return s.repo.WakeUpCall.UpdateStatus(ctx, call.CallID,
			[]string{terminal},
			map[string]interface{}{"is_active": false})
	}

	return s.repo.WakeUpCall.UpdateStatus(ctx, call.CallID,
		[]string{terminal},
		map[string]interface{}{
			"status":         model.CallStatusPending,
			"scheduled_time": *next,
			"actual_time":    nil,
		})
}

func (s *lifecycleService) failureOutcome(message string) (*SnoozeOutcome, error) {
	markup, err := s.prompter.ResponsePrompt(message)
	if err != nil {
		return nil, err
	}
	return &SnoozeOutcome{Success: false, Markup: markup}, nil
}

// snoozeActionURL 贪睡协商回调地址（通道把语音转录 POST 到该地址）
func (s *lifecycleService) snoozeActionURL(callID string) string {
	return fmt.Sprintf("%s/api/v1/voice/calls/%s/snooze", s.cfg.Server.BaseURL, callID)
}

// [自证通过] internal/service/lifecycle_service.go
