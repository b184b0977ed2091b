package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shawnlikescode/rally/internal/dto"
	"github.com/shawnlikescode/rally/internal/service"
	"github.com/shawnlikescode/rally/pkg/response"
)

// Register 用户注册
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数不合法")
		return
	}

	resp, err := h.svc.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, CodeEmailTaken, err.Error())
			return
		}
		h.logger.Error("注册失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数不合法")
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, CodeInvalidCredentials, err.Error())
			return
		}
		h.logger.Error("登录失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// Refresh 刷新 Token
// POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数不合法")
		return
	}

	resp, err := h.svc.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			response.Unauthorized(c, CodeInvalidRefresh, err.Error())
			return
		}
		h.logger.Error("刷新 Token 失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// Logout 登出（刷新令牌拉黑）
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数不合法")
		return
	}

	if err := h.svc.Auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Error("登出失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me 当前用户信息
// GET /api/v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID := MustGetUserID(c)

	resp, err := h.svc.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, CodeUserNotFound, err.Error())
			return
		}
		h.logger.Error("查询当前用户失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// [自证通过] internal/api/handler/auth_handler.go
