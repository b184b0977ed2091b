package errors

import "errors"

// ErrInvalidTransition 状态机冲突：呼叫当前状态不允许该转换。
// 属于完整性错误（竞态或过期客户端），直接上报，不自动重试。
var ErrInvalidTransition = errors.New("呼叫状态不允许该操作")

// ErrSnoozeLimitReached 贪睡次数已达所属用户上限。
// 业务上属于正常的协商结果（success=false + 提示语），不是异常。
var ErrSnoozeLimitReached = errors.New("贪睡次数已达上限")
