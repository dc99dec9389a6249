package engine

import "time"

// Clock 时钟协作方，返回毫秒时间戳
type Clock interface {
	Now() int64
}

// SystemClock 系统时钟
type SystemClock struct{}

// Now 当前毫秒时间戳
func (SystemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// TokenTransfer 代币转账协作方。转入通知由外部送达后再调用引擎，
// 转出由结算逻辑调用；返回错误时整个结算操作视为失败。
type TokenTransfer interface {
	Transfer(to string, amount int64, projectId string) error
}

// Authorizer 调用者身份校验协作方
type Authorizer interface {
	IsAuthorized(identity string) bool
}

// AllowAll 放行所有调用者，本地模式与测试使用
type AllowAll struct{}

// IsAuthorized 恒为真
func (AllowAll) IsAuthorized(string) bool {
	return true
}

// Engine 项目生命周期引擎。所有修改操作在注册表写锁内完成，
// 校验失败不产生任何状态变更。
type Engine struct {
	registry *Registry
	token    TokenTransfer
	auth     Authorizer
	clock    Clock
}

// New 创建引擎
func New(registry *Registry, token TokenTransfer, auth Authorizer, clock Clock) *Engine {
	if auth == nil {
		auth = AllowAll{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		registry: registry,
		token:    token,
		auth:     auth,
		clock:    clock,
	}
}
