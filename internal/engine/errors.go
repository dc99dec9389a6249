package engine

import "errors"

// 引擎错误定义，调用方通过 errors.Is 判断错误类型
var (
	ErrRecordNotFound        = errors.New("project record not found")        // 项目不存在
	ErrDuplicateIdentifier   = errors.New("project identifier already used") // 项目ID重复
	ErrInvalidParameters     = errors.New("invalid project parameters")      // 参数不合法
	ErrInvalidSignature      = errors.New("caller not authorized")           // 调用者未授权
	ErrInvalidStatus         = errors.New("operation not allowed in current status") // 状态不允许
	ErrInvalidStage          = errors.New("operation not allowed in current stage")  // 阶段不允许
	ErrIncorrectAmount       = errors.New("stake amount mismatch")                   // 质押金额不匹配
	ErrInsufficientRemaining = errors.New("purchase exceeds remaining supply")       // 超出可售余量
	ErrCooldownNotMet        = errors.New("milestone cooldown not met")              // 冷却期未到
	ErrMilestonePassed       = errors.New("milestone index already passed")          // 里程碑已越过
	ErrMilestoneFinished     = errors.New("milestone already finished")              // 里程碑已完成
	ErrMilestoneExpired      = errors.New("milestone already expired")               // 里程碑已过期
	ErrInvalidProof          = errors.New("milestone proof is blank")                // 证明为空
)
