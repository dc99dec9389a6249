package engine

// ProjectStatus 项目状态，只允许 pending -> ongoing -> finished 单向流转
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "pending"  // 待质押
	StatusOngoing  ProjectStatus = "ongoing"  // 进行中
	StatusFinished ProjectStatus = "finished" // 已结束
)

// Stage 项目子阶段，仅用于查询展示
type Stage string

const (
	StageNone          Stage = ""                // pending/finished 无阶段
	StageOpen          Stage = "open"            // 开放购买
	StageActive        Stage = "active"          // 阈值已达成
	StageReadyToFinish Stage = "ready_to_finish" // 可结算
)

// ProjectRecord 项目记录，静态参数创建后不可变，动态状态由引擎操作更新。
// 所有金额为代币最小单位的整数，所有时间为毫秒时间戳。
type ProjectRecord struct {
	// 静态参数
	Id             string      // 全局唯一标识
	Creator        string      // 创建者地址
	TokenAddress   string      // 背书代币地址
	Description    string      // 项目描述
	StakeRate      int64       // 每售出100代币需质押的数量
	MaxSellable    int64       // 最大可售数量
	Milestones     []Milestone // 里程碑列表，截止时间严格递增
	ThresholdIndex int         // 阈值里程碑下标
	Cooldown       int64       // 里程碑冷却间隔，毫秒
	CreatedAt      int64       // 创建时间
	Public         bool        // 是否公开展示

	// 动态状态
	Status            ProjectStatus
	RemainingSellable int64 // 剩余可售，恒有 RemainingSellable+TotalPurchased == MaxSellable
	TotalPurchased    int64
	BuyerCount        int
	ThresholdFinished bool  // 阈值里程碑已完成，置位后不清除
	LastFinished      bool  // 末位里程碑已完成，置位后不清除
	LastUpdateTime    int64 // 最近一次里程碑完成时间，初始为-1
	FinishedCount     int   // 已完成里程碑数
	NextIndex         int   // 里程碑游标，只增不减

	ledger *Ledger // 购买台账
}

// TotalStake 项目总质押量，整数向下取整
func (p *ProjectRecord) TotalStake() int64 {
	return p.StakeRate * p.MaxSellable / 100
}

// lastMilestone 末位里程碑
func (p *ProjectRecord) lastMilestone() *Milestone {
	return &p.Milestones[len(p.Milestones)-1]
}

// thresholdMilestone 阈值里程碑
func (p *ProjectRecord) thresholdMilestone() *Milestone {
	return &p.Milestones[p.ThresholdIndex]
}
