package engine

// Milestone 项目里程碑，完成的唯一标志是填入了非空的证明
type Milestone struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	EndTimestamp int64  `json:"end_timestamp"` // 截止时间，毫秒
	Proof        string `json:"proof"`         // 完成证明，未完成时为空
}

// IsFinished 里程碑是否已完成
func (m *Milestone) IsFinished() bool {
	return m.Proof != ""
}

// IsExpired 里程碑是否已过期
func (m *Milestone) IsExpired(now int64) bool {
	return m.EndTimestamp <= now
}
