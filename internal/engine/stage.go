package engine

// 阶段判定均为纯函数，只读取动态状态与当前时间

// ReadyToFinish 是否可结算：进行中且末位里程碑已完成或已过期
func (p *ProjectRecord) ReadyToFinish(now int64) bool {
	if p.Status != StatusOngoing {
		return false
	}
	return p.LastFinished || p.lastMilestone().IsExpired(now)
}

// ThresholdMet 阈值是否达成：进行中且阈值里程碑已完成或已过期
func (p *ProjectRecord) ThresholdMet(now int64) bool {
	if p.Status != StatusOngoing {
		return false
	}
	return p.ThresholdFinished || p.thresholdMilestone().IsExpired(now)
}

// CurrentStage 当前子阶段，仅用于查询展示
func (p *ProjectRecord) CurrentStage(now int64) Stage {
	if p.Status != StatusOngoing {
		return StageNone
	}
	if p.ReadyToFinish(now) {
		return StageReadyToFinish
	}
	if p.ThresholdMet(now) {
		return StageActive
	}
	return StageOpen
}

// openForPurchase 是否处于可购买窗口：游标未动且首个里程碑未过期
func (p *ProjectRecord) openForPurchase(now int64) bool {
	return p.Status == StatusOngoing && p.NextIndex == 0 && !p.Milestones[0].IsExpired(now)
}
