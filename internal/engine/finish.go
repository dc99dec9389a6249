package engine

import "strings"

// FinishMilestone 完成里程碑，仅创建者可调用。
// 完成后若项目达到可结算阶段，在同一原子操作内执行结算分配。
func (e *Engine) FinishMilestone(id, caller string, index int, proof string) error {
	if !e.auth.IsAuthorized(caller) {
		return ErrInvalidSignature
	}
	now := e.clock.Now()

	e.registry.mu.Lock()
	defer e.registry.mu.Unlock()

	p, ok := e.registry.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if caller != p.Creator {
		return ErrInvalidSignature
	}
	if p.Status != StatusOngoing {
		return ErrInvalidStatus
	}
	// 冷却计时在首个里程碑完成前不生效
	if p.LastUpdateTime >= 0 && now < p.LastUpdateTime+p.Cooldown {
		return ErrCooldownNotMet
	}
	if index < 0 || index >= len(p.Milestones) {
		return ErrInvalidParameters
	}
	// 游标只进不退，允许向前跳过未完成的里程碑
	if index < p.NextIndex {
		return ErrMilestonePassed
	}
	m := &p.Milestones[index]
	if m.IsFinished() {
		return ErrMilestoneFinished
	}
	if m.IsExpired(now) {
		return ErrMilestoneExpired
	}
	if strings.TrimSpace(proof) == "" {
		return ErrInvalidProof
	}

	prev := checkpoint(p)
	m.Proof = proof
	p.NextIndex = index + 1
	p.FinishedCount++
	p.LastUpdateTime = now
	if index == p.ThresholdIndex {
		p.ThresholdFinished = true
	}
	if index == len(p.Milestones)-1 {
		p.LastFinished = true
	}

	if p.ReadyToFinish(now) {
		if err := e.settleFinish(p); err != nil {
			// 结算转账失败时回滚里程碑变更，保持操作原子性
			prev.restore(p)
			m.Proof = ""
			return err
		}
	}
	return nil
}

// ForceFinish 强制结算，项目达到可结算阶段后任何人可触发
func (e *Engine) ForceFinish(id, caller string) error {
	if !e.auth.IsAuthorized(caller) {
		return ErrInvalidSignature
	}
	now := e.clock.Now()

	e.registry.mu.Lock()
	defer e.registry.mu.Unlock()

	p, ok := e.registry.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if p.Status != StatusOngoing {
		return ErrInvalidStatus
	}
	if !p.ReadyToFinish(now) {
		return ErrInvalidStage
	}
	return e.settleFinish(p)
}

// milestoneCheckpoint 里程碑变更回滚点
type milestoneCheckpoint struct {
	nextIndex         int
	finishedCount     int
	lastUpdateTime    int64
	thresholdFinished bool
	lastFinished      bool
}

func checkpoint(p *ProjectRecord) milestoneCheckpoint {
	return milestoneCheckpoint{
		nextIndex:         p.NextIndex,
		finishedCount:     p.FinishedCount,
		lastUpdateTime:    p.LastUpdateTime,
		thresholdFinished: p.ThresholdFinished,
		lastFinished:      p.LastFinished,
	}
}

func (c milestoneCheckpoint) restore(p *ProjectRecord) {
	p.NextIndex = c.nextIndex
	p.FinishedCount = c.finishedCount
	p.LastUpdateTime = c.lastUpdateTime
	p.ThresholdFinished = c.thresholdFinished
	p.LastFinished = c.lastFinished
}
