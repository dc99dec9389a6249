package engine

import "fmt"

// payout 一笔待执行的转出
type payout struct {
	to     string
	amount int64
}

// executePayouts 依次执行转出，任一失败即中止并返回错误。
// 调用方保证在全部转出成功前不修改项目状态。
func (e *Engine) executePayouts(projectId string, payouts []payout) error {
	for _, po := range payouts {
		if po.amount == 0 {
			continue
		}
		if err := e.token.Transfer(po.to, po.amount, projectId); err != nil {
			return fmt.Errorf("transfer %d to %s failed: %w", po.amount, po.to, err)
		}
	}
	return nil
}

// settleFinish 结算分配。资金池为总质押加总购买，按台账顺序向每个买家
// 返还 (购买量+对应质押) * 未完成数/总数 的向下取整值，
// 余数与未售出部分的质押全部归创建者。调用方需持写锁。
func (e *Engine) settleFinish(p *ProjectRecord) error {
	total := int64(len(p.Milestones))
	unfinished := total - int64(p.FinishedCount)
	pool := p.TotalStake() + p.TotalPurchased

	entries := p.ledger.Entries()
	payouts := make([]payout, 0, len(entries)+1)
	for _, entry := range entries {
		buyerTotal := entry.Amount + entry.Amount*p.StakeRate/100
		returnToBuyer := buyerTotal * unfinished / total
		payouts = append(payouts, payout{to: entry.Address, amount: returnToBuyer})
		pool -= returnToBuyer
	}
	payouts = append(payouts, payout{to: p.Creator, amount: pool})

	if err := e.executePayouts(p.Id, payouts); err != nil {
		return err
	}

	for _, entry := range entries {
		p.ledger.Remove(entry.Address)
	}
	p.BuyerCount = 0
	p.Status = StatusFinished
	return nil
}

// Refund 买家退款。阈值达成前全额退还；阈值达成后按已完成比例
// 分账给创建者，余下退还买家；可结算阶段后不再受理退款。
func (e *Engine) Refund(id, buyer string) error {
	if !e.auth.IsAuthorized(buyer) {
		return ErrInvalidSignature
	}
	now := e.clock.Now()

	e.registry.mu.Lock()
	defer e.registry.mu.Unlock()

	p, ok := e.registry.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	amount := p.ledger.Get(buyer)
	if amount == 0 {
		return ErrRecordNotFound
	}
	if p.Status != StatusOngoing {
		return ErrInvalidStatus
	}
	if p.ReadyToFinish(now) {
		return ErrInvalidStage
	}

	var payouts []payout
	if !p.ThresholdMet(now) {
		payouts = []payout{{to: buyer, amount: amount}}
	} else {
		creatorShare := amount * int64(p.FinishedCount) / int64(len(p.Milestones))
		payouts = []payout{
			{to: p.Creator, amount: creatorShare},
			{to: buyer, amount: amount - creatorShare},
		}
	}
	if err := e.executePayouts(p.Id, payouts); err != nil {
		return err
	}

	p.RemainingSellable += amount
	p.TotalPurchased -= amount
	p.ledger.Remove(buyer)
	p.BuyerCount--
	return nil
}

// Cancel 取消项目，仅创建者可调用，且只允许在 pending 状态
// 或开放购买窗口内执行。全额退还所有买家，退还已付质押，
// 随后整体删除项目记录，同一ID不可再次取消。
func (e *Engine) Cancel(id, caller string) error {
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

	switch p.Status {
	case StatusPending:
		// 质押前随时可取消
	case StatusOngoing:
		if p.NextIndex != 0 || p.ThresholdMet(now) || p.ReadyToFinish(now) {
			return ErrInvalidStage
		}
	default:
		return ErrInvalidStatus
	}

	entries := p.ledger.Entries()
	payouts := make([]payout, 0, len(entries)+1)
	for _, entry := range entries {
		payouts = append(payouts, payout{to: entry.Address, amount: entry.Amount})
	}
	if p.Status == StatusOngoing {
		payouts = append(payouts, payout{to: p.Creator, amount: p.TotalStake()})
	}
	if err := e.executePayouts(p.Id, payouts); err != nil {
		return err
	}

	e.registry.remove(id)
	return nil
}
