package engine

// HandlePayment 支付路由。外部代币服务确认到账后调用，
// 按付款人身份分派为质押或购买，本身不移动代币。
func (e *Engine) HandlePayment(id, payer string, amount int64) error {
	if !e.auth.IsAuthorized(payer) {
		return ErrInvalidSignature
	}
	now := e.clock.Now()

	e.registry.mu.Lock()
	defer e.registry.mu.Unlock()

	p, ok := e.registry.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if amount <= 0 {
		return ErrInvalidParameters
	}

	if payer == p.Creator {
		return e.payStake(p, amount)
	}
	return e.purchase(p, payer, amount, now)
}

// payStake 创建者质押，金额必须精确等于总质押量
func (e *Engine) payStake(p *ProjectRecord, amount int64) error {
	if p.Status != StatusPending {
		return ErrInvalidStatus
	}
	if amount != p.TotalStake() {
		return ErrIncorrectAmount
	}
	// LastUpdateTime 保持-1，冷却计时从首个里程碑完成后才生效
	p.Status = StatusOngoing
	return nil
}

// purchase 买家购买，仅在开放窗口内允许
func (e *Engine) purchase(p *ProjectRecord, buyer string, amount int64, now int64) error {
	if !p.openForPurchase(now) {
		return ErrInvalidStage
	}
	if amount > p.RemainingSellable {
		return ErrInsufficientRemaining
	}
	if p.ledger.Add(buyer, amount) {
		p.BuyerCount++
	}
	p.RemainingSellable -= amount
	p.TotalPurchased += amount
	return nil
}
