package engine

// ProjectSnapshot 项目只读快照
type ProjectSnapshot struct {
	Id             string      `json:"id"`
	Creator        string      `json:"creator"`
	TokenAddress   string      `json:"token_address"`
	Description    string      `json:"description"`
	StakeRate      int64       `json:"stake_rate"`
	MaxSellable    int64       `json:"max_sellable"`
	TotalStake     int64       `json:"total_stake"`
	Milestones     []Milestone `json:"milestones"`
	ThresholdIndex int         `json:"threshold_index"`
	Cooldown       int64       `json:"cooldown"`
	CreatedAt      int64       `json:"created_at"`
	Public         bool        `json:"public"`

	Status            ProjectStatus `json:"status"`
	Stage             Stage         `json:"stage"`
	RemainingSellable int64         `json:"remaining_sellable"`
	TotalPurchased    int64         `json:"total_purchased"`
	BuyerCount        int           `json:"buyer_count"`
	ThresholdFinished bool          `json:"threshold_finished"`
	LastFinished      bool          `json:"last_finished"`
	LastUpdateTime    int64         `json:"last_update_time"`
	FinishedCount     int           `json:"finished_count"`
	NextIndex         int           `json:"next_index"`
}

// snapshot 生成快照副本，调用方需持锁
func (p *ProjectRecord) snapshot(now int64) *ProjectSnapshot {
	milestones := make([]Milestone, len(p.Milestones))
	copy(milestones, p.Milestones)
	return &ProjectSnapshot{
		Id:             p.Id,
		Creator:        p.Creator,
		TokenAddress:   p.TokenAddress,
		Description:    p.Description,
		StakeRate:      p.StakeRate,
		MaxSellable:    p.MaxSellable,
		TotalStake:     p.TotalStake(),
		Milestones:     milestones,
		ThresholdIndex: p.ThresholdIndex,
		Cooldown:       p.Cooldown,
		CreatedAt:      p.CreatedAt,
		Public:         p.Public,

		Status:            p.Status,
		Stage:             p.CurrentStage(now),
		RemainingSellable: p.RemainingSellable,
		TotalPurchased:    p.TotalPurchased,
		BuyerCount:        p.BuyerCount,
		ThresholdFinished: p.ThresholdFinished,
		LastFinished:      p.LastFinished,
		LastUpdateTime:    p.LastUpdateTime,
		FinishedCount:     p.FinishedCount,
		NextIndex:         p.NextIndex,
	}
}

// Query 查询项目快照，不存在返回nil而非错误
func (e *Engine) Query(id string) *ProjectSnapshot {
	now := e.clock.Now()

	e.registry.mu.RLock()
	defer e.registry.mu.RUnlock()

	p, ok := e.registry.records[id]
	if !ok {
		return nil
	}
	return p.snapshot(now)
}

// QueryPurchase 查询某买家的购买量，项目或条目不存在返回0
func (e *Engine) QueryPurchase(id, buyer string) int64 {
	e.registry.mu.RLock()
	defer e.registry.mu.RUnlock()

	p, ok := e.registry.records[id]
	if !ok {
		return 0
	}
	return p.ledger.Get(buyer)
}

// MaxPageSize 分页查询单页上限
const MaxPageSize = 100

// AdvanceQuery 分页查询项目列表，可按创建者或买家过滤，按插入顺序返回。
// 返回当前页快照与过滤后的总数。
func (e *Engine) AdvanceQuery(creator, buyer string, page, size int) ([]*ProjectSnapshot, int, error) {
	if page < 1 || size < 1 || size > MaxPageSize {
		return nil, 0, ErrInvalidParameters
	}
	now := e.clock.Now()

	e.registry.mu.RLock()
	defer e.registry.mu.RUnlock()

	matched := make([]*ProjectRecord, 0)
	for _, id := range e.registry.order {
		p := e.registry.records[id]
		if creator != "" && p.Creator != creator {
			continue
		}
		if buyer != "" && p.ledger.Get(buyer) == 0 {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	start := (page - 1) * size
	if start >= total {
		return []*ProjectSnapshot{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}

	result := make([]*ProjectSnapshot, 0, end-start)
	for _, p := range matched[start:end] {
		result = append(result, p.snapshot(now))
	}
	return result, total, nil
}
