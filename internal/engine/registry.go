package engine

import "sync"

// Registry 项目注册表，持有全部项目记录。
// 写操作持写锁串行执行，查询持读锁并返回快照副本。
type Registry struct {
	mu        sync.RWMutex
	records   map[string]*ProjectRecord
	order     []string            // 全局插入顺序，用于分页查询
	byCreator map[string][]string // 创建者 -> 项目ID索引
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		records:   make(map[string]*ProjectRecord),
		byCreator: make(map[string][]string),
	}
}

// remove 删除项目记录及其索引，调用方需持写锁
func (r *Registry) remove(id string) {
	p, ok := r.records[id]
	if !ok {
		return
	}
	delete(r.records, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	ids := r.byCreator[p.Creator]
	for i, pid := range ids {
		if pid == id {
			r.byCreator[p.Creator] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.byCreator[p.Creator]) == 0 {
		delete(r.byCreator, p.Creator)
	}
}

// DeclareParams 创建项目的静态参数
type DeclareParams struct {
	Id             string   `json:"id" binding:"required"`
	Creator        string   `json:"creator" binding:"required"`
	TokenAddress   string   `json:"token_address"`
	Description    string   `json:"description"`
	StakeRate      int64    `json:"stake_rate"`   // 每100代币质押量
	MaxSellable    int64    `json:"max_sellable"` // 最大可售数量
	Titles         []string `json:"milestone_titles"`
	Descriptions   []string `json:"milestone_descriptions"`
	EndTimestamps  []int64  `json:"milestone_end_timestamps"`
	ThresholdIndex int      `json:"threshold_index"`
	Cooldown       int64    `json:"cooldown"` // 毫秒
	Public         bool     `json:"public"`
}

// DeclareProject 创建项目，校验全部静态参数后以 pending 状态入表
func (e *Engine) DeclareProject(params DeclareParams) error {
	if !e.auth.IsAuthorized(params.Creator) {
		return ErrInvalidSignature
	}
	now := e.clock.Now()

	e.registry.mu.Lock()
	defer e.registry.mu.Unlock()

	if err := validateDeclare(params, now); err != nil {
		return err
	}
	if _, exists := e.registry.records[params.Id]; exists {
		return ErrDuplicateIdentifier
	}

	milestones := make([]Milestone, len(params.Titles))
	for i := range params.Titles {
		milestones[i] = Milestone{
			Title:        params.Titles[i],
			Description:  params.Descriptions[i],
			EndTimestamp: params.EndTimestamps[i],
		}
	}

	record := &ProjectRecord{
		Id:             params.Id,
		Creator:        params.Creator,
		TokenAddress:   params.TokenAddress,
		Description:    params.Description,
		StakeRate:      params.StakeRate,
		MaxSellable:    params.MaxSellable,
		Milestones:     milestones,
		ThresholdIndex: params.ThresholdIndex,
		Cooldown:       params.Cooldown,
		CreatedAt:      now,
		Public:         params.Public,

		Status:            StatusPending,
		RemainingSellable: params.MaxSellable,
		LastUpdateTime:    -1,
		ledger:            NewLedger(),
	}

	e.registry.records[params.Id] = record
	e.registry.order = append(e.registry.order, params.Id)
	e.registry.byCreator[params.Creator] = append(e.registry.byCreator[params.Creator], params.Id)
	return nil
}

// validateDeclare 校验创建参数
func validateDeclare(params DeclareParams, now int64) error {
	if params.Id == "" || params.Creator == "" {
		return ErrInvalidParameters
	}
	if params.StakeRate <= 0 || params.MaxSellable <= 0 {
		return ErrInvalidParameters
	}
	count := len(params.Titles)
	if count == 0 || len(params.Descriptions) != count || len(params.EndTimestamps) != count {
		return ErrInvalidParameters
	}
	prev := now
	for _, end := range params.EndTimestamps {
		// 截止时间必须严格递增且晚于当前时间
		if end <= prev {
			return ErrInvalidParameters
		}
		prev = end
	}
	// 单里程碑项目阈值只能为0；多里程碑项目末位不可作为阈值
	if params.ThresholdIndex < 0 || params.ThresholdIndex >= count {
		return ErrInvalidParameters
	}
	if count > 1 && params.ThresholdIndex == count-1 {
		return ErrInvalidParameters
	}
	if params.Cooldown < 0 {
		return ErrInvalidParameters
	}
	return nil
}
