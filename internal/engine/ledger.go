package engine

// LedgerEntry 台账条目
type LedgerEntry struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

// Ledger 购买台账，按插入顺序遍历，条目金额恒为正，
// 全额退款时直接删除条目而不是置零
type Ledger struct {
	amounts map[string]int64
	order   []string
}

// NewLedger 创建空台账
func NewLedger() *Ledger {
	return &Ledger{amounts: make(map[string]int64)}
}

// Get 查询某地址的购买量，不存在返回0
func (l *Ledger) Get(address string) int64 {
	return l.amounts[address]
}

// Add 累加购买量，返回是否为新建条目
func (l *Ledger) Add(address string, amount int64) bool {
	_, exists := l.amounts[address]
	l.amounts[address] += amount
	if !exists {
		l.order = append(l.order, address)
	}
	return !exists
}

// Remove 删除条目
func (l *Ledger) Remove(address string) {
	if _, exists := l.amounts[address]; !exists {
		return
	}
	delete(l.amounts, address)
	for i, addr := range l.order {
		if addr == address {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Entries 按插入顺序返回所有条目
func (l *Ledger) Entries() []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(l.order))
	for _, addr := range l.order {
		entries = append(entries, LedgerEntry{Address: addr, Amount: l.amounts[addr]})
	}
	return entries
}

// Len 条目数量
func (l *Ledger) Len() int {
	return len(l.order)
}
