package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// manualClock 手动推进的测试时钟
type manualClock struct {
	now int64
}

func (c *manualClock) Now() int64 {
	return c.now
}

func (c *manualClock) advance(ms int64) {
	c.now += ms
}

// transferCall 记录一次转出
type transferCall struct {
	To        string
	Amount    int64
	ProjectId string
}

// fakeToken 记录所有转出的假代币服务，可配置对某地址转账失败
type fakeToken struct {
	calls  []transferCall
	failTo string
}

func (f *fakeToken) Transfer(to string, amount int64, projectId string) error {
	if f.failTo != "" && to == f.failTo {
		return errors.New("transfer rejected")
	}
	f.calls = append(f.calls, transferCall{To: to, Amount: amount, ProjectId: projectId})
	return nil
}

func (f *fakeToken) totalTo(address string) int64 {
	var sum int64
	for _, c := range f.calls {
		if c.To == address {
			sum += c.Amount
		}
	}
	return sum
}

func (f *fakeToken) totalOut() int64 {
	var sum int64
	for _, c := range f.calls {
		sum += c.Amount
	}
	return sum
}

const (
	creator = "0xCreator"
	buyerA  = "0xBuyerA"
	buyerB  = "0xBuyerB"

	baseTime = int64(1_000_000)
	day      = int64(86_400_000)
)

func newTestEngine() (*Engine, *manualClock, *fakeToken) {
	clock := &manualClock{now: baseTime}
	token := &fakeToken{}
	return New(NewRegistry(), token, nil, clock), clock, token
}

// declareParams 构造一个有效的创建参数，里程碑截止时间依次为 baseTime 后的第 1..n 天
func declareParams(id string, milestoneCount int) DeclareParams {
	titles := make([]string, milestoneCount)
	descriptions := make([]string, milestoneCount)
	ends := make([]int64, milestoneCount)
	for i := 0; i < milestoneCount; i++ {
		titles[i] = "milestone"
		descriptions[i] = "deliverable"
		ends[i] = baseTime + int64(i+1)*day
	}
	return DeclareParams{
		Id:             id,
		Creator:        creator,
		TokenAddress:   "0xToken",
		Description:    "test project",
		StakeRate:      10,
		MaxSellable:    100_000,
		Titles:         titles,
		Descriptions:   descriptions,
		EndTimestamps:  ends,
		ThresholdIndex: 0,
		Cooldown:       0,
		Public:         true,
	}
}

// mustDeclare 创建项目并断言成功
func mustDeclare(t *testing.T, e *Engine, params DeclareParams) {
	t.Helper()
	require.NoError(t, e.DeclareProject(params))
}

// mustPayStake 创建者完成质押
func mustPayStake(t *testing.T, e *Engine, id string) {
	t.Helper()
	snap := e.Query(id)
	require.NotNil(t, snap)
	require.NoError(t, e.HandlePayment(id, snap.Creator, snap.TotalStake))
}

// assertConservation 校验代币守恒不变量
func assertConservation(t *testing.T, e *Engine, id string) {
	t.Helper()
	snap := e.Query(id)
	require.NotNil(t, snap)
	require.Equal(t, snap.MaxSellable, snap.RemainingSellable+snap.TotalPurchased,
		"remaining + purchased must equal max sellable")
}
