package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareProject(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 3))

	snap := e.Query("p1")
	require.NotNil(t, snap)
	assert.Equal(t, StatusPending, snap.Status)
	assert.Equal(t, StageNone, snap.Stage)
	assert.Equal(t, int64(100_000), snap.RemainingSellable)
	assert.Equal(t, int64(0), snap.TotalPurchased)
	assert.Equal(t, int64(10_000), snap.TotalStake)
	assert.Equal(t, int64(-1), snap.LastUpdateTime)
	assert.Equal(t, 0, snap.NextIndex)
	assert.Len(t, snap.Milestones, 3)
}

func TestDeclareDuplicateIdentifier(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	err := e.DeclareProject(declareParams("p1", 2))
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
}

func TestDeclareValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*DeclareParams)
	}{
		{"empty id", func(p *DeclareParams) { p.Id = "" }},
		{"empty creator", func(p *DeclareParams) { p.Creator = "" }},
		{"zero stake rate", func(p *DeclareParams) { p.StakeRate = 0 }},
		{"negative stake rate", func(p *DeclareParams) { p.StakeRate = -10 }},
		{"zero max sellable", func(p *DeclareParams) { p.MaxSellable = 0 }},
		{"no milestones", func(p *DeclareParams) {
			p.Titles = nil
			p.Descriptions = nil
			p.EndTimestamps = nil
		}},
		{"mismatched arrays", func(p *DeclareParams) { p.Descriptions = p.Descriptions[:1] }},
		{"non increasing timestamps", func(p *DeclareParams) {
			p.EndTimestamps[1] = p.EndTimestamps[0]
		}},
		{"expired timestamp", func(p *DeclareParams) { p.EndTimestamps[0] = baseTime - 1 }},
		{"negative threshold", func(p *DeclareParams) { p.ThresholdIndex = -1 }},
		{"threshold out of range", func(p *DeclareParams) { p.ThresholdIndex = 3 }},
		{"threshold on last milestone", func(p *DeclareParams) { p.ThresholdIndex = 2 }},
		{"negative cooldown", func(p *DeclareParams) { p.Cooldown = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, _ := newTestEngine()
			params := declareParams("p1", 3)
			tc.mutate(&params)
			err := e.DeclareProject(params)
			assert.ErrorIs(t, err, ErrInvalidParameters)
			assert.Nil(t, e.Query("p1"))
		})
	}
}

// 单里程碑项目唯一合法的阈值下标是0
func TestDeclareSingleMilestoneThreshold(t *testing.T) {
	e, _, _ := newTestEngine()

	params := declareParams("p1", 1)
	params.ThresholdIndex = 0
	require.NoError(t, e.DeclareProject(params))

	params = declareParams("p2", 1)
	params.ThresholdIndex = 1
	assert.ErrorIs(t, e.DeclareProject(params), ErrInvalidParameters)
}

func TestQueryMissingProject(t *testing.T) {
	e, _, _ := newTestEngine()

	assert.Nil(t, e.Query("missing"))
	assert.Equal(t, int64(0), e.QueryPurchase("missing", buyerA))
}

func TestQueryPurchase(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 5_000))

	assert.Equal(t, int64(5_000), e.QueryPurchase("p1", buyerA))
	assert.Equal(t, int64(0), e.QueryPurchase("p1", buyerB))
}

func TestAdvanceQueryPagination(t *testing.T) {
	e, _, _ := newTestEngine()

	for i := 0; i < 5; i++ {
		mustDeclare(t, e, declareParams(fmt.Sprintf("p%d", i), 2))
	}

	page1, total, err := e.AdvanceQuery("", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "p0", page1[0].Id)
	assert.Equal(t, "p1", page1[1].Id)

	page3, _, err := e.AdvanceQuery("", "", 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "p4", page3[0].Id)

	empty, total, err := e.AdvanceQuery("", "", 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}

func TestAdvanceQueryFilters(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	other := declareParams("p2", 2)
	other.Creator = "0xOther"
	mustDeclare(t, e, other)

	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 1_000))

	byCreator, total, err := e.AdvanceQuery("0xOther", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byCreator, 1)
	assert.Equal(t, "p2", byCreator[0].Id)

	byBuyer, total, err := e.AdvanceQuery("", buyerA, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byBuyer, 1)
	assert.Equal(t, "p1", byBuyer[0].Id)
}

func TestAdvanceQueryInvalidPaging(t *testing.T) {
	e, _, _ := newTestEngine()

	for _, args := range [][2]int{{0, 10}, {-1, 10}, {1, 0}, {1, -5}, {1, MaxPageSize + 1}} {
		_, _, err := e.AdvanceQuery("", "", args[0], args[1])
		assert.ErrorIs(t, err, ErrInvalidParameters)
	}
}
