package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 单里程碑全部完成：买家无返还，资金池全归创建者
func TestSettlementAllMilestonesFinished(t *testing.T) {
	e, _, token := newTestEngine()

	params := declareParams("p1", 1)
	params.StakeRate = 100
	params.MaxSellable = 100
	mustDeclare(t, e, params)
	require.NoError(t, e.HandlePayment("p1", creator, 100))
	require.NoError(t, e.HandlePayment("p1", buyerA, 100))

	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))

	snap := e.Query("p1")
	assert.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, 0, snap.BuyerCount)
	assert.Equal(t, int64(0), token.totalTo(buyerA))
	assert.Equal(t, int64(200), token.totalTo(creator))
	assert.Equal(t, int64(200), token.totalOut())
}

// 单里程碑全部过期：买家拿回本金加全部对应质押，创建者一无所得
func TestSettlementAllMilestonesExpired(t *testing.T) {
	e, clock, token := newTestEngine()

	params := declareParams("p1", 1)
	params.StakeRate = 100
	params.MaxSellable = 100
	mustDeclare(t, e, params)
	require.NoError(t, e.HandlePayment("p1", creator, 100))
	require.NoError(t, e.HandlePayment("p1", buyerA, 100))

	clock.advance(2 * day)
	snap := e.Query("p1")
	require.Equal(t, StageReadyToFinish, snap.Stage)

	require.NoError(t, e.ForceFinish("p1", buyerA))

	assert.Equal(t, int64(200), token.totalTo(buyerA))
	assert.Equal(t, int64(0), token.totalTo(creator))
	assert.Equal(t, StatusFinished, e.Query("p1").Status)
}

// 三个里程碑完成两个（跳过一个）：按 1/3 向下取整返还，余数归创建者
func TestSettlementPartialCompletion(t *testing.T) {
	e, _, token := newTestEngine()

	params := declareParams("p1", 3)
	params.ThresholdIndex = 1
	mustDeclare(t, e, params) // rate=10, max=100000, stake=10000
	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 40_000))

	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))
	// 跳过1直接完成末位，自动触发结算
	require.NoError(t, e.FinishMilestone("p1", creator, 2, "proof-2"))

	snap := e.Query("p1")
	require.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, 2, snap.FinishedCount)

	// buyerTotal = 40000 + 40000*10/100 = 44000; 返还 44000*1/3 = 14666
	assert.Equal(t, int64(14_666), token.totalTo(buyerA))
	// 创建者拿走余数与未售出部分的质押
	assert.Equal(t, int64(50_000-14_666), token.totalTo(creator))
	// 取整余数不丢失：转出总额恰为质押加购买
	assert.Equal(t, int64(50_000), token.totalOut())
}

// 多买家取整守恒：所有返还加创建者所得恰等于质押加购买总额
func TestSettlementRoundingConservation(t *testing.T) {
	e, clock, token := newTestEngine()

	params := declareParams("p1", 3)
	params.ThresholdIndex = 1
	params.StakeRate = 7
	params.MaxSellable = 99_991
	mustDeclare(t, e, params)
	mustPayStake(t, e, "p1")

	purchases := map[string]int64{buyerA: 13_337, buyerB: 77, "0xBuyerC": 4_999}
	var totalPurchased int64
	for buyer, amount := range purchases {
		require.NoError(t, e.HandlePayment("p1", buyer, amount))
		totalPurchased += amount
	}

	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))
	clock.advance(4 * day) // 其余里程碑全部过期
	require.NoError(t, e.ForceFinish("p1", creator))

	totalStake := int64(7) * 99_991 / 100
	assert.Equal(t, totalStake+totalPurchased, token.totalOut())
	for buyer, amount := range purchases {
		expect := (amount + amount*7/100) * 2 / 3
		assert.Equal(t, expect, token.totalTo(buyer))
	}
}

func TestForceFinishBeforeReady(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	mustPayStake(t, e, "p1")
	assert.ErrorIs(t, e.ForceFinish("p1", creator), ErrInvalidStage)
}

func TestNoDoubleSettlement(t *testing.T) {
	e, _, token := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 1))
	mustPayStake(t, e, "p1")
	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))
	paid := token.totalOut()

	assert.ErrorIs(t, e.ForceFinish("p1", creator), ErrInvalidStatus)
	assert.Equal(t, paid, token.totalOut())
}

// 阈值达成前退款：全额退还本金，不涉及质押
func TestRefundBeforeThreshold(t *testing.T) {
	e, _, token := newTestEngine()

	params := declareParams("p1", 3)
	params.ThresholdIndex = 1
	mustDeclare(t, e, params)
	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 1_000))

	require.NoError(t, e.Refund("p1", buyerA))

	assert.Equal(t, int64(1_000), token.totalTo(buyerA))
	assert.Equal(t, int64(0), token.totalTo(creator))

	snap := e.Query("p1")
	assert.Equal(t, int64(0), snap.TotalPurchased)
	assert.Equal(t, snap.MaxSellable, snap.RemainingSellable)
	assert.Equal(t, 0, snap.BuyerCount)
	assert.Equal(t, int64(0), e.QueryPurchase("p1", buyerA))
	assertConservation(t, e, "p1")
}

// 阈值达成后退款：按已完成比例分账
func TestRefundAfterThreshold(t *testing.T) {
	e, _, token := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2)) // threshold=0
	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 1_000))

	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))
	require.Equal(t, StageActive, e.Query("p1").Stage)

	require.NoError(t, e.Refund("p1", buyerA))

	// creatorShare = 1000*1/2 = 500
	assert.Equal(t, int64(500), token.totalTo(creator))
	assert.Equal(t, int64(500), token.totalTo(buyerA))

	snap := e.Query("p1")
	assert.Equal(t, snap.MaxSellable, snap.RemainingSellable)
	assert.Equal(t, 0, snap.BuyerCount)
	assertConservation(t, e, "p1")
}

// 阈值里程碑过期同样视为阈值达成，退款转为比例分账
func TestRefundAfterThresholdExpiry(t *testing.T) {
	e, clock, token := newTestEngine()

	params := declareParams("p1", 3)
	params.ThresholdIndex = 1
	mustDeclare(t, e, params)
	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 900))

	clock.advance(2 * day) // 里程碑0、1均过期，末位未过期
	require.Equal(t, StageActive, e.Query("p1").Stage)

	require.NoError(t, e.Refund("p1", buyerA))

	// 无已完成里程碑，creatorShare = 900*0/3 = 0
	assert.Equal(t, int64(0), token.totalTo(creator))
	assert.Equal(t, int64(900), token.totalTo(buyerA))
}

func TestRefundAfterReadyToFinish(t *testing.T) {
	e, clock, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 1_000))

	clock.advance(3 * day) // 全部里程碑过期，进入可结算阶段
	assert.ErrorIs(t, e.Refund("p1", buyerA), ErrInvalidStage)
}

func TestRefundWithoutPurchase(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	mustPayStake(t, e, "p1")
	assert.ErrorIs(t, e.Refund("p1", buyerA), ErrRecordNotFound)
	assert.ErrorIs(t, e.Refund("missing", buyerA), ErrRecordNotFound)
}

func TestCancelPending(t *testing.T) {
	e, _, token := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	require.NoError(t, e.Cancel("p1", creator))

	// 尚无质押与购买，不发生任何转账
	assert.Equal(t, int64(0), token.totalOut())
	assert.Nil(t, e.Query("p1"))

	// 已取消的ID不可重复取消
	assert.ErrorIs(t, e.Cancel("p1", creator), ErrRecordNotFound)
}

func TestCancelOngoingOpen(t *testing.T) {
	e, _, token := newTestEngine()

	params := declareParams("p1", 3)
	params.ThresholdIndex = 1
	mustDeclare(t, e, params)
	mustPayStake(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerA, 5_000))
	require.NoError(t, e.HandlePayment("p1", buyerB, 2_500))

	require.NoError(t, e.Cancel("p1", creator))

	// 买家全额退款，创建者拿回全部质押
	assert.Equal(t, int64(5_000), token.totalTo(buyerA))
	assert.Equal(t, int64(2_500), token.totalTo(buyerB))
	assert.Equal(t, int64(10_000), token.totalTo(creator))
	assert.Nil(t, e.Query("p1"))
}

func TestCancelAfterMilestoneProgress(t *testing.T) {
	e, _, _ := newTestEngine()

	params := declareParams("p1", 3)
	params.ThresholdIndex = 1
	mustDeclare(t, e, params)
	mustPayStake(t, e, "p1")
	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))

	assert.ErrorIs(t, e.Cancel("p1", creator), ErrInvalidStage)
}

func TestCancelNotCreator(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 2))
	assert.ErrorIs(t, e.Cancel("p1", buyerA), ErrInvalidSignature)
}

func TestCancelAfterFinished(t *testing.T) {
	e, _, _ := newTestEngine()

	mustDeclare(t, e, declareParams("p1", 1))
	mustPayStake(t, e, "p1")
	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))

	assert.ErrorIs(t, e.Cancel("p1", creator), ErrInvalidStatus)
}

// 操作序列全程保持守恒不变量
func TestConservationAcrossOperations(t *testing.T) {
	e, _, _ := newTestEngine()

	params := declareParams("p1", 3)
	params.ThresholdIndex = 1
	mustDeclare(t, e, params)
	assertConservation(t, e, "p1")

	mustPayStake(t, e, "p1")
	assertConservation(t, e, "p1")

	require.NoError(t, e.HandlePayment("p1", buyerA, 30_000))
	assertConservation(t, e, "p1")
	require.NoError(t, e.HandlePayment("p1", buyerB, 20_000))
	assertConservation(t, e, "p1")

	require.NoError(t, e.Refund("p1", buyerB))
	assertConservation(t, e, "p1")

	require.NoError(t, e.FinishMilestone("p1", creator, 0, "proof-0"))
	assertConservation(t, e, "p1")
	require.NoError(t, e.FinishMilestone("p1", creator, 1, "proof-1"))
	assertConservation(t, e, "p1")

	require.NoError(t, e.Refund("p1", buyerA))
	assertConservation(t, e, "p1")
}
