package logic

import (
	"fmt"

	"github.com/blues/mes/internal/engine"
	"github.com/blues/mes/internal/logger"
	"github.com/blues/mes/internal/model"
	"gorm.io/gorm"
)

// ProjectLogic 项目业务逻辑。引擎持有权威状态，
// 数据库只做尽力而为的流水归档，归档失败不影响引擎操作结果。
type ProjectLogic struct {
	engine *engine.Engine
	db     *gorm.DB
}

// NewProjectLogic 创建项目业务逻辑，db 可为空（不归档）
func NewProjectLogic(eng *engine.Engine, db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{engine: eng, db: db}
}

// Engine 返回底层引擎，供监控与定时任务使用
func (l *ProjectLogic) Engine() *engine.Engine {
	return l.engine
}

// DeclareProject 创建项目并归档声明记录
func (l *ProjectLogic) DeclareProject(params engine.DeclareParams) error {
	if err := l.engine.DeclareProject(params); err != nil {
		return err
	}

	l.archive(func(db *gorm.DB) error {
		return db.Create(&model.ProjectRecordModel{
			ProjectId:      params.Id,
			Creator:        params.Creator,
			TokenAddress:   params.TokenAddress,
			Description:    params.Description,
			StakeRate:      params.StakeRate,
			MaxSellable:    params.MaxSellable,
			MilestoneCount: len(params.Titles),
			ThresholdIndex: params.ThresholdIndex,
			Cooldown:       params.Cooldown,
			Public:         params.Public,
			Status:         string(engine.StatusPending),
		}).Error
	})
	return nil
}

// HandlePayment 处理到账通知并归档支付流水
func (l *ProjectLogic) HandlePayment(id, payer string, amount int64) error {
	snap := l.engine.Query(id)

	if err := l.engine.HandlePayment(id, payer, amount); err != nil {
		return err
	}

	kind := model.PaymentKindPurchase
	if snap != nil && payer == snap.Creator {
		kind = model.PaymentKindStake
	}
	l.archive(func(db *gorm.DB) error {
		if err := db.Create(&model.PurchaseRecordModel{
			ProjectId: id,
			Address:   payer,
			Amount:    amount,
			Kind:      kind,
		}).Error; err != nil {
			return err
		}
		if kind == model.PaymentKindStake {
			return l.updateStatus(db, id)
		}
		return nil
	})
	return nil
}

// FinishMilestone 完成里程碑，完成后若项目已结束则归档结算记录
func (l *ProjectLogic) FinishMilestone(id, caller string, index int, proof string) error {
	before := l.engine.Query(id)

	if err := l.engine.FinishMilestone(id, caller, index, proof); err != nil {
		return err
	}

	l.archiveSettlementIfFinished(id, before)
	return nil
}

// ForceFinish 强制结算
func (l *ProjectLogic) ForceFinish(id, caller string) error {
	before := l.engine.Query(id)

	if err := l.engine.ForceFinish(id, caller); err != nil {
		return err
	}

	l.archiveSettlementIfFinished(id, before)
	return nil
}

// Refund 买家退款并归档分账明细
func (l *ProjectLogic) Refund(id, buyer string) error {
	amount := l.engine.QueryPurchase(id, buyer)
	before := l.engine.Query(id)

	if err := l.engine.Refund(id, buyer); err != nil {
		return err
	}

	// 复算分账用于归档：阈值达成后按已完成比例，否则全额退买家
	var creatorShare int64
	if before != nil && before.Stage == engine.StageActive {
		creatorShare = amount * int64(before.FinishedCount) / int64(len(before.Milestones))
	}
	l.archive(func(db *gorm.DB) error {
		return db.Create(&model.RefundRecordModel{
			ProjectId:    id,
			Address:      buyer,
			Amount:       amount,
			BuyerShare:   amount - creatorShare,
			CreatorShare: creatorShare,
		}).Error
	})
	return nil
}

// Cancel 取消项目并归档回退记录
func (l *ProjectLogic) Cancel(id, caller string) error {
	before := l.engine.Query(id)

	if err := l.engine.Cancel(id, caller); err != nil {
		return err
	}

	l.archive(func(db *gorm.DB) error {
		if before != nil {
			if err := db.Create(&model.SettlementRecordModel{
				ProjectId:      id,
				TotalPool:      before.TotalStake + before.TotalPurchased,
				TotalStake:     before.TotalStake,
				TotalPurchased: before.TotalPurchased,
				FinishedCount:  before.FinishedCount,
				MilestoneCount: len(before.Milestones),
				BuyerCount:     before.BuyerCount,
				SettlementType: model.SettlementTypeCancel,
			}).Error; err != nil {
				return err
			}
		}
		return db.Model(&model.ProjectRecordModel{}).
			Where("project_id = ?", id).
			Update("status", "cancelled").Error
	})
	return nil
}

// GetProject 查询项目快照
func (l *ProjectLogic) GetProject(id string) *engine.ProjectSnapshot {
	return l.engine.Query(id)
}

// GetProjects 分页查询项目列表
func (l *ProjectLogic) GetProjects(creator, buyer string, page, size int) ([]*engine.ProjectSnapshot, int, error) {
	return l.engine.AdvanceQuery(creator, buyer, page, size)
}

// GetPurchase 查询某买家的购买量
func (l *ProjectLogic) GetPurchase(id, buyer string) int64 {
	return l.engine.QueryPurchase(id, buyer)
}

// GetPaymentRecords 获取项目支付流水（历史归档）
func (l *ProjectLogic) GetPaymentRecords(projectId string, page, pageSize int) ([]model.PurchaseRecordModel, int64, error) {
	if l.db == nil {
		return nil, 0, nil
	}

	var records []model.PurchaseRecordModel
	var total int64

	if err := l.db.Model(&model.PurchaseRecordModel{}).
		Where("project_id = ?", projectId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取支付流水总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("project_id = ?", projectId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取支付流水失败: %w", err)
	}

	return records, total, nil
}

// GetRefundRecords 获取项目退款流水（历史归档）
func (l *ProjectLogic) GetRefundRecords(projectId string, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	if l.db == nil {
		return nil, 0, nil
	}

	var records []model.RefundRecordModel
	var total int64

	if err := l.db.Model(&model.RefundRecordModel{}).
		Where("project_id = ?", projectId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款流水总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("project_id = ?", projectId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款流水失败: %w", err)
	}

	return records, total, nil
}

// archiveSettlementIfFinished 项目转入 finished 后写入结算记录
func (l *ProjectLogic) archiveSettlementIfFinished(id string, before *engine.ProjectSnapshot) {
	after := l.engine.Query(id)
	if before == nil || after == nil || after.Status != engine.StatusFinished {
		return
	}

	l.archive(func(db *gorm.DB) error {
		if err := db.Create(&model.SettlementRecordModel{
			ProjectId:      id,
			TotalPool:      before.TotalStake + before.TotalPurchased,
			TotalStake:     before.TotalStake,
			TotalPurchased: before.TotalPurchased,
			FinishedCount:  after.FinishedCount,
			MilestoneCount: len(after.Milestones),
			BuyerCount:     before.BuyerCount,
			SettlementType: model.SettlementTypeFinish,
		}).Error; err != nil {
			return err
		}
		return l.updateStatus(db, id)
	})
}

// updateStatus 将引擎内的项目状态同步到归档表
func (l *ProjectLogic) updateStatus(db *gorm.DB, id string) error {
	snap := l.engine.Query(id)
	if snap == nil {
		return nil
	}
	return db.Model(&model.ProjectRecordModel{}).
		Where("project_id = ?", id).
		Update("status", string(snap.Status)).Error
}

// archive 执行归档写入，失败仅记日志
func (l *ProjectLogic) archive(fn func(db *gorm.DB) error) {
	if l.db == nil {
		return
	}
	if err := fn(l.db); err != nil {
		logger.Error("Failed to archive record: %v", err)
	}
}
