package model

import (
	"time"
)

// SettlementRecordModel 结算记录，结算分配或取消时写入一条
type SettlementRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId      string `json:"project_id" gorm:"not null;index"`
	TotalPool      int64  `json:"total_pool" gorm:"not null"` // 质押加购买总额
	TotalStake     int64  `json:"total_stake" gorm:"not null"`
	TotalPurchased int64  `json:"total_purchased" gorm:"not null"`
	FinishedCount  int    `json:"finished_count" gorm:"not null"`
	MilestoneCount int    `json:"milestone_count" gorm:"not null"`
	BuyerCount     int    `json:"buyer_count" gorm:"not null"`
	SettlementType string `json:"settlement_type" gorm:"not null"` // finish, cancel
}

// SettlementType 结算类型
const (
	SettlementTypeFinish = "finish" // 结算分配
	SettlementTypeCancel = "cancel" // 取消回退
)

// TableName 自定义表名
func (SettlementRecordModel) TableName() string {
	return "settlement_record"
}
