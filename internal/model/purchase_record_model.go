package model

import (
	"time"
)

// PurchaseRecordModel 购买流水，一笔到账一条记录
type PurchaseRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId string `json:"project_id" gorm:"not null;index"`
	Address   string `json:"address" gorm:"not null;index"`
	Amount    int64  `json:"amount" gorm:"not null"`
	Kind      string `json:"kind" gorm:"not null"` // stake, purchase
}

// TableName 自定义表名
func (PurchaseRecordModel) TableName() string {
	return "purchase_record"
}

// 支付类型
const (
	PaymentKindStake    = "stake"    // 创建者质押
	PaymentKindPurchase = "purchase" // 买家购买
)
