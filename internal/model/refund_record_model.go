package model

import (
	"time"
)

// RefundRecordModel 退款流水
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId    string `json:"project_id" gorm:"not null;index"`
	Address      string `json:"address" gorm:"not null"`
	Amount       int64  `json:"amount" gorm:"not null"`        // 退出台账的购买量
	BuyerShare   int64  `json:"buyer_share" gorm:"not null"`   // 退还买家部分
	CreatorShare int64  `json:"creator_share" gorm:"not null"` // 分账给创建者部分
}

// TableName 自定义表名
func (RefundRecordModel) TableName() string {
	return "refund_record"
}
