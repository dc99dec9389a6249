package model

import (
	"time"
)

// ProjectRecordModel 项目归档记录。引擎内存注册表是状态机的权威数据源，
// 本表只保留声明与终态信息供历史查询。
type ProjectRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId      string `json:"project_id" gorm:"uniqueIndex;not null"`
	Creator        string `json:"creator" gorm:"not null;index"`
	TokenAddress   string `json:"token_address"`
	Description    string `json:"description" gorm:"type:text"`
	StakeRate      int64  `json:"stake_rate" gorm:"not null"`
	MaxSellable    int64  `json:"max_sellable" gorm:"not null"`
	MilestoneCount int    `json:"milestone_count" gorm:"not null"`
	ThresholdIndex int    `json:"threshold_index" gorm:"not null"`
	Cooldown       int64  `json:"cooldown"`
	Public         bool   `json:"public"`
	Status         string `json:"status" gorm:"default:'pending'"` // pending, ongoing, finished, cancelled
}

// TableName 自定义表名
func (ProjectRecordModel) TableName() string {
	return "project_record"
}
