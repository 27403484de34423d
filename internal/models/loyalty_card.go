package models

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyCard 积分卡表（每个客户在一个计划下最多一张）
type LoyaltyCard struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                       // 主键
	ProgramID  uint           `gorm:"uniqueIndex:idx_loyalty_card_program_customer;not null" json:"program_id"` // 计划ID
	CustomerID uint           `gorm:"uniqueIndex:idx_loyalty_card_program_customer;not null" json:"customer_id"` // 客户ID
	Code       string         `gorm:"uniqueIndex;not null" json:"code"`                           // 卡号
	Points     float64        `gorm:"not null;default:0" json:"points"`                           // 当前积分余额
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Program *LoyaltyProgram `gorm:"foreignKey:ProgramID" json:"program,omitempty"` // 所属计划
}

// TableName 指定表名
func (LoyaltyCard) TableName() string {
	return "loyalty_cards"
}
