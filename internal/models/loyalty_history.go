package models

import (
	"time"
)

// LoyaltyHistoryEntry 积分流水表（仅追加，不做更新删除）
type LoyaltyHistoryEntry struct {
	ID          uint      `gorm:"primarykey" json:"id"`                 // 主键
	CardID      uint      `gorm:"index;not null" json:"card_id"`        // 积分卡ID
	OrderID     *uint     `gorm:"index" json:"order_id,omitempty"`      // 关联订单ID
	EntryType   string    `gorm:"index;not null" json:"entry_type"`     // 流水类型（earn/redeem/revert/adjust）
	Description string    `gorm:"type:varchar(200)" json:"description"` // 流水描述
	Issued      float64   `gorm:"not null;default:0" json:"issued"`     // 发放积分
	Used        float64   `gorm:"not null;default:0" json:"used"`       // 消耗积分
	CreatedAt   time.Time `gorm:"index" json:"created_at"`              // 创建时间
}

// TableName 指定表名
func (LoyaltyHistoryEntry) TableName() string {
	return "loyalty_history_entries"
}
