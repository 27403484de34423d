package models

import (
	"time"

	"gorm.io/gorm"
)

// SalesOrder 销售订单表
type SalesOrder struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                           // 主键
	Name                  string         `gorm:"uniqueIndex;not null" json:"name"`                               // 订单编号
	CustomerID            uint           `gorm:"index;not null" json:"customer_id"`                              // 客户ID
	Status                string         `gorm:"index;not null;default:draft" json:"status"`                     // 订单状态（draft/sale/done/cancel）
	Currency              string         `gorm:"not null;default:MYR" json:"currency"`                           // 币种
	AmountTotal           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount_total"`      // 订单总额
	LoyaltyPointsRedeemed float64        `gorm:"not null;default:0" json:"loyalty_points_redeemed"`              // 已抵扣积分数
	LoyaltyCardID         *uint          `gorm:"index" json:"loyalty_card_id,omitempty"`                         // 抵扣积分卡ID
	LoyaltyRedeemReversed bool           `gorm:"not null;default:false" json:"loyalty_redeem_reversed"`          // 抵扣是否已回冲
	ConfirmedAt           *time.Time     `gorm:"index" json:"confirmed_at,omitempty"`                            // 确认时间
	CanceledAt            *time.Time     `gorm:"index" json:"canceled_at,omitempty"`                             // 取消时间
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	Customer *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"` // 客户
	Lines    []SalesOrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`       // 订单行
	Pickings []DeliveryOrder  `gorm:"foreignKey:OrderID" json:"pickings,omitempty"`    // 发货单
}

// TableName 指定表名
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// SalesOrderLine 销售订单行表
type SalesOrderLine struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderID             uint           `gorm:"index;not null" json:"order_id"`                            // 订单ID
	ProductID           *uint          `gorm:"index" json:"product_id,omitempty"`                         // 商品ID
	Name                string         `gorm:"not null" json:"name"`                                      // 行描述
	Qty                 float64        `gorm:"not null;default:1" json:"qty"`                             // 数量
	PriceUnit           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_unit"`   // 单价（抵扣行为负数）
	IsLoyaltyRedeemLine bool           `gorm:"index;not null;default:false" json:"is_loyalty_redeem_line"` // 是否积分抵扣行
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 商品
}

// TableName 指定表名
func (SalesOrderLine) TableName() string {
	return "sales_order_lines"
}

// Subtotal 返回行小计
func (l SalesOrderLine) Subtotal() Money {
	return NewMoneyFromDecimal(l.PriceUnit.Mul(NewMoneyFromFloat(l.Qty).Decimal))
}
