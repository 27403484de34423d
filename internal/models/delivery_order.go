package models

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryOrder 发货单表
type DeliveryOrder struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                 // 主键
	Name            string         `gorm:"uniqueIndex;not null" json:"name"`                     // 发货单编号
	OrderID         *uint          `gorm:"index" json:"order_id,omitempty"`                      // 关联订单ID
	CustomerID      uint           `gorm:"index;not null" json:"customer_id"`                    // 收件客户ID
	TypeCode        string         `gorm:"index;not null;default:outgoing" json:"type_code"`     // 作业类型（outgoing/incoming/internal）
	Status          string         `gorm:"index;not null;default:draft" json:"status"`           // 发货单状态
	ReceiverName    string         `gorm:"type:varchar(100)" json:"receiver_name"`               // 收件人姓名
	ReceiverMobile  string         `gorm:"type:varchar(40)" json:"receiver_mobile"`              // 收件人手机号
	ReceiverPhone   string         `gorm:"type:varchar(40)" json:"receiver_phone"`               // 收件人固话
	ReceiverEmail   string         `gorm:"type:varchar(120)" json:"receiver_email"`              // 收件人邮箱
	ReceiverStreet  string         `gorm:"type:varchar(200)" json:"receiver_street"`             // 收件地址行一
	ReceiverStreet2 string         `gorm:"type:varchar(200)" json:"receiver_street2"`            // 收件地址行二
	ReceiverCity    string         `gorm:"type:varchar(100)" json:"receiver_city"`               // 收件城市
	ReceiverZip     string         `gorm:"type:varchar(20)" json:"receiver_zip"`                 // 收件邮编
	ReceiverState   string         `gorm:"type:varchar(100)" json:"receiver_state"`              // 收件州/省
	ReceiverCountry string         `gorm:"type:varchar(100)" json:"receiver_country"`            // 收件国家
	WeightKG        float64        `gorm:"not null;default:0" json:"weight_kg"`                  // 包裹重量（kg）
	GdexCn          string         `gorm:"index;type:varchar(60)" json:"gdex_cn"`                // GDEX 托运单号
	GdexState       string         `gorm:"index;not null;default:draft" json:"gdex_state"`       // GDEX 托运状态（draft/created/error/delivered）
	GdexLastStatus  string         `gorm:"type:varchar(120)" json:"gdex_last_status"`            // GDEX 最近一次物流状态
	GdexStatusRaw   JSON           `gorm:"type:json" json:"gdex_status_raw,omitempty"`           // GDEX 最近一次原始响应
	GdexError       string         `gorm:"type:varchar(500)" json:"gdex_error,omitempty"`        // GDEX 最近一次错误信息
	GdexSyncedAt    *time.Time     `gorm:"index" json:"gdex_synced_at,omitempty"`                // GDEX 最近同步时间
	DoneAt          *time.Time     `gorm:"index" json:"done_at,omitempty"`                       // 完成时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间

	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"` // 收件客户
	Order    *SalesOrder `gorm:"foreignKey:OrderID" json:"order,omitempty"`       // 关联订单
	Moves    []StockMove `gorm:"foreignKey:PickingID" json:"moves,omitempty"`     // 货品明细
}

// TableName 指定表名
func (DeliveryOrder) TableName() string {
	return "delivery_orders"
}

// StockMove 发货货品明细表
type StockMove struct {
	ID          uint           `gorm:"primarykey" json:"id"`               // 主键
	PickingID   uint           `gorm:"index;not null" json:"picking_id"`   // 发货单ID
	ProductID   *uint          `gorm:"index" json:"product_id,omitempty"`  // 商品ID
	Description string         `gorm:"not null" json:"description"`        // 货品描述
	Qty         float64        `gorm:"not null;default:1" json:"qty"`      // 数量
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 商品
}

// TableName 指定表名
func (StockMove) TableName() string {
	return "stock_moves"
}
