package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                       // 主键
	Name        string         `gorm:"index;not null" json:"name"`                 // 商品名称
	DefaultCode string         `gorm:"index;type:varchar(100)" json:"default_code"` // 内部编码
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 销售单价
	WeightKG    float64        `gorm:"not null;default:0" json:"weight_kg"`        // 单件重量（kg）
	Active      bool           `gorm:"index;not null;default:true" json:"active"`  // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// DisplayName 返回带编码前缀的展示名称
func (p Product) DisplayName() string {
	if p.DefaultCode == "" {
		return p.Name
	}
	return "[" + p.DefaultCode + "] " + p.Name
}
