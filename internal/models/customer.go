package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户表
type Customer struct {
	ID           uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name         string         `gorm:"not null" json:"name"`                   // 客户姓名
	Email        string         `gorm:"uniqueIndex" json:"email"`               // 邮箱
	Mobile       string         `gorm:"type:varchar(40)" json:"mobile"`         // 手机号
	Phone        string         `gorm:"type:varchar(40)" json:"phone"`          // 固定电话
	PasswordHash string         `gorm:"type:varchar(200)" json:"-"`             // 密码哈希
	Status       string         `gorm:"index;not null;default:active" json:"status"` // 客户状态
	Street       string         `gorm:"type:varchar(200)" json:"street"`        // 地址行一
	Street2      string         `gorm:"type:varchar(200)" json:"street2"`       // 地址行二
	City         string         `gorm:"type:varchar(100)" json:"city"`          // 城市
	Zip          string         `gorm:"type:varchar(20)" json:"zip"`            // 邮编
	StateName    string         `gorm:"type:varchar(100)" json:"state_name"`    // 州/省
	CountryName  string         `gorm:"type:varchar(100)" json:"country_name"`  // 国家
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
