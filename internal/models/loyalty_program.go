package models

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyProgram 积分计划表
type LoyaltyProgram struct {
	ID          uint           `gorm:"primarykey" json:"id"`                        // 主键
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`            // 计划名称
	ProgramType string         `gorm:"index;not null;default:loyalty" json:"program_type"` // 计划类型
	PointsName  string         `gorm:"not null;default:Points" json:"points_name"`  // 积分单位名称
	Active      bool           `gorm:"index;not null;default:true" json:"active"`   // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (LoyaltyProgram) TableName() string {
	return "loyalty_programs"
}
