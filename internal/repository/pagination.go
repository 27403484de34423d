package repository

import "gorm.io/gorm"

// applyPagination 给查询套用分页；pageSize 不合法时不限制结果集
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
