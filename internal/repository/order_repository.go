package repository

import (
	"errors"
	"strings"

	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	GetByID(id uint) (*models.SalesOrder, error)
	GetByIDForUpdate(id uint) (*models.SalesOrder, error)
	GetByName(name string) (*models.SalesOrder, error)
	List(filter OrderListFilter) ([]models.SalesOrder, int64, error)
	ListCanceledUnreversed(limit int) ([]models.SalesOrder, error)
	Create(order *models.SalesOrder) error
	Update(order *models.SalesOrder) error
	CreateLine(line *models.SalesOrderLine) error
	GetRedeemLines(orderID uint) ([]models.SalesOrderLine, error)
	DeleteRedeemLines(orderID uint) error
	MarkRedeemReversed(orderID uint) error
	RecomputeAmountTotal(orderID uint) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 订单仓储实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// GetByID 按ID获取订单（带订单行）
func (r *GormOrderRepository) GetByID(id uint) (*models.SalesOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.SalesOrder
	if err := r.db.Preload("Lines").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 按ID加锁获取订单
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.SalesOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.SalesOrder
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByName 按订单编号获取订单（带订单行）
func (r *GormOrderRepository) GetByName(name string) (*models.SalesOrder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	var order models.SalesOrder
	if err := r.db.Preload("Lines").Where("name = ?", name).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 分页查询订单
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.SalesOrder, int64, error) {
	query := r.db.Model(&models.SalesOrder{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("name = ?", name)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.SalesOrder
	if err := query.Preload("Lines").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListCanceledUnreversed 查询已取消但尚未回冲积分的订单
func (r *GormOrderRepository) ListCanceledUnreversed(limit int) ([]models.SalesOrder, error) {
	query := r.db.Where("status = ? AND loyalty_redeem_reversed = ?", constants.OrderStatusCanceled, false).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.SalesOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.SalesOrder) error {
	return r.db.Create(order).Error
}

// Update 更新订单
func (r *GormOrderRepository) Update(order *models.SalesOrder) error {
	return r.db.Save(order).Error
}

// CreateLine 创建订单行
func (r *GormOrderRepository) CreateLine(line *models.SalesOrderLine) error {
	return r.db.Create(line).Error
}

// GetRedeemLines 获取订单的积分抵扣行
func (r *GormOrderRepository) GetRedeemLines(orderID uint) ([]models.SalesOrderLine, error) {
	if orderID == 0 {
		return []models.SalesOrderLine{}, nil
	}
	var lines []models.SalesOrderLine
	err := r.db.Where("order_id = ? AND is_loyalty_redeem_line = ?", orderID, true).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// DeleteRedeemLines 删除订单的积分抵扣行
func (r *GormOrderRepository) DeleteRedeemLines(orderID uint) error {
	if orderID == 0 {
		return nil
	}
	return r.db.Where("order_id = ? AND is_loyalty_redeem_line = ?", orderID, true).
		Delete(&models.SalesOrderLine{}).Error
}

// MarkRedeemReversed 标记订单积分已回冲，只更新标记列
func (r *GormOrderRepository) MarkRedeemReversed(orderID uint) error {
	if orderID == 0 {
		return nil
	}
	return r.db.Model(&models.SalesOrder{}).
		Where("id = ?", orderID).
		Update("loyalty_redeem_reversed", true).Error
}

// RecomputeAmountTotal 重算订单总额（按现存订单行）
func (r *GormOrderRepository) RecomputeAmountTotal(orderID uint) error {
	if orderID == 0 {
		return nil
	}
	return r.db.Model(&models.SalesOrder{}).
		Where("id = ?", orderID).
		Update("amount_total", r.db.Model(&models.SalesOrderLine{}).
			Where("order_id = ? AND deleted_at IS NULL", orderID).
			Select("COALESCE(SUM(price_unit * qty), 0)"),
		).Error
}
