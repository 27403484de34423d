package repository

import (
	"errors"
	"strings"

	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryRepository 发货单数据访问接口
type DeliveryRepository interface {
	GetByID(id uint) (*models.DeliveryOrder, error)
	GetByIDForUpdate(id uint) (*models.DeliveryOrder, error)
	GetByName(name string) (*models.DeliveryOrder, error)
	GetByGdexCn(cn string) (*models.DeliveryOrder, error)
	List(filter DeliveryListFilter) ([]models.DeliveryOrder, int64, error)
	ListGdexSyncPending(limit int) ([]models.DeliveryOrder, error)
	Create(picking *models.DeliveryOrder) error
	Update(picking *models.DeliveryOrder) error
	CreateMove(move *models.StockMove) error
	WithTx(tx *gorm.DB) *GormDeliveryRepository
}

// GormDeliveryRepository GORM 发货单仓储实现
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository 创建发货单仓储
func NewDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeliveryRepository) WithTx(tx *gorm.DB) *GormDeliveryRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryRepository{db: tx}
}

// GetByID 按ID获取发货单（带货品明细与客户）
func (r *GormDeliveryRepository) GetByID(id uint) (*models.DeliveryOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var picking models.DeliveryOrder
	if err := r.db.Preload("Moves").Preload("Moves.Product").Preload("Customer").
		First(&picking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &picking, nil
}

// GetByIDForUpdate 按ID加锁获取发货单
func (r *GormDeliveryRepository) GetByIDForUpdate(id uint) (*models.DeliveryOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var picking models.DeliveryOrder
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&picking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &picking, nil
}

// GetByName 按编号获取发货单
func (r *GormDeliveryRepository) GetByName(name string) (*models.DeliveryOrder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	var picking models.DeliveryOrder
	if err := r.db.Preload("Moves").Preload("Customer").
		Where("name = ?", name).First(&picking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &picking, nil
}

// GetByGdexCn 按托运单号获取发货单
func (r *GormDeliveryRepository) GetByGdexCn(cn string) (*models.DeliveryOrder, error) {
	if strings.TrimSpace(cn) == "" {
		return nil, nil
	}
	var picking models.DeliveryOrder
	if err := r.db.Where("gdex_cn = ?", cn).First(&picking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &picking, nil
}

// List 分页查询发货单
func (r *GormDeliveryRepository) List(filter DeliveryListFilter) ([]models.DeliveryOrder, int64, error) {
	query := r.db.Model(&models.DeliveryOrder{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.GdexState != "" {
		query = query.Where("gdex_state = ?", filter.GdexState)
	}
	if cn := strings.TrimSpace(filter.GdexCn); cn != "" {
		query = query.Where("gdex_cn = ?", cn)
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

	var pickings []models.DeliveryOrder
	if err := query.Order("id DESC").Find(&pickings).Error; err != nil {
		return nil, 0, err
	}
	return pickings, total, nil
}

// ListGdexSyncPending 查询待同步物流状态的发货单
// 条件：已有托运单号、发货单未完成未取消、托运状态为 created 或 error
func (r *GormDeliveryRepository) ListGdexSyncPending(limit int) ([]models.DeliveryOrder, error) {
	query := r.db.
		Where("gdex_cn <> ''").
		Where("status NOT IN ?", []string{constants.PickingStatusDone, constants.PickingStatusCanceled}).
		Where("gdex_state IN ?", []string{constants.GdexStateCreated, constants.GdexStateError}).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var pickings []models.DeliveryOrder
	if err := query.Find(&pickings).Error; err != nil {
		return nil, err
	}
	return pickings, nil
}

// Create 创建发货单
func (r *GormDeliveryRepository) Create(picking *models.DeliveryOrder) error {
	return r.db.Create(picking).Error
}

// Update 更新发货单
func (r *GormDeliveryRepository) Update(picking *models.DeliveryOrder) error {
	return r.db.Save(picking).Error
}

// CreateMove 创建货品明细
func (r *GormDeliveryRepository) CreateMove(move *models.StockMove) error {
	return r.db.Create(move).Error
}
