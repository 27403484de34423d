package repository

import (
	"errors"

	"github.com/morimall/morimall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository 积分数据访问接口
type LoyaltyRepository interface {
	GetProgramByID(id uint) (*models.LoyaltyProgram, error)
	GetActiveProgram() (*models.LoyaltyProgram, error)
	CreateProgram(program *models.LoyaltyProgram) error
	GetCardByID(id uint) (*models.LoyaltyCard, error)
	GetCardByIDForUpdate(id uint) (*models.LoyaltyCard, error)
	GetCardByCustomer(programID, customerID uint) (*models.LoyaltyCard, error)
	GetCardByCustomerForUpdate(programID, customerID uint) (*models.LoyaltyCard, error)
	GetCardByCode(code string) (*models.LoyaltyCard, error)
	CreateCard(card *models.LoyaltyCard) error
	UpdateCard(card *models.LoyaltyCard) error
	CreateHistoryEntry(entry *models.LoyaltyHistoryEntry) error
	ListHistory(filter LoyaltyHistoryListFilter) ([]models.LoyaltyHistoryEntry, int64, error)
	ListEntriesForOrder(orderID uint, orderName string) ([]models.LoyaltyHistoryEntry, error)
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// GormLoyaltyRepository GORM 积分仓储实现
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository 创建积分仓储
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// GetProgramByID 按ID获取积分计划
func (r *GormLoyaltyRepository) GetProgramByID(id uint) (*models.LoyaltyProgram, error) {
	if id == 0 {
		return nil, nil
	}
	var program models.LoyaltyProgram
	if err := r.db.First(&program, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

// GetActiveProgram 获取当前启用的积分计划（取最早创建的一个）
func (r *GormLoyaltyRepository) GetActiveProgram() (*models.LoyaltyProgram, error) {
	var program models.LoyaltyProgram
	if err := r.db.Where("active = ?", true).Order("id ASC").First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

// CreateProgram 创建积分计划
func (r *GormLoyaltyRepository) CreateProgram(program *models.LoyaltyProgram) error {
	return r.db.Create(program).Error
}

// GetCardByID 按ID获取积分卡
func (r *GormLoyaltyRepository) GetCardByID(id uint) (*models.LoyaltyCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.LoyaltyCard
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetCardByIDForUpdate 按ID加锁获取积分卡
func (r *GormLoyaltyRepository) GetCardByIDForUpdate(id uint) (*models.LoyaltyCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.LoyaltyCard
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetCardByCustomer 按计划与客户获取积分卡
func (r *GormLoyaltyRepository) GetCardByCustomer(programID, customerID uint) (*models.LoyaltyCard, error) {
	if programID == 0 || customerID == 0 {
		return nil, nil
	}
	var card models.LoyaltyCard
	if err := r.db.Where("program_id = ? AND customer_id = ?", programID, customerID).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetCardByCustomerForUpdate 按计划与客户加锁获取积分卡
func (r *GormLoyaltyRepository) GetCardByCustomerForUpdate(programID, customerID uint) (*models.LoyaltyCard, error) {
	if programID == 0 || customerID == 0 {
		return nil, nil
	}
	var card models.LoyaltyCard
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("program_id = ? AND customer_id = ?", programID, customerID).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetCardByCode 按卡号获取积分卡
func (r *GormLoyaltyRepository) GetCardByCode(code string) (*models.LoyaltyCard, error) {
	if code == "" {
		return nil, nil
	}
	var card models.LoyaltyCard
	if err := r.db.Where("code = ?", code).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// CreateCard 创建积分卡
func (r *GormLoyaltyRepository) CreateCard(card *models.LoyaltyCard) error {
	return r.db.Create(card).Error
}

// UpdateCard 更新积分卡
func (r *GormLoyaltyRepository) UpdateCard(card *models.LoyaltyCard) error {
	return r.db.Save(card).Error
}

// CreateHistoryEntry 追加积分流水
func (r *GormLoyaltyRepository) CreateHistoryEntry(entry *models.LoyaltyHistoryEntry) error {
	return r.db.Create(entry).Error
}

// ListHistory 分页查询积分流水
func (r *GormLoyaltyRepository) ListHistory(filter LoyaltyHistoryListFilter) ([]models.LoyaltyHistoryEntry, int64, error) {
	query := r.db.Model(&models.LoyaltyHistoryEntry{})
	if filter.CardID != 0 {
		query = query.Where("card_id = ?", filter.CardID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.EntryType != "" {
		query = query.Where("entry_type = ?", filter.EntryType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var entries []models.LoyaltyHistoryEntry
	if err := query.Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListEntriesForOrder 收集某订单关联的全部积分流水
// 先按 order_id 匹配；早期数据仅在描述里带订单号，缺少发放或消耗记录时
// 依次回落到描述匹配并按ID去重
func (r *GormLoyaltyRepository) ListEntriesForOrder(orderID uint, orderName string) ([]models.LoyaltyHistoryEntry, error) {
	if orderID == 0 {
		return nil, nil
	}
	var entries []models.LoyaltyHistoryEntry
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	if orderName == "" {
		return entries, nil
	}

	seen := make(map[uint]bool, len(entries))
	hasIssued, hasUsed := false, false
	for _, entry := range entries {
		seen[entry.ID] = true
		hasIssued = hasIssued || entry.Issued > 0
		hasUsed = hasUsed || entry.Used > 0
	}

	merge := func(pattern string) error {
		var extra []models.LoyaltyHistoryEntry
		err := r.db.Where("order_id IS NULL AND description LIKE ?", pattern).
			Order("id ASC").Find(&extra).Error
		if err != nil {
			return err
		}
		for _, entry := range extra {
			if seen[entry.ID] {
				continue
			}
			seen[entry.ID] = true
			entries = append(entries, entry)
			hasIssued = hasIssued || entry.Issued > 0
			hasUsed = hasUsed || entry.Used > 0
		}
		return nil
	}

	if !hasIssued {
		if err := merge("%order " + orderName + "%"); err != nil {
			return nil, err
		}
	}
	if !hasUsed {
		if err := merge("%" + orderName + "%"); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
