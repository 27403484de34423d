package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/gdex"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/repository"

	"gorm.io/gorm"
)

// GdexService GDEX Prime 托运服务
type GdexService struct {
	db           *gorm.DB
	cfg          *config.Config
	deliveryRepo repository.DeliveryRepository
	customerRepo repository.CustomerRepository
}

// NewGdexService 创建 GDEX 托运服务
func NewGdexService(
	db *gorm.DB,
	cfg *config.Config,
	deliveryRepo repository.DeliveryRepository,
	customerRepo repository.CustomerRepository,
) *GdexService {
	return &GdexService{
		db:           db,
		cfg:          cfg,
		deliveryRepo: deliveryRepo,
		customerRepo: customerRepo,
	}
}

// clientConfig 构建 GDEX 客户端配置
func (s *GdexService) clientConfig() (*gdex.Config, error) {
	if s.cfg == nil {
		return nil, ErrGdexNotConfigured
	}
	clientCfg := &gdex.Config{
		BaseURL:   s.cfg.Gdex.BaseURL,
		APIToken:  s.cfg.Gdex.APIToken(),
		AccountNo: s.cfg.Gdex.AccountNo,
		Timeout:   time.Duration(s.cfg.Gdex.TimeoutSeconds) * time.Second,
	}
	clientCfg.Normalize()
	if err := clientCfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGdexNotConfigured, err)
	}
	return clientCfg, nil
}

// validateReady 校验发货单是否满足创建托运单条件
func (s *GdexService) validateReady(picking *models.DeliveryOrder) error {
	if picking.TypeCode != constants.PickingTypeOutgoing {
		return ErrPickingNotOutbound
	}
	if picking.Status == constants.PickingStatusDone || picking.Status == constants.PickingStatusCanceled {
		return ErrPickingInvalidState
	}
	if strings.TrimSpace(picking.GdexCn) != "" {
		return ErrPickingHasCN
	}

	var missing []string
	if strings.TrimSpace(picking.ReceiverName) == "" {
		missing = append(missing, "Receiver Name")
	}
	// 手机或固话有一个即可
	if strings.TrimSpace(picking.ReceiverMobile) == "" && strings.TrimSpace(picking.ReceiverPhone) == "" {
		missing = append(missing, "Receiver Mobile")
	}
	if strings.TrimSpace(picking.ReceiverEmail) == "" {
		missing = append(missing, "Receiver Email")
	}
	if strings.TrimSpace(picking.ReceiverStreet) == "" {
		missing = append(missing, "Receiver Address 1")
	}
	if strings.TrimSpace(picking.ReceiverZip) == "" {
		missing = append(missing, "Receiver Postcode")
	}
	if strings.TrimSpace(picking.ReceiverCity) == "" {
		missing = append(missing, "Receiver City")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrReceiverIncomplete, strings.Join(missing, ", "))
	}

	if strings.TrimSpace(picking.ReceiverCountry) != "Malaysia" {
		return fmt.Errorf("%w: receiver country must be Malaysia", ErrReceiverIncomplete)
	}
	return nil
}

// contentDescription 按货品明细拼装包裹描述
func contentDescription(picking *models.DeliveryOrder) string {
	var names []string
	for _, move := range picking.Moves {
		if move.Product != nil {
			names = append(names, move.Product.DisplayName())
			continue
		}
		if move.Description != "" {
			names = append(names, move.Description)
		}
	}
	return strings.TrimSpace(strings.Join(names, ", "))
}

// CreateConsignment 为发货单创建 GDEX 托运单
func (s *GdexService) CreateConsignment(ctx context.Context, pickingID uint) (*models.DeliveryOrder, error) {
	clientCfg, err := s.clientConfig()
	if err != nil {
		return nil, err
	}

	picking, err := s.deliveryRepo.GetByID(pickingID)
	if err != nil {
		return nil, err
	}
	if picking == nil {
		return nil, ErrPickingNotFound
	}
	if err := s.validateReady(picking); err != nil {
		return nil, err
	}

	mobile := strings.TrimSpace(picking.ReceiverMobile)
	if mobile == "" {
		mobile = strings.TrimSpace(picking.ReceiverPhone)
	}
	input := gdex.ConsignmentInput{
		OrderID:        picking.Name,
		ReceiverName:   picking.ReceiverName,
		ReceiverMobile: mobile,
		ReceiverEmail:  picking.ReceiverEmail,
		Address1:       picking.ReceiverStreet,
		Address2:       picking.ReceiverStreet2,
		Postcode:       picking.ReceiverZip,
		City:           picking.ReceiverCity,
		State:          picking.ReceiverState,
		Content:        contentDescription(picking),
	}

	result, err := gdex.CreateConsignment(ctx, clientCfg, input)
	if err != nil {
		picking.GdexState = constants.GdexStateError
		picking.GdexError = err.Error()
		if updateErr := s.deliveryRepo.Update(picking); updateErr != nil {
			logger.Errorw("gdex_error_state_save_failed", "picking_id", picking.ID, "error", updateErr)
		}
		logger.Warnw("gdex_create_consignment_failed", "picking", picking.Name, "error", err)
		return nil, err
	}

	picking.GdexCn = result.CN
	picking.GdexState = constants.GdexStateCreated
	picking.GdexError = ""
	if err := s.deliveryRepo.Update(picking); err != nil {
		return nil, err
	}

	logger.Infow("gdex_consignment_created", "picking", picking.Name, "cn", result.CN)
	return picking, nil
}

// BatchFailure 批量创建失败明细
type BatchFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult 批量创建结果
type BatchResult struct {
	Created []string       `json:"created"`
	Failed  []BatchFailure `json:"failed"`
	Summary string         `json:"summary"`
}

// CreateConsignmentBatch 批量创建托运单，逐单处理并汇总结果
func (s *GdexService) CreateConsignmentBatch(ctx context.Context, pickingIDs []uint) (*BatchResult, error) {
	result := &BatchResult{Created: []string{}, Failed: []BatchFailure{}}
	for _, id := range pickingIDs {
		picking, err := s.CreateConsignment(ctx, id)
		if err != nil {
			name := fmt.Sprintf("#%d", id)
			if existing, lookupErr := s.deliveryRepo.GetByID(id); lookupErr == nil && existing != nil {
				name = existing.Name
			}
			result.Failed = append(result.Failed, BatchFailure{Name: name, Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, picking.Name)
	}
	result.Summary = fmt.Sprintf("Created %d AWB, Failed %d", len(result.Created), len(result.Failed))
	return result, nil
}

// SyncStatus 同步单个发货单的物流状态
func (s *GdexService) SyncStatus(ctx context.Context, pickingID uint) (*models.DeliveryOrder, error) {
	clientCfg, err := s.clientConfig()
	if err != nil {
		return nil, err
	}

	picking, err := s.deliveryRepo.GetByID(pickingID)
	if err != nil {
		return nil, err
	}
	if picking == nil {
		return nil, ErrPickingNotFound
	}
	if strings.TrimSpace(picking.GdexCn) == "" {
		return nil, ErrPickingNoCN
	}

	now := time.Now()
	track, err := gdex.TrackLastStatus(ctx, clientCfg, picking.GdexCn)
	if err != nil {
		picking.GdexSyncedAt = &now
		picking.GdexError = err.Error()
		picking.GdexState = constants.GdexStateError
		if updateErr := s.deliveryRepo.Update(picking); updateErr != nil {
			logger.Errorw("gdex_error_state_save_failed", "picking_id", picking.ID, "error", updateErr)
		}
		logger.Warnw("gdex_tracking_failed", "picking", picking.Name, "error", err)
		return nil, err
	}

	picking.GdexLastStatus = track.Status
	picking.GdexStatusRaw = models.JSON(track.Raw)
	picking.GdexSyncedAt = &now
	picking.GdexError = ""
	if gdex.IsDelivered(track.Status, track.Body) {
		picking.GdexState = constants.GdexStateDelivered
	}
	if err := s.deliveryRepo.Update(picking); err != nil {
		return nil, err
	}

	logger.Infow("gdex_tracking_synced",
		"picking", picking.Name,
		"cn", picking.GdexCn,
		"status", track.Status,
	)
	return picking, nil
}

// SyncAllPending 同步所有待更新的发货单，返回成功与失败数量
func (s *GdexService) SyncAllPending(ctx context.Context) (int, int, error) {
	pickings, err := s.deliveryRepo.ListGdexSyncPending(0)
	if err != nil {
		return 0, 0, err
	}
	synced, failed := 0, 0
	for i := range pickings {
		if _, err := s.SyncStatus(ctx, pickings[i].ID); err != nil {
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// ListSyncPending 查询待同步的发货单
func (s *GdexService) ListSyncPending(limit int) ([]models.DeliveryOrder, error) {
	return s.deliveryRepo.ListGdexSyncPending(limit)
}

// GetPicking 查询发货单
func (s *GdexService) GetPicking(pickingID uint) (*models.DeliveryOrder, error) {
	picking, err := s.deliveryRepo.GetByID(pickingID)
	if err != nil {
		return nil, err
	}
	if picking == nil {
		return nil, ErrPickingNotFound
	}
	return picking, nil
}

// ListPickings 分页查询发货单
func (s *GdexService) ListPickings(filter repository.DeliveryListFilter) ([]models.DeliveryOrder, int64, error) {
	return s.deliveryRepo.List(filter)
}
