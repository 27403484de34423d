package service

import (
	"fmt"
	"strings"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 订单可抵扣的状态集合
var redeemableOrderStatuses = map[string]bool{
	constants.OrderStatusDraft:     true,
	constants.OrderStatusConfirmed: true,
}

// LoyaltyService 积分抵扣服务
type LoyaltyService struct {
	db          *gorm.DB
	cfg         *config.Config
	loyaltyRepo repository.LoyaltyRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewLoyaltyService 创建积分抵扣服务
func NewLoyaltyService(
	db *gorm.DB,
	cfg *config.Config,
	loyaltyRepo repository.LoyaltyRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) *LoyaltyService {
	return &LoyaltyService{
		db:          db,
		cfg:         cfg,
		loyaltyRepo: loyaltyRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// RmPerPoint 返回每积分抵扣金额，配置缺失或非法时回退 0.01
func (s *LoyaltyService) RmPerPoint() float64 {
	rate := 0.01
	if s.cfg != nil && s.cfg.Loyalty.RmPerPoint > 0 {
		rate = s.cfg.Loyalty.RmPerPoint
	}
	return rate
}

// RedeemAmount 计算抵扣金额：max(points,0) * max(rate,0)
func RedeemAmount(points, rmPerPoint float64) models.Money {
	if points < 0 {
		points = 0
	}
	if rmPerPoint < 0 {
		rmPerPoint = 0
	}
	amount := decimal.NewFromFloat(points).Mul(decimal.NewFromFloat(rmPerPoint))
	return models.NewMoneyFromDecimal(amount)
}

// RedemptionQuote 抵扣预估
type RedemptionQuote struct {
	CardID          uint         `json:"card_id"`
	AvailablePoints float64      `json:"available_points"`
	RmPerPoint      float64      `json:"rm_per_point"`
	MaxAmount       models.Money `json:"max_amount"`
}

// PrepareRedemption 计算客户当前可抵扣额度
func (s *LoyaltyService) PrepareRedemption(customerID uint) (*RedemptionQuote, error) {
	card, err := s.CardForCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrLoyaltyCardNotFound
	}
	rate := s.RmPerPoint()
	return &RedemptionQuote{
		CardID:          card.ID,
		AvailablePoints: card.Points,
		RmPerPoint:      rate,
		MaxAmount:       RedeemAmount(card.Points, rate),
	}, nil
}

// PrepareOrderRedemption 校验订单可抵扣后返回预估
func (s *LoyaltyService) PrepareOrderRedemption(orderID, customerID uint) (*RedemptionQuote, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	if !redeemableOrderStatuses[order.Status] {
		return nil, ErrOrderNotModifiable
	}
	redeemLines, err := s.orderRepo.GetRedeemLines(order.ID)
	if err != nil {
		return nil, err
	}
	if len(redeemLines) > 0 {
		return nil, ErrOrderAlreadyRedeemed
	}
	quote, err := s.PrepareRedemption(customerID)
	if err != nil {
		return nil, err
	}
	if quote.AvailablePoints <= 0 {
		return nil, ErrLoyaltyPointsInsufficient
	}
	return quote, nil
}

// CardForCustomer 获取客户在当前启用计划下的积分卡
func (s *LoyaltyService) CardForCustomer(customerID uint) (*models.LoyaltyCard, error) {
	if customerID == 0 {
		return nil, ErrCustomerNotFound
	}
	program, err := s.loyaltyRepo.GetActiveProgram()
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, ErrLoyaltyProgramNotFound
	}
	return s.loyaltyRepo.GetCardByCustomer(program.ID, customerID)
}

// GetOrCreateCard 获取或创建客户积分卡
func (s *LoyaltyService) GetOrCreateCard(customerID uint) (*models.LoyaltyCard, error) {
	if customerID == 0 {
		return nil, ErrCustomerNotFound
	}
	program, err := s.loyaltyRepo.GetActiveProgram()
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, ErrLoyaltyProgramNotFound
	}
	card, err := s.loyaltyRepo.GetCardByCustomer(program.ID, customerID)
	if err != nil {
		return nil, err
	}
	if card != nil {
		return card, nil
	}
	card = &models.LoyaltyCard{
		ProgramID:  program.ID,
		CustomerID: customerID,
		Code:       "LC-" + strings.ToUpper(uuid.NewString()[:8]),
		Points:     0,
	}
	if err := s.loyaltyRepo.CreateCard(card); err != nil {
		return nil, err
	}
	return card, nil
}

// ApplyRedemptionInput 应用积分抵扣输入
type ApplyRedemptionInput struct {
	OrderID    uint
	CustomerID uint    // 非 0 时校验订单归属
	Points     float64 // 抵扣积分数
}

// RedemptionResult 应用积分抵扣结果
type RedemptionResult struct {
	Order          *models.SalesOrder `json:"order"`
	PointsRedeemed float64            `json:"points_redeemed"`
	Amount         models.Money       `json:"amount"`
	RemainingPoints float64           `json:"remaining_points"`
}

// ApplyRedemption 在订单上应用积分抵扣
// 整个操作在单个事务内完成，积分卡行加锁，余额校验与扣减不可分离
func (s *LoyaltyService) ApplyRedemption(input ApplyRedemptionInput) (*RedemptionResult, error) {
	if input.Points <= 0 {
		return nil, ErrLoyaltyPointsInvalid
	}

	var result *RedemptionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		loyaltyRepo := s.loyaltyRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		order, err := orderRepo.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if input.CustomerID != 0 && order.CustomerID != input.CustomerID {
			return ErrOrderNotFound
		}
		if !redeemableOrderStatuses[order.Status] {
			return ErrOrderNotModifiable
		}

		program, err := loyaltyRepo.GetActiveProgram()
		if err != nil {
			return err
		}
		if program == nil {
			return ErrLoyaltyProgramNotFound
		}
		card, err := loyaltyRepo.GetCardByCustomerForUpdate(program.ID, order.CustomerID)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrLoyaltyCardNotFound
		}
		if input.Points > card.Points {
			return ErrLoyaltyPointsInsufficient
		}

		product, err := s.findRedeemProduct(productRepo)
		if err != nil {
			return err
		}

		amount := RedeemAmount(input.Points, s.RmPerPoint())
		line := &models.SalesOrderLine{
			OrderID:             order.ID,
			ProductID:           &product.ID,
			Name:                fmt.Sprintf("Redeem %.0f loyalty points", input.Points),
			Qty:                 1,
			PriceUnit:           models.NewMoneyFromDecimal(amount.Neg()),
			IsLoyaltyRedeemLine: true,
		}
		if err := orderRepo.CreateLine(line); err != nil {
			return err
		}

		card.Points -= input.Points
		if err := loyaltyRepo.UpdateCard(card); err != nil {
			return err
		}

		entry := &models.LoyaltyHistoryEntry{
			CardID:      card.ID,
			OrderID:     &order.ID,
			EntryType:   constants.LoyaltyEntryTypeRedeem,
			Description: fmt.Sprintf("Redeem %.0f pts on order %s", input.Points, order.Name),
			Issued:      0,
			Used:        input.Points,
		}
		if err := loyaltyRepo.CreateHistoryEntry(entry); err != nil {
			return err
		}

		order.LoyaltyPointsRedeemed += input.Points
		order.LoyaltyCardID = &card.ID
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		if err := orderRepo.RecomputeAmountTotal(order.ID); err != nil {
			return err
		}

		fresh, err := orderRepo.GetByID(order.ID)
		if err != nil {
			return err
		}
		result = &RedemptionResult{
			Order:           fresh,
			PointsRedeemed:  input.Points,
			Amount:          amount,
			RemainingPoints: card.Points,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("loyalty_redeem_applied",
		"order_id", input.OrderID,
		"points", input.Points,
		"amount", result.Amount.String(),
	)
	return result, nil
}

// findRedeemProduct 查找积分抵扣商品
// 优先按内部编码（忽略大小写）查找，其次按名称精确查找
func (s *LoyaltyService) findRedeemProduct(productRepo repository.ProductRepository) (*models.Product, error) {
	product, err := productRepo.GetByDefaultCodeFold(constants.RedeemProductCode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		product, err = productRepo.GetByName(constants.RedeemProductName)
		if err != nil {
			return nil, err
		}
	}
	if product == nil {
		return nil, ErrRedeemProductNotFound
	}
	return product, nil
}

// ReverseOrderRedemption 回冲订单上的积分抵扣
// 幂等：已回冲的订单直接返回；无卡订单跳过并保留未回冲标记以便重试
func (s *LoyaltyService) ReverseOrderRedemption(orderID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.reverseInTx(tx, orderID)
	})
}

// 回冲流水的描述标记，也是重复回冲守卫的判定依据
const reverseMarker = "reverse redemption"

func isReversalEntry(entry models.LoyaltyHistoryEntry) bool {
	return entry.EntryType == constants.LoyaltyEntryTypeRevert ||
		strings.Contains(strings.ToLower(entry.Description), reverseMarker)
}

// reverseInTx 在给定事务内执行回冲，供订单取消与补偿任务共用
func (s *LoyaltyService) reverseInTx(tx *gorm.DB, orderID uint) error {
	orderRepo := s.orderRepo.WithTx(tx)
	loyaltyRepo := s.loyaltyRepo.WithTx(tx)

	order, err := orderRepo.GetByIDForUpdate(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.LoyaltyRedeemReversed {
		return nil
	}

	// 先收集流水再定位积分卡：早期数据可能缺 order.LoyaltyCardID
	entries, err := loyaltyRepo.ListEntriesForOrder(order.ID, order.Name)
	if err != nil {
		return err
	}
	var usedTotal, issuedTotal float64
	cardID := uint(0)
	if order.LoyaltyCardID != nil {
		cardID = *order.LoyaltyCardID
	}
	for _, entry := range entries {
		if isReversalEntry(entry) {
			// 已有回冲流水，补写标记即可
			return orderRepo.MarkRedeemReversed(order.ID)
		}
		usedTotal += entry.Used
		issuedTotal += entry.Issued
		if cardID == 0 {
			cardID = entry.CardID
		}
	}
	if usedTotal == 0 && issuedTotal == 0 {
		// 无任何积分往来，标记后补偿任务不再重试
		return orderRepo.MarkRedeemReversed(order.ID)
	}
	if cardID == 0 {
		// 有流水但无法定位积分卡：保留未回冲标记，等待人工或补偿任务处理
		logger.Warnw("loyalty_reverse_card_missing", "order_id", order.ID)
		return nil
	}

	card, err := loyaltyRepo.GetCardByIDForUpdate(cardID)
	if err != nil {
		return err
	}
	if card == nil {
		logger.Warnw("loyalty_reverse_card_missing", "order_id", order.ID, "card_id", cardID)
		return nil
	}

	// 净额回冲：消耗加回，发放收回，一次写入
	net := usedTotal - issuedTotal
	card.Points += net
	if err := loyaltyRepo.UpdateCard(card); err != nil {
		return err
	}
	// 回冲流水镜像原始流水，汇总后恰好抵消
	entry := &models.LoyaltyHistoryEntry{
		CardID:      card.ID,
		OrderID:     &order.ID,
		EntryType:   constants.LoyaltyEntryTypeRevert,
		Description: fmt.Sprintf("Reverse redemption for order %s", order.Name),
		Issued:      usedTotal,
		Used:        issuedTotal,
	}
	if err := loyaltyRepo.CreateHistoryEntry(entry); err != nil {
		return err
	}

	if err := orderRepo.DeleteRedeemLines(order.ID); err != nil {
		return err
	}
	if err := orderRepo.MarkRedeemReversed(order.ID); err != nil {
		return err
	}
	if err := orderRepo.RecomputeAmountTotal(order.ID); err != nil {
		return err
	}

	logger.Infow("loyalty_redeem_reversed",
		"order_id", order.ID,
		"card_id", card.ID,
		"points", net,
	)
	return nil
}

// AdjustPoints 管理端调整积分（正数发放，负数扣减）
func (s *LoyaltyService) AdjustPoints(customerID uint, points float64, description string) (*models.LoyaltyCard, error) {
	if points == 0 {
		return nil, ErrLoyaltyPointsInvalid
	}
	card, err := s.GetOrCreateCard(customerID)
	if err != nil {
		return nil, err
	}

	var updated *models.LoyaltyCard
	err = s.db.Transaction(func(tx *gorm.DB) error {
		loyaltyRepo := s.loyaltyRepo.WithTx(tx)
		locked, err := loyaltyRepo.GetCardByIDForUpdate(card.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrLoyaltyCardNotFound
		}
		if points < 0 && locked.Points+points < 0 {
			return ErrLoyaltyPointsInsufficient
		}
		locked.Points += points
		if err := loyaltyRepo.UpdateCard(locked); err != nil {
			return err
		}
		entry := &models.LoyaltyHistoryEntry{
			CardID:      locked.ID,
			EntryType:   constants.LoyaltyEntryTypeAdjust,
			Description: strings.TrimSpace(description),
		}
		if points > 0 {
			entry.Issued = points
		} else {
			entry.Used = -points
		}
		if err := loyaltyRepo.CreateHistoryEntry(entry); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("loyalty_points_adjusted", "customer_id", customerID, "points", points)
	return updated, nil
}

// History 查询积分流水
func (s *LoyaltyService) History(filter repository.LoyaltyHistoryListFilter) ([]models.LoyaltyHistoryEntry, int64, error) {
	return s.loyaltyRepo.ListHistory(filter)
}
