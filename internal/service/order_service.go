package service

import (
	"fmt"
	"time"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 销售订单服务
type OrderService struct {
	db           *gorm.DB
	cfg          *config.Config
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	deliveryRepo repository.DeliveryRepository
	loyaltySvc   *LoyaltyService
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	cfg *config.Config,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	deliveryRepo repository.DeliveryRepository,
	loyaltySvc *LoyaltyService,
) *OrderService {
	return &OrderService{
		db:           db,
		cfg:          cfg,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		deliveryRepo: deliveryRepo,
		loyaltySvc:   loyaltySvc,
	}
}

// CreateOrderLineInput 创建订单行输入
type CreateOrderLineInput struct {
	ProductID uint    `json:"product_id"`
	Qty       float64 `json:"qty"`
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	CustomerID uint                   `json:"customer_id"`
	Currency   string                 `json:"currency"`
	Lines      []CreateOrderLineInput `json:"lines"`
}

// CreateOrder 创建草稿订单
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.SalesOrder, error) {
	if len(input.Lines) == 0 {
		return nil, ErrOrderInvalidLines
	}
	customer, err := s.customerRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	currency := input.Currency
	if currency == "" {
		currency = "MYR"
	}

	var created *models.SalesOrder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		order := &models.SalesOrder{
			Name:       "S-PENDING",
			CustomerID: customer.ID,
			Status:     constants.OrderStatusDraft,
			Currency:   currency,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		order.Name = fmt.Sprintf("S%05d", order.ID)

		total := decimal.Zero
		for _, lineInput := range input.Lines {
			product, err := productRepo.GetByID(lineInput.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.Active {
				return ErrOrderInvalidLines
			}
			qty := lineInput.Qty
			if qty <= 0 {
				qty = 1
			}
			line := &models.SalesOrderLine{
				OrderID:   order.ID,
				ProductID: &product.ID,
				Name:      product.DisplayName(),
				Qty:       qty,
				PriceUnit: product.Price,
			}
			if err := orderRepo.CreateLine(line); err != nil {
				return err
			}
			total = total.Add(product.Price.Mul(decimal.NewFromFloat(qty)))
		}

		order.AmountTotal = models.NewMoneyFromDecimal(total)
		if err := orderRepo.Update(order); err != nil {
			return err
		}

		fresh, err := orderRepo.GetByID(order.ID)
		if err != nil {
			return err
		}
		created = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_created", "order_id", created.ID, "name", created.Name, "customer_id", customer.ID)
	return created, nil
}

// GetOrder 查询订单
func (s *OrderService) GetOrder(orderID uint) (*models.SalesOrder, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderForCustomer 查询客户自己的订单
func (s *OrderService) GetOrderForCustomer(orderID, customerID uint) (*models.SalesOrder, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if customerID != 0 && order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 分页查询订单
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.SalesOrder, int64, error) {
	return s.orderRepo.List(filter)
}

// ConfirmOrder 确认订单并生成发货单
func (s *OrderService) ConfirmOrder(orderID uint) (*models.SalesOrder, error) {
	var confirmed *models.SalesOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		deliveryRepo := s.deliveryRepo.WithTx(tx)
		customerRepo := s.customerRepo.WithTx(tx)

		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status != constants.OrderStatusDraft {
			return ErrOrderNotModifiable
		}

		customer, err := customerRepo.GetByID(order.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return ErrCustomerNotFound
		}

		now := time.Now()
		order.Status = constants.OrderStatusConfirmed
		order.ConfirmedAt = &now
		if err := orderRepo.Update(order); err != nil {
			return err
		}

		picking := &models.DeliveryOrder{
			Name:            "WH/OUT/PENDING",
			OrderID:         &order.ID,
			CustomerID:      customer.ID,
			TypeCode:        constants.PickingTypeOutgoing,
			Status:          constants.PickingStatusAssigned,
			ReceiverName:    customer.Name,
			ReceiverMobile:  customer.Mobile,
			ReceiverPhone:   customer.Phone,
			ReceiverEmail:   customer.Email,
			ReceiverStreet:  customer.Street,
			ReceiverStreet2: customer.Street2,
			ReceiverCity:    customer.City,
			ReceiverZip:     customer.Zip,
			ReceiverState:   customer.StateName,
			ReceiverCountry: customer.CountryName,
			GdexState:       constants.GdexStateDraft,
		}
		if err := deliveryRepo.Create(picking); err != nil {
			return err
		}
		picking.Name = fmt.Sprintf("WH/OUT/%05d", picking.ID)
		if err := deliveryRepo.Update(picking); err != nil {
			return err
		}

		lines, err := orderRepo.GetByID(order.ID)
		if err != nil {
			return err
		}
		for _, line := range lines.Lines {
			if line.IsLoyaltyRedeemLine {
				continue
			}
			move := &models.StockMove{
				PickingID:   picking.ID,
				ProductID:   line.ProductID,
				Description: line.Name,
				Qty:         line.Qty,
			}
			if err := deliveryRepo.CreateMove(move); err != nil {
				return err
			}
		}

		confirmed = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_confirmed", "order_id", orderID)
	return confirmed, nil
}

// CancelOrder 取消订单并回冲积分抵扣
// 取消与回冲在同一事务内完成；回冲失败不阻断取消时交由补偿任务重试
func (s *OrderService) CancelOrder(orderID uint) (*models.SalesOrder, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		deliveryRepo := s.deliveryRepo.WithTx(tx)

		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status == constants.OrderStatusCanceled {
			return ErrOrderAlreadyCancel
		}
		if order.Status == constants.OrderStatusDone {
			return ErrOrderNotModifiable
		}

		now := time.Now()
		order.Status = constants.OrderStatusCanceled
		order.CanceledAt = &now
		if err := orderRepo.Update(order); err != nil {
			return err
		}

		// 未完成的发货单随单取消
		pickings, _, err := deliveryRepo.List(repository.DeliveryListFilter{OrderID: order.ID})
		if err != nil {
			return err
		}
		for i := range pickings {
			picking := &pickings[i]
			if picking.Status == constants.PickingStatusDone || picking.Status == constants.PickingStatusCanceled {
				continue
			}
			picking.Status = constants.PickingStatusCanceled
			if err := deliveryRepo.Update(picking); err != nil {
				return err
			}
		}

		return s.loyaltySvc.reverseInTx(tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_canceled", "order_id", orderID)
	return s.GetOrder(orderID)
}
