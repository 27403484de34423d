package public

import (
	"strconv"

	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/repository"
	"github.com/morimall/morimall/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderLineRequest 下单商品行请求
type OrderLineRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Qty       float64 `json:"qty"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Currency string             `json:"currency"`
	Lines    []OrderLineRequest `json:"lines" binding:"required"`
}

// CreateOrder 客户创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	lines := make([]service.CreateOrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.CreateOrderLineInput{
			ProductID: line.ProductID,
			Qty:       line.Qty,
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		CustomerID: uid,
		Currency:   req.Currency,
		Lines:      lines,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// ListMyOrders 获取当前客户订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: uid,
		Status:     c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetMyOrder 获取当前客户订单详情
func (h *Handler) GetMyOrder(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrderForCustomer(uint(orderID), uid)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelMyOrder 客户取消订单，抵扣的积分随单回冲
func (h *Handler) CancelMyOrder(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if _, err := h.OrderService.GetOrderForCustomer(uint(orderID), uid); err != nil {
		respondOrderError(c, err)
		return
	}

	order, err := h.OrderService.CancelOrder(uint(orderID))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// GetMyOrderShipping 获取订单发货单与最新物流状态
func (h *Handler) GetMyOrderShipping(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if _, err := h.OrderService.GetOrderForCustomer(uint(orderID), uid); err != nil {
		respondOrderError(c, err)
		return
	}

	pickings, _, err := h.GdexService.ListPickings(repository.DeliveryListFilter{OrderID: uint(orderID)})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	views := make([]gin.H, 0, len(pickings))
	for i := range pickings {
		p := &pickings[i]
		views = append(views, gin.H{
			"id":          p.ID,
			"name":        p.Name,
			"status":      p.Status,
			"tracking_no": p.GdexCn,
			"gdex_state":  p.GdexState,
			"last_status": p.GdexLastStatus,
			"synced_at":   p.GdexSyncedAt,
		})
	}
	response.Success(c, views)
}
