package admin

import (
	"errors"
	"strconv"

	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/repository"
	"github.com/morimall/morimall/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminOrders 获取订单列表 (Admin)
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Name:     c.Query("name"),
	}
	if customerID, err := strconv.ParseUint(c.Query("customer_id"), 10, 64); err == nil {
		filter.CustomerID = uint(customerID)
	}

	orders, total, err := h.OrderService.ListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetAdminOrder 获取订单详情 (Admin)
func (h *Handler) GetAdminOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrder(uint(orderID))
	if err != nil {
		respondAdminOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// ConfirmAdminOrder 确认订单并生成发货单 (Admin)
func (h *Handler) ConfirmAdminOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.ConfirmOrder(uint(orderID))
	if err != nil {
		respondAdminOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelAdminOrder 取消订单并回冲积分 (Admin)
func (h *Handler) CancelAdminOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.CancelOrder(uint(orderID))
	if err != nil {
		respondAdminOrderError(c, err)
		return
	}
	response.Success(c, order)
}

func respondAdminOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
	case errors.Is(err, service.ErrOrderNotModifiable):
		respondError(c, response.CodeBadRequest, "error.order_not_modifiable", nil)
	case errors.Is(err, service.ErrOrderAlreadyCancel):
		respondError(c, response.CodeBadRequest, "error.order_already_canceled", nil)
	case errors.Is(err, service.ErrCustomerNotFound):
		respondError(c, response.CodeNotFound, "error.customer_not_found", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
