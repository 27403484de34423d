package admin

import (
	"strconv"
	"strings"

	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/repository"
	"github.com/morimall/morimall/internal/service"

	"github.com/gin-gonic/gin"
)

// AdjustPointsRequest 积分调整请求
type AdjustPointsRequest struct {
	CustomerID  uint    `json:"customer_id" binding:"required"`
	Points      float64 `json:"points" binding:"required"`
	Description string  `json:"description"`
}

// AdjustLoyaltyPoints 管理端调整客户积分
func (h *Handler) AdjustLoyaltyPoints(c *gin.Context) {
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Manual adjustment"
	}

	card, err := h.LoyaltyService.AdjustPoints(req.CustomerID, req.Points, description)
	if err != nil {
		respondLoyaltyAdminError(c, err)
		return
	}
	response.Success(c, card)
}

// GetLoyaltyCard 查询客户积分卡
func (h *Handler) GetLoyaltyCard(c *gin.Context) {
	customerID, err := strconv.ParseUint(c.Param("customer_id"), 10, 64)
	if err != nil || customerID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	quote, err := h.LoyaltyService.PrepareRedemption(uint(customerID))
	if err != nil {
		respondLoyaltyAdminError(c, err)
		return
	}
	response.Success(c, quote)
}

// GetLoyaltyHistory 分页查询积分流水
func (h *Handler) GetLoyaltyHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.LoyaltyHistoryListFilter{
		Page:      page,
		PageSize:  pageSize,
		EntryType: c.Query("entry_type"),
	}
	if cardID, err := strconv.ParseUint(c.Query("card_id"), 10, 64); err == nil {
		filter.CardID = uint(cardID)
	}
	if orderID, err := strconv.ParseUint(c.Query("order_id"), 10, 64); err == nil {
		filter.OrderID = uint(orderID)
	}

	entries, total, err := h.LoyaltyService.History(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, entries, pagination)
}

func respondLoyaltyAdminError(c *gin.Context, err error) {
	switch {
	case err == service.ErrCustomerNotFound:
		respondError(c, response.CodeNotFound, "error.customer_not_found", nil)
	case err == service.ErrLoyaltyCardNotFound, err == service.ErrLoyaltyProgramNotFound:
		respondError(c, response.CodeNotFound, "error.loyalty_card_not_found", nil)
	case err == service.ErrLoyaltyPointsInvalid:
		respondError(c, response.CodeBadRequest, "error.loyalty_amount_invalid", nil)
	case err == service.ErrLoyaltyPointsInsufficient:
		respondError(c, response.CodeBadRequest, "error.loyalty_points_insufficient", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
