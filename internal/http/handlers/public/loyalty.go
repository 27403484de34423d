package public

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/repository"
	"github.com/morimall/morimall/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyLoyalty 获取当前客户积分卡与可抵扣额度
func (h *Handler) GetMyLoyalty(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	quote, err := h.LoyaltyService.PrepareRedemption(uid)
	if err != nil {
		respondRedeemError(c, err)
		return
	}
	response.Success(c, quote)
}

// GetMyLoyaltyHistory 获取当前客户积分流水
func (h *Handler) GetMyLoyaltyHistory(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	card, err := h.LoyaltyService.CardForCustomer(uid)
	if err != nil {
		respondRedeemError(c, err)
		return
	}
	if card == nil {
		respondError(c, response.CodeNotFound, "error.loyalty_card_not_found", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	entries, total, err := h.LoyaltyService.History(repository.LoyaltyHistoryListFilter{
		Page:     page,
		PageSize: pageSize,
		CardID:   card.ID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, entries, pagination)
}

// PrepareRedeem 校验订单可抵扣并返回预估
func (h *Handler) PrepareRedeem(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	quote, err := h.LoyaltyService.PrepareOrderRedemption(uint(orderID), uid)
	if err != nil {
		respondRedeemError(c, err)
		return
	}
	response.Success(c, quote)
}

// RedeemPointsRequest 订单积分抵扣请求
type RedeemPointsRequest struct {
	Points float64 `json:"points" binding:"required"`
}

// RedeemPoints 在指定订单上抵扣积分
func (h *Handler) RedeemPoints(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req RedeemPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.LoyaltyService.ApplyRedemption(service.ApplyRedemptionInput{
		OrderID:    uint(orderID),
		CustomerID: uid,
		Points:     req.Points,
	})
	if err != nil {
		respondRedeemError(c, err)
		return
	}
	response.Success(c, result)
}

// legacyRedeemRequest 旧版抵扣请求
// 历史客户端会把 points 作为字符串提交，无法解析时按 0 处理
type legacyRedeemRequest struct {
	OrderID uint            `json:"order_id" binding:"required"`
	Points  json.RawMessage `json:"points"`
}

func (r legacyRedeemRequest) points() float64 {
	raw := strings.TrimSpace(string(r.Points))
	if raw == "" || raw == "null" {
		return 0
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(r.Points, &s); err != nil {
			return 0
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return value
	}
	var value float64
	if err := json.Unmarshal(r.Points, &value); err != nil {
		return 0
	}
	return value
}

// RedeemPointsLegacy 旧版积分抵扣入口，订单号放在请求体中
func (h *Handler) RedeemPointsLegacy(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req legacyRedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.LoyaltyService.ApplyRedemption(service.ApplyRedemptionInput{
		OrderID:    req.OrderID,
		CustomerID: uid,
		Points:     req.points(),
	})
	if err != nil {
		respondRedeemError(c, err)
		return
	}
	response.Success(c, result)
}
