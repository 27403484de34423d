package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/morimall/morimall/internal/gdex"
	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/i18n"
	"github.com/morimall/morimall/internal/repository"
	"github.com/morimall/morimall/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPickings 获取发货单列表 (Admin)
func (h *Handler) GetAdminPickings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.DeliveryListFilter{
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
		GdexState: c.Query("gdex_state"),
		GdexCn:    c.Query("tracking_no"),
	}
	if orderID, err := strconv.ParseUint(c.Query("order_id"), 10, 64); err == nil {
		filter.OrderID = uint(orderID)
	}
	if customerID, err := strconv.ParseUint(c.Query("customer_id"), 10, 64); err == nil {
		filter.CustomerID = uint(customerID)
	}

	pickings, total, err := h.GdexService.ListPickings(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, pickings, pagination)
}

// GetAdminPicking 获取发货单详情 (Admin)
func (h *Handler) GetAdminPicking(c *gin.Context) {
	pickingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || pickingID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	picking, err := h.GdexService.GetPicking(uint(pickingID))
	if err != nil {
		respondGdexError(c, err)
		return
	}
	response.Success(c, picking)
}

// CreateGdexConsignment 为发货单创建 GDEX 托运单 (Admin)
func (h *Handler) CreateGdexConsignment(c *gin.Context) {
	pickingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || pickingID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	picking, err := h.GdexService.CreateConsignment(c.Request.Context(), uint(pickingID))
	if err != nil {
		respondGdexError(c, err)
		return
	}
	response.Success(c, picking)
}

// BatchConsignmentRequest 批量创建托运单请求
type BatchConsignmentRequest struct {
	PickingIDs []uint `json:"picking_ids" binding:"required"`
}

// CreateGdexConsignmentBatch 批量创建 GDEX 托运单 (Admin)
// 逐单处理，单个失败不影响其余发货单
func (h *Handler) CreateGdexConsignmentBatch(c *gin.Context) {
	var req BatchConsignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if len(req.PickingIDs) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	result, err := h.GdexService.CreateConsignmentBatch(c.Request.Context(), req.PickingIDs)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, result)
}

// SyncGdexStatus 同步发货单物流状态 (Admin)
func (h *Handler) SyncGdexStatus(c *gin.Context) {
	pickingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || pickingID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	picking, err := h.GdexService.SyncStatus(c.Request.Context(), uint(pickingID))
	if err != nil {
		respondGdexError(c, err)
		return
	}
	response.Success(c, picking)
}

// SyncGdexStatusAll 同步全部待更新发货单 (Admin)
func (h *Handler) SyncGdexStatusAll(c *gin.Context) {
	synced, failed, err := h.GdexService.SyncAllPending(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"synced": synced,
		"failed": failed,
	})
}

func respondGdexError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPickingNotFound):
		respondError(c, response.CodeNotFound, "error.picking_not_found", nil)
	case errors.Is(err, service.ErrPickingNotOutbound):
		respondError(c, response.CodeBadRequest, "error.picking_not_outbound", nil)
	case errors.Is(err, service.ErrPickingInvalidState):
		respondError(c, response.CodeBadRequest, "error.picking_invalid_state", nil)
	case errors.Is(err, service.ErrPickingHasCN):
		respondError(c, response.CodeBadRequest, "error.gdex_already_created", nil)
	case errors.Is(err, service.ErrPickingNoCN):
		respondError(c, response.CodeBadRequest, "error.gdex_no_consignment", nil)
	case errors.Is(err, service.ErrReceiverIncomplete):
		locale := i18n.ResolveLocale(c)
		detail := strings.TrimPrefix(err.Error(), service.ErrReceiverIncomplete.Error())
		respondErrorWithMsg(c, response.CodeBadRequest, i18n.T(locale, "error.gdex_missing_fields")+detail, nil)
	case errors.Is(err, service.ErrGdexNotConfigured):
		respondError(c, response.CodeInternal, "error.gdex_not_configured", nil)
	case errors.Is(err, gdex.ErrAccessDenied):
		respondError(c, response.CodeUnauthorized, "error.gdex_access_denied", nil)
	case errors.Is(err, gdex.ErrRequestFailed), errors.Is(err, gdex.ErrResponseInvalid), errors.Is(err, gdex.ErrMissingCN):
		locale := i18n.ResolveLocale(c)
		respondErrorWithMsg(c, response.CodeUpstream, i18n.T(locale, "error.gdex_request_failed")+": "+err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
