package admin

import (
	"strconv"
	"strings"

	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductRepo.List(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name        string       `json:"name" binding:"required"`
	DefaultCode string       `json:"default_code"`
	Price       models.Money `json:"price"`
	WeightKG    float64      `json:"weight_kg"`
	Active      *bool        `json:"active"`
}

// CreateProduct 创建商品 (Admin)
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		DefaultCode: strings.TrimSpace(req.DefaultCode),
		Price:       req.Price,
		WeightKG:    req.WeightKG,
		Active:      true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if err := h.ProductRepo.Create(product); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, product)
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Name        *string       `json:"name"`
	DefaultCode *string       `json:"default_code"`
	Price       *models.Money `json:"price"`
	WeightKG    *float64      `json:"weight_kg"`
	Active      *bool         `json:"active"`
}

// UpdateProduct 更新商品 (Admin)
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductRepo.GetByID(uint(productID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if product == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.DefaultCode != nil {
		product.DefaultCode = strings.TrimSpace(*req.DefaultCode)
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.WeightKG != nil {
		product.WeightKG = *req.WeightKG
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.ProductRepo.Update(product); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, product)
}
