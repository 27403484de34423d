package public

import (
	"errors"

	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 客户注册请求
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Mobile   string `json:"mobile"`
}

// Register 客户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	customer, err := h.CustomerService.Register(service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Mobile:   req.Mobile,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerEmailTaken):
			respondError(c, response.CodeConflict, "error.email_taken", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	token, expiresAt, err := h.CustomerService.GenerateJWT(customer)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, gin.H{
		"customer":   customer,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// LoginRequest 客户登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 客户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	customer, token, expiresAt, err := h.CustomerService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrCustomerDisabled):
			respondError(c, response.CodeForbidden, "error.customer_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{
		"customer":   customer,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// GetProfile 获取当前客户资料
func (h *Handler) GetProfile(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	customer, err := h.CustomerService.GetProfile(uid)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "error.customer_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, customer)
}

// UpdateAddressRequest 收货地址更新请求
type UpdateAddressRequest struct {
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	Street2     string `json:"street2"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// UpdateAddress 更新当前客户收货信息
func (h *Handler) UpdateAddress(c *gin.Context) {
	uid, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	customer, err := h.CustomerService.UpdateAddress(uid, service.UpdateAddressInput{
		Name:        req.Name,
		Mobile:      req.Mobile,
		Phone:       req.Phone,
		Street:      req.Street,
		Street2:     req.Street2,
		City:        req.City,
		Zip:         req.Zip,
		StateName:   req.State,
		CountryName: req.Country,
	})
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "error.customer_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, customer)
}
