package service

import (
	"errors"
	"strings"
	"time"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// CustomerService 客户账户服务
type CustomerService struct {
	cfg          *config.Config
	customerRepo repository.CustomerRepository
	loyaltySvc   *LoyaltyService
}

// NewCustomerService 创建客户账户服务
func NewCustomerService(cfg *config.Config, customerRepo repository.CustomerRepository, loyaltySvc *LoyaltyService) *CustomerService {
	return &CustomerService{
		cfg:          cfg,
		customerRepo: customerRepo,
		loyaltySvc:   loyaltySvc,
	}
}

// CustomerJWTClaims 客户端 JWT 声明
type CustomerJWTClaims struct {
	CustomerID uint   `json:"customer_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成客户端 JWT Token
func (s *CustomerService) GenerateJWT(customer *models.Customer) (string, time.Time, error) {
	expireHours := s.cfg.UserJWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 72
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)

	claims := CustomerJWTClaims{
		CustomerID: customer.ID,
		Email:      customer.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析客户端 JWT Token
func (s *CustomerService) ParseJWT(tokenString string) (*CustomerJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &CustomerJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CustomerJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// RegisterInput 客户注册输入
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Mobile   string
}

// Register 注册客户并开通积分卡
func (s *CustomerService) Register(input RegisterInput) (*models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.customerRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCustomerEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Mobile:       strings.TrimSpace(input.Mobile),
		PasswordHash: string(hash),
		Status:       constants.CustomerStatusActive,
	}
	if customer.Name == "" {
		customer.Name = email
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}

	if s.loyaltySvc != nil {
		if _, err := s.loyaltySvc.GetOrCreateCard(customer.ID); err != nil {
			logger.Warnw("customer_loyalty_card_init_failed", "customer_id", customer.ID, "error", err)
		}
	}

	logger.Infow("customer_registered", "customer_id", customer.ID, "email", email)
	return customer, nil
}

// Login 客户登录
func (s *CustomerService) Login(email, password string) (*models.Customer, string, time.Time, error) {
	customer, err := s.customerRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if customer == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if customer.Status != constants.CustomerStatusActive {
		return nil, "", time.Time{}, ErrCustomerDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(customer)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return customer, token, expiresAt, nil
}

// GetProfile 查询客户资料
func (s *CustomerService) GetProfile(customerID uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// UpdateAddressInput 收货地址更新输入
type UpdateAddressInput struct {
	Name        string
	Mobile      string
	Phone       string
	Street      string
	Street2     string
	City        string
	Zip         string
	StateName   string
	CountryName string
}

// UpdateAddress 更新客户收货信息，发货单据此填充收件人
func (s *CustomerService) UpdateAddress(customerID uint, input UpdateAddressInput) (*models.Customer, error) {
	customer, err := s.GetProfile(customerID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		customer.Name = name
	}
	customer.Mobile = strings.TrimSpace(input.Mobile)
	customer.Phone = strings.TrimSpace(input.Phone)
	customer.Street = strings.TrimSpace(input.Street)
	customer.Street2 = strings.TrimSpace(input.Street2)
	customer.City = strings.TrimSpace(input.City)
	customer.Zip = strings.TrimSpace(input.Zip)
	customer.StateName = strings.TrimSpace(input.StateName)
	if country := strings.TrimSpace(input.CountryName); country != "" {
		customer.CountryName = country
	}

	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ListCustomers 管理端分页查询客户
func (s *CustomerService) ListCustomers(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(filter)
}
