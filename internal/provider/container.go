package provider

import (
	"github.com/morimall/morimall/internal/cache"
	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/queue"
	"github.com/morimall/morimall/internal/repository"
	"github.com/morimall/morimall/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo    repository.AdminRepository
	CustomerRepo repository.CustomerRepository
	ProductRepo  repository.ProductRepository
	LoyaltyRepo  repository.LoyaltyRepository
	OrderRepo    repository.OrderRepository
	DeliveryRepo repository.DeliveryRepository

	// Services
	AuthService     *service.AuthService
	CustomerService *service.CustomerService
	LoyaltyService  *service.LoyaltyService
	OrderService    *service.OrderService
	GdexService     *service.GdexService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.DeliveryRepo = repository.NewDeliveryRepository(db)
}

func (c *Container) initServices() {
	db := models.DB
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.LoyaltyService = service.NewLoyaltyService(db, c.Config, c.LoyaltyRepo, c.OrderRepo, c.ProductRepo)
	c.CustomerService = service.NewCustomerService(c.Config, c.CustomerRepo, c.LoyaltyService)
	c.OrderService = service.NewOrderService(db, c.Config, c.OrderRepo, c.CustomerRepo, c.ProductRepo, c.DeliveryRepo, c.LoyaltyService)
	c.GdexService = service.NewGdexService(db, c.Config, c.DeliveryRepo, c.CustomerRepo)
}
