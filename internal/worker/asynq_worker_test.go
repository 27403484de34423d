package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/provider"
	"github.com/morimall/morimall/internal/queue"
	"github.com/morimall/morimall/internal/repository"
	"github.com/morimall/morimall/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type workerTestEnv struct {
	db       *gorm.DB
	consumer *Consumer
	customer models.Customer
	card     models.LoyaltyCard
}

func setupWorkerTest(t *testing.T) *workerTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Product{},
		&models.LoyaltyProgram{},
		&models.LoyaltyCard{},
		&models.LoyaltyHistoryEntry{},
		&models.SalesOrder{},
		&models.SalesOrderLine{},
		&models.DeliveryOrder{},
		&models.StockMove{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Loyalty.RmPerPoint = 0.01

	loyaltyRepo := repository.NewLoyaltyRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)

	container := &provider.Container{
		Config:         cfg,
		OrderRepo:      orderRepo,
		LoyaltyRepo:    loyaltyRepo,
		LoyaltyService: service.NewLoyaltyService(db, cfg, loyaltyRepo, orderRepo, productRepo),
	}

	env := &workerTestEnv{db: db, consumer: NewConsumer(container)}

	program := models.LoyaltyProgram{
		Name:        "Loyalty Program",
		ProgramType: constants.LoyaltyProgramTypeLoyalty,
		PointsName:  "Points",
		Active:      true,
	}
	if err := db.Create(&program).Error; err != nil {
		t.Fatalf("create program failed: %v", err)
	}
	env.customer = models.Customer{
		Name:   "Lim Mei Ling",
		Email:  "lim@example.com",
		Status: constants.CustomerStatusActive,
	}
	if err := db.Create(&env.customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	env.card = models.LoyaltyCard{
		ProgramID:  program.ID,
		CustomerID: env.customer.ID,
		Code:       "LC-WORKER01",
		Points:     100,
	}
	if err := db.Create(&env.card).Error; err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	return env
}

func TestHandleLoyaltyRedeemReverse(t *testing.T) {
	env := setupWorkerTest(t)

	order := models.SalesOrder{
		Name:                  "S00042",
		CustomerID:            env.customer.ID,
		Status:                constants.OrderStatusCanceled,
		Currency:              "MYR",
		LoyaltyCardID:         &env.card.ID,
		LoyaltyPointsRedeemed: 40,
	}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	entry := models.LoyaltyHistoryEntry{
		CardID:      env.card.ID,
		OrderID:     &order.ID,
		EntryType:   constants.LoyaltyEntryTypeRedeem,
		Description: fmt.Sprintf("Redeem 40 pts on order %s", order.Name),
		Used:        40,
	}
	if err := env.db.Create(&entry).Error; err != nil {
		t.Fatalf("create history entry failed: %v", err)
	}

	task, err := queue.NewLoyaltyRedeemReverseTask(queue.LoyaltyRedeemReversePayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := env.consumer.handleLoyaltyRedeemReverse(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	var card models.LoyaltyCard
	if err := env.db.First(&card, env.card.ID).Error; err != nil {
		t.Fatalf("reload card failed: %v", err)
	}
	if card.Points != 140 {
		t.Fatalf("card points want 140 got %v", card.Points)
	}
	var reloaded models.SalesOrder
	if err := env.db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.LoyaltyRedeemReversed {
		t.Fatalf("order should be marked reversed")
	}
}

func TestHandleLoyaltyRedeemReverseOrderMissing(t *testing.T) {
	env := setupWorkerTest(t)

	task, err := queue.NewLoyaltyRedeemReverseTask(queue.LoyaltyRedeemReversePayload{OrderID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := env.consumer.handleLoyaltyRedeemReverse(context.Background(), task); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
}

func TestHandleLoyaltyRedeemReverseInvalidPayload(t *testing.T) {
	env := setupWorkerTest(t)

	task := asynq.NewTask(queue.TaskLoyaltyRedeemReverse, []byte("not-json"))
	if err := env.consumer.handleLoyaltyRedeemReverse(context.Background(), task); err == nil {
		t.Fatalf("invalid payload should return error")
	}

	task = asynq.NewTask(queue.TaskLoyaltyRedeemReverse, []byte(`{"order_id":0}`))
	if err := env.consumer.handleLoyaltyRedeemReverse(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
}

func TestHandleGdexStatusSyncSkips(t *testing.T) {
	env := setupWorkerTest(t)

	task, err := queue.NewGdexStatusSyncTask(queue.GdexStatusSyncPayload{PickingID: 0})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := env.consumer.handleGdexStatusSync(context.Background(), task); err != nil {
		t.Fatalf("zero picking id should be skipped, got %v", err)
	}

	// GdexService 未初始化时直接跳过
	task, err = queue.NewGdexStatusSyncTask(queue.GdexStatusSyncPayload{PickingID: 1})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := env.consumer.handleGdexStatusSync(context.Background(), task); err != nil {
		t.Fatalf("nil gdex service should be skipped, got %v", err)
	}
}
