package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type loyaltyTestEnv struct {
	db         *gorm.DB
	svc        *LoyaltyService
	orderSvc   *OrderService
	program    models.LoyaltyProgram
	customer   models.Customer
	card       models.LoyaltyCard
	redeemable models.Product
}

func setupLoyaltyTest(t *testing.T) *loyaltyTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:loyalty_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	customerRepo := repository.NewCustomerRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)

	svc := NewLoyaltyService(db, cfg, loyaltyRepo, orderRepo, productRepo)
	orderSvc := NewOrderService(db, cfg, orderRepo, customerRepo, productRepo, deliveryRepo, svc)

	env := &loyaltyTestEnv{db: db, svc: svc, orderSvc: orderSvc}

	env.program = models.LoyaltyProgram{
		Name:        "Loyalty Program",
		ProgramType: constants.LoyaltyProgramTypeLoyalty,
		PointsName:  "Points",
		Active:      true,
	}
	if err := db.Create(&env.program).Error; err != nil {
		t.Fatalf("create program failed: %v", err)
	}

	env.customer = models.Customer{
		Name:        "Tan Ah Kow",
		Email:       "tan@example.com",
		Mobile:      "0123456789",
		Status:      constants.CustomerStatusActive,
		Street:      "12 Jalan Besar",
		City:        "Kajang",
		Zip:         "43000",
		StateName:   "Selangor",
		CountryName: "Malaysia",
	}
	if err := db.Create(&env.customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	env.card = models.LoyaltyCard{
		ProgramID:  env.program.ID,
		CustomerID: env.customer.ID,
		Code:       "LC-TEST0001",
		Points:     500,
	}
	if err := db.Create(&env.card).Error; err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	env.redeemable = models.Product{
		Name:        "Loyalty Point Redemption",
		DefaultCode: "Loyalty Point Redemption",
		Active:      true,
	}
	if err := db.Create(&env.redeemable).Error; err != nil {
		t.Fatalf("create redeem product failed: %v", err)
	}

	return env
}

func (env *loyaltyTestEnv) createDraftOrder(t *testing.T, total string) *models.SalesOrder {
	t.Helper()
	order := models.SalesOrder{
		Name:       fmt.Sprintf("S%05d", time.Now().UnixNano()%100000),
		CustomerID: env.customer.ID,
		Status:     constants.OrderStatusDraft,
		Currency:   "MYR",
	}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	line := models.SalesOrderLine{
		OrderID:   order.ID,
		Name:      "Widget",
		Qty:       1,
		PriceUnit: models.NewMoneyFromDecimal(decimal.RequireFromString(total)),
	}
	if err := env.db.Create(&line).Error; err != nil {
		t.Fatalf("create line failed: %v", err)
	}
	order.AmountTotal = line.PriceUnit
	if err := env.db.Save(&order).Error; err != nil {
		t.Fatalf("save order failed: %v", err)
	}
	return &order
}

func (env *loyaltyTestEnv) reloadCard(t *testing.T) models.LoyaltyCard {
	t.Helper()
	var card models.LoyaltyCard
	if err := env.db.First(&card, env.card.ID).Error; err != nil {
		t.Fatalf("reload card failed: %v", err)
	}
	return card
}

func TestApplyRedemption(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	result, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 200})
	if err != nil {
		t.Fatalf("apply redemption failed: %v", err)
	}

	if result.Amount.String() != "2.00" {
		t.Fatalf("expected amount 2.00, got %s", result.Amount.String())
	}
	if result.RemainingPoints != 300 {
		t.Fatalf("expected remaining 300, got %v", result.RemainingPoints)
	}

	card := env.reloadCard(t)
	if card.Points != 300 {
		t.Fatalf("expected card balance 300, got %v", card.Points)
	}

	var lines []models.SalesOrderLine
	if err := env.db.Where("order_id = ? AND is_loyalty_redeem_line = ?", order.ID, true).Find(&lines).Error; err != nil {
		t.Fatalf("load redeem lines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 redeem line, got %d", len(lines))
	}
	if lines[0].Name != "Redeem 200 loyalty points" {
		t.Fatalf("unexpected line name: %s", lines[0].Name)
	}
	if lines[0].PriceUnit.String() != "-2.00" {
		t.Fatalf("expected price -2.00, got %s", lines[0].PriceUnit.String())
	}
	if lines[0].Qty != 1 {
		t.Fatalf("expected qty 1, got %v", lines[0].Qty)
	}

	var reloaded models.SalesOrder
	if err := env.db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.AmountTotal.String() != "98.00" {
		t.Fatalf("expected total 98.00, got %s", reloaded.AmountTotal.String())
	}
	if reloaded.LoyaltyPointsRedeemed != 200 {
		t.Fatalf("expected 200 points recorded, got %v", reloaded.LoyaltyPointsRedeemed)
	}
	if reloaded.LoyaltyCardID == nil || *reloaded.LoyaltyCardID != env.card.ID {
		t.Fatalf("order should reference card %d", env.card.ID)
	}

	var entry models.LoyaltyHistoryEntry
	if err := env.db.Where("card_id = ? AND order_id = ?", env.card.ID, order.ID).First(&entry).Error; err != nil {
		t.Fatalf("load history entry failed: %v", err)
	}
	if entry.Used != 200 || entry.Issued != 0 {
		t.Fatalf("expected used=200 issued=0, got used=%v issued=%v", entry.Used, entry.Issued)
	}
	if entry.Description != fmt.Sprintf("Redeem 200 pts on order %s", order.Name) {
		t.Fatalf("unexpected description: %s", entry.Description)
	}
}

func TestApplyRedemptionInsufficientPoints(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	_, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 501})
	if err != ErrLoyaltyPointsInsufficient {
		t.Fatalf("expected ErrLoyaltyPointsInsufficient, got %v", err)
	}

	card := env.reloadCard(t)
	if card.Points != 500 {
		t.Fatalf("balance must not change on failure, got %v", card.Points)
	}
	var count int64
	env.db.Model(&models.SalesOrderLine{}).
		Where("order_id = ? AND is_loyalty_redeem_line = ?", order.ID, true).
		Count(&count)
	if count != 0 {
		t.Fatalf("no redeem line should exist, got %d", count)
	}
}

func TestApplyRedemptionInvalidPoints(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	for _, points := range []float64{0, -10} {
		if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: points}); err != ErrLoyaltyPointsInvalid {
			t.Fatalf("points=%v: expected ErrLoyaltyPointsInvalid, got %v", points, err)
		}
	}
}

func TestApplyRedemptionOrderStates(t *testing.T) {
	env := setupLoyaltyTest(t)

	order := env.createDraftOrder(t, "50.00")
	env.db.Model(order).Update("status", constants.OrderStatusCanceled)
	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 10}); err != ErrOrderNotModifiable {
		t.Fatalf("expected ErrOrderNotModifiable for canceled order, got %v", err)
	}

	confirmed := env.createDraftOrder(t, "50.00")
	env.db.Model(confirmed).Update("status", constants.OrderStatusConfirmed)
	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: confirmed.ID, Points: 10}); err != nil {
		t.Fatalf("confirmed order should accept redemption, got %v", err)
	}
}

func TestApplyRedemptionNoCard(t *testing.T) {
	env := setupLoyaltyTest(t)

	other := models.Customer{Name: "No Card", Email: "nocard@example.com", Status: constants.CustomerStatusActive}
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	order := models.SalesOrder{
		Name:       "S99999",
		CustomerID: other.ID,
		Status:     constants.OrderStatusDraft,
		Currency:   "MYR",
	}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 10}); err != ErrLoyaltyCardNotFound {
		t.Fatalf("expected ErrLoyaltyCardNotFound, got %v", err)
	}
}

func TestApplyRedemptionWrongCustomer(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	_, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, CustomerID: env.customer.ID + 100, Points: 10})
	if err != ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound for foreign customer, got %v", err)
	}
}

func TestApplyRedemptionProductFallbackByName(t *testing.T) {
	env := setupLoyaltyTest(t)

	// 去掉编码匹配，仅保留小写名称商品
	env.db.Model(&env.redeemable).Updates(map[string]interface{}{
		"default_code": "OTHER",
		"name":         "loyalty point redemption",
	})

	order := env.createDraftOrder(t, "100.00")
	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 10}); err != nil {
		t.Fatalf("name fallback should locate product, got %v", err)
	}
}

func TestApplyRedemptionProductMissing(t *testing.T) {
	env := setupLoyaltyTest(t)
	env.db.Model(&env.redeemable).Updates(map[string]interface{}{
		"default_code": "OTHER",
		"name":         "Loyalty Point Redemption", // 大小写不同，名称精确匹配应失败
	})

	order := env.createDraftOrder(t, "100.00")
	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 10}); err != ErrRedeemProductNotFound {
		t.Fatalf("expected ErrRedeemProductNotFound, got %v", err)
	}
}

func TestReverseOrderRedemption(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 200}); err != nil {
		t.Fatalf("apply redemption failed: %v", err)
	}

	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}

	card := env.reloadCard(t)
	if card.Points != 500 {
		t.Fatalf("expected balance restored to 500, got %v", card.Points)
	}

	var reloaded models.SalesOrder
	if err := env.db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.LoyaltyRedeemReversed {
		t.Fatalf("reversed flag should be set")
	}
	if reloaded.AmountTotal.String() != "100.00" {
		t.Fatalf("expected total restored to 100.00, got %s", reloaded.AmountTotal.String())
	}

	var lineCount int64
	env.db.Model(&models.SalesOrderLine{}).
		Where("order_id = ? AND is_loyalty_redeem_line = ? AND deleted_at IS NULL", order.ID, true).
		Count(&lineCount)
	if lineCount != 0 {
		t.Fatalf("redeem lines should be removed, got %d", lineCount)
	}

	var revert models.LoyaltyHistoryEntry
	if err := env.db.Where("card_id = ? AND order_id = ? AND entry_type = ?",
		env.card.ID, order.ID, constants.LoyaltyEntryTypeRevert).First(&revert).Error; err != nil {
		t.Fatalf("revert entry missing: %v", err)
	}
	if revert.Issued != 200 || revert.Used != 0 {
		t.Fatalf("expected issued=200 used=0, got issued=%v used=%v", revert.Issued, revert.Used)
	}
	if !strings.Contains(strings.ToLower(revert.Description), "reverse redemption") {
		t.Fatalf("revert description should carry the reversal marker, got %q", revert.Description)
	}
}

func TestRedeemReverseRoundTrip(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "150.00")

	result, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 120})
	if err != nil {
		t.Fatalf("apply redemption failed: %v", err)
	}
	if result.Amount.String() != "1.20" {
		t.Fatalf("expected discount 1.20, got %s", result.Amount.String())
	}
	if card := env.reloadCard(t); card.Points != 380 {
		t.Fatalf("expected balance 380, got %v", card.Points)
	}

	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if card := env.reloadCard(t); card.Points != 500 {
		t.Fatalf("expected balance back to 500, got %v", card.Points)
	}

	var reverts []models.LoyaltyHistoryEntry
	env.db.Where("card_id = ? AND entry_type = ?", env.card.ID, constants.LoyaltyEntryTypeRevert).Find(&reverts)
	if len(reverts) != 1 || reverts[0].Issued != 120 || reverts[0].Used != 0 {
		t.Fatalf("expected one revert entry issued=120, got %+v", reverts)
	}
}

func TestReverseOrderRedemptionIdempotent(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 100}); err != nil {
		t.Fatalf("apply redemption failed: %v", err)
	}
	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("first reverse failed: %v", err)
	}
	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("second reverse failed: %v", err)
	}

	card := env.reloadCard(t)
	if card.Points != 500 {
		t.Fatalf("double reverse must not double credit, got %v", card.Points)
	}
}

func TestReverseOrderRedemptionNetsMultipleApplies(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 100}); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 50}); err != nil {
		t.Fatalf("second apply failed: %v", err)
	}

	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}

	card := env.reloadCard(t)
	if card.Points != 500 {
		t.Fatalf("expected full restore to 500, got %v", card.Points)
	}
}

func TestReverseOrderRedemptionNoRedeem(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("reverse on clean order should succeed: %v", err)
	}
	var reloaded models.SalesOrder
	env.db.First(&reloaded, order.ID)
	if !reloaded.LoyaltyRedeemReversed {
		t.Fatalf("clean order should be marked reversed")
	}
}

func TestPrepareRedemption(t *testing.T) {
	env := setupLoyaltyTest(t)

	quote, err := env.svc.PrepareRedemption(env.customer.ID)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if quote.AvailablePoints != 500 {
		t.Fatalf("expected 500 points, got %v", quote.AvailablePoints)
	}
	if quote.RmPerPoint != 0.01 {
		t.Fatalf("expected rate 0.01, got %v", quote.RmPerPoint)
	}
	if quote.MaxAmount.String() != "5.00" {
		t.Fatalf("expected max 5.00, got %s", quote.MaxAmount.String())
	}
}

func TestPrepareOrderRedemption(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	quote, err := env.svc.PrepareOrderRedemption(order.ID, env.customer.ID)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if quote.AvailablePoints != 500 {
		t.Fatalf("expected 500 points, got %v", quote.AvailablePoints)
	}

	if _, err := env.svc.PrepareOrderRedemption(order.ID, env.customer.ID+100); err != ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound for foreign customer, got %v", err)
	}

	env.db.Model(order).Update("status", constants.OrderStatusCanceled)
	if _, err := env.svc.PrepareOrderRedemption(order.ID, env.customer.ID); err != ErrOrderNotModifiable {
		t.Fatalf("expected ErrOrderNotModifiable for canceled order, got %v", err)
	}
}

func TestPrepareOrderRedemptionAlreadyRedeemed(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 100}); err != nil {
		t.Fatalf("apply redemption failed: %v", err)
	}
	if _, err := env.svc.PrepareOrderRedemption(order.ID, env.customer.ID); err != ErrOrderAlreadyRedeemed {
		t.Fatalf("expected ErrOrderAlreadyRedeemed, got %v", err)
	}
}

func TestReverseOrderRedemptionLegacyDescriptionRows(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	// 早期流水仅在描述里带订单号：不写 order_id，订单上也没有缓存卡ID
	legacy := models.LoyaltyHistoryEntry{
		CardID:      env.card.ID,
		EntryType:   constants.LoyaltyEntryTypeRedeem,
		Description: fmt.Sprintf("Redeem 50 pts on order %s", order.Name),
		Used:        50,
	}
	if err := env.db.Create(&legacy).Error; err != nil {
		t.Fatalf("create legacy entry failed: %v", err)
	}
	env.db.Model(&env.card).Update("points", 450)

	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}

	card := env.reloadCard(t)
	if card.Points != 500 {
		t.Fatalf("legacy rows should be netted, expected 500 got %v", card.Points)
	}

	var reloaded models.SalesOrder
	env.db.First(&reloaded, order.ID)
	if !reloaded.LoyaltyRedeemReversed {
		t.Fatalf("order should be marked reversed")
	}

	var revert models.LoyaltyHistoryEntry
	if err := env.db.Where("card_id = ? AND order_id = ? AND entry_type = ?",
		env.card.ID, order.ID, constants.LoyaltyEntryTypeRevert).First(&revert).Error; err != nil {
		t.Fatalf("revert entry missing: %v", err)
	}
	if revert.Issued != 50 {
		t.Fatalf("expected issued=50, got %v", revert.Issued)
	}
}

func TestReverseOrderRedemptionRemovesEarnedPoints(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "100.00")

	// 订单只发放过积分：取消时应按净额收回
	earned := models.LoyaltyHistoryEntry{
		CardID:      env.card.ID,
		OrderID:     &order.ID,
		EntryType:   constants.LoyaltyEntryTypeEarn,
		Description: fmt.Sprintf("Earn 30 pts on order %s", order.Name),
		Issued:      30,
	}
	if err := env.db.Create(&earned).Error; err != nil {
		t.Fatalf("create earn entry failed: %v", err)
	}
	env.db.Model(order).Update("loyalty_card_id", env.card.ID)

	if err := env.svc.ReverseOrderRedemption(order.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}

	card := env.reloadCard(t)
	if card.Points != 470 {
		t.Fatalf("earned points should be clawed back, expected 470 got %v", card.Points)
	}

	var revert models.LoyaltyHistoryEntry
	if err := env.db.Where("card_id = ? AND order_id = ? AND entry_type = ?",
		env.card.ID, order.ID, constants.LoyaltyEntryTypeRevert).First(&revert).Error; err != nil {
		t.Fatalf("revert entry missing: %v", err)
	}
	if revert.Issued != 0 || revert.Used != 30 {
		t.Fatalf("expected mirrored issued=0 used=30, got issued=%v used=%v", revert.Issued, revert.Used)
	}
}

func TestRedeemAmountClampsNegatives(t *testing.T) {
	if got := RedeemAmount(-10, 0.01).String(); got != "0.00" {
		t.Fatalf("negative points should clamp to 0.00, got %s", got)
	}
	if got := RedeemAmount(100, -0.5).String(); got != "0.00" {
		t.Fatalf("negative rate should clamp to 0.00, got %s", got)
	}
	if got := RedeemAmount(150, 0.01).String(); got != "1.50" {
		t.Fatalf("expected 1.50, got %s", got)
	}
}

func TestAdjustPoints(t *testing.T) {
	env := setupLoyaltyTest(t)

	card, err := env.svc.AdjustPoints(env.customer.ID, 250, "promo grant")
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if card.Points != 750 {
		t.Fatalf("expected 750, got %v", card.Points)
	}

	if _, err := env.svc.AdjustPoints(env.customer.ID, -1000, "clawback"); err != ErrLoyaltyPointsInsufficient {
		t.Fatalf("expected ErrLoyaltyPointsInsufficient, got %v", err)
	}
}
