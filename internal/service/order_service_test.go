package service

import (
	"testing"

	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/models"
)

func (env *loyaltyTestEnv) createProduct(t *testing.T, name, code string, price string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		DefaultCode: code,
		Price:       mustMoney(t, price),
		WeightKG:    0.5,
		Active:      true,
	}
	if err := env.db.Create(&p).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return p
}

func mustMoney(t *testing.T, s string) models.Money {
	t.Helper()
	var m models.Money
	if err := m.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		t.Fatalf("parse money %q failed: %v", s, err)
	}
	return m
}

func TestCreateOrder(t *testing.T) {
	env := setupLoyaltyTest(t)
	widget := env.createProduct(t, "Widget", "WID-01", "25.50")

	order, err := env.orderSvc.CreateOrder(CreateOrderInput{
		CustomerID: env.customer.ID,
		Lines:      []CreateOrderLineInput{{ProductID: widget.ID, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusDraft {
		t.Fatalf("expected draft order, got %s", order.Status)
	}
	if order.Name == "" || order.Name == "S-PENDING" {
		t.Fatalf("order name not assigned: %q", order.Name)
	}
	if order.Currency != "MYR" {
		t.Fatalf("expected MYR default, got %s", order.Currency)
	}
	if order.AmountTotal.String() != "51.00" {
		t.Fatalf("expected total 51.00, got %s", order.AmountTotal.String())
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(order.Lines))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	env := setupLoyaltyTest(t)
	widget := env.createProduct(t, "Widget", "WID-01", "10.00")

	if _, err := env.orderSvc.CreateOrder(CreateOrderInput{CustomerID: env.customer.ID}); err != ErrOrderInvalidLines {
		t.Fatalf("expected ErrOrderInvalidLines, got %v", err)
	}
	if _, err := env.orderSvc.CreateOrder(CreateOrderInput{
		CustomerID: env.customer.ID + 100,
		Lines:      []CreateOrderLineInput{{ProductID: widget.ID, Qty: 1}},
	}); err != ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestConfirmOrderCreatesPicking(t *testing.T) {
	env := setupLoyaltyTest(t)
	widget := env.createProduct(t, "Widget", "WID-01", "10.00")

	order, err := env.orderSvc.CreateOrder(CreateOrderInput{
		CustomerID: env.customer.ID,
		Lines:      []CreateOrderLineInput{{ProductID: widget.ID, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 100}); err != nil {
		t.Fatalf("apply redemption failed: %v", err)
	}

	confirmed, err := env.orderSvc.ConfirmOrder(order.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != constants.OrderStatusConfirmed {
		t.Fatalf("expected sale status, got %s", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set")
	}

	var picking models.DeliveryOrder
	if err := env.db.Preload("Moves").Where("order_id = ?", order.ID).First(&picking).Error; err != nil {
		t.Fatalf("picking not created: %v", err)
	}
	if picking.Status != constants.PickingStatusAssigned {
		t.Fatalf("expected assigned picking, got %s", picking.Status)
	}
	if picking.TypeCode != constants.PickingTypeOutgoing {
		t.Fatalf("expected outgoing picking, got %s", picking.TypeCode)
	}
	if picking.GdexState != constants.GdexStateDraft {
		t.Fatalf("expected gdex draft, got %s", picking.GdexState)
	}
	if picking.ReceiverName != env.customer.Name || picking.ReceiverCountry != "Malaysia" {
		t.Fatalf("receiver not copied from customer: %+v", picking)
	}
	// 抵扣行不应生成库存移动
	if len(picking.Moves) != 1 {
		t.Fatalf("expected 1 move (redeem line excluded), got %d", len(picking.Moves))
	}
	if picking.Moves[0].Qty != 3 {
		t.Fatalf("expected move qty 3, got %v", picking.Moves[0].Qty)
	}

	if _, err := env.orderSvc.ConfirmOrder(order.ID); err != ErrOrderNotModifiable {
		t.Fatalf("double confirm should fail, got %v", err)
	}
}

func TestCancelOrderReversesRedemption(t *testing.T) {
	env := setupLoyaltyTest(t)
	widget := env.createProduct(t, "Widget", "WID-01", "40.00")

	order, err := env.orderSvc.CreateOrder(CreateOrderInput{
		CustomerID: env.customer.ID,
		Lines:      []CreateOrderLineInput{{ProductID: widget.ID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.svc.ApplyRedemption(ApplyRedemptionInput{OrderID: order.ID, Points: 200}); err != nil {
		t.Fatalf("apply redemption failed: %v", err)
	}
	if _, err := env.orderSvc.ConfirmOrder(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	canceled, err := env.orderSvc.CancelOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("expected cancel status, got %s", canceled.Status)
	}
	if !canceled.LoyaltyRedeemReversed {
		t.Fatalf("cancel should reverse redemption in the same transaction")
	}

	card := env.reloadCard(t)
	if card.Points != 500 {
		t.Fatalf("expected points restored, got %v", card.Points)
	}

	var picking models.DeliveryOrder
	if err := env.db.Where("order_id = ?", order.ID).First(&picking).Error; err != nil {
		t.Fatalf("load picking failed: %v", err)
	}
	if picking.Status != constants.PickingStatusCanceled {
		t.Fatalf("picking should be canceled, got %s", picking.Status)
	}

	if _, err := env.orderSvc.CancelOrder(order.ID); err != ErrOrderAlreadyCancel {
		t.Fatalf("double cancel should fail, got %v", err)
	}
}

func TestCancelOrderRejectsDone(t *testing.T) {
	env := setupLoyaltyTest(t)
	order := env.createDraftOrder(t, "50.00")
	env.db.Model(order).Update("status", constants.OrderStatusDone)

	if _, err := env.orderSvc.CancelOrder(order.ID); err != ErrOrderNotModifiable {
		t.Fatalf("done order must not be cancellable, got %v", err)
	}
}
