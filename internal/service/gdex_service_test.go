package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/models"
	"github.com/morimall/morimall/internal/repository"
)

func setupGdexTest(t *testing.T, baseURL string) (*loyaltyTestEnv, *GdexService) {
	t.Helper()
	env := setupLoyaltyTest(t)

	cfg := &config.Config{}
	cfg.Gdex.BaseURL = baseURL
	cfg.Gdex.Environment = "sandbox"
	cfg.Gdex.APITokenSandbox = "token-sandbox"
	cfg.Gdex.AccountNo = "ACC001"
	cfg.Gdex.TimeoutSeconds = 5

	svc := NewGdexService(env.db,
		cfg,
		repository.NewDeliveryRepository(env.db),
		repository.NewCustomerRepository(env.db),
	)
	return env, svc
}

func (env *loyaltyTestEnv) createPicking(t *testing.T, mutate func(*models.DeliveryOrder)) *models.DeliveryOrder {
	t.Helper()
	picking := &models.DeliveryOrder{
		Name:            "WH/OUT/00001",
		CustomerID:      env.customer.ID,
		TypeCode:        constants.PickingTypeOutgoing,
		Status:          constants.PickingStatusAssigned,
		ReceiverName:    "Tan Ah Kow",
		ReceiverMobile:  "012-345 6789",
		ReceiverEmail:   "tan@example.com",
		ReceiverStreet:  "12 Jalan Besar",
		ReceiverCity:    "Kajang",
		ReceiverZip:     "43000",
		ReceiverState:   "Selangor",
		ReceiverCountry: "Malaysia",
		GdexState:       constants.GdexStateDraft,
	}
	if mutate != nil {
		mutate(picking)
	}
	if err := env.db.Create(picking).Error; err != nil {
		t.Fatalf("create picking failed: %v", err)
	}
	move := models.StockMove{PickingID: picking.ID, Description: "Widget", Qty: 1}
	if err := env.db.Create(&move).Error; err != nil {
		t.Fatalf("create move failed: %v", err)
	}
	return picking
}

func (env *loyaltyTestEnv) reloadPicking(t *testing.T, id uint) models.DeliveryOrder {
	t.Helper()
	var picking models.DeliveryOrder
	if err := env.db.First(&picking, id).Error; err != nil {
		t.Fatalf("reload picking failed: %v", err)
	}
	return picking
}

func TestGdexServiceCreateConsignment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "CreateConsignment") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"s":"success","r":["MY0012345678"]}`))
	}))
	defer server.Close()

	env, svc := setupGdexTest(t, server.URL)
	picking := env.createPicking(t, nil)

	updated, err := svc.CreateConsignment(context.Background(), picking.ID)
	if err != nil {
		t.Fatalf("create consignment failed: %v", err)
	}
	if updated.GdexCn != "MY0012345678" {
		t.Fatalf("expected cn recorded, got %q", updated.GdexCn)
	}
	if updated.GdexState != constants.GdexStateCreated {
		t.Fatalf("expected created state, got %s", updated.GdexState)
	}
	if updated.GdexError != "" {
		t.Fatalf("error field should be cleared, got %q", updated.GdexError)
	}
}

func TestGdexServiceCreateConsignmentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"e":"Invalid postcode"}`))
	}))
	defer server.Close()

	env, svc := setupGdexTest(t, server.URL)
	picking := env.createPicking(t, nil)

	if _, err := svc.CreateConsignment(context.Background(), picking.ID); err == nil {
		t.Fatalf("expected error from carrier")
	}

	reloaded := env.reloadPicking(t, picking.ID)
	if reloaded.GdexState != constants.GdexStateError {
		t.Fatalf("expected error state persisted, got %s", reloaded.GdexState)
	}
	if !strings.Contains(reloaded.GdexError, "Invalid postcode") {
		t.Fatalf("carrier message should be persisted, got %q", reloaded.GdexError)
	}
}

func TestGdexServiceCreateConsignmentValidation(t *testing.T) {
	env, svc := setupGdexTest(t, "http://127.0.0.1:1") // 校验失败不应发起请求

	withCN := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00002"
		p.GdexCn = "MY0099999999"
		p.GdexState = constants.GdexStateCreated
	})
	if _, err := svc.CreateConsignment(context.Background(), withCN.ID); err != ErrPickingHasCN {
		t.Fatalf("expected ErrPickingHasCN, got %v", err)
	}

	done := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00003"
		p.Status = constants.PickingStatusDone
	})
	if _, err := svc.CreateConsignment(context.Background(), done.ID); err != ErrPickingInvalidState {
		t.Fatalf("expected ErrPickingInvalidState, got %v", err)
	}

	incomplete := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00004"
		p.ReceiverZip = ""
		p.ReceiverCity = ""
	})
	_, err := svc.CreateConsignment(context.Background(), incomplete.ID)
	if !errors.Is(err, ErrReceiverIncomplete) {
		t.Fatalf("expected ErrReceiverIncomplete, got %v", err)
	}
	if !strings.Contains(err.Error(), "Receiver Postcode") || !strings.Contains(err.Error(), "Receiver City") {
		t.Fatalf("missing field names should be listed, got %v", err)
	}

	inbound := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/IN/00001"
		p.TypeCode = constants.PickingTypeIncoming
	})
	if _, err := svc.CreateConsignment(context.Background(), inbound.ID); err != ErrPickingNotOutbound {
		t.Fatalf("expected ErrPickingNotOutbound, got %v", err)
	}

	noPhone := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00009"
		p.ReceiverMobile = ""
		p.ReceiverPhone = ""
	})
	_, err = svc.CreateConsignment(context.Background(), noPhone.ID)
	if !errors.Is(err, ErrReceiverIncomplete) || !strings.Contains(err.Error(), "Receiver Mobile") {
		t.Fatalf("missing mobile and phone should be reported, got %v", err)
	}

	abroad := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00010"
		p.ReceiverCountry = "Singapore"
	})
	_, err = svc.CreateConsignment(context.Background(), abroad.ID)
	if !errors.Is(err, ErrReceiverIncomplete) || !strings.Contains(err.Error(), "Malaysia") {
		t.Fatalf("non-Malaysia receiver should be rejected, got %v", err)
	}

	if _, err := svc.CreateConsignment(context.Background(), 99999); err != ErrPickingNotFound {
		t.Fatalf("expected ErrPickingNotFound, got %v", err)
	}
}

func TestGdexServiceCreateConsignmentLandlineFallback(t *testing.T) {
	var payload string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		payload = string(body)
		w.Write([]byte(`{"s":"success","r":["MY0055555555"]}`))
	}))
	defer server.Close()

	env, svc := setupGdexTest(t, server.URL)
	picking := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.ReceiverMobile = ""
		p.ReceiverPhone = "03-8888 1234"
	})

	if _, err := svc.CreateConsignment(context.Background(), picking.ID); err != nil {
		t.Fatalf("landline-only receiver should be accepted: %v", err)
	}
	if !strings.Contains(payload, `"receiverMobile":"0388881234"`) {
		t.Fatalf("landline should back the mobile field stripped, got %s", payload)
	}
}

func TestGdexServiceNotConfigured(t *testing.T) {
	env := setupLoyaltyTest(t)
	cfg := &config.Config{} // 缺少令牌与账号
	svc := NewGdexService(env.db, cfg,
		repository.NewDeliveryRepository(env.db),
		repository.NewCustomerRepository(env.db),
	)

	if _, err := svc.CreateConsignment(context.Background(), 1); !errors.Is(err, ErrGdexNotConfigured) {
		t.Fatalf("expected ErrGdexNotConfigured, got %v", err)
	}
}

func TestGdexServiceSyncStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "GetLastShipmentStatus") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"r":[{"status":"Delivered to customer"}]}`))
	}))
	defer server.Close()

	env, svc := setupGdexTest(t, server.URL)
	picking := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.GdexCn = "MY0012345678"
		p.GdexState = constants.GdexStateCreated
	})

	updated, err := svc.SyncStatus(context.Background(), picking.ID)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if updated.GdexLastStatus != "Delivered to customer" {
		t.Fatalf("expected last status recorded, got %q", updated.GdexLastStatus)
	}
	if updated.GdexState != constants.GdexStateDelivered {
		t.Fatalf("expected delivered state, got %s", updated.GdexState)
	}
	if updated.GdexSyncedAt == nil {
		t.Fatalf("synced_at should be set")
	}
}

func TestGdexServiceSyncStatusNoCN(t *testing.T) {
	env, svc := setupGdexTest(t, "http://127.0.0.1:1")
	picking := env.createPicking(t, nil)

	if _, err := svc.SyncStatus(context.Background(), picking.ID); err != ErrPickingNoCN {
		t.Fatalf("expected ErrPickingNoCN, got %v", err)
	}
}

func TestGdexServiceListSyncPending(t *testing.T) {
	env, svc := setupGdexTest(t, "http://127.0.0.1:1")

	pending := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.GdexCn = "MY0011111111"
		p.GdexState = constants.GdexStateCreated
	})
	env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00005"
		p.GdexCn = "MY0022222222"
		p.GdexState = constants.GdexStateCreated
		p.Status = constants.PickingStatusDone // 已完成不再同步
	})
	env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00006" // 未创建 CN
	})
	env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00007"
		p.GdexCn = "MY0033333333"
		p.GdexState = constants.GdexStateDelivered // 已送达不再同步
	})
	errored := env.createPicking(t, func(p *models.DeliveryOrder) {
		p.Name = "WH/OUT/00008"
		p.GdexCn = "MY0044444444"
		p.GdexState = constants.GdexStateError // 出错的重试
	})

	list, err := svc.ListSyncPending(0)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 pending pickings, got %d", len(list))
	}
	ids := map[uint]bool{list[0].ID: true, list[1].ID: true}
	if !ids[pending.ID] || !ids[errored.ID] {
		t.Fatalf("unexpected pending set: %+v", ids)
	}
}
