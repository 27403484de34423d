package gdex

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func testConfig(baseURL string) *Config {
	cfg := &Config{
		BaseURL:   baseURL,
		APIToken:  "test-token",
		AccountNo: "ACC001",
	}
	cfg.Normalize()
	return cfg
}

func TestCreateConsignmentSuccess(t *testing.T) {
	var gotPath string
	var gotToken string
	var gotPayloads []map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotToken = r.Header.Get("ApiToken")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotPayloads); err != nil {
			t.Errorf("payload is not an array: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"s":"success","r":["CN0001"]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := CreateConsignment(context.Background(), cfg, ConsignmentInput{
		OrderID:        "WH/OUT/00042",
		ReceiverName:   "Tan Ah Kow",
		ReceiverMobile: "012-345 6789",
		ReceiverEmail:  "tan@example.com",
		Address1:       "12 Jalan Besar",
		Postcode:       "43000",
		City:           "Kajang",
		State:          "Selangor",
		Content:        "",
	})
	if err != nil {
		t.Fatalf("create consignment failed: %v", err)
	}
	if result.CN != "CN0001" {
		t.Fatalf("expected CN0001, got %s", result.CN)
	}
	if gotToken != "test-token" {
		t.Fatalf("ApiToken header missing, got %q", gotToken)
	}
	if !strings.Contains(gotPath, "/CreateConsignment") || !strings.Contains(gotPath, "accountNo=ACC001") {
		t.Fatalf("unexpected endpoint: %s", gotPath)
	}
	if len(gotPayloads) != 1 {
		t.Fatalf("expected single consignment in payload, got %d", len(gotPayloads))
	}
	payload := gotPayloads[0]
	if payload["shipmentType"] != "Parcel" {
		t.Fatalf("expected Parcel shipment type, got %v", payload["shipmentType"])
	}
	if payload["receiverMobile"] != "0123456789" {
		t.Fatalf("mobile not normalized: %v", payload["receiverMobile"])
	}
	if payload["receiverCountry"] != "Malaysia" {
		t.Fatalf("expected Malaysia country, got %v", payload["receiverCountry"])
	}
	if payload["content"] != "Goods" {
		t.Fatalf("empty content should fall back to Goods, got %v", payload["content"])
	}
	if payload["orderID"] != "WH/OUT/00042" {
		t.Fatalf("unexpected orderID: %v", payload["orderID"])
	}
}

func TestCreateConsignmentDoNumberTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payloads []map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payloads)
		doNumber, _ := payloads[0]["doNumber1"].(string)
		if len(doNumber) != 20 {
			t.Errorf("doNumber1 should be last 20 chars, got %q", doNumber)
		}
		w.Write([]byte(`{"s":"success","r":["CN0002"]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	longName := "VERY/LONG/PICKING/NAME/0000000042"
	if _, err := CreateConsignment(context.Background(), cfg, ConsignmentInput{OrderID: longName}); err != nil {
		t.Fatalf("create consignment failed: %v", err)
	}
}

func TestCreateConsignmentContentTruncatedOnRunes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payloads []map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payloads)
		content, _ := payloads[0]["content"].(string)
		if !utf8.ValidString(content) {
			t.Errorf("content should stay valid UTF-8, got %q", content)
		}
		if got := len([]rune(content)); got != 512 {
			t.Errorf("content should be cut at 512 runes, got %d", got)
		}
		w.Write([]byte(`{"s":"success","r":["CN0003"]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	long := strings.Repeat("电", 600)
	if _, err := CreateConsignment(context.Background(), cfg, ConsignmentInput{OrderID: "WH/OUT/00001", Content: long}); err != nil {
		t.Fatalf("create consignment failed: %v", err)
	}
}

func TestCreateConsignmentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"e":"Invalid postcode"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	_, err := CreateConsignment(context.Background(), cfg, ConsignmentInput{OrderID: "WH/OUT/00001"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid postcode") {
		t.Fatalf("error should carry API message, got %v", err)
	}
}

func TestCreateConsignmentAccessDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	_, err := CreateConsignment(context.Background(), cfg, ConsignmentInput{OrderID: "WH/OUT/00001"})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestCreateConsignmentMissingCN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"success","r":[]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	_, err := CreateConsignment(context.Background(), cfg, ConsignmentInput{OrderID: "WH/OUT/00001"})
	if !errors.Is(err, ErrMissingCN) {
		t.Fatalf("expected ErrMissingCN, got %v", err)
	}
}

func TestCreateConsignmentConfigInvalid(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()
	_, err := CreateConsignment(context.Background(), cfg, ConsignmentInput{OrderID: "WH/OUT/00001"})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestTrackLastStatusFallbackPayload(t *testing.T) {
	// 第一种请求体（cnNo）返回 500，第二种（awb）成功
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		_ = json.Unmarshal(body, &payload)
		if _, ok := payload["cnNo"]; ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"r":[{"scanStatus":"In Transit"}]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := TrackLastStatus(context.Background(), cfg, "CN0001")
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if result.Status != "In Transit" {
		t.Fatalf("expected In Transit, got %q", result.Status)
	}
}

func TestTrackLastStatusFallbackToGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Query().Get("cnNo") == "" && r.URL.Query().Get("awb") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"status":"Delivered to customer"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := TrackLastStatus(context.Background(), cfg, "CN0001")
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if result.Status != "Delivered to customer" {
		t.Fatalf("unexpected status: %q", result.Status)
	}
	if !IsDelivered(result.Status, result.Body) {
		t.Fatalf("status should count as delivered")
	}
}

func TestExtractStatus(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"top_level_status", `{"status":"Picked Up"}`, "Picked Up"},
		{"shipment_status", `{"shipmentStatus":"Out For Delivery"}`, "Out For Delivery"},
		{"nested_result_dict", `{"result":{"lastStatus":"At Hub"}}`, "At Hub"},
		{"nested_r_list", `{"r":[{"other":1},{"scanStatus":"Delivered"}]}`, "Delivered"},
		{"missing", `{"r":[]}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(tc.body), &payload); err != nil {
				t.Fatalf("bad test body: %v", err)
			}
			if got := ExtractStatus(payload); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIsDelivered(t *testing.T) {
	if !IsDelivered("DELIVERED", "") {
		t.Fatalf("status match should be case-insensitive")
	}
	if !IsDelivered("", `{"note":"parcel delivered at door"}`) {
		t.Fatalf("raw text should be scanned when status is empty")
	}
	if IsDelivered("In Transit", `{"note":"moving"}`) {
		t.Fatalf("non-delivered status should not match")
	}
}
