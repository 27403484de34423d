package gdex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("gdex config invalid")
	ErrAccessDenied    = errors.New("gdex access denied")
	ErrRequestFailed   = errors.New("gdex request failed")
	ErrResponseInvalid = errors.New("gdex response invalid")
	ErrMissingCN       = errors.New("gdex consignment number missing in response")
)

// DefaultBaseURL 默认（沙箱）网关地址
const DefaultBaseURL = "https://myopenapi.gdexpress.com/api/demo/prime"

const defaultTimeout = 20 * time.Second

// Config GDEX Prime 配置
type Config struct {
	BaseURL   string        `json:"base_url"`   // 网关地址
	APIToken  string        `json:"api_token"`  // ApiToken 请求头
	AccountNo string        `json:"account_no"` // 商户账号
	Timeout   time.Duration `json:"-"`          // 请求超时
}

// Normalize 规整配置并填充默认值
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIToken = strings.TrimSpace(c.APIToken)
	c.AccountNo = strings.TrimSpace(c.AccountNo)
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(c.AccountNo) == "" {
		return fmt.Errorf("%w: account_no is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(c.APIToken) == "" {
		return fmt.Errorf("%w: api_token is required", ErrConfigInvalid)
	}
	return nil
}

// ConsignmentInput 创建托运单输入
type ConsignmentInput struct {
	OrderID        string  // 发货单编号
	ReceiverName   string
	ReceiverMobile string
	ReceiverEmail  string
	Address1       string
	Address2       string
	Postcode       string
	City           string
	State          string
	Content        string // 货品描述
}

// CreateResult 创建托运单结果
type CreateResult struct {
	CN  string                 // 托运单号（AWB/CN）
	Raw map[string]interface{} // 原始响应
}

// TrackResult 物流状态查询结果
type TrackResult struct {
	Status string                 // 提取出的最近状态
	Raw    map[string]interface{} // 原始响应
	Body   string                 // 原始响应文本
}

var mobileCleanup = regexp.MustCompile(`[\s\-]`)

// buildPayload 构建托运单请求体（单件包裹，尺寸重量固定为 1）
func buildPayload(input ConsignmentInput) map[string]interface{} {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		content = "Goods"
	}
	if runes := []rune(content); len(runes) > 512 {
		content = string(runes[:512])
	}
	orderID := input.OrderID
	doNumber := orderID
	if len(doNumber) > 20 {
		doNumber = doNumber[len(doNumber)-20:]
	}
	return map[string]interface{}{
		"shipmentType":     "Parcel",
		"totalPiece":       1,
		"shipmentWeight":   1,
		"shipmentLength":   1,
		"shipmentWidth":    1,
		"shipmentHeight":   1,
		"isDangerousGoods": false,
		"IsInsurance":      false,
		"isCod":            false,
		"codAmount":        0,
		"receiverName":     input.ReceiverName,
		"receiverMobile":   mobileCleanup.ReplaceAllString(input.ReceiverMobile, ""),
		"receiverEmail":    input.ReceiverEmail,
		"receiverAddress1": input.Address1,
		"receiverAddress2": input.Address2,
		"receiverAddress3": "",
		"receiverPostcode": input.Postcode,
		"receiverCity":     input.City,
		"receiverState":    input.State,
		"receiverCountry":  "Malaysia",
		"orderID":          orderID,
		"doNumber1":        doNumber,
		"content":          content,
	}
}

// CreateConsignment 创建托运单并返回 CN 号
func CreateConsignment(ctx context.Context, cfg *Config, input ConsignmentInput) (*CreateResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/CreateConsignment?accountNo=%s", cfg.BaseURL, url.QueryEscape(cfg.AccountNo))
	// 接口要求请求体为托运单数组
	body, err := postJSON(ctx, cfg, endpoint, []map[string]interface{}{buildPayload(input)})
	if err != nil {
		return nil, err
	}

	var resp struct {
		S string        `json:"s"`
		E string        `json:"e"`
		R []interface{} `json:"r"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.S != "success" {
		message := resp.E
		if message == "" {
			message = "GDEX API error"
		}
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, message)
	}

	cn := ""
	if len(resp.R) > 0 {
		cn = fmt.Sprintf("%v", resp.R[0])
	}
	if strings.TrimSpace(cn) == "" {
		return nil, ErrMissingCN
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(body, &raw)

	return &CreateResult{CN: cn, Raw: raw}, nil
}

// TrackLastStatus 查询托运单最近一次物流状态
// 依次尝试 {"cnNo"} 与 {"awb"} 两种请求体，POST 均失败后再尝试 GET
func TrackLastStatus(ctx context.Context, cfg *Config, cn string) (*TrackResult, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIToken) == "" {
		return nil, fmt.Errorf("%w: api_token is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cn) == "" {
		return nil, fmt.Errorf("%w: consignment number is empty", ErrConfigInvalid)
	}

	endpoint := cfg.BaseURL + "/GetLastShipmentStatus"
	payloadKeys := []string{"cnNo", "awb"}

	var lastErr error
	for _, key := range payloadKeys {
		body, err := postJSON(ctx, cfg, endpoint, map[string]interface{}{key: cn})
		if err != nil {
			lastErr = err
			continue
		}
		return parseTrackBody(body), nil
	}
	for _, key := range payloadKeys {
		body, err := getWithParam(ctx, cfg, endpoint, key, cn)
		if err != nil {
			lastErr = err
			continue
		}
		return parseTrackBody(body), nil
	}

	if lastErr == nil {
		lastErr = ErrRequestFailed
	}
	return nil, lastErr
}

func parseTrackBody(body []byte) *TrackResult {
	result := &TrackResult{Body: string(body)}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err == nil {
		result.Raw = raw
		result.Status = ExtractStatus(raw)
	}
	return result
}

// ExtractStatus 从响应中递归提取物流状态字段
func ExtractStatus(payload map[string]interface{}) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"status", "shipmentStatus", "lastStatus", "scanStatus"} {
		if value, ok := payload[key].(string); ok && value != "" {
			return value
		}
	}
	result := payload["r"]
	if result == nil {
		result = payload["result"]
	}
	switch v := result.(type) {
	case map[string]interface{}:
		return ExtractStatus(v)
	case []interface{}:
		for _, item := range v {
			if nested, ok := item.(map[string]interface{}); ok {
				if status := ExtractStatus(nested); status != "" {
					return status
				}
			}
		}
	}
	return ""
}

// IsDelivered 判断是否已签收
func IsDelivered(status, rawText string) bool {
	if status != "" && strings.Contains(strings.ToLower(status), "delivered") {
		return true
	}
	if rawText != "" && strings.Contains(strings.ToLower(rawText), "delivered") {
		return true
	}
	return false
}

func postJSON(ctx context.Context, cfg *Config, endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("ApiToken", cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	return doRequest(cfg, req)
}

func getWithParam(ctx context.Context, cfg *Config, endpoint, key, value string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	query := req.URL.Query()
	query.Set(key, value)
	req.URL.RawQuery = query.Encode()
	req.Header.Set("ApiToken", cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	return doRequest(cfg, req)
}

func doRequest(cfg *Config, req *http.Request) ([]byte, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: 401 Access Denied", ErrAccessDenied)
	}
	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: http status %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(text)))
	}

	return io.ReadAll(resp.Body)
}
