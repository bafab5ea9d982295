package alipay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	methodPagePay    = "alipay.trade.page.pay"
	methodTradeQuery = "alipay.trade.query"

	productCodePagePay = "FAST_INSTANT_TRADE_PAY"
	codeSuccess        = "10000"
	subCodeNotExist    = "ACQ.TRADE_NOT_EXIST"
)

// TradeResult 交易查询结果
type TradeResult struct {
	Exists      bool
	TradeNo     string
	OutTradeNo  string
	TradeStatus string
	TotalAmount string
}

// Client 支付宝网关客户端
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// NewClient 创建网关客户端
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := parsePrivateKey(cfg.PrivateKey); err != nil {
		return nil, err
	}
	if _, err := parsePublicKey(cfg.AlipayPublicKey); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.QueryTimeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient, now: time.Now}, nil
}

// PagePayURL 生成电脑网站支付跳转地址
func (c *Client) PagePayURL(ctx context.Context, orderNumber string, amount decimal.Decimal, subject string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return "", fmt.Errorf("%w: out_trade_no is required", ErrConfigInvalid)
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: total_amount must be positive", ErrConfigInvalid)
	}
	biz, err := json.Marshal(map[string]string{
		"out_trade_no": orderNumber,
		"total_amount": amount.StringFixed(2),
		"subject":      strings.TrimSpace(subject),
		"product_code": productCodePagePay,
	})
	if err != nil {
		return "", fmt.Errorf("%w: build biz_content failed", ErrConfigInvalid)
	}
	params := c.commonParams(methodPagePay, string(biz))
	params["notify_url"] = c.cfg.NotifyURL
	params["return_url"] = c.cfg.ReturnURL
	if err := c.sign(params); err != nil {
		return "", err
	}
	return c.gatewayURL(params)
}

// QueryTrade 主动查询交易状态，交易不存在时返回 Exists=false
func (c *Client) QueryTrade(ctx context.Context, orderNumber string) (*TradeResult, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, fmt.Errorf("%w: out_trade_no is required", ErrConfigInvalid)
	}
	biz, err := json.Marshal(map[string]string{"out_trade_no": orderNumber})
	if err != nil {
		return nil, fmt.Errorf("%w: build biz_content failed", ErrConfigInvalid)
	}
	params := c.commonParams(methodTradeQuery, string(biz))
	if err := c.sign(params); err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()
	payload, err := c.post(queryCtx, params)
	if err != nil {
		return nil, err
	}

	responseKey := strings.ReplaceAll(methodTradeQuery, ".", "_") + "_response"
	raw, ok := payload[responseKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrResponseInvalid, responseKey)
	}
	var resp struct {
		Code        string `json:"code"`
		Msg         string `json:"msg"`
		SubCode     string `json:"sub_code"`
		SubMsg      string `json:"sub_msg"`
		TradeNo     string `json:"trade_no"`
		OutTradeNo  string `json:"out_trade_no"`
		TradeStatus string `json:"trade_status"`
		TotalAmount string `json:"total_amount"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode %s failed", ErrResponseInvalid, responseKey)
	}
	if resp.SubCode == subCodeNotExist {
		return &TradeResult{Exists: false, OutTradeNo: orderNumber}, nil
	}
	if resp.Code != codeSuccess {
		return nil, fmt.Errorf("%w: code=%s sub_code=%s msg=%s", ErrResponseInvalid, resp.Code, resp.SubCode, firstNonEmpty(resp.SubMsg, resp.Msg))
	}
	return &TradeResult{
		Exists:      true,
		TradeNo:     resp.TradeNo,
		OutTradeNo:  resp.OutTradeNo,
		TradeStatus: resp.TradeStatus,
		TotalAmount: resp.TotalAmount,
	}, nil
}

// QueryTradeStatus 返回交易状态字符串，交易不存在时为空串
func (c *Client) QueryTradeStatus(ctx context.Context, orderNumber string) (string, error) {
	result, err := c.QueryTrade(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if !result.Exists {
		return "", nil
	}
	return result.TradeStatus, nil
}

// VerifyCallback 校验同步回跳或异步通知的签名
func (c *Client) VerifyCallback(form map[string][]string) error {
	if len(form) == 0 {
		return fmt.Errorf("%w: empty callback", ErrSignatureInvalid)
	}
	sign := firstFormValue(form, "sign")
	if sign == "" {
		return fmt.Errorf("%w: sign is required", ErrSignatureInvalid)
	}
	if appID := firstFormValue(form, "app_id"); appID != "" && appID != c.cfg.AppID {
		return fmt.Errorf("%w: app_id mismatch", ErrSignatureInvalid)
	}
	signType := firstFormValue(form, "sign_type")
	if signType == "" {
		signType = c.cfg.SignType
	}
	return verifyContent(signContentFromForm(form), sign, c.cfg.AlipayPublicKey, signType)
}

func (c *Client) commonParams(method, bizContent string) map[string]string {
	return map[string]string{
		"app_id":      c.cfg.AppID,
		"method":      method,
		"format":      "JSON",
		"charset":     "utf-8",
		"sign_type":   c.cfg.SignType,
		"timestamp":   c.now().Format("2006-01-02 15:04:05"),
		"version":     "1.0",
		"biz_content": bizContent,
	}
}

func (c *Client) sign(params map[string]string) error {
	signed, err := signContent(buildSignContent(params), c.cfg.PrivateKey, c.cfg.SignType)
	if err != nil {
		return err
	}
	params["sign"] = signed
	return nil
}

func (c *Client) gatewayURL(params map[string]string) (string, error) {
	parsed, err := url.Parse(c.cfg.GatewayURL)
	if err != nil {
		return "", fmt.Errorf("%w: gateway_url is invalid", ErrConfigInvalid)
	}
	query := parsed.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) post(ctx context.Context, params map[string]string) (map[string]json.RawMessage, error) {
	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	payload := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return payload, nil
}

func firstFormValue(form map[string][]string, key string) string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
