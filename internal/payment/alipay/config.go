package alipay

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fuguang-next/internal/config"
)

var (
	ErrConfigInvalid    = errors.New("alipay config invalid")
	ErrSignGenerate     = errors.New("alipay sign generate failed")
	ErrRequestFailed    = errors.New("alipay request failed")
	ErrResponseInvalid  = errors.New("alipay response invalid")
	ErrSignatureInvalid = errors.New("alipay signature invalid")
)

const (
	defaultGatewayURL   = "https://openapi.alipay.com/gateway.do"
	defaultQueryTimeout = 10 * time.Second
)

// Config 支付宝开放平台配置
type Config struct {
	AppID           string
	PrivateKey      string
	AlipayPublicKey string
	GatewayURL      string
	NotifyURL       string
	ReturnURL       string
	SignType        string
	QueryTimeout    time.Duration
}

// FromAppConfig 由应用配置构建
func FromAppConfig(cfg config.AlipayConfig) Config {
	c := Config{
		AppID:           cfg.AppID,
		PrivateKey:      cfg.PrivateKey,
		AlipayPublicKey: cfg.AlipayPublicKey,
		GatewayURL:      cfg.GatewayURL,
		NotifyURL:       cfg.NotifyURL,
		ReturnURL:       cfg.ReturnURL,
		SignType:        cfg.SignType,
	}
	if cfg.QueryTimeoutSeconds > 0 {
		c.QueryTimeout = time.Duration(cfg.QueryTimeoutSeconds) * time.Second
	}
	c.normalize()
	return c
}

// Validate 校验配置完整性
func (c Config) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("%w: app_id is required", ErrConfigInvalid)
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("%w: private_key is required", ErrConfigInvalid)
	}
	if c.AlipayPublicKey == "" {
		return fmt.Errorf("%w: alipay_public_key is required", ErrConfigInvalid)
	}
	for name, raw := range map[string]string{"gateway_url": c.GatewayURL, "notify_url": c.NotifyURL, "return_url": c.ReturnURL} {
		if raw == "" {
			return fmt.Errorf("%w: %s is required", ErrConfigInvalid, name)
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("%w: %s is invalid", ErrConfigInvalid, name)
		}
	}
	if c.SignType != "RSA2" && c.SignType != "RSA" {
		return fmt.Errorf("%w: sign_type is invalid", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.AppID = strings.TrimSpace(c.AppID)
	c.PrivateKey = strings.TrimSpace(c.PrivateKey)
	c.AlipayPublicKey = strings.TrimSpace(c.AlipayPublicKey)
	c.GatewayURL = strings.TrimSpace(c.GatewayURL)
	c.NotifyURL = strings.TrimSpace(c.NotifyURL)
	c.ReturnURL = strings.TrimSpace(c.ReturnURL)
	c.SignType = strings.ToUpper(strings.TrimSpace(c.SignType))
	if c.SignType == "" {
		c.SignType = "RSA2"
	}
	if c.GatewayURL == "" {
		c.GatewayURL = defaultGatewayURL
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
}
