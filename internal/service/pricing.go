package service

import (
	"time"

	"github.com/fuguang-next/internal/config"

	"github.com/shopspring/decimal"
)

const (
	defaultPricePlaces       int32 = 2
	defaultCreditToMoneyRate       = 10
	defaultOrderSubject            = "课程购买"
)

// PricingConfig 定价相关的只读配置，启动时构建后注入
type PricingConfig struct {
	places            int32
	creditToMoneyRate decimal.Decimal
	orderTimeout      time.Duration
	orderSubject      string
}

// NewPricingConfig 由订单配置构建定价配置
func NewPricingConfig(cfg config.OrderConfig) PricingConfig {
	rate := cfg.CreditToMoneyRate
	if rate <= 0 {
		rate = defaultCreditToMoneyRate
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultOrderSubject
	}
	return PricingConfig{
		places:            defaultPricePlaces,
		creditToMoneyRate: decimal.NewFromInt(int64(rate)),
		orderTimeout:      cfg.Timeout(),
		orderSubject:      subject,
	}
}

// Places 金额保留的小数位
func (p PricingConfig) Places() int32 {
	if p.places <= 0 {
		return defaultPricePlaces
	}
	return p.places
}

// CreditToMoneyRate 多少积分抵扣 1 元
func (p PricingConfig) CreditToMoneyRate() decimal.Decimal {
	if !p.creditToMoneyRate.IsPositive() {
		return decimal.NewFromInt(defaultCreditToMoneyRate)
	}
	return p.creditToMoneyRate
}

// OrderTimeout 待支付订单的超时时间
func (p PricingConfig) OrderTimeout() time.Duration {
	if p.orderTimeout <= 0 {
		return 30 * time.Minute
	}
	return p.orderTimeout
}

// OrderSubject 订单名称
func (p PricingConfig) OrderSubject() string {
	if p.orderSubject == "" {
		return defaultOrderSubject
	}
	return p.orderSubject
}

// CreditToMoney 积分折算金额
func (p PricingConfig) CreditToMoney(credit int) decimal.Decimal {
	if credit <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(credit)).Div(p.CreditToMoneyRate()).Round(p.Places())
}
