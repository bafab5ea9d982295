package service

import (
	"errors"
	"testing"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"

	"github.com/shopspring/decimal"
)

func quoteCourse(id uint, price string, credit int) models.Course {
	return models.Course{ID: id, Name: "course", Price: models.NewMoneyFromString(price), Credit: credit}
}

func activityDescriptor(price string) DiscountDescriptor {
	money := models.NewMoneyFromString(price)
	return DiscountDescriptor{Type: "限时折扣", Price: &money, Expire: 60}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s, got %s", name, want, got.String())
	}
}

func TestQuoteActivityPriceOnly(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10})
	quote, err := pricing.Quote(QuoteInput{
		Courses:   []models.Course{quoteCourse(1, "100", 0)},
		Discounts: map[uint]DiscountDescriptor{1: activityDescriptor("80")},
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	assertDecimal(t, "total", quote.TotalPrice, "100")
	assertDecimal(t, "real", quote.RealPrice, "80")
	if quote.Details[0].DiscountName != "限时折扣" {
		t.Fatalf("unexpected discount name: %s", quote.Details[0].DiscountName)
	}
	assertDecimal(t, "detail real", quote.Details[0].RealPrice.Decimal, "80")
}

func TestQuoteRunningTotalResetsOnPlainCourse(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10})
	quote, err := pricing.Quote(QuoteInput{
		Courses: []models.Course{
			quoteCourse(1, "100", 0),
			quoteCourse(2, "50", 0),
			quoteCourse(3, "30", 0),
		},
		Discounts: map[uint]DiscountDescriptor{1: activityDescriptor("80"), 3: activityDescriptor("20")},
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	assertDecimal(t, "total", quote.TotalPrice, "180")
	// 80 被第二门无活动价课程的原价 50 覆盖，再加上 20
	assertDecimal(t, "real", quote.RealPrice, "70")
}

func TestQuoteCouponPicksLastHighestPlainCourse(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10})
	first := quoteCourse(1, "60", 0)
	second := quoteCourse(2, "60", 0)
	coupon := &cache.CouponLedgerEntry{Discount: constants.CouponDiscountPercentage, Sale: "*0.5"}
	quote, err := pricing.Quote(QuoteInput{
		Courses:   []models.Course{first, second, quoteCourse(3, "40", 0)},
		Discounts: map[uint]DiscountDescriptor{},
		Coupon:    coupon,
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	assertDecimal(t, "coupon", quote.CouponDiscount, "30")
	// 累计值在最后一门课程处重置为 40
	assertDecimal(t, "real", quote.RealPrice, "10")
}

func TestQuoteFlatCoupon(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10})
	quote, err := pricing.Quote(QuoteInput{
		Courses:   []models.Course{quoteCourse(1, "100", 0)},
		Discounts: map[uint]DiscountDescriptor{},
		Coupon:    &cache.CouponLedgerEntry{Discount: constants.CouponDiscountFlat, Sale: "-20"},
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	assertDecimal(t, "real", quote.RealPrice, "80")
}

func TestQuotePercentageCouponWithoutPlainCourse(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10})
	_, err := pricing.Quote(QuoteInput{
		Courses:   []models.Course{quoteCourse(1, "100", 0)},
		Discounts: map[uint]DiscountDescriptor{1: activityDescriptor("80")},
		Coupon:    &cache.CouponLedgerEntry{Discount: constants.CouponDiscountPercentage, Sale: "*0.9"},
	})
	if !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid, got %v", err)
	}
}

func TestQuoteCredit(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10})
	courses := []models.Course{quoteCourse(1, "100", 200), quoteCourse(2, "50", 100)}

	quote, err := pricing.Quote(QuoteInput{Courses: courses, Discounts: map[uint]DiscountDescriptor{}, Credit: 200})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.MaxCredit != 300 {
		t.Fatalf("expected max credit 300, got %d", quote.MaxCredit)
	}
	assertDecimal(t, "credit", quote.CreditDiscount, "20")
	assertDecimal(t, "real", quote.RealPrice, "30")

	if _, err := pricing.Quote(QuoteInput{Courses: courses, Discounts: map[uint]DiscountDescriptor{}, Credit: 301}); !errors.Is(err, ErrCreditExceedsEarnable) {
		t.Fatalf("expected ErrCreditExceedsEarnable, got %v", err)
	}
}

func TestQuoteClampsToZero(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10})
	quote, err := pricing.Quote(QuoteInput{
		Courses:   []models.Course{quoteCourse(1, "10", 500)},
		Discounts: map[uint]DiscountDescriptor{},
		Coupon:    &cache.CouponLedgerEntry{Discount: constants.CouponDiscountFlat, Sale: "-5"},
		Credit:    500,
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	assertDecimal(t, "real", quote.RealPrice, "0")
}

func TestQuoteEmptyCourses(t *testing.T) {
	pricing := NewPricingConfig(config.OrderConfig{})
	if _, err := pricing.Quote(QuoteInput{}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}
