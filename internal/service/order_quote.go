package service

import (
	"strings"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"

	"github.com/shopspring/decimal"
)

// QuoteInput 订单计价输入
type QuoteInput struct {
	Courses   []models.Course
	Discounts map[uint]DiscountDescriptor
	Coupon    *cache.CouponLedgerEntry
	Credit    int
}

// OrderQuote 订单计价结果
type OrderQuote struct {
	TotalPrice     decimal.Decimal
	ActivityPrice  decimal.Decimal
	CouponDiscount decimal.Decimal
	CreditDiscount decimal.Decimal
	RealPrice      decimal.Decimal
	MaxCredit      int
	Details        []models.OrderDetail
}

// Quote 计算订单金额
//
// 活动价累计沿用既有规则：有活动价的课程累加活动价，没有活动价的课程会把
// 累计值重置为该课程原价。优惠券只作用于一门没有活动价的课程（价格最高、
// 同价取靠后者）。积分抵扣在优惠券之后叠加，最终实付限制在 [0, 原价合计]。
func (p PricingConfig) Quote(input QuoteInput) (*OrderQuote, error) {
	if len(input.Courses) == 0 {
		return nil, ErrEmptyCart
	}
	places := p.Places()
	quote := &OrderQuote{
		TotalPrice:     decimal.Zero,
		ActivityPrice:  decimal.Zero,
		CouponDiscount: decimal.Zero,
		CreditDiscount: decimal.Zero,
		Details:        make([]models.OrderDetail, 0, len(input.Courses)),
	}

	var best *models.Course
	for i := range input.Courses {
		course := input.Courses[i]
		descriptor := input.Discounts[course.ID]
		price := course.Price.Decimal

		detail := models.OrderDetail{
			CourseID:     course.ID,
			Name:         course.Name,
			Cover:        course.Cover,
			Price:        course.Price,
			RealPrice:    course.Price,
			DiscountName: descriptor.Type,
		}

		quote.TotalPrice = quote.TotalPrice.Add(price)
		if descriptor.HasPrice() {
			detail.RealPrice = *descriptor.Price
			quote.ActivityPrice = quote.ActivityPrice.Add(descriptor.Price.Decimal)
		} else {
			quote.ActivityPrice = price
			if best == nil || price.GreaterThanOrEqual(best.Price.Decimal) {
				best = &input.Courses[i]
			}
		}
		quote.MaxCredit += course.Credit
		quote.Details = append(quote.Details, detail)
	}

	if input.Coupon != nil {
		discount, err := couponDiscount(input.Coupon, best)
		if err != nil {
			return nil, err
		}
		quote.CouponDiscount = discount.Round(places)
	}

	if input.Credit > 0 {
		if input.Credit > quote.MaxCredit {
			return nil, ErrCreditExceedsEarnable
		}
		quote.CreditDiscount = p.CreditToMoney(input.Credit)
	}

	realPrice := quote.ActivityPrice.Sub(quote.CouponDiscount).Sub(quote.CreditDiscount)
	if realPrice.IsNegative() {
		realPrice = decimal.Zero
	}
	if realPrice.GreaterThan(quote.TotalPrice) {
		realPrice = quote.TotalPrice
	}
	quote.TotalPrice = quote.TotalPrice.Round(places)
	quote.ActivityPrice = quote.ActivityPrice.Round(places)
	quote.RealPrice = realPrice.Round(places)
	return quote, nil
}

// couponDiscount 计算优惠券抵扣金额：满减取面额，折扣按最佳课程原价计算
func couponDiscount(coupon *cache.CouponLedgerEntry, best *models.Course) (decimal.Decimal, error) {
	sale := strings.TrimSpace(coupon.Sale)
	if len(sale) < 2 {
		return decimal.Zero, ErrCouponInvalid
	}
	value, err := decimal.NewFromString(strings.TrimSpace(sale[1:]))
	if err != nil || value.IsNegative() {
		return decimal.Zero, ErrCouponInvalid
	}
	switch coupon.Discount {
	case constants.CouponDiscountFlat:
		return value, nil
	case constants.CouponDiscountPercentage:
		if best == nil {
			return decimal.Zero, ErrCouponInvalid
		}
		return best.Price.Decimal.Mul(decimal.NewFromInt(1).Sub(value)), nil
	default:
		return decimal.Zero, ErrCouponInvalid
	}
}
