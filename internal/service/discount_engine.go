package service

import (
	"strings"
	"time"

	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"

	"github.com/shopspring/decimal"
)

// DiscountDescriptor 课程当前的活动优惠信息，Price 为空表示没有优惠价
type DiscountDescriptor struct {
	Type   string        `json:"type,omitempty"`
	Price  *models.Money `json:"price,omitempty"`
	Expire int64         `json:"expire,omitempty"`
}

// HasPrice 是否存在活动价
func (d DiscountDescriptor) HasPrice() bool {
	return d.Price != nil
}

// DiscountEngine 活动价计算
type DiscountEngine struct {
	courseRepo repository.CourseRepository
	pricing    PricingConfig
	now        func() time.Time
}

// NewDiscountEngine 创建活动价计算器
func NewDiscountEngine(courseRepo repository.CourseRepository, pricing PricingConfig) *DiscountEngine {
	return &DiscountEngine{courseRepo: courseRepo, pricing: pricing, now: time.Now}
}

// WithRepo 使用指定仓库（通常是事务内仓库）计算
func (e *DiscountEngine) WithRepo(courseRepo repository.CourseRepository) *DiscountEngine {
	return &DiscountEngine{courseRepo: courseRepo, pricing: e.pricing, now: e.now}
}

// Describe 批量计算课程的活动优惠
func (e *DiscountEngine) Describe(courses []models.Course) (map[uint]DiscountDescriptor, error) {
	result := make(map[uint]DiscountDescriptor, len(courses))
	if len(courses) == 0 {
		return result, nil
	}
	ids := make([]uint, 0, len(courses))
	for _, course := range courses {
		ids = append(ids, course.ID)
	}
	now := e.now()
	mappings, err := e.courseRepo.ActiveActivityPrices(ids, now)
	if err != nil {
		return nil, err
	}
	for _, course := range courses {
		mapping, ok := mappings[course.ID]
		if !ok {
			result[course.ID] = DiscountDescriptor{}
			continue
		}
		result[course.ID] = e.describe(course, mapping, now)
	}
	return result, nil
}

func (e *DiscountEngine) describe(course models.Course, mapping models.CourseActivityPrice, now time.Time) DiscountDescriptor {
	descriptor := DiscountDescriptor{Type: mapping.Discount.DiscountType.Name}
	if remaining := int64(mapping.Activity.EndTime.Sub(now).Seconds()); remaining > 0 {
		descriptor.Expire = remaining
	}
	if course.Price.Decimal.LessThan(mapping.Discount.Condition.Decimal) {
		return descriptor
	}
	if price, ok := ApplySaleFormula(course.Price.Decimal, mapping.Discount.Sale, e.pricing.Places()); ok {
		money := models.NewMoneyFromDecimal(price)
		descriptor.Price = &money
	}
	return descriptor
}

// ApplySaleFormula 按公式计算优惠价：0 免费，*f 打折，-a 立减；无法识别时返回 false
func ApplySaleFormula(price decimal.Decimal, sale string, places int32) (decimal.Decimal, bool) {
	sale = strings.TrimSpace(sale)
	if sale == "" {
		return decimal.Zero, false
	}
	var result decimal.Decimal
	switch sale[0] {
	case '0':
		result = decimal.Zero
	case '*', '-':
		operand, err := decimal.NewFromString(strings.TrimSpace(sale[1:]))
		if err != nil {
			return decimal.Zero, false
		}
		if sale[0] == '*' {
			result = price.Mul(operand)
		} else {
			result = price.Sub(operand)
		}
	default:
		return decimal.Zero, false
	}
	if result.IsNegative() {
		result = decimal.Zero
	}
	return result.Round(places), true
}
