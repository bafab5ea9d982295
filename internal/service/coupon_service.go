package service

import (
	"context"
	"time"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"

	"gorm.io/gorm"
)

// enableAllCourses 通用券的适用课程标记
const enableAllCourses = "__all__"

// UsableCoupon 本次结算可用的优惠券
type UsableCoupon struct {
	cache.CouponLedgerEntry
	EnableCourse interface{} `json:"enable_course"`
}

// UsableCouponsResult 结算页可用优惠券及积分信息
type UsableCouponsResult struct {
	Coupons       []UsableCoupon `json:"coupon_list"`
	HasCredit     int            `json:"has_credit"`
	CreditToMoney int64          `json:"credit_to_money"`
}

// CouponService 用户优惠券服务（数据库为准，Redis 账本同步写入）
type CouponService struct {
	couponRepo repository.CouponRepository
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	ledger     cache.CouponLedger
	cart       cache.CartStore
	pricing    PricingConfig
	now        func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, courseRepo repository.CourseRepository, userRepo repository.UserRepository, ledger cache.CouponLedger, cart cache.CartStore, pricing PricingConfig) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		cart:       cart,
		pricing:    pricing,
		now:        time.Now,
	}
}

// IssueCoupon 给用户发放优惠券，写库成功后同步写入账本
func (s *CouponService) IssueCoupon(ctx context.Context, userID, couponID uint) (*models.CouponIssuance, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	coupon, err := s.couponRepo.GetCouponByID(couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	ttl := ledgerTTL(coupon.EndTime, s.now())
	if ttl <= 0 {
		return nil, ErrCouponExpired
	}

	issuance := &models.CouponIssuance{
		UserID:    userID,
		CouponID:  coupon.ID,
		UseStatus: constants.CouponIssuanceUnused,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.couponRepo.WithTx(tx).CreateIssuance(issuance); err != nil {
			return err
		}
		issuance.Coupon = *coupon
		return s.ledger.Put(ctx, newCouponLedgerEntry(issuance, coupon), ttl)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("coupon_issued", "user_id", userID, "coupon_id", coupon.ID, "issuance_id", issuance.ID)
	return issuance, nil
}

// RevokeCoupon 撤销未使用的用户优惠券
func (s *CouponService) RevokeCoupon(ctx context.Context, issuanceID uint) error {
	issuance, err := s.couponRepo.GetIssuanceByID(issuanceID)
	if err != nil {
		return err
	}
	if issuance == nil {
		return ErrCouponIssuanceNotFound
	}
	switch issuance.UseStatus {
	case constants.CouponIssuanceRevoked:
		return s.ledger.Delete(ctx, issuance.UserID, issuance.ID)
	case constants.CouponIssuanceBound:
		return ErrCouponIssuanceInUse
	case constants.CouponIssuanceUsed:
		return ErrCouponInvalid
	}
	ok, err := s.couponRepo.TransitionIssuance(issuance.ID, constants.CouponIssuanceUnused, constants.CouponIssuanceRevoked, nil)
	if err != nil {
		return err
	}
	if !ok {
		// 并发下单已锁定
		return ErrCouponIssuanceInUse
	}
	if err := s.ledger.Delete(ctx, issuance.UserID, issuance.ID); err != nil {
		logger.Warnw("coupon_ledger_delete_failed", "issuance_id", issuance.ID, "error", err)
		return err
	}
	logger.Infow("coupon_revoked", "user_id", issuance.UserID, "issuance_id", issuance.ID)
	return nil
}

// ListUserCoupons 用户账本中全部可用优惠券
func (s *CouponService) ListUserCoupons(ctx context.Context, userID uint) ([]cache.CouponLedgerEntry, error) {
	entries, err := s.ledger.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []cache.CouponLedgerEntry{}
	}
	return entries, nil
}

// ListUsableCoupons 根据购物车勾选课程筛选可用优惠券
func (s *CouponService) ListUsableCoupons(ctx context.Context, userID uint) (*UsableCouponsResult, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	entries, err := s.ledger.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	cartEntries, err := s.cart.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	selectedIDs := make([]uint, 0, len(cartEntries))
	for courseID, selected := range cartEntries {
		if selected {
			selectedIDs = append(selectedIDs, courseID)
		}
	}
	var courses []models.Course
	if len(selectedIDs) > 0 {
		courses, err = s.courseRepo.ListPublishedByIDs(selectedIDs)
		if err != nil {
			return nil, err
		}
	}

	usable := make([]UsableCoupon, 0, len(entries))
	for _, entry := range entries {
		if entry.CouponType == constants.CouponScopeUniversal {
			usable = append(usable, UsableCoupon{CouponLedgerEntry: entry, EnableCourse: enableAllCourses})
			continue
		}
		matched := matchCouponCourses(entry, courses)
		if len(matched) > 0 {
			usable = append(usable, UsableCoupon{CouponLedgerEntry: entry, EnableCourse: matched})
		}
	}
	return &UsableCouponsResult{
		Coupons:       usable,
		HasCredit:     user.Credit,
		CreditToMoney: s.pricing.CreditToMoneyRate().IntPart(),
	}, nil
}

// restoreLedger 订单取消后把优惠券放回账本，已过期则跳过
func (s *CouponService) restoreLedger(ctx context.Context, issuance *models.CouponIssuance) error {
	if issuance == nil || issuance.Coupon.ID == 0 {
		return nil
	}
	ttl := ledgerTTL(issuance.Coupon.EndTime, s.now())
	if ttl <= 0 {
		return nil
	}
	return s.ledger.Put(ctx, newCouponLedgerEntry(issuance, &issuance.Coupon), ttl)
}

func matchCouponCourses(entry cache.CouponLedgerEntry, courses []models.Course) []uint {
	var targets []uint
	var pick func(course models.Course) uint
	switch entry.CouponType {
	case constants.CouponScopeDirection:
		targets = entry.ToDirection
		pick = func(course models.Course) uint { return course.DirectionID }
	case constants.CouponScopeCategory:
		targets = entry.ToCategory
		pick = func(course models.Course) uint { return course.CategoryID }
	case constants.CouponScopeCourse:
		targets = entry.ToCourse
		pick = func(course models.Course) uint { return course.ID }
	default:
		return nil
	}
	allowed := make(map[uint]struct{}, len(targets))
	for _, id := range targets {
		allowed[id] = struct{}{}
	}
	matched := make([]uint, 0)
	for _, course := range courses {
		if _, ok := allowed[pick(course)]; ok {
			matched = append(matched, course.ID)
		}
	}
	return matched
}

func newCouponLedgerEntry(issuance *models.CouponIssuance, coupon *models.Coupon) *cache.CouponLedgerEntry {
	entry := &cache.CouponLedgerEntry{
		IssuanceID: issuance.ID,
		UserID:     issuance.UserID,
		CouponID:   coupon.ID,
		Name:       coupon.Name,
		Discount:   coupon.Discount,
		CouponType: coupon.CouponType,
		Condition:  coupon.Condition.String(),
		Sale:       coupon.Sale,
		StartTime:  coupon.StartTime,
		EndTime:    coupon.EndTime,
	}
	for _, target := range coupon.Targets {
		switch target.TargetType {
		case constants.CouponScopeDirection:
			entry.ToDirection = append(entry.ToDirection, target.TargetID)
		case constants.CouponScopeCategory:
			entry.ToCategory = append(entry.ToCategory, target.TargetID)
		case constants.CouponScopeCourse:
			entry.ToCourse = append(entry.ToCourse, target.TargetID)
		}
	}
	return entry
}

func ledgerTTL(endTime, now time.Time) time.Duration {
	if endTime.IsZero() {
		return 0
	}
	return endTime.Sub(now).Truncate(time.Second)
}

