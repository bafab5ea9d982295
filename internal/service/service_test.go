package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/queue"
	"github.com/fuguang-next/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var userSeq atomic.Int64

type fakeScheduler struct {
	mu       sync.Mutex
	timeouts []queue.OrderTimeoutCancelPayload
	delays   []time.Duration
	retries  []queue.PaymentSettleRetryPayload
	err      error
}

func (f *fakeScheduler) EnqueueOrderTimeoutCancel(payload queue.OrderTimeoutCancelPayload, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.timeouts = append(f.timeouts, payload)
	f.delays = append(f.delays, delay)
	return nil
}

func (f *fakeScheduler) EnqueuePaymentSettleRetry(payload queue.PaymentSettleRetryPayload, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries = append(f.retries, payload)
	return nil
}

type fakeGateway struct {
	mu        sync.Mutex
	statuses  map[string]string
	queryErr  error
	verifyErr error
	queries   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: map[string]string{}}
}

func (g *fakeGateway) PagePayURL(ctx context.Context, orderNumber string, amount decimal.Decimal, subject string) (string, error) {
	return fmt.Sprintf("https://gateway.test/pay?out_trade_no=%s&total_amount=%s", orderNumber, amount.StringFixed(2)), nil
}

func (g *fakeGateway) QueryTradeStatus(ctx context.Context, orderNumber string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries++
	if g.queryErr != nil {
		return "", g.queryErr
	}
	return g.statuses[orderNumber], nil
}

func (g *fakeGateway) VerifyCallback(form map[string][]string) error {
	return g.verifyErr
}

func (g *fakeGateway) setStatus(orderNumber, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[orderNumber] = status
}

func (g *fakeGateway) queryCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queries
}

type serviceTestEnv struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	cart      *cache.RedisCartStore
	ledger    *cache.RedisCouponLedger
	scheduler *fakeScheduler
	gateway   *fakeGateway
	pricing   PricingConfig

	carts    *CartService
	coupons  *CouponService
	credits  *CreditService
	orders   *OrderService
	payments *PaymentService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	pricing := NewPricingConfig(config.OrderConfig{CreditToMoneyRate: 10, TimeoutMinutes: 30})
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	userCourseRepo := repository.NewUserCourseRepository(db)
	reviewRepo := repository.NewPaymentReviewRepository(db)

	cartStore := cache.NewRedisCartStore(client, "t")
	ledger := cache.NewRedisCouponLedger(client, "t")
	scheduler := &fakeScheduler{}
	gateway := newFakeGateway()

	discounts := NewDiscountEngine(courseRepo, pricing)
	credits := NewCreditService(userRepo, creditRepo)
	coupons := NewCouponService(couponRepo, courseRepo, userRepo, ledger, cartStore, pricing)
	orders := NewOrderService(OrderServiceDeps{
		OrderRepo:  orderRepo,
		CourseRepo: courseRepo,
		UserRepo:   userRepo,
		CouponRepo: couponRepo,
		Cart:       cartStore,
		Ledger:     ledger,
		Numbers:    NewOrderNumberAllocator(cache.NewOrderCounter(client, "t")),
		Discounts:  discounts,
		Credits:    credits,
		Coupons:    coupons,
		Scheduler:  scheduler,
		Pricing:    pricing,
		Locks:      cache.NewRedisLocker(client, "t"),
	})
	payments := NewPaymentService(PaymentServiceDeps{
		OrderRepo:      orderRepo,
		CouponRepo:     couponRepo,
		UserCourseRepo: userCourseRepo,
		ReviewRepo:     reviewRepo,
		Credits:        credits,
		Gateway:        gateway,
		Scheduler:      scheduler,
		QueryTimeout:   time.Second,
	})

	return &serviceTestEnv{
		db:        db,
		mr:        mr,
		cart:      cartStore,
		ledger:    ledger,
		scheduler: scheduler,
		gateway:   gateway,
		pricing:   pricing,
		carts:     NewCartService(cartStore, courseRepo, userCourseRepo, discounts),
		coupons:   coupons,
		credits:   credits,
		orders:    orders,
		payments:  payments,
	}
}

func (e *serviceTestEnv) seedUser(t *testing.T, credit int) *models.User {
	t.Helper()
	user := &models.User{
		Username: fmt.Sprintf("student_%d", userSeq.Add(1)),
		Email:    "student@example.com",
		Status:   constants.UserStatusActive,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if credit > 0 {
		if _, err := e.credits.AdminAdjust(context.Background(), AdjustCreditInput{UserID: user.ID, Delta: credit, Remark: "seed"}); err != nil {
			t.Fatalf("seed credit failed: %v", err)
		}
		user.Credit = credit
	}
	return user
}

func (e *serviceTestEnv) seedCourse(t *testing.T, name, price string, credit int) *models.Course {
	t.Helper()
	course := &models.Course{
		Name:        name,
		Cover:       "/covers/" + name + ".png",
		CategoryID:  1,
		DirectionID: 1,
		Price:       models.NewMoneyFromString(price),
		Credit:      credit,
		IsShow:      true,
	}
	if err := e.db.Create(course).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	return course
}

func (e *serviceTestEnv) seedActivityPrice(t *testing.T, courseID uint, typeName, sale, condition string, start, end time.Time) {
	t.Helper()
	activity := models.Activity{Name: "限时活动", StartTime: start, EndTime: end}
	if err := e.db.Create(&activity).Error; err != nil {
		t.Fatalf("create activity failed: %v", err)
	}
	discountType := models.DiscountType{Name: typeName}
	if err := e.db.Create(&discountType).Error; err != nil {
		t.Fatalf("create discount type failed: %v", err)
	}
	discount := models.Discount{DiscountTypeID: discountType.ID, Condition: models.NewMoneyFromString(condition), Sale: sale}
	if err := e.db.Omit("DiscountType").Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	row := models.CourseActivityPrice{ActivityID: activity.ID, CourseID: courseID, DiscountID: discount.ID}
	if err := e.db.Omit("Activity", "Discount").Create(&row).Error; err != nil {
		t.Fatalf("create activity price failed: %v", err)
	}
}

func (e *serviceTestEnv) seedCoupon(t *testing.T, discount, couponType int, sale string, end time.Time, targets ...models.CouponTarget) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Name:       "新人券",
		Discount:   discount,
		CouponType: couponType,
		Condition:  models.NewMoneyFromString("0"),
		Sale:       sale,
		StartTime:  time.Now().Add(-time.Hour),
		EndTime:    end,
		Targets:    targets,
	}
	if err := e.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func (e *serviceTestEnv) issueCoupon(t *testing.T, userID uint, coupon *models.Coupon) *models.CouponIssuance {
	t.Helper()
	issuance, err := e.coupons.IssueCoupon(context.Background(), userID, coupon.ID)
	if err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	return issuance
}

func (e *serviceTestEnv) addToCart(t *testing.T, userID uint, courseID uint, selected bool) {
	t.Helper()
	if _, err := e.carts.Add(context.Background(), userID, courseID, selected); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
}

func (e *serviceTestEnv) placeOrder(t *testing.T, userID uint, couponID int64, credit int, courses ...*models.Course) *models.Order {
	t.Helper()
	for _, course := range courses {
		e.addToCart(t, userID, course.ID, true)
	}
	order, err := e.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:           userID,
		PayType:          constants.PayTypeAlipay,
		CouponIssuanceID: couponID,
		Credit:           credit,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (e *serviceTestEnv) reloadOrder(t *testing.T, id uint) *models.Order {
	t.Helper()
	var order models.Order
	if err := e.db.Preload("Details").First(&order, id).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return &order
}

func (e *serviceTestEnv) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := e.db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return &user
}

func (e *serviceTestEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func mustDecimal(t *testing.T, got models.Money, want string) {
	t.Helper()
	if !got.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected %s, got %s", want, got.String())
	}
}
