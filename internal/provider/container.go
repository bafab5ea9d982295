package provider

import (
	"errors"
	"fmt"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/payment/alipay"
	"github.com/fuguang-next/internal/queue"
	"github.com/fuguang-next/internal/repository"
	"github.com/fuguang-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	AlipayClient *alipay.Client
	Pricing      service.PricingConfig

	// Repositories
	UserRepo          repository.UserRepository
	CourseRepo        repository.CourseRepository
	OrderRepo         repository.OrderRepository
	CouponRepo        repository.CouponRepository
	CreditRepo        repository.CreditRepository
	UserCourseRepo    repository.UserCourseRepository
	PaymentReviewRepo repository.PaymentReviewRepository

	// Redis stores
	CartStore    cache.CartStore
	CouponLedger cache.CouponLedger
	OrderCounter *cache.OrderCounter
	Locker       cache.Locker

	// Services
	AuthService      *service.AuthService
	DiscountEngine   *service.DiscountEngine
	CartService      *service.CartService
	CouponService    *service.CouponService
	CreditService    *service.CreditService
	OrderService     *service.OrderService
	PaymentService   *service.PaymentService
	ReconcileService *service.ReconcileService
}

// NewContainer 初始化容器，购物车与优惠券账本依赖 Redis，未启用时直接报错
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	if !cache.Enabled() {
		return nil, errors.New("redis is required for cart and coupon ledger")
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("init queue client: %w", err)
	}
	if !queueClient.Enabled() {
		logger.Warnw("provider_queue_disabled", "hint", "order timeout cancel relies on reconcile sweep")
	}

	alipayClient, err := alipay.NewClient(alipay.FromAppConfig(cfg.Alipay), nil)
	if err != nil {
		return nil, fmt.Errorf("init alipay client: %w", err)
	}

	c := &Container{
		Config:       cfg,
		QueueClient:  queueClient,
		AlipayClient: alipayClient,
		Pricing:      service.NewPricingConfig(cfg.Order),
	}

	// 1. 初始化 Repositories 与 Redis 存储
	c.initRepositories()
	c.initStores()

	// 2. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CourseRepo = repository.NewCourseRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CreditRepo = repository.NewCreditRepository(db)
	c.UserCourseRepo = repository.NewUserCourseRepository(db)
	c.PaymentReviewRepo = repository.NewPaymentReviewRepository(db)
}

func (c *Container) initStores() {
	client := cache.Client()
	prefix := cache.Prefix()
	c.CartStore = cache.NewRedisCartStore(client, prefix)
	c.CouponLedger = cache.NewRedisCouponLedger(client, prefix)
	c.OrderCounter = cache.NewOrderCounter(client, prefix)
	c.Locker = cache.NewRedisLocker(client, prefix)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config)
	c.DiscountEngine = service.NewDiscountEngine(c.CourseRepo, c.Pricing)
	c.CartService = service.NewCartService(c.CartStore, c.CourseRepo, c.UserCourseRepo, c.DiscountEngine)
	c.CreditService = service.NewCreditService(c.UserRepo, c.CreditRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CourseRepo, c.UserRepo, c.CouponLedger, c.CartStore, c.Pricing)
	c.OrderService = service.NewOrderService(service.OrderServiceDeps{
		OrderRepo:  c.OrderRepo,
		CourseRepo: c.CourseRepo,
		UserRepo:   c.UserRepo,
		CouponRepo: c.CouponRepo,
		Cart:       c.CartStore,
		Ledger:     c.CouponLedger,
		Numbers:    service.NewOrderNumberAllocator(c.OrderCounter),
		Discounts:  c.DiscountEngine,
		Credits:    c.CreditService,
		Coupons:    c.CouponService,
		Scheduler:  c.QueueClient,
		Pricing:    c.Pricing,
		Locks:      c.Locker,
	})
	c.PaymentService = service.NewPaymentService(service.PaymentServiceDeps{
		OrderRepo:      c.OrderRepo,
		CouponRepo:     c.CouponRepo,
		UserCourseRepo: c.UserCourseRepo,
		ReviewRepo:     c.PaymentReviewRepo,
		Credits:        c.CreditService,
		Gateway:        c.AlipayClient,
		Scheduler:      c.QueueClient,
		QueryTimeout:   alipay.FromAppConfig(c.Config.Alipay).QueryTimeout,
	})
	c.ReconcileService = service.NewReconcileService(c.OrderRepo, c.PaymentService, c.OrderService, c.Config.Reconcile, c.Pricing)
}
