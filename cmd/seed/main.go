package main

import (
	"time"

	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 方向与分类
	direction := models.CourseDirection{Name: "后端开发"}
	if err := models.DB.Where("name = ?", direction.Name).FirstOrCreate(&direction).Error; err != nil {
		stdLog.Fatalf("Failed to seed direction: %v", err)
	}
	category := models.CourseCategory{DirectionID: direction.ID, Name: "Go 语言"}
	if err := models.DB.Where("name = ? AND direction_id = ?", category.Name, direction.ID).FirstOrCreate(&category).Error; err != nil {
		stdLog.Fatalf("Failed to seed category: %v", err)
	}

	// 课程
	courses := []models.Course{
		{Name: "Go 并发编程实战", Price: money("199.00"), Credit: 100},
		{Name: "gRPC 微服务入门", Price: money("149.00"), Credit: 50},
		{Name: "Redis 缓存设计", Price: money("99.00"), Credit: 0},
	}
	courseIDs := make([]uint, 0, len(courses))
	for _, course := range courses {
		course.CategoryID = category.ID
		course.DirectionID = direction.ID
		course.IsShow = true
		if err := models.DB.Where("name = ?", course.Name).FirstOrCreate(&course).Error; err != nil {
			stdLog.Printf("Failed to seed course %s: %v", course.Name, err)
			continue
		}
		stdLog.Printf("Course ready: %s (id=%d)", course.Name, course.ID)
		courseIDs = append(courseIDs, course.ID)
	}
	if len(courseIDs) == 0 {
		stdLog.Fatalf("No course seeded")
	}

	// 限时折扣活动：第一门课 8 折
	now := time.Now()
	discountType := models.DiscountType{Name: "限时折扣"}
	if err := models.DB.Where("name = ?", discountType.Name).FirstOrCreate(&discountType).Error; err != nil {
		stdLog.Fatalf("Failed to seed discount type: %v", err)
	}
	discount := models.Discount{DiscountTypeID: discountType.ID, Condition: money("0"), Sale: "*0.8"}
	if err := models.DB.Where("discount_type_id = ? AND sale = ?", discountType.ID, discount.Sale).FirstOrCreate(&discount).Error; err != nil {
		stdLog.Fatalf("Failed to seed discount: %v", err)
	}
	activity := models.Activity{Name: "开学季", StartTime: now.Add(-time.Hour), EndTime: now.AddDate(0, 1, 0)}
	if err := models.DB.Where("name = ?", activity.Name).FirstOrCreate(&activity).Error; err != nil {
		stdLog.Fatalf("Failed to seed activity: %v", err)
	}
	mapping := models.CourseActivityPrice{ActivityID: activity.ID, CourseID: courseIDs[0], DiscountID: discount.ID}
	if err := models.DB.Where("activity_id = ? AND course_id = ?", activity.ID, courseIDs[0]).FirstOrCreate(&mapping).Error; err != nil {
		stdLog.Fatalf("Failed to seed activity price: %v", err)
	}

	// 通用满减券
	coupon := models.Coupon{
		Name:       "满 100 减 20",
		Discount:   constants.CouponDiscountFlat,
		CouponType: constants.CouponScopeUniversal,
		Condition:  money("100.00"),
		Sale:       "-20",
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.AddDate(0, 3, 0),
	}
	if err := models.DB.Where("name = ?", coupon.Name).FirstOrCreate(&coupon).Error; err != nil {
		stdLog.Fatalf("Failed to seed coupon: %v", err)
	}

	// 演示用户并发券
	user := models.User{Username: "demo", Email: "demo@example.com", Status: constants.UserStatusActive, Credit: 200}
	if err := models.DB.Where("username = ?", user.Username).FirstOrCreate(&user).Error; err != nil {
		stdLog.Fatalf("Failed to seed user: %v", err)
	}
	var issued int64
	if err := models.DB.Model(&models.CouponIssuance{}).
		Where("user_id = ? AND coupon_id = ?", user.ID, coupon.ID).
		Count(&issued).Error; err != nil {
		stdLog.Fatalf("Failed to check issuance: %v", err)
	}
	if issued == 0 {
		issuance := models.CouponIssuance{UserID: user.ID, CouponID: coupon.ID, UseStatus: constants.CouponIssuanceUnused}
		if err := models.DB.Create(&issuance).Error; err != nil {
			stdLog.Fatalf("Failed to issue coupon: %v", err)
		}
	}

	stdLog.Printf("Seed finished: user=%s courses=%d coupon=%s", user.Username, len(courseIDs), coupon.Name)
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}
