//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	all := models.AllModels()
	_ = db.Migrator().DropTable(all...)
	if err := db.AutoMigrate(all...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(all...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresConcurrentCreditDeduction(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewUserRepository(db)
	user := models.User{Username: "pg-credit", Credit: 500}
	if err := repo.Create(&user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DeductCredit(user.ID, 100)
			if err != nil {
				t.Errorf("deduct failed: %v", err)
				return
			}
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 5 {
		t.Fatalf("expected exactly 5 deductions, got %d", wins)
	}
	stored, _ := repo.GetByID(user.ID)
	if stored.Credit != 0 {
		t.Fatalf("expected zero balance, got %d", stored.Credit)
	}
}

func TestPostgresOrderStatusRace(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)
	order := models.Order{OrderNumber: "PG0001", Name: "课程购买", UserID: 1}
	if err := repo.Create(&order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	var wins int32
	var wg sync.WaitGroup
	for _, target := range []int{constants.OrderStatusPaid, constants.OrderStatusCancelled} {
		wg.Add(1)
		go func(to int) {
			defer wg.Done()
			ok, err := repo.TransitionStatus(order.ID, constants.OrderStatusPending, to, map[string]interface{}{"updated_at": time.Now()})
			if err != nil {
				t.Errorf("transition failed: %v", err)
				return
			}
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}(target)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one transition, got %d", wins)
	}
}
