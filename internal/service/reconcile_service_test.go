package service

import (
	"context"
	"testing"
	"time"

	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"
)

func backdateOrder(t *testing.T, env *serviceTestEnv, orderID uint, age time.Duration) {
	t.Helper()
	if err := env.db.Model(&models.Order{}).Where("id = ?", orderID).Update("created_at", time.Now().Add(-age)).Error; err != nil {
		t.Fatalf("backdate order failed: %v", err)
	}
}

func TestReconcileSweep(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	user := env.seedUser(t, 100)
	paid := env.placeOrder(t, user.ID, NoCoupon, 0, env.seedCourse(t, "go", "100", 0))
	unpaid := env.placeOrder(t, user.ID, NoCoupon, 100, env.seedCourse(t, "rust", "100", 100))
	fresh := env.placeOrder(t, user.ID, NoCoupon, 0, env.seedCourse(t, "zig", "100", 0))
	backdateOrder(t, env, paid.ID, 2*time.Hour)
	backdateOrder(t, env, unpaid.ID, 2*time.Hour)
	env.gateway.setStatus(paid.OrderNumber, constants.AlipayTradeSuccess)

	sweeper := NewReconcileService(
		repository.NewOrderRepository(env.db),
		env.payments,
		env.orders,
		config.ReconcileConfig{BatchSize: 1, Concurrency: 1, GraceMinutes: 5},
		env.pricing,
	)
	stats, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.Scanned != 2 || stats.Settled != 1 || stats.Cancelled != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if got := env.reloadOrder(t, paid.ID).OrderStatus; got != constants.OrderStatusPaid {
		t.Fatalf("expected paid, got %d", got)
	}
	if got := env.reloadOrder(t, unpaid.ID).OrderStatus; got != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %d", got)
	}
	if got := env.reloadOrder(t, fresh.ID).OrderStatus; got != constants.OrderStatusPending {
		t.Fatalf("fresh order must stay pending, got %d", got)
	}
	if got := env.reloadUser(t, user.ID).Credit; got != 100 {
		t.Fatalf("credit should be refunded, got %d", got)
	}

	again, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if again.Scanned != 0 {
		t.Fatalf("second sweep should find nothing, got %+v", again)
	}
}

func TestReconcileSweepSkipsOnGatewayError(t *testing.T) {
	env := setupServiceTest(t)
	user := env.seedUser(t, 0)
	order := env.placeOrder(t, user.ID, NoCoupon, 0, env.seedCourse(t, "go", "100", 0))
	backdateOrder(t, env, order.ID, 2*time.Hour)
	env.gateway.queryErr = context.DeadlineExceeded

	sweeper := NewReconcileService(repository.NewOrderRepository(env.db), env.payments, env.orders, config.ReconcileConfig{Concurrency: 1}, env.pricing)
	stats, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.Skipped != 1 {
		t.Fatalf("expected skipped order, got %+v", stats)
	}
	if got := env.reloadOrder(t, order.ID).OrderStatus; got != constants.OrderStatusPending {
		t.Fatalf("order must stay pending, got %d", got)
	}
}
