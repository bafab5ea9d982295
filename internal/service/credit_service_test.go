package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"

	"gorm.io/gorm"
)

func TestCreditAdminAdjust(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	user := env.seedUser(t, 0)

	record, err := env.credits.AdminAdjust(ctx, AdjustCreditInput{UserID: user.ID, Delta: 50, Remark: "活动奖励", Reference: "campaign-1"})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if record.Reference != "admin:campaign-1" || record.BalanceBefore != 0 || record.BalanceAfter != 50 {
		t.Fatalf("unexpected record: %+v", record)
	}
	repeated, err := env.credits.AdminAdjust(ctx, AdjustCreditInput{UserID: user.ID, Delta: 50, Reference: "campaign-1"})
	if err != nil {
		t.Fatalf("repeat adjust failed: %v", err)
	}
	if repeated.ID != record.ID {
		t.Fatalf("repeat adjust should return the existing record")
	}
	balance, err := env.credits.Balance(user.ID)
	if err != nil || balance != 50 {
		t.Fatalf("expected balance 50, got %d err=%v", balance, err)
	}

	if _, err := env.credits.AdminAdjust(ctx, AdjustCreditInput{UserID: user.ID, Delta: -80}); !errors.Is(err, ErrInsufficientCredit) {
		t.Fatalf("expected ErrInsufficientCredit, got %v", err)
	}
	if _, err := env.credits.AdminAdjust(ctx, AdjustCreditInput{UserID: user.ID, Delta: 0}); !errors.Is(err, ErrCreditAdjustInvalid) {
		t.Fatalf("expected ErrCreditAdjustInvalid, got %v", err)
	}
	if _, err := env.credits.AdminAdjust(ctx, AdjustCreditInput{UserID: 99999, Delta: 10}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	deducted, err := env.credits.AdminAdjust(ctx, AdjustCreditInput{UserID: user.ID, Delta: -20})
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if deducted.BalanceBefore != 50 || deducted.BalanceAfter != 30 {
		t.Fatalf("unexpected deduct record: %+v", deducted)
	}
	assertCreditConserved(t, env, user.ID)
}

func TestCreditListRecords(t *testing.T) {
	env := setupServiceTest(t)
	user := env.seedUser(t, 300)
	env.placeOrder(t, user.ID, NoCoupon, 100, env.seedCourse(t, "go", "100", 100))

	_, total, err := env.credits.ListRecords(repository.CreditRecordListFilter{UserID: user.ID, Page: 1, PageSize: 10})
	if err != nil || total != 2 {
		t.Fatalf("expected 2 records, got %d err=%v", total, err)
	}
	spends, total, err := env.credits.ListRecords(repository.CreditRecordListFilter{UserID: user.ID, Operation: constants.CreditOperationSpend, Page: 1, PageSize: 10})
	if err != nil || total != 1 {
		t.Fatalf("expected 1 spend record, got %d err=%v", total, err)
	}
	if spends[0].Number != -100 || spends[0].Status != constants.CreditRecordPending {
		t.Fatalf("unexpected spend record: %+v", spends[0])
	}
}

func TestCreditRefundIsIdempotent(t *testing.T) {
	env := setupServiceTest(t)
	user := env.seedUser(t, 100)
	order := env.placeOrder(t, user.ID, NoCoupon, 100, env.seedCourse(t, "go", "100", 100))

	for i := 0; i < 2; i++ {
		if err := env.db.Transaction(func(tx *gorm.DB) error {
			return env.credits.refund(tx, user.ID, order.ID, order.Credit)
		}); err != nil {
			t.Fatalf("refund %d failed: %v", i, err)
		}
	}
	if got := env.reloadUser(t, user.ID).Credit; got != 100 {
		t.Fatalf("expected credit 100, got %d", got)
	}
	if n := env.count(t, &models.CreditRecord{}, "operation = ?", constants.CreditOperationRefund); n != 1 {
		t.Fatalf("expected one refund record, got %d", n)
	}
	assertCreditConserved(t, env, user.ID)
}
