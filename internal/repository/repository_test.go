package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createActivityPrice(t *testing.T, db *gorm.DB, courseID uint, start, end time.Time, sale string) models.CourseActivityPrice {
	t.Helper()
	activity := models.Activity{Name: "限时活动", StartTime: start, EndTime: end}
	if err := db.Create(&activity).Error; err != nil {
		t.Fatalf("create activity failed: %v", err)
	}
	discountType := models.DiscountType{Name: "限时折扣"}
	if err := db.Create(&discountType).Error; err != nil {
		t.Fatalf("create discount type failed: %v", err)
	}
	discount := models.Discount{DiscountTypeID: discountType.ID, Sale: sale}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	row := models.CourseActivityPrice{ActivityID: activity.ID, CourseID: courseID, DiscountID: discount.ID}
	if err := db.Omit("Activity", "Discount").Create(&row).Error; err != nil {
		t.Fatalf("create activity price failed: %v", err)
	}
	return row
}

func TestCourseRepositoryActiveActivityPricesPicksNewest(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCourseRepository(db)
	now := time.Now()

	createActivityPrice(t, db, 1, now.Add(-time.Hour), now.Add(time.Hour), "*0.9")
	newest := createActivityPrice(t, db, 1, now.Add(-time.Hour), now.Add(time.Hour), "*0.8")
	createActivityPrice(t, db, 1, now.Add(-3*time.Hour), now.Add(-2*time.Hour), "0")
	createActivityPrice(t, db, 2, now.Add(time.Hour), now.Add(2*time.Hour), "0")

	got, err := repo.ActiveActivityPrices([]uint{1, 2}, now)
	if err != nil {
		t.Fatalf("active activity prices failed: %v", err)
	}
	row, ok := got[1]
	if !ok || row.ID != newest.ID {
		t.Fatalf("expected newest mapping %d, got %+v", newest.ID, row)
	}
	if row.Discount.Sale != "*0.8" || row.Discount.DiscountType.Name != "限时折扣" {
		t.Fatalf("expected preloaded discount, got %+v", row.Discount)
	}
	if row.Activity.EndTime.IsZero() {
		t.Fatalf("expected preloaded activity")
	}
	if _, ok := got[2]; ok {
		t.Fatalf("activity not started should be ignored")
	}
}

func TestCourseRepositoryListPublishedSkipsHidden(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCourseRepository(db)

	visible := models.Course{Name: "Go 进阶", Price: models.NewMoneyFromString("100"), IsShow: true}
	hidden := models.Course{Name: "下架课程", Price: models.NewMoneyFromString("50"), IsShow: true}
	if err := repo.Create(&visible); err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	if err := repo.Create(&hidden); err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	if err := db.Model(&hidden).Update("is_show", false).Error; err != nil {
		t.Fatalf("hide course failed: %v", err)
	}

	courses, err := repo.ListPublishedByIDs([]uint{visible.ID, hidden.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != visible.ID {
		t.Fatalf("unexpected courses: %+v", courses)
	}
	got, err := repo.GetPublishedByID(hidden.ID)
	if err != nil || got != nil {
		t.Fatalf("expected hidden course to be nil, got %+v err=%v", got, err)
	}
}

func TestOrderRepositoryTransitionStatusIsConditional(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)

	order := models.Order{OrderNumber: "2026101600000001", Name: "课程购买", UserID: 1}
	if err := repo.Create(&order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	ok, err := repo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, nil)
	if err != nil || !ok {
		t.Fatalf("expected first transition to win, ok=%v err=%v", ok, err)
	}
	paidAt := time.Now()
	ok, err = repo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, map[string]interface{}{"pay_time": paidAt})
	if err != nil || ok {
		t.Fatalf("expected second transition to lose, ok=%v err=%v", ok, err)
	}

	stored, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.OrderStatus != constants.OrderStatusCancelled || stored.PayTime != nil {
		t.Fatalf("unexpected order state: %+v", stored)
	}
}

func TestOrderRepositoryListByUserFiltersStatus(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	for i, status := range []int{0, 1, 1, 2} {
		order := models.Order{OrderNumber: fmt.Sprintf("N%d", i), Name: "课程购买", UserID: 5, OrderStatus: status}
		if err := repo.Create(&order); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
		detail := models.OrderDetail{OrderID: order.ID, CourseID: uint(i + 1), Name: "课程"}
		if err := repo.CreateDetails([]models.OrderDetail{detail}); err != nil {
			t.Fatalf("create details failed: %v", err)
		}
	}
	paid := constants.OrderStatusPaid
	orders, total, err := repo.ListByUser(OrderListFilter{UserID: 5, OrderStatus: &paid, Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(orders) != 1 {
		t.Fatalf("expected total 2 and one row, got total=%d rows=%d", total, len(orders))
	}
	if len(orders[0].Details) != 1 {
		t.Fatalf("expected details preloaded")
	}
}

func TestOrderRepositoryListStalePending(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	old := time.Now().Add(-2 * time.Hour)

	stale := models.Order{OrderNumber: "S1", Name: "课程购买", UserID: 1, CreatedAt: old}
	fresh := models.Order{OrderNumber: "S2", Name: "课程购买", UserID: 1}
	paid := models.Order{OrderNumber: "S3", Name: "课程购买", UserID: 1, OrderStatus: constants.OrderStatusPaid, CreatedAt: old}
	for _, o := range []*models.Order{&stale, &fresh, &paid} {
		if err := repo.Create(o); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}
	orders, err := repo.ListStalePending(StalePendingOrderFilter{CreatedBefore: time.Now().Add(-time.Hour), Limit: 10})
	if err != nil {
		t.Fatalf("list stale failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != stale.ID {
		t.Fatalf("unexpected stale orders: %+v", orders)
	}
}

func TestUserRepositoryDeductCreditRequiresBalance(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewUserRepository(db)
	user := models.User{Username: "alice", Credit: 100}
	if err := repo.Create(&user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	ok, err := repo.DeductCredit(user.ID, 150)
	if err != nil || ok {
		t.Fatalf("expected insufficient balance, ok=%v err=%v", ok, err)
	}
	ok, err = repo.DeductCredit(user.ID, 60)
	if err != nil || !ok {
		t.Fatalf("expected deduction, ok=%v err=%v", ok, err)
	}
	if err := repo.AddCredit(user.ID, 10); err != nil {
		t.Fatalf("add credit failed: %v", err)
	}
	stored, _ := repo.GetByID(user.ID)
	if stored.Credit != 50 {
		t.Fatalf("expected credit 50, got %d", stored.Credit)
	}
	if err := repo.AddCredit(999, 1); err == nil {
		t.Fatalf("expected error for missing user")
	}
}

func TestUserCourseRepositoryGrantIsIdempotent(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewUserCourseRepository(db)
	rows := []models.UserCourse{{UserID: 1, CourseID: 10, OrderID: 3}, {UserID: 1, CourseID: 11, OrderID: 3}}
	if err := repo.Grant(rows); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := repo.Grant([]models.UserCourse{{UserID: 1, CourseID: 10, OrderID: 4}}); err != nil {
		t.Fatalf("second grant failed: %v", err)
	}
	ids, err := repo.ListCourseIDs(1)
	if err != nil {
		t.Fatalf("list ids failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 entitlements, got %v", ids)
	}
	owns, err := repo.Owns(1, 11)
	if err != nil || !owns {
		t.Fatalf("expected ownership, owns=%v err=%v", owns, err)
	}
}

func TestCouponRepositoryTransitionIssuance(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCouponRepository(db)
	coupon := models.Coupon{Name: "通用券", Discount: constants.CouponDiscountFlat, Sale: "-10", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	if err := repo.CreateCoupon(&coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	issuance := models.CouponIssuance{UserID: 1, CouponID: coupon.ID}
	if err := repo.CreateIssuance(&issuance); err != nil {
		t.Fatalf("create issuance failed: %v", err)
	}
	orderID := uint(42)
	ok, err := repo.TransitionIssuance(issuance.ID, constants.CouponIssuanceUnused, constants.CouponIssuanceBound, map[string]interface{}{"order_id": orderID})
	if err != nil || !ok {
		t.Fatalf("expected bind, ok=%v err=%v", ok, err)
	}
	ok, _ = repo.TransitionIssuance(issuance.ID, constants.CouponIssuanceUnused, constants.CouponIssuanceBound, map[string]interface{}{"order_id": uint(43)})
	if ok {
		t.Fatalf("second bind must fail")
	}
	bound, err := repo.GetIssuanceByOrderID(orderID)
	if err != nil || bound == nil || bound.ID != issuance.ID {
		t.Fatalf("expected issuance bound to order, got %+v err=%v", bound, err)
	}
	if bound.Coupon.Name != "通用券" {
		t.Fatalf("expected coupon preloaded")
	}
}

func TestCreditRepositoryFinalizeAndSum(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCreditRepository(db)
	records := []models.CreditRecord{
		{UserID: 1, Operation: constants.CreditOperationAdminAdjust, Number: 500, BalanceAfter: 500, Status: constants.CreditRecordFinal, Reference: "admin:1"},
		{UserID: 1, Operation: constants.CreditOperationSpend, Number: -300, BalanceBefore: 500, BalanceAfter: 200, Status: constants.CreditRecordPending, Reference: "order:1:spend"},
	}
	for i := range records {
		if err := repo.CreateRecord(&records[i]); err != nil {
			t.Fatalf("create record failed: %v", err)
		}
	}
	sum, err := repo.SumByUser(1)
	if err != nil || sum != 200 {
		t.Fatalf("expected sum 200, got %d err=%v", sum, err)
	}
	ok, err := repo.FinalizeByReference("order:1:spend")
	if err != nil || !ok {
		t.Fatalf("expected finalize, ok=%v err=%v", ok, err)
	}
	ok, _ = repo.FinalizeByReference("order:1:spend")
	if ok {
		t.Fatalf("finalize should apply once")
	}
	list, total, err := repo.ListRecords(CreditRecordListFilter{UserID: 1, Operation: constants.CreditOperationSpend, Page: 1, PageSize: 10})
	if err != nil || total != 1 || list[0].Status != constants.CreditRecordFinal {
		t.Fatalf("unexpected records: %+v total=%d err=%v", list, total, err)
	}
}
