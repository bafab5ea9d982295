package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderStatus *int
	OrderNumber string
}

// StalePendingOrderFilter 查询超时未支付订单
type StalePendingOrderFilter struct {
	CreatedBefore time.Time
	AfterID       uint
	Limit         int
}

// CreditRecordListFilter 查询积分流水的过滤条件
type CreditRecordListFilter struct {
	Page      int
	PageSize  int
	UserID    uint
	OrderID   uint
	Operation string
}

// PaymentReviewListFilter 查询待人工处理支付记录的过滤条件
type PaymentReviewListFilter struct {
	Page     int
	PageSize int
	Resolved *bool
}
