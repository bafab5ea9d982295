package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fuguang"

var (
	// OrdersCreated 下单结果计数（result=success|rejected|failed）
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "orders_created_total",
		Help:      "Order creation attempts by result.",
	}, []string{"result"})

	// OrdersCancelled 订单取消计数
	OrdersCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "orders_cancelled_total",
		Help:      "Cancelled orders by reason.",
	}, []string{"reason"})

	// PaymentsSettled 支付入账计数
	PaymentsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payment",
		Name:      "settled_total",
		Help:      "Orders settled by confirmation source.",
	}, []string{"source"})

	// PaymentReviews 入账失败待人工处理计数
	PaymentReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payment",
		Name:      "manual_review_total",
		Help:      "Payments flagged for manual review by source.",
	}, []string{"source"})

	// NotifyResults 支付宝异步通知应答计数
	NotifyResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payment",
		Name:      "notify_total",
		Help:      "Alipay notifications by acknowledgement.",
	}, []string{"ack"})

	// GatewayQueryDuration 支付网关查询耗时
	GatewayQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "payment",
		Name:      "gateway_query_seconds",
		Help:      "Latency of trade status queries against the gateway.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"})

	// SweepOrders 巡检处理的订单计数
	SweepOrders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "orders_total",
		Help:      "Stale pending orders processed by the sweep by outcome.",
	}, []string{"outcome"})

	// TaskFailures 异步任务失败计数
	TaskFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "task_failures_total",
		Help:      "Async task handler failures by task type.",
	}, []string{"task"})
)
