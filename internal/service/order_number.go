package service

import (
	"context"
	"fmt"
	"time"
)

// OrderNumberAllocator 订单号分配器
type OrderNumberAllocator interface {
	Next(ctx context.Context, userID uint) (string, error)
}

// SequenceSource 全局递增序列
type SequenceSource interface {
	Next(ctx context.Context) (int64, error)
}

// SequenceOrderNumberAllocator 日期 + 用户ID + 全局序列 组成订单号
type SequenceOrderNumberAllocator struct {
	seq SequenceSource
	now func() time.Time
}

// NewOrderNumberAllocator 创建订单号分配器
func NewOrderNumberAllocator(seq SequenceSource) *SequenceOrderNumberAllocator {
	return &SequenceOrderNumberAllocator{seq: seq, now: time.Now}
}

// Next 分配订单号：YYYYMMDD + 8 位用户ID + 8 位序列
func (a *SequenceOrderNumberAllocator) Next(ctx context.Context, userID uint) (string, error) {
	n, err := a.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	return formatOrderNumber(a.now(), userID, n), nil
}

func formatOrderNumber(now time.Time, userID uint, seq int64) string {
	return fmt.Sprintf("%s%08d%08d", now.Format("20060102"), userID, seq)
}
