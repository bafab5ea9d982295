package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const orderNumberCounterKey = "order_number"

// OrderCounter 全局订单号自增计数器
type OrderCounter struct {
	client *redis.Client
	key    string
}

// NewOrderCounter 创建计数器
func NewOrderCounter(client *redis.Client, prefix string) *OrderCounter {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &OrderCounter{client: client, key: buildKey(prefix, orderNumberCounterKey)}
}

// Next 原子自增并返回新值
func (c *OrderCounter) Next(ctx context.Context) (int64, error) {
	return c.client.Incr(ctx, c.key).Result()
}
