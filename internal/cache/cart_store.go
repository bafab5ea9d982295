package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	cartSelected   = "1"
	cartUnselected = "0"
)

// CartStore 用户购物车存储（course_id -> 是否勾选）
type CartStore interface {
	Entries(ctx context.Context, userID uint) (map[uint]bool, error)
	Exists(ctx context.Context, userID, courseID uint) (bool, error)
	Count(ctx context.Context, userID uint) (int64, error)
	Set(ctx context.Context, userID, courseID uint, selected bool) error
	SetAll(ctx context.Context, userID uint, selected bool) (int, error)
	Remove(ctx context.Context, userID uint, courseIDs ...uint) error
	Merge(ctx context.Context, userID uint, entries map[uint]bool) error
}

// RedisCartStore 基于 Redis Hash 的购物车
type RedisCartStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCartStore 创建购物车存储
func NewRedisCartStore(client *redis.Client, prefix string) *RedisCartStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisCartStore{client: client, prefix: prefix}
}

func (s *RedisCartStore) key(userID uint) string {
	return buildKey(s.prefix, fmt.Sprintf("cart:%d", userID))
}

// Entries 读取全部购物车条目
func (s *RedisCartStore) Entries(ctx context.Context, userID uint) (map[uint]bool, error) {
	raw, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	entries := make(map[uint]bool, len(raw))
	for field, value := range raw {
		courseID, err := strconv.ParseUint(field, 10, 64)
		if err != nil || courseID == 0 {
			continue
		}
		entries[uint(courseID)] = value == cartSelected
	}
	return entries, nil
}

// Exists 判断课程是否已在购物车
func (s *RedisCartStore) Exists(ctx context.Context, userID, courseID uint) (bool, error) {
	return s.client.HExists(ctx, s.key(userID), formatCourseField(courseID)).Result()
}

// Count 购物车条目数
func (s *RedisCartStore) Count(ctx context.Context, userID uint) (int64, error) {
	return s.client.HLen(ctx, s.key(userID)).Result()
}

// Set 写入单个条目
func (s *RedisCartStore) Set(ctx context.Context, userID, courseID uint, selected bool) error {
	return s.client.HSet(ctx, s.key(userID), formatCourseField(courseID), selectionValue(selected)).Err()
}

// setAllScript 在单个脚本内读取并改写全部字段，期间删除的字段不会被重新写入
var setAllScript = redis.NewScript(`
local fields = redis.call("HKEYS", KEYS[1])
for _, field in ipairs(fields) do
	redis.call("HSET", KEYS[1], field, ARGV[1])
end
return #fields
`)

// SetAll 原子修改全部条目的勾选状态，返回修改条数
func (s *RedisCartStore) SetAll(ctx context.Context, userID uint, selected bool) (int, error) {
	changed, err := setAllScript.Run(ctx, s.client, []string{s.key(userID)}, selectionValue(selected)).Int()
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Remove 删除条目
func (s *RedisCartStore) Remove(ctx context.Context, userID uint, courseIDs ...uint) error {
	if len(courseIDs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		fields = append(fields, formatCourseField(id))
	}
	return s.client.HDel(ctx, s.key(userID), fields...).Err()
}

// Merge 逐字段写回条目，不影响其他字段
func (s *RedisCartStore) Merge(ctx context.Context, userID uint, entries map[uint]bool) error {
	if len(entries) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(entries))
	for courseID, selected := range entries {
		values[formatCourseField(courseID)] = selectionValue(selected)
	}
	return s.client.HSet(ctx, s.key(userID), values).Err()
}

func formatCourseField(courseID uint) string {
	return strconv.FormatUint(uint64(courseID), 10)
}

func selectionValue(selected bool) string {
	if selected {
		return cartSelected
	}
	return cartUnselected
}
