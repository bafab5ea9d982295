package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CouponLedgerEntry 用户可用优惠券快照，仅在未使用且未过期时存在
type CouponLedgerEntry struct {
	IssuanceID  uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	CouponID    uint      `json:"coupon_id"`
	Name        string    `json:"name"`
	Discount    int       `json:"discount"`
	CouponType  int       `json:"coupon_type"`
	Condition   string    `json:"condition"`
	Sale        string    `json:"sale"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	ToDirection []uint    `json:"to_direction"`
	ToCategory  []uint    `json:"to_category"`
	ToCourse    []uint    `json:"to_course"`
}

// CouponLedger 用户优惠券快速查询存储
type CouponLedger interface {
	Put(ctx context.Context, entry *CouponLedgerEntry, ttl time.Duration) error
	Get(ctx context.Context, userID, issuanceID uint) (*CouponLedgerEntry, error)
	Delete(ctx context.Context, userID, issuanceID uint) error
	List(ctx context.Context, userID uint) ([]CouponLedgerEntry, error)
}

// RedisCouponLedger 基于 Redis Hash 的优惠券账本，key 过期时间与优惠券结束时间一致
type RedisCouponLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisCouponLedger 创建优惠券账本
func NewRedisCouponLedger(client *redis.Client, prefix string) *RedisCouponLedger {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisCouponLedger{client: client, prefix: prefix}
}

func (l *RedisCouponLedger) key(userID, issuanceID uint) string {
	return buildKey(l.prefix, fmt.Sprintf("coupon:%d:%d", userID, issuanceID))
}

func (l *RedisCouponLedger) pattern(userID uint) string {
	return buildKey(l.prefix, fmt.Sprintf("coupon:%d:*", userID))
}

// Put 写入条目并设置过期时间
func (l *RedisCouponLedger) Put(ctx context.Context, entry *CouponLedgerEntry, ttl time.Duration) error {
	if entry == nil || entry.UserID == 0 || entry.IssuanceID == 0 {
		return errors.New("invalid coupon ledger entry")
	}
	if ttl <= 0 {
		return errors.New("coupon ledger ttl must be positive")
	}
	fields, err := encodeLedgerEntry(entry)
	if err != nil {
		return err
	}
	key := l.key(entry.UserID, entry.IssuanceID)
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// Get 读取条目，不存在返回 nil
func (l *RedisCouponLedger) Get(ctx context.Context, userID, issuanceID uint) (*CouponLedgerEntry, error) {
	raw, err := l.client.HGetAll(ctx, l.key(userID, issuanceID)).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	entry, err := decodeLedgerEntry(raw)
	if err != nil {
		return nil, err
	}
	entry.UserID = userID
	entry.IssuanceID = issuanceID
	return entry, nil
}

// Delete 删除条目
func (l *RedisCouponLedger) Delete(ctx context.Context, userID, issuanceID uint) error {
	return l.client.Del(ctx, l.key(userID, issuanceID)).Err()
}

// List 列出用户全部可用优惠券，按发放 ID 排序
func (l *RedisCouponLedger) List(ctx context.Context, userID uint) ([]CouponLedgerEntry, error) {
	var keys []string
	iter := l.client.Scan(ctx, 0, l.pattern(userID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []CouponLedgerEntry{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]CouponLedgerEntry, 0, len(keys))
	for _, cmd := range cmds {
		raw := cmd.Val()
		// 扫描与读取之间过期的 key 直接跳过
		if len(raw) == 0 {
			continue
		}
		entry, err := decodeLedgerEntry(raw)
		if err != nil {
			return nil, err
		}
		entry.UserID = userID
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].IssuanceID < entries[j].IssuanceID
	})
	return entries, nil
}

func encodeLedgerEntry(entry *CouponLedgerEntry) (map[string]interface{}, error) {
	toDirection, err := json.Marshal(nonNilIDs(entry.ToDirection))
	if err != nil {
		return nil, err
	}
	toCategory, err := json.Marshal(nonNilIDs(entry.ToCategory))
	if err != nil {
		return nil, err
	}
	toCourse, err := json.Marshal(nonNilIDs(entry.ToCourse))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":           entry.IssuanceID,
		"coupon_id":    entry.CouponID,
		"name":         entry.Name,
		"discount":     entry.Discount,
		"coupon_type":  entry.CouponType,
		"condition":    entry.Condition,
		"sale":         entry.Sale,
		"start_time":   entry.StartTime.Unix(),
		"end_time":     entry.EndTime.Unix(),
		"to_direction": string(toDirection),
		"to_category":  string(toCategory),
		"to_course":    string(toCourse),
	}, nil
}

func decodeLedgerEntry(raw map[string]string) (*CouponLedgerEntry, error) {
	entry := &CouponLedgerEntry{
		Name:      raw["name"],
		Condition: raw["condition"],
		Sale:      raw["sale"],
	}
	entry.IssuanceID = uint(parseUint(raw["id"]))
	entry.CouponID = uint(parseUint(raw["coupon_id"]))
	entry.Discount = int(parseInt(raw["discount"]))
	entry.CouponType = int(parseInt(raw["coupon_type"]))
	entry.StartTime = time.Unix(parseInt(raw["start_time"]), 0)
	entry.EndTime = time.Unix(parseInt(raw["end_time"]), 0)
	for field, dest := range map[string]*[]uint{
		"to_direction": &entry.ToDirection,
		"to_category":  &entry.ToCategory,
		"to_course":    &entry.ToCourse,
	} {
		value := raw[field]
		if value == "" {
			*dest = []uint{}
			continue
		}
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			return nil, fmt.Errorf("decode coupon ledger %s: %w", field, err)
		}
	}
	return entry, nil
}

func nonNilIDs(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}

func parseUint(raw string) uint64 {
	v, _ := strconv.ParseUint(raw, 10, 64)
	return v
}

func parseInt(raw string) int64 {
	v, _ := strconv.ParseInt(raw, 10, 64)
	return v
}
