package invoice

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "INV"
	sequenceKey   = "invoice:sequence"
)

// Allocator hands out invoice numbers that are unique and increasing across
// concurrent callers.
type Allocator interface {
	NextInvoiceID(ctx context.Context) (string, error)
}

// RedisAllocator numbers invoices from a shared INCR counter.
type RedisAllocator struct {
	client redis.Cmdable
	key    string
	prefix string
}

func NewRedisAllocator(client redis.Cmdable, prefix string) *RedisAllocator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisAllocator{client: client, key: sequenceKey, prefix: prefix}
}

func (a *RedisAllocator) NextInvoiceID(ctx context.Context) (string, error) {
	n, err := a.client.Incr(ctx, a.key).Result()
	if err != nil {
		return "", fmt.Errorf("allocate invoice number: %w", err)
	}
	return fmt.Sprintf("%s-%08d", a.prefix, n), nil
}

// SnowflakeAllocator is used when no redis is configured. Ids from one node
// are time ordered; distinct nodes must use distinct node numbers.
type SnowflakeAllocator struct {
	node   *snowflake.Node
	prefix string
}

func NewSnowflakeAllocator(nodeID int64, prefix string) (*SnowflakeAllocator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SnowflakeAllocator{node: node, prefix: prefix}, nil
}

func (a *SnowflakeAllocator) NextInvoiceID(context.Context) (string, error) {
	return a.prefix + "-" + a.node.Generate().String(), nil
}
