// Package idseq hands out sequential integer ids rendered as strings.
package idseq

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-tcp-fabric/internal/redisx"
)

type Sequence interface {
	Next(ctx context.Context) (string, error)
}

// Memory counts from 1 for the life of the process.
type Memory struct {
	n atomic.Int64
}

func (m *Memory) Next(context.Context) (string, error) {
	return strconv.FormatInt(m.n.Add(1), 10), nil
}

// Redis shares one counter between every replica of a service.
type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, name string) *Redis {
	return &Redis{rdb: rdb, key: fmt.Sprintf(redisx.KeySeq, name)}
}

func (r *Redis) Next(ctx context.Context) (string, error) {
	n, err := r.rdb.Incr(ctx, r.key).Result()
	if err != nil {
		return "", fmt.Errorf("incr %s: %w", r.key, err)
	}
	return strconv.FormatInt(n, 10), nil
}
