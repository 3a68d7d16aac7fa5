package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/emrgen/cadeia/internal/compress"
	redis "github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Redis stores JSON values, encoded with the configured compression.
type Redis struct {
	client  *redis.Client
	encoder compress.Compress
}

func NewRedis(opts Options, encoder compress.Compress) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		Protocol: 2,
	})

	return &Redis{client: client, encoder: encoder}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Set(ctx context.Context, k string, v any, ttl time.Duration) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	encoded, err := r.encoder.Encode(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, k, encoded, ttl).Err()
}

// Take reads and deletes k atomically. It reports false when the key is absent.
func (r *Redis) Take(ctx context.Context, k string, v any) (bool, error) {
	res := r.client.GetDel(ctx, k)
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return false, nil
		}
		return false, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return false, err
	}

	decoded, err := r.encoder.Decode(buf)
	if err != nil {
		return false, err
	}

	return true, json.Unmarshal(decoded, v)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
