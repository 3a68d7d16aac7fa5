package cache

import (
	"context"
	"time"
)

func proposalKey(token string) string {
	return "cadeia:proposal:" + token
}

var _ ProposalCache = (*RedisProposalCache)(nil)

type RedisProposalCache struct {
	redis *Redis
}

func NewRedisProposalCache(redis *Redis) *RedisProposalCache {
	return &RedisProposalCache{redis: redis}
}

func (r *RedisProposalCache) Put(ctx context.Context, p *Proposal, ttl time.Duration) error {
	return r.redis.Set(ctx, proposalKey(p.Token), p, ttl)
}

func (r *RedisProposalCache) Take(ctx context.Context, token string) (*Proposal, error) {
	var p Proposal
	ok, err := r.redis.Take(ctx, proposalKey(token), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProposalNotFound
	}

	return &p, nil
}

func (r *RedisProposalCache) Close() error {
	return r.redis.Close()
}
