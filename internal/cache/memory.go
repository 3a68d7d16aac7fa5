package cache

import (
	"context"
	"sync"
	"time"
)

var _ ProposalCache = (*MemoryProposalCache)(nil)

// MemoryProposalCache is used when no redis address is configured.
type MemoryProposalCache struct {
	mu        sync.Mutex
	proposals map[string]memoryProposal
	now       func() time.Time
}

type memoryProposal struct {
	proposal  Proposal
	expiresAt time.Time
}

func NewMemoryProposalCache() *MemoryProposalCache {
	return &MemoryProposalCache{
		proposals: make(map[string]memoryProposal),
		now:       time.Now,
	}
}

func (m *MemoryProposalCache) Put(ctx context.Context, p *Proposal, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for token, entry := range m.proposals {
		if now.After(entry.expiresAt) {
			delete(m.proposals, token)
		}
	}

	m.proposals[p.Token] = memoryProposal{proposal: *p, expiresAt: now.Add(ttl)}
	return nil
}

// size counts held proposals, expired ones included until the next Put.
func (m *MemoryProposalCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.proposals)
}

func (m *MemoryProposalCache) Take(ctx context.Context, token string) (*Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.proposals[token]
	if !ok {
		return nil, ErrProposalNotFound
	}
	delete(m.proposals, token)

	if m.now().After(entry.expiresAt) {
		return nil, ErrProposalNotFound
	}

	return &entry.proposal, nil
}

func (m *MemoryProposalCache) Close() error {
	return nil
}
