package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrProposalNotFound = errors.New("import proposal not found or expired")

// Proposal is a pending "import this chain?" offer produced by a duplicate check.
type Proposal struct {
	Token             string    `json:"token"`
	ParcelID          string    `json:"parcel_id"`
	Code              string    `json:"code"`
	OfficeID          string    `json:"office_id"`
	MatchedDocumentID string    `json:"matched_document_id"`
	DocumentIDs       []string  `json:"document_ids"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProposalCache keeps proposals until they are confirmed or expire.
type ProposalCache interface {
	// Put stores the proposal under its token.
	Put(ctx context.Context, p *Proposal, ttl time.Duration) error
	// Take returns and removes the proposal; a token can be taken once.
	Take(ctx context.Context, token string) (*Proposal, error)
	Close() error
}

func NewToken() string {
	return uuid.New().String()
}
