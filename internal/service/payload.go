package service

import (
	"time"

	"github.com/emrgen/cadeia/internal/graph"
	"github.com/emrgen/cadeia/internal/model"
)

type ParcelPayload struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
}

type DocumentPayload struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	Kind             string `json:"kind"`
	RegistryOfficeID string `json:"registry_office_id"`
	ParcelID         string `json:"parcel_id"`
	Level            int    `json:"level"`
	IsShared         bool   `json:"is_shared"`
	ManualLevel      *int   `json:"manual_level"`
}

type EntryPayload struct {
	ID                     string     `json:"id"`
	DocumentID             string     `json:"document_id"`
	Kind                   string     `json:"kind"`
	Number                 string     `json:"number"`
	Date                   *time.Time `json:"date,omitempty"`
	Origin                 string     `json:"origin"`
	OriginRegistryOfficeID *string    `json:"origin_registry_office_id,omitempty"`
}

type EdgePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TreePayload is the chain rendering consumed by the presentation layer.
type TreePayload struct {
	Parcel     ParcelPayload            `json:"parcel"`
	Root       string                   `json:"root,omitempty"`
	Documents  []DocumentPayload        `json:"documents"`
	Edges      []EdgePayload            `json:"edges"`
	Unresolved []graph.UnresolvedOrigin `json:"unresolved"`
	Truncated  bool                     `json:"truncated"`
}

type DuplicateCheckResponse struct {
	Exists          bool              `json:"exists"`
	MatchedDocument *DocumentPayload  `json:"matched_document"`
	ImportableChain []DocumentPayload `json:"importable_chain"`
	ProposalToken   string            `json:"proposal_token,omitempty"`
}

func newDocumentPayload(doc *model.Document) DocumentPayload {
	return DocumentPayload{
		ID:               doc.ID,
		Code:             doc.Code().String(),
		Kind:             doc.Kind.Label(),
		RegistryOfficeID: doc.RegistryOfficeID,
		ParcelID:         doc.ParcelID,
		ManualLevel:      doc.ManualLevel,
	}
}

func newEntryPayload(entry *model.Entry) *EntryPayload {
	return &EntryPayload{
		ID:                     entry.ID,
		DocumentID:             entry.DocumentID,
		Kind:                   entry.Kind,
		Number:                 entry.Number,
		Date:                   entry.Date,
		Origin:                 entry.Origin,
		OriginRegistryOfficeID: entry.OriginRegistryOfficeID,
	}
}

func newTreePayload(parcel *model.Parcel, g *graph.Graph) *TreePayload {
	tree := &TreePayload{
		Parcel: ParcelPayload{
			ID:                 parcel.ID,
			Name:               parcel.Name,
			RegistrationNumber: parcel.RegistrationNumber,
		},
		Documents:  make([]DocumentPayload, 0, g.Len()),
		Edges:      make([]EdgePayload, 0, len(g.Edges)),
		Unresolved: g.Unresolved,
		Truncated:  g.Truncated,
	}
	if !g.Root.IsZero() {
		tree.Root = g.Root.String()
	}

	for _, n := range g.Nodes {
		doc := newDocumentPayload(n.Document)
		doc.Level = n.Level
		doc.IsShared = n.IsShared
		doc.ManualLevel = n.ManualLevel
		tree.Documents = append(tree.Documents, doc)
	}

	for _, e := range g.Edges {
		tree.Edges = append(tree.Edges, EdgePayload{From: e.From.String(), To: e.To.String()})
	}

	return tree
}
