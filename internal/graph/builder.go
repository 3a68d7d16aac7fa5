package graph

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/origin"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDocuments bounds a single expansion.
const DefaultMaxDocuments = 500

// Builder expands a document's chain of title breadth first over parsed origins.
type Builder struct {
	store        DocumentStore
	resolver     *Resolver
	maxDocuments int
}

func NewBuilder(store DocumentStore, maxDocuments int) *Builder {
	if maxDocuments <= 0 {
		maxDocuments = DefaultMaxDocuments
	}

	return &Builder{
		store:        store,
		resolver:     NewResolver(store),
		maxDocuments: maxDocuments,
	}
}

func (b *Builder) Resolver() *Resolver {
	return b.resolver
}

// Build returns the leveled chain of the parcel's principal document. A parcel
// without documents yields an empty graph.
func (b *Builder) Build(ctx context.Context, parcel *model.Parcel) (*Graph, error) {
	root, err := b.store.FindPrincipalDocument(ctx, parcel)
	if err != nil {
		return nil, err
	}
	if root == nil {
		logrus.Infof("parcel %s has no documents", parcel.ID)
		return empty(), nil
	}

	g, err := b.Expand(ctx, root)
	if err != nil {
		return nil, err
	}

	AssignLevels(g)

	return g, nil
}

// Expand walks the origins cited by root and its ancestors. Every code is
// expanded at most once, so data describing a cycle still terminates. Documents
// are never created here: codes that resolve to nothing are kept in Unresolved.
func (b *Builder) Expand(ctx context.Context, root *model.Document) (*Graph, error) {
	g := New(root)

	queue := []*model.Document{root}
	queued := mapset.NewThreadUnsafeSet(root.Code())
	visited := mapset.NewThreadUnsafeSet[model.DocumentCode]()

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc := queue[0]
		queue = queue[1:]
		if !visited.Add(doc.Code()) {
			continue
		}

		entries, err := b.store.EntriesWithOrigin(ctx, doc)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			for _, code := range origin.ParseSorted(entry.Origin) {
				if code == doc.Code() {
					logrus.WithFields(logrus.Fields{"document": doc.ID, "entry": entry.ID}).Debug("entry cites its own document, ignored")
					continue
				}

				parent, err := b.resolver.Resolve(ctx, code, entry.OriginRegistryOfficeID)
				if err != nil {
					return nil, err
				}
				if parent == nil {
					g.Unresolved = append(g.Unresolved, UnresolvedOrigin{
						DocumentID: doc.ID,
						EntryID:    entry.ID,
						Code:       code,
						OfficeID:   entry.OriginRegistryOfficeID,
					})
					logrus.WithFields(logrus.Fields{
						"document": doc.ID,
						"entry":    entry.ID,
						"code":     code.String(),
					}).Info("unresolved origin")
					continue
				}

				pc := parent.Code()
				if !queued.Contains(pc) {
					if g.Len() >= b.maxDocuments {
						if !g.Truncated {
							logrus.Warnf("chain of %s truncated at %d documents", root.Code(), b.maxDocuments)
						}
						g.Truncated = true
						continue
					}
					queued.Add(pc)
					g.AddNode(parent)
					queue = append(queue, parent)
				}

				if g.addEdge(Edge{From: doc.Code(), To: pc}) == edgeDropped {
					logrus.WithFields(logrus.Fields{"from": doc.Code().String(), "to": pc.String()}).Warn("origin closes a cycle, edge dropped")
				}
			}
		}
	}

	if err := b.MarkShared(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

// MarkShared flags the nodes whose document has been imported by some parcel.
func (b *Builder) MarkShared(ctx context.Context, g *Graph) error {
	ids := make([]string, 0, g.Len())
	for _, n := range g.Nodes {
		ids = append(ids, n.DocumentID)
	}

	shared, err := b.store.ImportedDocumentIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, n := range g.Nodes {
		n.IsShared = shared.Contains(n.DocumentID)
	}

	return nil
}
