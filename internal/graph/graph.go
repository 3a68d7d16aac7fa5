// Package graph builds the provenance graph (chain of title) of a parcel and
// assigns each document its depth in the lineage.
package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/cadeia/internal/model"
)

// Edge means "From cites To as its origin": From is the child, To the parent.
type Edge struct {
	From model.DocumentCode `json:"from"`
	To   model.DocumentCode `json:"to"`
}

// Node is a document placed in a parcel's chain.
type Node struct {
	Code       model.DocumentCode `json:"code"`
	DocumentID string             `json:"id"`
	ParcelID   string             `json:"parcel_id"`
	// Level is the reported depth: ManualLevel when pinned, ComputedLevel otherwise.
	Level         int             `json:"level"`
	ComputedLevel int             `json:"-"`
	ManualLevel   *int            `json:"manual_level"`
	IsShared      bool            `json:"is_shared"`
	Document      *model.Document `json:"-"`
	leveled       bool
}

func newNode(doc *model.Document) *Node {
	return &Node{
		Code:        doc.Code(),
		DocumentID:  doc.ID,
		ParcelID:    doc.ParcelID,
		ManualLevel: doc.ManualLevel,
		Document:    doc,
	}
}

// Leveled reports whether a level was computed for the node.
func (n *Node) Leveled() bool {
	return n.leveled
}

func (n *Node) setLevel(level int) {
	n.ComputedLevel = level
	n.leveled = true
	n.refresh()
}

func (n *Node) refresh() {
	if n.ManualLevel != nil {
		n.Level = *n.ManualLevel
		return
	}
	n.Level = n.ComputedLevel
}

// UnresolvedOrigin is an origin code that matched no stored document.
type UnresolvedOrigin struct {
	DocumentID string             `json:"document_id"`
	EntryID    string             `json:"entry_id"`
	Code       model.DocumentCode `json:"code"`
	OfficeID   *string            `json:"office_id,omitempty"`
}

// Graph is the derived provenance view of one chain. Nodes keep discovery order.
type Graph struct {
	Root       model.DocumentCode `json:"root"`
	Nodes      []*Node            `json:"nodes"`
	Edges      []Edge             `json:"edges"`
	Unresolved []UnresolvedOrigin `json:"unresolved"`
	// Dropped holds edges that would have closed a cycle.
	Dropped   []Edge `json:"dropped"`
	Truncated bool   `json:"truncated"`

	index   map[model.DocumentCode]*Node
	edges   mapset.Set[Edge]
	parents map[model.DocumentCode][]model.DocumentCode
}

// New creates a graph rooted at doc.
func New(root *model.Document) *Graph {
	g := empty()
	if root != nil {
		g.Root = root.Code()
		g.AddNode(root)
	}

	return g
}

func empty() *Graph {
	return &Graph{
		Nodes:      make([]*Node, 0),
		Edges:      make([]Edge, 0),
		Unresolved: make([]UnresolvedOrigin, 0),
		Dropped:    make([]Edge, 0),
		index:      make(map[model.DocumentCode]*Node),
		edges:      mapset.NewThreadUnsafeSet[Edge](),
		parents:    make(map[model.DocumentCode][]model.DocumentCode),
	}
}

func (g *Graph) Len() int {
	return len(g.Nodes)
}

func (g *Graph) Node(code model.DocumentCode) (*Node, bool) {
	n, ok := g.index[code]
	return n, ok
}

func (g *Graph) RootNode() *Node {
	return g.index[g.Root]
}

// AddNode adds doc unless a node with the same code exists; it returns the node in the graph.
func (g *Graph) AddNode(doc *model.Document) *Node {
	if n, ok := g.index[doc.Code()]; ok {
		return n
	}

	n := newNode(doc)
	g.index[n.Code] = n
	g.Nodes = append(g.Nodes, n)

	return n
}

// Parents returns the codes cited by code, in insertion order.
func (g *Graph) Parents(code model.DocumentCode) []model.DocumentCode {
	return g.parents[code]
}

func (g *Graph) HasEdge(e Edge) bool {
	return g.edges.Contains(e)
}

// Documents returns the documents of all nodes in discovery order.
func (g *Graph) Documents() []*model.Document {
	docs := make([]*model.Document, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		docs = append(docs, n.Document)
	}

	return docs
}

type edgeResult int

const (
	edgeAdded edgeResult = iota
	edgeIgnored
	edgeDropped
)

// addEdge records child -> parent. Self loops, duplicates and edges to unknown
// nodes are ignored; edges that would close a cycle go to Dropped.
func (g *Graph) addEdge(e Edge) edgeResult {
	if e.From == e.To || g.edges.Contains(e) {
		return edgeIgnored
	}

	if _, ok := g.index[e.From]; !ok {
		return edgeIgnored
	}
	if _, ok := g.index[e.To]; !ok {
		return edgeIgnored
	}

	if g.reaches(e.To, e.From) {
		g.Dropped = append(g.Dropped, e)
		return edgeDropped
	}

	g.edges.Add(e)
	g.Edges = append(g.Edges, e)
	g.parents[e.From] = append(g.parents[e.From], e.To)

	return edgeAdded
}

// reaches reports whether to is an ancestor of (or equal to) from.
func (g *Graph) reaches(from, to model.DocumentCode) bool {
	if from == to {
		return true
	}

	seen := mapset.NewThreadUnsafeSet(from)
	queue := []model.DocumentCode{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range g.parents[cur] {
			if p == to {
				return true
			}
			if seen.Add(p) {
				queue = append(queue, p)
			}
		}
	}

	return false
}
