package graph

import (
	"github.com/emrgen/cadeia/internal/model"
	"github.com/sirupsen/logrus"
)

// AssignLevels computes every node's level from scratch: the root is level 0 and a
// parent sits one level above the closest child that cites it. Nodes the root
// cannot reach stay unleveled. Pinned nodes report their manual level.
func AssignLevels(g *Graph) {
	for _, n := range g.Nodes {
		n.ComputedLevel = 0
		n.leveled = false
		n.refresh()
	}

	root := g.RootNode()
	if root == nil {
		return
	}

	root.setLevel(0)
	queue := []*Node{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, code := range g.parents[cur.Code] {
			parent := g.index[code]
			if parent.leveled {
				continue
			}
			parent.setLevel(cur.ComputedLevel + 1)
			queue = append(queue, parent)
		}
	}
}

// Link adds one child -> parent edge to an already leveled graph and adjusts only
// its two endpoints: an unleveled parent goes one level above the child and an
// unleveled child one level below the parent. When both are leveled the parent is
// moved to one above the child. Nothing else in the graph is touched. The parent
// document is added to the graph when missing.
// It reports whether the edge was added.
func (g *Graph) Link(child model.DocumentCode, parent *model.Document) bool {
	from, ok := g.index[child]
	if !ok {
		return false
	}

	to := g.AddNode(parent)
	switch g.addEdge(Edge{From: child, To: to.Code}) {
	case edgeDropped:
		logrus.WithFields(logrus.Fields{"from": child.String(), "to": to.Code.String()}).Warn("origin closes a cycle, edge dropped")
		return false
	case edgeIgnored:
		return false
	}

	switch {
	case from.leveled && !to.leveled:
		to.setLevel(from.ComputedLevel + 1)
	case !from.leveled && to.leveled:
		from.setLevel(to.ComputedLevel - 1)
	case from.leveled && to.leveled && to.ComputedLevel != from.ComputedLevel+1:
		to.setLevel(from.ComputedLevel + 1)
	}

	return true
}
