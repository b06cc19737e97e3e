package searcher

import (
	"jungle/game"
)

const noParent = -1

// node is one position in the search tree. Its statistics are from the
// perspective of the side that moved into it.
type node struct {
	action   game.Action // move from the parent; unused at the root
	parent   int
	side     game.Side // side to move at this node
	children map[game.Action]int
	priors   []float64
	legal    []game.Action
	visits   float64
	total    float64
	expanded bool
}

// tree is an arena of nodes; index 0 is the root.
type tree struct {
	nodes []node
	size  int // action space
}

func newTree(root game.Side, size int) *tree {
	t := &tree{size: size}
	t.nodes = append(t.nodes, node{parent: noParent, side: root})
	return t
}

func (t *tree) child(parent int, a game.Action, side game.Side) int {
	if idx, ok := t.nodes[parent].children[a]; ok {
		return idx
	}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{action: a, parent: parent, side: side})
	if t.nodes[parent].children == nil {
		t.nodes[parent].children = make(map[game.Action]int)
	}
	t.nodes[parent].children[a] = idx
	return idx
}

// childStats returns the visit counts and total values of a node's children,
// indexed by action; actions without a child read as zero.
func (t *tree) childStats(idx int) (visits, totals []float64) {
	visits = make([]float64, t.size)
	totals = make([]float64, t.size)
	for a, c := range t.nodes[idx].children {
		visits[a] = t.nodes[c].visits
		totals[a] = t.nodes[c].total
	}
	return visits, totals
}

// expand stores the priors of the legal actions. A node without legal
// actions stays unexpanded.
func (t *tree) expand(idx int, legal []game.Action, priors []float32) {
	if len(legal) == 0 {
		return
	}
	masked := make([]float64, t.size)
	for _, a := range legal {
		masked[a] = float64(priors[a])
	}
	n := &t.nodes[idx]
	n.legal = legal
	n.priors = masked
	n.expanded = true
}

// backup adds value to every node from idx to the root. undo is called
// after each non-root node, mirroring the move that created it.
func (t *tree) backup(idx int, value float64, undo func()) {
	for {
		n := &t.nodes[idx]
		n.visits++
		if n.side == game.Black {
			n.total += value
		} else {
			n.total -= value
		}
		if n.parent == noParent {
			return
		}
		undo()
		idx = n.parent
	}
}
