package ml

import (
	"cmp"
	"slices"
)

// minGain is the smallest loss reduction accepted for a split.
const minGain = 1e-12

type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	leaf      bool
	value     float64
}

// Tree is a fitted regression tree stored as a flat node slice rooted at index 0.
type Tree struct {
	nodes []treeNode
}

// Predict walks the tree for one row; rows with x[feature] < threshold go left.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.value
		}
		if x[n.feature] < n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(0)
}

type treeParams struct {
	maxDepth       int
	lambda         float64
	minChildWeight float64
	shrinkage      float64
}

type treeBuilder struct {
	x        [][]float64
	grad     []float64
	hess     []float64
	features []int
	params   treeParams
	nodes    []treeNode
}

// buildTree grows a tree greedily on second-order gradient statistics over
// the given rows and candidate features. Leaf values include the shrinkage.
func buildTree(x [][]float64, grad, hess []float64, rows, features []int, p treeParams) *Tree {
	b := &treeBuilder{x: x, grad: grad, hess: hess, features: features, params: p}
	b.grow(rows, 0)
	return &Tree{nodes: b.nodes}
}

func (b *treeBuilder) grow(rows []int, depth int) int {
	var g, h float64
	for _, r := range rows {
		g += b.grad[r]
		h += b.hess[r]
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{leaf: true, value: b.leafWeight(g, h)})

	if depth >= b.params.maxDepth || len(rows) < 2 {
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows, g, h)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.x[r][feature] < threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.grow(left, depth+1)
	rt := b.grow(right, depth+1)
	b.nodes[idx] = treeNode{feature: feature, threshold: threshold, left: l, right: rt}
	return idx
}

func (b *treeBuilder) leafWeight(g, h float64) float64 {
	return -g / (h + b.params.lambda) * b.params.shrinkage
}

func (b *treeBuilder) score(g, h float64) float64 {
	return g * g / (h + b.params.lambda)
}

func (b *treeBuilder) bestSplit(rows []int, g, h float64) (int, float64, bool) {
	parent := b.score(g, h)
	bestGain := minGain
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, len(rows))
	for _, f := range b.features {
		copy(sorted, rows)
		slices.SortStableFunc(sorted, func(i, j int) int {
			return cmp.Compare(b.x[i][f], b.x[j][f])
		})

		var gl, hl float64
		for k := 0; k < len(sorted)-1; k++ {
			r := sorted[k]
			gl += b.grad[r]
			hl += b.hess[r]

			lo, hi := b.x[r][f], b.x[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			hr := h - hl
			if hl < b.params.minChildWeight || hr < b.params.minChildWeight {
				continue
			}

			gain := b.score(gl, hl) + b.score(g-gl, hr) - parent
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = midpoint(lo, hi)
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// midpoint returns a threshold t with lo < t <= hi.
func midpoint(lo, hi float64) float64 {
	mid := lo/2 + hi/2
	if !(lo < mid) {
		return hi
	}
	return mid
}
