package ml

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// BoostingParams configures gradient-boosted tree fitting.
type BoostingParams struct {
	NEstimators    int
	LearningRate   float64
	MaxDepth       int
	Subsample      float64
	ColSample      float64
	Lambda         float64
	MinChildWeight float64
	Seed           uint64
}

// DefaultBoostingParams returns the hyperparameters the risk model ships with.
func DefaultBoostingParams() BoostingParams {
	return BoostingParams{
		NEstimators:    200,
		LearningRate:   0.05,
		MaxDepth:       6,
		Subsample:      0.8,
		ColSample:      0.9,
		Lambda:         1,
		MinChildWeight: 1,
		Seed:           42,
	}
}

// Validate checks parameter ranges.
func (p BoostingParams) Validate() error {
	switch {
	case p.NEstimators < 1:
		return errors.New("ml: n_estimators must be at least 1")
	case p.LearningRate <= 0:
		return errors.New("ml: learning_rate must be positive")
	case p.MaxDepth < 1:
		return errors.New("ml: max_depth must be at least 1")
	case p.Subsample <= 0 || p.Subsample > 1:
		return errors.New("ml: subsample must be in (0, 1]")
	case p.ColSample <= 0 || p.ColSample > 1:
		return errors.New("ml: colsample must be in (0, 1]")
	case p.Lambda < 0:
		return errors.New("ml: lambda must be non-negative")
	case p.MinChildWeight < 0:
		return errors.New("ml: min_child_weight must be non-negative")
	}
	return nil
}

// BoostedRegressor is a fitted additive ensemble of regression trees.
type BoostedRegressor struct {
	trees []*Tree
	base  float64
	width int
}

// FitBoostedRegressor fits trees sequentially to the squared-error gradient
// of the running prediction. Row and column sampling draw from a PRNG seeded
// with p.Seed, so equal inputs and parameters produce identical models.
func FitBoostedRegressor(x [][]float64, y []float64, p BoostingParams) (*BoostedRegressor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("ml: %d rows but %d targets", len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("ml: row %d has %d columns, expected %d", i, len(row), width)
		}
	}

	n := len(x)
	var base float64
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}
	grad := make([]float64, n)
	hess := make([]float64, n)
	for i := range hess {
		hess[i] = 1
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	rowCount := max(1, int(float64(n)*p.Subsample))
	colCount := max(1, int(float64(width)*p.ColSample))

	tp := treeParams{
		maxDepth:       p.MaxDepth,
		lambda:         p.Lambda,
		minChildWeight: p.MinChildWeight,
		shrinkage:      p.LearningRate,
	}

	m := &BoostedRegressor{base: base, width: width, trees: make([]*Tree, 0, p.NEstimators)}
	for range p.NEstimators {
		for i := range grad {
			grad[i] = pred[i] - y[i]
		}

		rows := sample(rng, n, rowCount)
		cols := sample(rng, width, colCount)

		tree := buildTree(x, grad, hess, rows, cols, tp)
		m.trees = append(m.trees, tree)

		for i, row := range x {
			pred[i] += tree.Predict(row)
		}
	}
	return m, nil
}

// sample draws k distinct indices from [0, n) in ascending order.
func sample(rng *rand.Rand, n, k int) []int {
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := rng.Perm(n)[:k]
	slices.Sort(out)
	return out
}

// Predict returns the raw ensemble output for one row, unclamped.
func (m *BoostedRegressor) Predict(x []float64) (float64, error) {
	if len(x) != m.width {
		return 0, fmt.Errorf("ml: row has %d columns, model expects %d", len(x), m.width)
	}
	out := m.base
	for _, t := range m.trees {
		out += t.Predict(x)
	}
	return out, nil
}

// NumTrees returns the ensemble size.
func (m *BoostedRegressor) NumTrees() int {
	return len(m.trees)
}

// BaseScore returns the initial prediction the trees correct.
func (m *BoostedRegressor) BaseScore() float64 {
	return m.base
}
