package ml

import (
	"errors"
	"math"
	"math/rand"

	"hotel-reservations/utils"
)

const eulerGamma = 0.5772156649015329

// IsolationForest isolates observations with random axis-aligned splits.
// Anomalies need fewer splits to isolate, so their average path length
// over the ensemble is shorter.
type IsolationForest struct {
	NTrees        int
	MaxSamples    int     // 0 => min(256, n)
	Contamination float64 // expected share of anomalies in the training data
	Seed          int64
	Workers       int // 0 => one per CPU

	trees      []*iNode
	sampleSize int
	offset     float64
}

type iNode struct {
	feature   int
	threshold float64
	left      *iNode
	right     *iNode
	size      int // samples that reached this external node
}

// IsolationOption configures an IsolationForest.
type IsolationOption func(*IsolationForest)

func WithIsolationTrees(n int) IsolationOption {
	return func(f *IsolationForest) { f.NTrees = n }
}
func WithContamination(c float64) IsolationOption {
	return func(f *IsolationForest) { f.Contamination = c }
}
func WithIsolationSeed(seed int64) IsolationOption {
	return func(f *IsolationForest) { f.Seed = seed }
}
func WithMaxSamples(n int) IsolationOption {
	return func(f *IsolationForest) { f.MaxSamples = n }
}
func WithIsolationWorkers(n int) IsolationOption {
	return func(f *IsolationForest) { f.Workers = n }
}

// NewIsolationForest returns a detector with 100 trees, 256 samples per
// tree, contamination 0.1 and seed 0 unless overridden.
func NewIsolationForest(opts ...IsolationOption) *IsolationForest {
	f := &IsolationForest{
		NTrees:        100,
		Contamination: 0.1,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit grows the ensemble on X and sets the anomaly threshold so that a
// Contamination share of X scores below it.
func (f *IsolationForest) Fit(X [][]float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("isoforest: empty X")
	}
	if f.NTrees < 1 {
		return errors.New("isoforest: need at least one tree")
	}
	if f.Contamination <= 0 || f.Contamination > 0.5 {
		return errors.New("isoforest: contamination must be in (0, 0.5]")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("isoforest: inconsistent number of features in X rows")
		}
	}

	f.sampleSize = 256
	if f.MaxSamples > 0 {
		f.sampleSize = f.MaxSamples
	}
	if f.sampleSize > n {
		f.sampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(math.Max(float64(f.sampleSize), 2))))

	f.trees = make([]*iNode, f.NTrees)
	pool := utils.NewWorkerPool(f.Workers)
	pool.Run(f.NTrees, func(i int) {
		rnd := rand.New(rand.NewSource(f.Seed + int64(i)))
		idx := rnd.Perm(n)[:f.sampleSize]
		f.trees[i] = growIsolationTree(X, idx, 0, maxDepth, rnd)
	})

	f.offset = Quantile(f.ScoreSamples(X), f.Contamination)
	return nil
}

// ScoreSamples returns the opposite of the anomaly score of each row of X:
// the lower the value, the more anomalous the row.
func (f *IsolationForest) ScoreSamples(X [][]float64) []float64 {
	out := make([]float64, len(X))
	norm := averagePathLength(f.sampleSize)
	if norm == 0 {
		norm = 1
	}
	for i, x := range X {
		depth := 0.0
		for _, t := range f.trees {
			depth += pathLength(x, t)
		}
		depth /= float64(len(f.trees))
		out[i] = -math.Pow(2, -depth/norm)
	}
	return out
}

// Predict labels each row of X 1 for inliers and -1 for anomalies.
func (f *IsolationForest) Predict(X [][]float64) []int {
	scores := f.ScoreSamples(X)
	out := make([]int, len(X))
	for i, s := range scores {
		if s < f.offset {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out
}

// FitPredict fits on X and labels the same rows.
func (f *IsolationForest) FitPredict(X [][]float64) ([]int, error) {
	if err := f.Fit(X); err != nil {
		return nil, err
	}
	return f.Predict(X), nil
}

func growIsolationTree(X [][]float64, idx []int, depth, maxDepth int, rnd *rand.Rand) *iNode {
	if depth >= maxDepth || len(idx) <= 1 {
		return &iNode{size: len(idx)}
	}

	p := len(X[idx[0]])
	for _, feat := range rnd.Perm(p) {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			v := X[i][feat]
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if !(hi > lo) {
			continue
		}

		threshold := lo + rnd.Float64()*(hi-lo)
		var left, right []int
		for _, i := range idx {
			if X[i][feat] <= threshold {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		return &iNode{
			feature:   feat,
			threshold: threshold,
			left:      growIsolationTree(X, left, depth+1, maxDepth, rnd),
			right:     growIsolationTree(X, right, depth+1, maxDepth, rnd),
		}
	}

	// every feature is constant on this node
	return &iNode{size: len(idx)}
}

func pathLength(x []float64, n *iNode) float64 {
	depth := 0
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.size)
}

// averagePathLength is the expected path length of an unsuccessful search
// in a binary search tree of n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}
