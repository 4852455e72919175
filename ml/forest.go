package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"hotel-reservations/utils"
)

// RandomForest is a bagged ensemble of CART classification trees.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int // 0 => unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => sqrt(number of features)
	Bootstrap       bool
	RandomState     int64
	Workers         int // 0 => one per CPU

	Features []string // input column names, in matrix order
	Classes  []int
	Trees    []*Node
}

// Node is a decision tree node. Leaves have no children and carry the
// class distribution of the training samples that reached them.
type Node struct {
	Feature   int
	Threshold float64 // x <= Threshold goes left
	Left      *Node
	Right     *Node
	Probs     []float64 // aligned with RandomForest.Classes
}

// RandomForestOption configures a RandomForest.
type RandomForestOption func(*RandomForest)

func WithNEstimators(n int) RandomForestOption {
	return func(rf *RandomForest) { rf.NEstimators = n }
}
func WithMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}
func WithMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}
func WithBootstrap(b bool) RandomForestOption {
	return func(rf *RandomForest) { rf.Bootstrap = b }
}
func WithRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForest) { rf.RandomState = seed }
}
func WithWorkers(n int) RandomForestOption {
	return func(rf *RandomForest) { rf.Workers = n }
}

// NewRandomForest returns a forest of 100 fully grown gini trees trained on
// bootstrap samples with sqrt(p) candidate features per split.
func NewRandomForest(features []string, opts ...RandomForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		RandomState:     42,
		Features:        append([]string(nil), features...),
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

type treeBuilder struct {
	rf          *RandomForest
	X           [][]float64
	y           []int // class indexes
	nClasses    int
	maxFeatures int
	rnd         *rand.Rand
}

// Fit trains the forest on X (n x p) and labels y.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 {
		return errors.New("randomforest: empty X")
	}
	if len(y) != n {
		return errors.New("randomforest: X and y length mismatch")
	}
	if rf.NEstimators < 1 {
		return errors.New("randomforest: need at least one tree")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("randomforest: inconsistent number of features in X rows")
		}
	}
	if len(rf.Features) > 0 && len(rf.Features) != p {
		return errors.New("randomforest: feature names do not match X columns")
	}

	rf.Classes = uniqueSorted(y)
	classIdx := make(map[int]int, len(rf.Classes))
	for i, c := range rf.Classes {
		classIdx[c] = i
	}
	yi := make([]int, n)
	for i, lab := range y {
		yi[i] = classIdx[lab]
	}

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(p)))
	}
	maxFeatures = max(1, min(maxFeatures, p))

	rf.Trees = make([]*Node, rf.NEstimators)
	pool := utils.NewWorkerPool(rf.Workers)
	pool.Run(rf.NEstimators, func(t int) {
		rnd := rand.New(rand.NewSource(rf.RandomState + int64(t)))
		sample := make([]int, n)
		for j := range sample {
			if rf.Bootstrap {
				sample[j] = rnd.Intn(n)
			} else {
				sample[j] = j
			}
		}
		b := &treeBuilder{rf: rf, X: X, y: yi, nClasses: len(rf.Classes), maxFeatures: maxFeatures, rnd: rnd}
		rf.Trees[t] = b.grow(sample, 0)
	})
	return nil
}

// PredictProba returns the class distribution of each row of X, averaged
// over the trees and aligned with Classes.
func (rf *RandomForest) PredictProba(X [][]float64) ([][]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, errors.New("randomforest: model not trained")
	}
	out := make([][]float64, len(X))
	for i, x := range X {
		if len(rf.Features) > 0 && len(x) != len(rf.Features) {
			return nil, errors.New("randomforest: row has wrong number of features")
		}
		probs := make([]float64, len(rf.Classes))
		for _, t := range rf.Trees {
			leaf := t.leaf(x)
			for c, p := range leaf.Probs {
				probs[c] += p
			}
		}
		for c := range probs {
			probs[c] /= float64(len(rf.Trees))
		}
		out[i] = probs
	}
	return out, nil
}

// Predict returns the most probable class of each row of X.
func (rf *RandomForest) Predict(X [][]float64) ([]int, error) {
	probs, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(X))
	for i, pr := range probs {
		best := 0
		for c := 1; c < len(pr); c++ {
			if pr[c] > pr[best] {
				best = c
			}
		}
		out[i] = rf.Classes[best]
	}
	return out, nil
}

func (n *Node) leaf(x []float64) *Node {
	for n.Left != nil {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n
}

func (b *treeBuilder) grow(idx []int, depth int) *Node {
	counts := make([]int, b.nClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}

	if b.isPure(counts) || len(idx) < b.rf.MinSamplesSplit ||
		(b.rf.MaxDepth > 0 && depth >= b.rf.MaxDepth) {
		return b.newLeaf(counts, len(idx))
	}

	feat, threshold, ok := b.bestSplit(idx, counts)
	if !ok {
		return b.newLeaf(counts, len(idx))
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feat] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &Node{
		Feature:   feat,
		Threshold: threshold,
		Left:      b.grow(left, depth+1),
		Right:     b.grow(right, depth+1),
	}
}

// bestSplit scans up to maxFeatures non-constant features in random order
// and returns the threshold with the lowest weighted gini impurity.
func (b *treeBuilder) bestSplit(idx []int, total []int) (int, float64, bool) {
	n := len(idx)
	bestFeat, bestThr, bestImp := -1, 0.0, math.Inf(1)
	sorted := make([]int, n)
	left := make([]int, b.nClasses)
	right := make([]int, b.nClasses)
	minLeaf := max(1, b.rf.MinSamplesLeaf)

	tried := 0
	for _, feat := range b.rnd.Perm(len(b.X[idx[0]])) {
		if tried >= b.maxFeatures {
			break
		}
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][feat] < b.X[sorted[c]][feat] })
		if b.X[sorted[0]][feat] == b.X[sorted[n-1]][feat] {
			continue
		}
		tried++

		for c := range left {
			left[c] = 0
			right[c] = total[c]
		}
		for k := 0; k < n-1; k++ {
			cls := b.y[sorted[k]]
			left[cls]++
			right[cls]--

			v, next := b.X[sorted[k]][feat], b.X[sorted[k+1]][feat]
			if v == next {
				continue
			}
			nl, nr := k+1, n-k-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			imp := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if imp < bestImp {
				bestFeat, bestThr, bestImp = feat, v+(next-v)/2, imp
			}
		}
	}
	return bestFeat, bestThr, bestFeat >= 0
}

func (b *treeBuilder) isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func (b *treeBuilder) newLeaf(counts []int, n int) *Node {
	probs := make([]float64, len(counts))
	if n > 0 {
		for c, k := range counts {
			probs[c] = float64(k) / float64(n)
		}
	}
	return &Node{Probs: probs}
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	s := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		s += p * p
	}
	return 1 - s
}

func uniqueSorted(y []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
