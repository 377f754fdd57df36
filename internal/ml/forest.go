// Package ml holds the fill classifier: a bagged ensemble of CART trees.
package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ForestParams configures ensemble training. Zero values fall back to defaults.
type ForestParams struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	// MaxFeatures is the number of features tried per split; 0 means sqrt(p).
	MaxFeatures int
	Seed        uint64
}

func DefaultForestParams() ForestParams {
	return ForestParams{
		NumTrees:        100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

// Node is one tree node. Leaves have Left == Right == -1.
type Node struct {
	Feature   int     `msgpack:"f"`
	Threshold float64 `msgpack:"t"`
	Left      int     `msgpack:"l"`
	Right     int     `msgpack:"r"`
	Prob      float64 `msgpack:"p"`
}

func (n Node) isLeaf() bool { return n.Left < 0 }

type Tree struct {
	Nodes []Node `msgpack:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Prob
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest is a fitted ensemble. It is immutable after training and safe for
// concurrent use.
type Forest struct {
	NumFeatures int    `msgpack:"num_features"`
	Trees       []Tree `msgpack:"trees"`
}

// PredictProba returns the mean positive-class probability over all trees.
func (f *Forest) PredictProba(x []float64) float64 {
	if len(x) != f.NumFeatures || len(f.Trees) == 0 {
		return 0
	}
	probs := make([]float64, len(f.Trees))
	for i := range f.Trees {
		probs[i] = f.Trees[i].predict(x)
	}
	return stat.Mean(probs, nil)
}

// Predict returns the hard label at the 0.5 probability cut.
func (f *Forest) Predict(x []float64) int {
	if f.PredictProba(x) > 0.5 {
		return 1
	}
	return 0
}

// TrainForest fits the ensemble. Each tree draws a bootstrap sample and its
// own feature subsets from a generator seeded by (Seed, tree index), so the
// result is deterministic regardless of scheduling.
func TrainForest(ctx context.Context, X [][]float64, y []int, p ForestParams) (*Forest, error) {
	if len(X) == 0 {
		return nil, errors.New("train forest: empty dataset")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("train forest: %d rows but %d labels", len(X), len(y))
	}
	nFeatures := len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("train forest: row %d has %d features, want %d", i, len(row), nFeatures)
		}
	}

	def := DefaultForestParams()
	if p.NumTrees <= 0 {
		p.NumTrees = def.NumTrees
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = def.MaxDepth
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = def.MinSamplesSplit
	}
	if p.MaxFeatures <= 0 || p.MaxFeatures > nFeatures {
		p.MaxFeatures = max(1, int(math.Sqrt(float64(nFeatures))))
	}

	forest := &Forest{NumFeatures: nFeatures, Trees: make([]Tree, p.NumTrees)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for ti := 0; ti < p.NumTrees; ti++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(p.Seed, uint64(ti)))
			b := &builder{X: X, y: y, params: p, rng: rng}

			sample := make([]int, len(X))
			for i := range sample {
				sample[i] = rng.IntN(len(X))
			}
			b.grow(sample, 0)
			forest.Trees[ti] = Tree{Nodes: b.nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("train forest: %w", err)
	}

	return forest, nil
}

type builder struct {
	X      [][]float64
	y      []int
	params ForestParams
	rng    *rand.Rand
	nodes  []Node
}

// grow appends the subtree for sample and returns its root index.
func (b *builder) grow(sample []int, depth int) int {
	idx := len(b.nodes)
	pos := 0
	for _, i := range sample {
		pos += b.y[i]
	}
	prob := float64(pos) / float64(len(sample))
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1, Prob: prob})

	if depth >= b.params.MaxDepth || len(sample) < b.params.MinSamplesSplit || pos == 0 || pos == len(sample) {
		return idx
	}

	feature, threshold, ok := b.bestSplit(sample)
	if !ok {
		return idx
	}

	var left, right []int
	for _, i := range sample {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

// bestSplit searches a random feature subset for the lowest weighted Gini impurity.
func (b *builder) bestSplit(sample []int) (int, float64, bool) {
	nFeatures := len(b.X[0])
	candidates := b.rng.Perm(nFeatures)[:b.params.MaxFeatures]

	total := len(sample)
	totalPos := 0
	for _, i := range sample {
		totalPos += b.y[i]
	}

	bestScore := gini(totalPos, total)
	bestFeature, bestThreshold, found := -1, 0.0, false

	order := make([]int, total)
	for _, f := range candidates {
		copy(order, sample)
		slices.SortFunc(order, func(a, c int) int {
			switch va, vc := b.X[a][f], b.X[c][f]; {
			case va < vc:
				return -1
			case va > vc:
				return 1
			}
			return 0
		})

		leftPos := 0
		for k := 1; k < total; k++ {
			leftPos += b.y[order[k-1]]
			prev, cur := b.X[order[k-1]][f], b.X[order[k]][f]
			if prev == cur {
				continue
			}
			rightPos := totalPos - leftPos
			score := (float64(k)*gini(leftPos, k) + float64(total-k)*gini(rightPos, total-k)) / float64(total)
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = (prev + cur) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 1 - p*p - (1-p)*(1-p)
}

// TrainTestSplit returns a deterministic shuffled partition of n row indices.
func TrainTestSplit(n int, testFraction float64, seed uint64) (train, test []int) {
	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

// Accuracy is the share of rows whose hard prediction matches the label.
func Accuracy(f *Forest, X [][]float64, y []int) float64 {
	if len(X) == 0 {
		return 0
	}
	hits := make([]float64, len(X))
	for i := range X {
		if f.Predict(X[i]) == y[i] {
			hits[i] = 1
		}
	}
	return stat.Mean(hits, nil)
}
