package fast

import (
	"math"

	"github.com/esimov/faster"
)

// Tree is a ternary ID3 decision tree over a fixed-length descriptor (C10,
// §4.10). Unlike the core FAST-ER Node (which tests a dynamically chosen
// offset at every branch and uses a learned threshold), a Tree tests a
// fixed feature position into a precomputed Descriptor and carries no
// invariant equivalent to I1: a Similar-branch leaf may legally be a
// corner, since these trees are grown, not mutated, and ID3 never produces
// the kind of transient violation the annealing mutator can.
type Tree struct {
	IsLeaf bool
	Corner bool

	Feature       int
	Bri, Dark, Sim *Tree
	NumDatapoints uint64
}

func leaf(corner bool, n uint64) *Tree {
	return &Tree{IsLeaf: true, Corner: corner, NumDatapoints: n}
}

// entropy is the binary entropy of a set of n elements, c1 of which are in
// the positive class, using the §4.10 convention that H = 0 whenever the
// set is empty or pure (grounded on original_source/learn_fast_tree.cc's
// entropy).
func entropy(n, c1 uint64) float64 {
	if n == 0 || c1 == 0 || c1 == n {
		return 0
	}
	p1 := float64(c1) / float64(n)
	p2 := 1 - p1
	return -float64(n) * (p1*math.Log2(p1) + p2*math.Log2(p2))
}

// findBestSplit chooses the feature index with the highest weighted
// entropy reduction (§4.10), ties broken by lowest index, returning -1 if
// every feature has zero or negative gain.
func findBestSplit(data []LabeledDescriptor, weights []float64, numFeatures int) int {
	var numTotal, numCorner uint64
	for _, d := range data {
		numTotal += d.Count
		if d.Corner {
			numCorner += d.Count
		}
	}
	totalEntropy := entropy(numTotal, numCorner)

	best := -1
	bestDelta := 0.0

	for f := 0; f < numFeatures; f++ {
		var numBri, corBri, numDar, corDar, numSim, corSim uint64
		for _, d := range data {
			switch d.Features[f] {
			case faster.Brighter:
				numBri += d.Count
				if d.Corner {
					corBri += d.Count
				}
			case faster.Darker:
				numDar += d.Count
				if d.Corner {
					corDar += d.Count
				}
			default:
				numSim += d.Count
				if d.Corner {
					corSim += d.Count
				}
			}
		}

		delta := totalEntropy - (entropy(numBri, corBri) + entropy(numDar, corDar) + entropy(numSim, corSim))
		delta *= weights[f]

		if delta > bestDelta {
			bestDelta = delta
			best = f
		}
	}

	return best
}

// Build grows an ID3 tree from labeled descriptors, each of length
// numFeatures, with a per-feature weight vector (default weight 1.0 per
// §4.10), grounded on original_source/learn_fast_tree.cc's build_tree. It
// returns an error if some feature position cannot separate data that
// nonetheless carries two different classes (the input is assumed to be a
// deterministic function of the features).
func Build(data []LabeledDescriptor, weights []float64, numFeatures int) (*Tree, error) {
	if len(weights) != numFeatures {
		w := make([]float64, numFeatures)
		for i := range w {
			w[i] = 1.0
		}
		weights = w
	}
	return buildTree(data, weights, numFeatures)
}

func buildTree(data []LabeledDescriptor, weights []float64, numFeatures int) (*Tree, error) {
	f := findBestSplit(data, weights, numFeatures)
	if f == -1 {
		return nil, &SplitError{NumPoints: len(data)}
	}

	var bri, dar, sim []LabeledDescriptor
	var numBri, corBri, numDar, corDar, numSim, corSim uint64

	for _, d := range data {
		switch d.Features[f] {
		case faster.Brighter:
			bri = append(bri, d)
			numBri += d.Count
			if d.Corner {
				corBri += d.Count
			}
		case faster.Darker:
			dar = append(dar, d)
			numDar += d.Count
			if d.Corner {
				corDar += d.Count
			}
		default:
			sim = append(sim, d)
			numSim += d.Count
			if d.Corner {
				corSim += d.Count
			}
		}
	}

	briTree, err := branch(bri, numBri, corBri, weights, numFeatures)
	if err != nil {
		return nil, err
	}
	darTree, err := branch(dar, numDar, corDar, weights, numFeatures)
	if err != nil {
		return nil, err
	}
	simTree, err := branch(sim, numSim, corSim, weights, numFeatures)
	if err != nil {
		return nil, err
	}

	return &Tree{
		Feature:       f,
		Bri:           briTree,
		Dark:          darTree,
		Sim:           simTree,
		NumDatapoints: numBri + numDar + numSim,
	}, nil
}

func branch(data []LabeledDescriptor, num, cor uint64, weights []float64, numFeatures int) (*Tree, error) {
	if cor == 0 {
		return leaf(false, num), nil
	}
	if cor == num {
		return leaf(true, num), nil
	}
	return buildTree(data, weights, numFeatures)
}

// SplitError reports that ID3 construction reached a set of datapoints
// containing two classes with no feature left that separates them (§4.10,
// §7): the input was assumed to be a deterministic function of the
// features and is not.
type SplitError struct {
	NumPoints int
}

func (e *SplitError) Error() string {
	return "id3: no feature produces positive gain on an impure, unsplittable set of datapoints"
}
