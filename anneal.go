package faster

import (
	"fmt"
	"math"
	"math/rand"
)

// Learner holds every tunable the simulated-annealing search reads from
// configuration, mirroring the GV3 variables original_source/learn_detector.cc
// pulls out of learn_detector.cfg (C8, §4.8).
type Learner struct {
	Iterations           int
	FASTThreshold        int
	FuzzRadius           int
	RepeatabilityScale   float64
	NumCost              float64
	MaxNodes             int
	InitialTreeDepth     int
	TemperatureExpoScale float64
	TemperatureExpoAlpha float64
	RandomSeed           int64

	// Triggers maps an iteration number to a config-store assignment line
	// ("key = value"). Run looks up the line for each iteration but does
	// not apply it: the Learner holds no Store, so configuration is not
	// re-read during a run.
	Triggers map[int]string

	rng *rand.Rand
}

// IterationReport is the per-iteration telemetry the annealing loop hands
// back to its caller, covering every figure the original prints with its
// "cout << print" lines.
type IterationReport struct {
	Iteration         int
	NodeCount         int
	Repeatability     float64
	RepeatabilityCost float64
	NumberCost        float64
	SizeCost          float64
	Cost              float64
	OldCost           float64
	Temperature       float64
	Likelihood        float64
	Accepted          bool
}

func (r IterationReport) String() string {
	status := "rejected"
	if r.Accepted {
		status = "accepted"
	}
	return fmt.Sprintf("iteration %d: nodes=%d repeatability=%.4f cost=%.4f (was %.4f) T=%.4f %s",
		r.Iteration, r.NodeCount, r.Repeatability, r.Cost, r.OldCost, r.Temperature, status)
}

// NewLearner applies the config store's learner section on top of the
// compiled-in defaults original_source/learn_detector.cfg ships.
func NewLearner(cfg *Store) *Learner {
	l := &Learner{
		Iterations:           cfg.IntOr("iterations", 10000),
		FASTThreshold:        cfg.IntOr("FAST_threshold", 30),
		FuzzRadius:           cfg.IntOr("fuzz", 2),
		RepeatabilityScale:   cfg.FloatOr("repeatability_scale", 0.5),
		NumCost:              cfg.FloatOr("num_cost", 300),
		MaxNodes:             cfg.IntOr("max_nodes", 30),
		InitialTreeDepth:     cfg.IntOr("initial_tree_depth", 1),
		TemperatureExpoScale: cfg.FloatOr("Temperature.expo.scale", 1),
		TemperatureExpoAlpha: cfg.FloatOr("Temperature.expo.alpha", 5),
		RandomSeed:           int64(cfg.IntOr("random_seed", 1)),
		Triggers:             map[int]string{},
	}
	l.rng = rand.New(rand.NewSource(l.RandomSeed))
	return l
}

// randomTree recursively generates a tree of depth d respecting I1: an
// eq-branch leaf is always non-corner, every other leaf is an unbiased
// coin flip (C8, §4.8), grounded on original_source/learn_detector.cc's
// random_tree.
func (l *Learner) randomTree(depth int, viaEQ bool, numOffsets int) *Node {
	if depth == 0 {
		if viaEQ {
			return NewLeaf(NonCorner, 0)
		}
		return NewLeaf(classFromBit(l.rng.Intn(2)), 0)
	}
	lt := l.randomTree(depth-1, false, numOffsets)
	eq := l.randomTree(depth-1, true, numOffsets)
	gt := l.randomTree(depth-1, false, numOffsets)
	return NewBranch(l.rng.Intn(numOffsets), lt, eq, gt)
}

func classFromBit(b int) Class {
	if b != 0 {
		return Corner
	}
	return NonCorner
}

// mutate applies exactly one tree operation (grow, class flip, offset
// change, subtree copy or splat) at a uniformly chosen node. It returns
// nothing: the tree passed in is mutated in place, so callers must pass a
// DeepCopy.
func (l *Learner) mutate(tree *Node, numOffsets int) {
	n := tree.NodeCount()
	nth := l.rng.Intn(n)
	node, viaEQ, _ := tree.NthElement(nth)

	if node.IsLeaf {
		if l.rng.Intn(2) == 1 || viaEQ {
			// Operation 1: grow a random depth-1 subtree, respecting I1.
			stub := l.randomTree(1, viaEQ, numOffsets)
			node.IsLeaf = false
			node.OffsetIndex = stub.OffsetIndex
			node.LT, node.EQ, node.GT = stub.LT, stub.EQ, stub.GT
		} else {
			// Operation 2: flip the leaf's classification.
			if node.Class == Corner {
				node.Class = NonCorner
			} else {
				node.Class = Corner
			}
		}
		return
	}

	switch d := l.rng.Float64(); {
	case d < 1.0/3.0:
		// Operation 4: randomize the offset index.
		node.OffsetIndex = l.rng.Intn(numOffsets)
	case d < 2.0/3.0:
		// Operation 3: copy one branch over another.
		remove := l.rng.Intn(3)
		var copy int
		for {
			copy = l.rng.Intn(3)
			if copy != remove {
				break
			}
		}
		src := branchAt(node, copy).DeepCopy()
		setBranch(node, remove, src)
	default:
		// Splat: delete all three children, collapsing node to a leaf.
		node.LT, node.EQ, node.GT = nil, nil, nil
		node.IsLeaf = true
		if viaEQ {
			node.Class = NonCorner
		} else {
			node.Class = classFromBit(l.rng.Intn(2))
		}
	}
}

func branchAt(n *Node, which int) *Node {
	switch which {
	case 0:
		return n.LT
	case 1:
		return n.EQ
	default:
		return n.GT
	}
}

func setBranch(n *Node, which int, v *Node) {
	switch which {
	case 0:
		n.LT = v
	case 1:
		n.EQ = repairEQCopy(v)
	default:
		n.GT = v
	}
}

// repairEQCopy re-applies the I1 repair (§4.2) after an arbitrary subtree
// has been copied on to an eq edge, since the copied subtree may contain a
// corner leaf that was legal on its original (non-eq) edge.
func repairEQCopy(n *Node) *Node {
	repairEQ(n)
	return n
}

// computeTemperature is the original's exponential cooling schedule.
func (l *Learner) computeTemperature(i int) float64 {
	return l.TemperatureExpoScale * math.Exp(-l.TemperatureExpoAlpha*float64(i)/float64(l.Iterations))
}

// cost evaluates the original's three-factor cost function:
//
//	(1 + (nodes/max_nodes)^2) * (1 + (repeatability_scale/repeatability)^2) * (1 + mean((count/num_cost)^2))
func (l *Learner) cost(tree *Node, repeatability float64, perFrameCounts []int) (total, repCost, numCost, sizeCost float64) {
	sizeCost = 1 + sq(float64(tree.NodeCount())/float64(l.MaxNodes))
	repCost = 1 + sq(l.RepeatabilityScale/repeatability)

	var sum float64
	for _, c := range perFrameCounts {
		sum += sq(float64(c) / l.NumCost)
	}
	numCost = 1 + sum/float64(len(perFrameCounts))

	return sizeCost * repCost * numCost, repCost, numCost, sizeCost
}

func sq(x float64) float64 { return x * x }

// Run executes the full simulated-annealing search (C8, §4.8): starting
// from a random tree, it repeatedly mutates a working copy, evaluates its
// repeatability and cost on the training dataset, and accepts or rejects
// the mutation under the Boltzmann criterion. report, if non-nil, is
// called once per iteration with that iteration's telemetry; it must not
// retain the passed report's tree-dependent fields beyond the call.
func (l *Learner) Run(ds *Dataset, offsets *OffsetTable, report func(IterationReport)) *Node {
	numOffsets := offsets.NumOffsets()
	tree := l.randomTree(l.InitialTreeDepth, false, numOffsets)

	oldCost := math.Inf(1)

	for it := 0; it < l.Iterations; it++ {
		if line, ok := l.Triggers[it]; ok {
			// A trigger is a literal config-store assignment line, applied
			// to nothing here because the learner owns no live Store of
			// its own; callers wanting trigger support reapply it to the
			// Store that fed NewLearner and must re-derive the Learner
			// fields they care about between iterations.
			_ = line
		}

		newTree := tree.DeepCopy()
		if it != 0 {
			l.mutate(newTree, numOffsets)
		}

		prog := Compile(newTree, offsets, ds.Width)

		detected := make([][]Point, len(ds.Images))
		counts := make([]int, len(ds.Images))
		for i, img := range ds.Images {
			detected[i] = DetectAndSuppress(prog, img, offsets, l.FASTThreshold)
			counts[i] = len(detected[i])
		}

		repeatability := RepeatabilityFast(ds.Warps, detected, l.FuzzRadius, ds.Width, ds.Height)
		cost, repCost, numCost, sizeCost := l.cost(newTree, repeatability, counts)

		temperature := l.computeTemperature(it)
		likelihood := math.Exp((oldCost - cost) / temperature)
		accepted := l.rng.Float64() < likelihood

		if report != nil {
			report(IterationReport{
				Iteration:         it,
				NodeCount:         newTree.NodeCount(),
				Repeatability:     repeatability,
				RepeatabilityCost: repCost,
				NumberCost:        numCost,
				SizeCost:          sizeCost,
				Cost:              cost,
				OldCost:           oldCost,
				Temperature:       temperature,
				Likelihood:        likelihood,
				Accepted:          accepted,
			})
		}

		if accepted {
			oldCost = cost
			tree = newTree
		}
	}

	return tree
}
