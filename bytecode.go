package faster

// Instruction is one entry of the flat bytecode program (C4, §4.4). A Test
// instruction compares the pixel at OffsetPixels (a row-major memory delta
// computed for one specific image width) against the centre pixel and
// jumps to GT, LT or EQ. A Terminal instruction is distinguished by LT
// being 0 (never a legitimate jump target, since the program is a
// forward-only DAG and index 0 is only ever the program's own entry
// point); its GT field then holds the class: 0 non-corner, 1 corner.
type Instruction struct {
	OffsetPixels int
	Dx, Dy       int // retained for pretty-printing only, §6.
	GT, LT, EQ   int
}

// IsTerminal reports whether this instruction is a terminal sink rather
// than a pixel test.
func (ins Instruction) IsTerminal() bool { return ins.LT == 0 }

// TerminalIsCorner reports the class encoded by a terminal's GT field.
func (ins Instruction) TerminalIsCorner() bool { return ins.GT != 0 }

// sentinel markers used only during construction, before the shared
// terminal sinks have been appended and their final indices are known.
const (
	sentinelNonCorner = -1
	sentinelCorner    = -2
)

// Compile linearizes a tree into a flat bytecode program replicated over
// all 8 orientations and both polarities (C4, §4.4). width is the image
// row stride the OffsetPixels deltas are computed for; the program must be
// recompiled whenever the image width changes.
func Compile(tree *Node, offsets *OffsetTable, width int) []Instruction {
	if tree.IsLeaf {
		// Edge case (§4.4): a single-leaf tree compiles to a degenerate
		// 1-node program carrying the leaf's own class. I1 only constrains
		// leaves under an EQ edge, so a root leaf (e.g. from a depth-0
		// random tree) may be Corner, giving an always-corner program.
		cls := 0
		if tree.Class == Corner {
			cls = 1
		}
		return []Instruction{{LT: 0, GT: cls}}
	}

	// Because any orientation/polarity accepting means the pixel is a
	// corner, a corner leaf anywhere always jumps straight to the single
	// shared corner sink. A non-corner leaf must NOT short-circuit the
	// same way: classifying non-corner under one orientation has to fall
	// through and let the next orientation's replica have a chance, and
	// only the very last replica's non-corner leaves commit the overall
	// non-corner classification. So every segment except the last gets its
	// non-corner sentinel resolved to "start of the next segment" as soon
	// as that address is known (immediately after the segment is
	// appended); only the last segment's non-corner sentinel survives to
	// be resolved against the final shared terminal below.
	var prog []Instruction
	const numSegments = NumOrientations * 2
	si := 0
	for orientation := 0; orientation < NumOrientations; orientation++ {
		for _, invert := range [2]bool{false, true} {
			var seg []Instruction
			linearize(tree, invert, orientation, offsets, width, &seg)
			base := len(prog)
			for i := range seg {
				seg[i].LT = rebase(seg[i].LT, base)
				seg[i].EQ = rebase(seg[i].EQ, base)
				seg[i].GT = rebase(seg[i].GT, base)
			}
			prog = append(prog, seg...)
			segEnd := len(prog)

			if si != numSegments-1 {
				for i := base; i < segEnd; i++ {
					prog[i].LT = fallthroughResolve(prog[i].LT, segEnd)
					prog[i].EQ = fallthroughResolve(prog[i].EQ, segEnd)
					prog[i].GT = fallthroughResolve(prog[i].GT, segEnd)
				}
			}
			si++
		}
	}

	nonCornerIdx := len(prog)
	prog = append(prog, Instruction{LT: 0, GT: 0})
	cornerIdx := len(prog)
	prog = append(prog, Instruction{LT: 0, GT: 1})

	for i := range prog {
		prog[i].LT = finalize(prog[i].LT, nonCornerIdx, cornerIdx)
		prog[i].EQ = finalize(prog[i].EQ, nonCornerIdx, cornerIdx)
		prog[i].GT = finalize(prog[i].GT, nonCornerIdx, cornerIdx)
	}
	// The two terminal instructions themselves must keep LT == 0; the
	// loop above only ever rewrites sentinel values (-1/-2), so they are
	// untouched, but guard explicitly since this is the field the whole
	// encoding depends on.
	prog[nonCornerIdx].LT = 0
	prog[cornerIdx].LT = 0
	return prog
}

func rebase(ref, base int) int {
	if ref == sentinelNonCorner || ref == sentinelCorner {
		return ref
	}
	return ref + base
}

// fallthroughResolve resolves a non-corner sentinel to the start of the
// next segment, leaving the corner sentinel (and already-resolved real
// indices) untouched.
func fallthroughResolve(ref, nextSegmentStart int) int {
	if ref == sentinelNonCorner {
		return nextSegmentStart
	}
	return ref
}

func finalize(ref, nonCornerIdx, cornerIdx int) int {
	switch ref {
	case sentinelNonCorner:
		return nonCornerIdx
	case sentinelCorner:
		return cornerIdx
	default:
		return ref
	}
}

// linearize recursively lowers one (orientation, polarity) replica of the
// tree into seg, using local (segment-relative) indices and the two
// sentinel markers for leaves. It returns the local reference for n: a
// real index for a branch (an instruction was appended) or a sentinel for
// a leaf (no instruction is appended -- leaves collapse into the shared
// terminal sinks).
func linearize(n *Node, invert bool, orientation int, offsets *OffsetTable, width int, seg *[]Instruction) int {
	if n.IsLeaf {
		if n.Class == Corner {
			return sentinelCorner
		}
		return sentinelNonCorner
	}

	idx := len(*seg)
	*seg = append(*seg, Instruction{})

	ltChild, gtChild := n.LT, n.GT
	if invert {
		ltChild, gtChild = n.GT, n.LT
	}
	ltRef := linearize(ltChild, invert, orientation, offsets, width, seg)
	eqRef := linearize(n.EQ, invert, orientation, offsets, width, seg)
	gtRef := linearize(gtChild, invert, orientation, offsets, width, seg)

	off := offsets.Offset(orientation, n.OffsetIndex)
	(*seg)[idx] = Instruction{
		OffsetPixels: off.Y*width + off.X,
		Dx:           off.X,
		Dy:           off.Y,
		LT:           ltRef,
		EQ:           eqRef,
		GT:           gtRef,
	}
	return idx
}
