package faster

import "math"

// MaxMargin is the sentinel "infinite" margin returned for a confirmed
// corner whose exact excess is unbounded (a Corner leaf offers no further
// threshold to track), per §4.3.
const MaxMargin = math.MaxInt32

// Evaluate scores a single pixel against a tree by recursively applying it
// across all 8 orientations and both polarities (C3, §4.3). It returns 0
// if no orientation/polarity combination classifies pos as a corner,
// otherwise the minimum excess across the winning path's Brighter/Darker
// edges: raising threshold by less than this keeps that combination on the
// same path, raising it by this amount changes the path. Ties are broken
// by iteration order:
// orientation ascending, identity polarity before inversion.
func Evaluate(tree *Node, img *GrayImage, offsets *OffsetTable, pos Point, threshold int) int {
	for n := 0; n < NumOrientations; n++ {
		for _, invert := range [...]bool{false, true} {
			if margin, corner := evalOrientation(tree, img, offsets, n, pos, threshold, invert); corner {
				return margin
			}
		}
	}
	return 0
}

// EvaluateIsCorner is a faster variant that stops at the first orientation
// that classifies pos as a corner, without computing a margin.
func EvaluateIsCorner(tree *Node, img *GrayImage, offsets *OffsetTable, pos Point, threshold int) bool {
	for n := 0; n < NumOrientations; n++ {
		for _, invert := range [...]bool{false, true} {
			if isCornerOrientation(tree, img, offsets, n, pos, threshold, invert) {
				return true
			}
		}
	}
	return false
}

// evalOrientation walks the tree for one (orientation, polarity) pair,
// tracking the running minimum margin along the path actually taken.
func evalOrientation(n *Node, img *GrayImage, offsets *OffsetTable, orientation int, pos Point, threshold int, invert bool) (margin int, corner bool) {
	margin = MaxMargin
	c := int(img.At(pos.X, pos.Y))
	for {
		if n.IsLeaf {
			if n.Class == Corner {
				return margin, true
			}
			return 0, false
		}
		off := offsets.Offset(orientation, n.OffsetIndex)
		p := int(img.At(pos.X+off.X, pos.Y+off.Y))

		switch {
		case p > c+threshold:
			excess := p - (c + threshold)
			if excess < margin {
				margin = excess
			}
			if invert {
				n = n.LT
			} else {
				n = n.GT
			}
		case p < c-threshold:
			excess := (c - threshold) - p
			if excess < margin {
				margin = excess
			}
			if invert {
				n = n.GT
			} else {
				n = n.LT
			}
		default:
			n = n.EQ
		}
	}
}

// isCornerOrientation is evalOrientation without margin bookkeeping.
func isCornerOrientation(n *Node, img *GrayImage, offsets *OffsetTable, orientation int, pos Point, threshold int, invert bool) bool {
	c := int(img.At(pos.X, pos.Y))
	for {
		if n.IsLeaf {
			return n.Class == Corner
		}
		off := offsets.Offset(orientation, n.OffsetIndex)
		p := int(img.At(pos.X+off.X, pos.Y+off.Y))

		switch {
		case p > c+threshold:
			if invert {
				n = n.LT
			} else {
				n = n.GT
			}
		case p < c-threshold:
			if invert {
				n = n.GT
			} else {
				n = n.LT
			}
		default:
			n = n.EQ
		}
	}
}
