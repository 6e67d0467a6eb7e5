package faster

import (
	"math"

	"github.com/esimov/faster/utils"
)

// epsilon guards the repeatability ratio's denominator against division by
// zero when a frame set produces no repeatable corners at all, the same
// role original_source/test_repeatability.cc's DBL_EPSILON plays.
const epsilon = 2.220446049250313e-16

// PairReport records one ordered frame pair's contribution to a
// repeatability computation (§9's supplemented pair-report feature): how
// many corners in the source frame warped inside the destination frame at
// all, and how many of those were matched to a detected corner there.
type PairReport struct {
	From, To int
	Tested   int
	Repeated int
}

// RepeatabilityExact computes repeatability by comparing every warped
// corner position against every detected corner in the destination frame
// (C7, §4.7), grounded on original_source/test_repeatability.cc's
// compute_repeatability_exact. corners[i] is the set of positions detected
// in frame i; warps[i][j] maps frame i into frame j's coordinates. A warp
// landing on the InvalidWarp sentinel is outside the destination frame and
// is excluded from both the tested and repeated counts.
func RepeatabilityExact(warps [][]grid[WarpPoint], corners [][]Point, radius float64) (float64, []PairReport) {
	n := len(corners)
	r2 := radius * radius

	var reports []PairReport
	var testedTotal, repeatedTotal int

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			rep := PairReport{From: i, To: j}
			for _, p := range corners[i] {
				w := warps[i][j].At(p.X, p.Y)
				if w.IsSentinel() {
					continue
				}
				rep.Tested++
				for _, q := range corners[j] {
					dx := w.X - float64(q.X)
					dy := w.Y - float64(q.Y)
					if dx*dx+dy*dy < r2 {
						rep.Repeated++
						break
					}
				}
			}
			testedTotal += rep.Tested
			repeatedTotal += rep.Repeated
			reports = append(reports, rep)
		}
	}

	return float64(repeatedTotal) / (float64(testedTotal) + epsilon), reports
}

// disc is the set of integer offsets (x, y) with x*x+y*y <= r*r, the filled
// disc of radius r around the origin.
func disc(radius int) []Point {
	radius = utils.Max(radius, 0)
	var out []Point
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

// paintCircles paints a disc of true around every corner into a same-size
// boolean grid, clamping silently at the image border (C7, §4.7).
func paintCircles(corners []Point, shape []Point, width, height int) grid[bool] {
	g := newGrid[bool](width, height)
	for _, c := range corners {
		for _, d := range shape {
			x, y := c.X+d.X, c.Y+d.Y
			if g.InBounds(x, y) {
				g.Set(x, y, true)
			}
		}
	}
	return g
}

// RepeatabilityFast computes an approximate repeatability by painting a
// disc of radius r around each detected corner into a cached boolean image
// and testing whether a warped corner lands on a painted pixel, trading a
// small rounding error (coordinates are rounded before the disc lookup)
// for speed inside the annealing loop's inner iteration (C7, §4.7),
// grounded on original_source/learn_detector.cc's compute_repeatability.
func RepeatabilityFast(warps [][]grid[WarpPoint], corners [][]Point, radius, width, height int) float64 {
	n := len(corners)
	shape := disc(radius)

	detected := make([]grid[bool], n)
	for i := range corners {
		detected[i] = paintCircles(corners[i], shape, width, height)
	}

	tested, good := 0, 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			for _, p := range corners[i] {
				w := warps[i][j].At(p.X, p.Y)
				if w.IsSentinel() {
					continue
				}
				tested++
				dx := int(math.Round(w.X))
				dy := int(math.Round(w.Y))
				if detected[j].InBounds(dx, dy) && detected[j].At(dx, dy) {
					good++
				}
			}
		}
	}

	return float64(good) / (float64(tested) + epsilon)
}
