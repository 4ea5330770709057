package tilecode

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/tilerl/errs"
)

// Coder extracts a sparse, fixed-cardinality feature vector from a
// point in a bounded D-dimensional real space.
type Coder interface {
	// FeaturesOf returns the K active tile indices for x, each in
	// [0, Size()). The result is deterministic in x and in the coder's
	// (immutable, construction-time) offsets.
	FeaturesOf(x []float64) ([]int, error)

	// Size returns W, the total number of addressable tile-coded
	// features.
	Size() int

	// NumTilings returns K, the number of tilings.
	NumTilings() int

	// Dims returns D, the dimensionality of the input space.
	Dims() int
}

// base holds the state shared by every Coder implementation: the
// per-dimension description of the space and the per-tiling,
// per-dimension random offsets drawn once at construction.
type base struct {
	dims       []DimensionInfo
	numTilings int
	offsets    [][]float64 // offsets[tiling][dim]
}

// newBase validates dims and numTilings and draws the per-tiling
// offsets from rngSrc. offsets[t][d] is drawn from U(0, 1) * dims[d].Offset();
// dims[d].Generalisation is applied once, at grid-coordinate
// computation time (see gridCoord), not here — applying it at both
// points would double-scale the offset.
func newBase(op string, dims []DimensionInfo, numTilings int, rngSrc rand.Source) (base, error) {
	if numTilings < 1 {
		return base{}, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("numTilings must be at least 1: got %v", numTilings))
	}
	if len(dims) == 0 {
		return base{}, errs.New(op, errs.InvalidConfig,
			"must specify at least one dimension")
	}
	for i, d := range dims {
		if err := d.Validate(); err != nil {
			return base{}, fmt.Errorf("%s: dimension %d: %w", op, i, err)
		}
	}

	u := distuv.Uniform{Min: 0, Max: 1, Src: rngSrc}
	offsets := make([][]float64, numTilings)
	for t := 0; t < numTilings; t++ {
		offsets[t] = make([]float64, len(dims))
		for d, dim := range dims {
			offsets[t][d] = u.Rand() * dim.Offset()
		}
	}

	return base{dims: dims, numTilings: numTilings, offsets: offsets}, nil
}

// gridCoord returns g(x, t, d) as defined by the spec:
//
//	g = floor(((x + offsets[t][d]*generalisation_d) - lo_d) * gridIdeal_d / range_d)
//
// clipped into [0, gridReal_d - 1] so callers never index outside the
// grid, even when x sits exactly at the upper bound and a positive
// offset would otherwise push it past the last cell.
func (b base) gridCoord(x float64, tiling, dim int) int {
	d := b.dims[dim]
	shifted := x + b.offsets[tiling][dim]*d.Generalisation
	g := math.Floor((shifted - d.Lo()) * float64(d.GridIdeal) / d.Range())
	g = clamp(g, 0, float64(d.GridReal()-1))
	return int(g)
}

// checkDomain validates that x has the right dimensionality and that
// every coordinate lies within its dimension's [lo, hi] bounds, and is
// not NaN.
func (b base) checkDomain(op string, x []float64) error {
	if len(x) != len(b.dims) {
		return errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("expected %d dimensions, got %d", len(b.dims), len(x)))
	}
	for i, xi := range x {
		if math.IsNaN(xi) {
			return errs.New(op, errs.OutOfDomain,
				fmt.Sprintf("dimension %d is NaN", i))
		}
		d := b.dims[i]
		if xi < d.Lo() || xi > d.Hi() {
			return errs.New(op, errs.OutOfDomain,
				fmt.Sprintf("dimension %d value %v outside [%v, %v]", i, xi, d.Lo(), d.Hi()))
		}
	}
	return nil
}

func (b base) NumTilings() int { return b.numTilings }

func (b base) Dims() int { return len(b.dims) }
