// Package tilecode implements tile coding: a deterministic mapping from
// a point in a bounded D-dimensional real space to a sparse set of K
// feature indices ("active tiles"), usable as input to a linear value
// function.
//
// Two coders are provided: Correct, which assigns every distinct grid
// coordinate its own index (collision-free, suited to low/medium D),
// and Hashed, which hashes grid coordinates into a fixed-size table
// (accepts collisions, suited to high D).
package tilecode

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/tilerl/errs"
)

// DimensionInfo describes one axis of the space being tiled: its bounds
// and how finely it should be divided.
type DimensionInfo struct {
	// Bounds holds the dimension's [Min, Max] extent, matching the
	// teacher's r1.Interval bounds on a starter's sampling range.
	Bounds r1.Interval

	// GridIdeal is the number of tile boundaries along this dimension,
	// excluding the boundary absorbing x == Hi (see GridReal).
	GridIdeal int

	// Generalisation scales the per-tiling random offset drawn along
	// this dimension; larger values generalise value estimates across
	// wider neighbourhoods.
	Generalisation float64
}

// Lo returns the dimension's lower bound.
func (d DimensionInfo) Lo() float64 { return d.Bounds.Min }

// Hi returns the dimension's upper bound.
func (d DimensionInfo) Hi() float64 { return d.Bounds.Max }

// Range returns hi - lo.
func (d DimensionInfo) Range() float64 { return d.Bounds.Max - d.Bounds.Min }

// Offset returns the quantisation step along this dimension:
// range / gridIdeal.
func (d DimensionInfo) Offset() float64 { return d.Range() / float64(d.GridIdeal) }

// GridReal returns GridIdeal + 1, the number of grid cells actually
// allocated along this dimension. The extra cell absorbs x == Hi and
// the positive per-tiling offset.
func (d DimensionInfo) GridReal() int { return d.GridIdeal + 1 }

// Validate checks the DimensionInfo invariants: Hi > Lo, GridIdeal >= 1,
// Generalisation > 0.
func (d DimensionInfo) Validate() error {
	const op = "tilecode.DimensionInfo.Validate"
	if d.Hi() <= d.Lo() {
		return errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("hi must be greater than lo: hi=%v lo=%v", d.Hi(), d.Lo()))
	}
	if d.GridIdeal < 1 {
		return errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("gridIdeal must be at least 1: got %v", d.GridIdeal))
	}
	if d.Generalisation <= 0 {
		return errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("generalisation must be positive: got %v", d.Generalisation))
	}
	return nil
}

// clamp restricts x into [lo, hi], matching the teacher's
// utils/matutils.VecClip element-wise clamp.
func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
