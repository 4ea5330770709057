package tilecode

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/tilerl/errs"
)

// HashKind selects the hash function a Hashed coder uses to fold a
// tiling's grid-coordinate tuple into a feature index.
type HashKind int

const (
	// UNH applies the classic University of New Hampshire integer hash.
	UNH HashKind = iota

	// MT19937 seeds a deterministic 64-bit Mersenne Twister from the
	// tuple and takes one draw.
	MT19937
)

// Hashed is a tile coder suited to high D: rather than allocating a
// distinct index per grid-coordinate tuple, it hashes each tiling's
// tuple (t, g_0, ..., g_{D-1}) modulo a caller-chosen table size W.
// Collisions are accepted; W trades memory for representational
// accuracy.
//
// Per tiling, the tuple hashed is (t, g_0, ..., g_{D-1}) where each g_d
// is computed against gridReal_d (gridIdeal_d + 1) grid cells — the
// same grid a Correct coder would use for the same DimensionInfo. This
// resolves the spec's open question of whether to hash against
// gridIdeal or gridReal: using gridReal keeps a Hashed coder's grid
// coordinates numerically identical to a Correct coder's for the same
// dimensions, so the two are interchangeable for a given
// DimensionInfo slice.
type Hashed struct {
	base
	size int
	kind HashKind
}

// NewHashed constructs a Hashed tile coder over the given dimensions,
// using numTilings tilings, a feature table of size sizeHint, offsets
// drawn from rngSrc, and the given hash kind.
func NewHashed(dims []DimensionInfo, numTilings, sizeHint int, rngSrc rand.Source, kind HashKind) (*Hashed, error) {
	const op = "tilecode.NewHashed"
	if sizeHint < 1 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("sizeHint must be at least 1: got %v", sizeHint))
	}
	if kind != UNH && kind != MT19937 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("unknown hash kind: %v", kind))
	}

	b, err := newBase(op, dims, numTilings, rngSrc)
	if err != nil {
		return nil, err
	}

	return &Hashed{base: b, size: sizeHint, kind: kind}, nil
}

// Size returns W, the caller-chosen hash table size.
func (h *Hashed) Size() int { return h.size }

// FeaturesOf returns the K active tile indices for x, one per tiling,
// each the hash of that tiling's (t, g_0, ..., g_{D-1}) tuple modulo
// Size().
func (h *Hashed) FeaturesOf(x []float64) ([]int, error) {
	const op = "tilecode.Hashed.FeaturesOf"
	if err := h.checkDomain(op, x); err != nil {
		return nil, err
	}

	tuple := make([]int, len(h.dims)+1)
	features := make([]int, h.numTilings)
	for t := 0; t < h.numTilings; t++ {
		tuple[0] = t
		for d := range h.dims {
			tuple[d+1] = h.gridCoord(x[d], t, d)
		}

		switch h.kind {
		case UNH:
			features[t] = unhHash(tuple, h.size)
		case MT19937:
			features[t] = mt19937Hash(tuple, h.size)
		}
	}
	return features, nil
}
