package tilecode

import (
	"golang.org/x/exp/rand"
)

// Correct is a collision-free tile coder suited to low or medium D: it
// assembles each tiling's grid coordinates into a mixed-radix index, so
// distinct coordinate tuples always map to distinct feature indices.
// Memory cost is O(K * prod(gridReal_d)), so Correct should be preferred
// only when that product is small.
type Correct struct {
	base
	tilingSize int // prod(gridReal_d), the number of features per tiling
}

// NewCorrect constructs a Correct tile coder over the given dimensions,
// using numTilings tilings with offsets drawn from rngSrc.
func NewCorrect(dims []DimensionInfo, numTilings int, rngSrc rand.Source) (*Correct, error) {
	const op = "tilecode.NewCorrect"
	b, err := newBase(op, dims, numTilings, rngSrc)
	if err != nil {
		return nil, err
	}

	tilingSize := 1
	for _, d := range dims {
		tilingSize *= d.GridReal()
	}

	return &Correct{base: b, tilingSize: tilingSize}, nil
}

// Size returns W = numTilings * prod(gridReal_d).
func (c *Correct) Size() int { return c.numTilings * c.tilingSize }

// FeaturesOf returns the K active tile indices for x. For tiling t, the
// index is the mixed-radix number
//
//	idx_t = sum_d g(x,t,d) * prod_{d'<d} gridReal_d'  +  t * tilingSize
//
// which guarantees idx_t < Size() and that distinct (g_0,...,g_{D-1},t)
// tuples map to distinct indices.
func (c *Correct) FeaturesOf(x []float64) ([]int, error) {
	const op = "tilecode.Correct.FeaturesOf"
	if err := c.checkDomain(op, x); err != nil {
		return nil, err
	}

	features := make([]int, c.numTilings)
	for t := 0; t < c.numTilings; t++ {
		idx := 0
		radix := 1
		for d := range c.dims {
			g := c.gridCoord(x[d], t, d)
			idx += g * radix
			radix *= c.dims[d].GridReal()
		}
		features[t] = t*c.tilingSize + idx
	}
	return features, nil
}
