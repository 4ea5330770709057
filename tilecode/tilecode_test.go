package tilecode

import (
	"fmt"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// zeroSource is a rand.Source that always yields 0, producing
// deterministic zero offsets regardless of seed.
type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }
func (zeroSource) Seed(uint64)    {}

func oneDim(lo, hi float64, gridIdeal int) []DimensionInfo {
	return []DimensionInfo{{Bounds: r1.Interval{Min: lo, Max: hi}, GridIdeal: gridIdeal, Generalisation: 1}}
}

// S1: 1-D correct coder, K=1, deterministic zero offsets.
func TestCorrectS1(t *testing.T) {
	c, err := NewCorrect(oneDim(0, 1, 10), 1, zeroSource{})
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}

	cases := []struct {
		x    float64
		want int
	}{
		{0.0, 0},
		{1.0, 10},
		{0.55, 5},
	}
	for _, c2 := range cases {
		got, err := c.FeaturesOf([]float64{c2.x})
		if err != nil {
			t.Fatalf("FeaturesOf(%v): %v", c2.x, err)
		}
		if len(got) != 1 || got[0] != c2.want {
			t.Errorf("FeaturesOf(%v) = %v, want [%v]", c2.x, got, c2.want)
		}
	}
}

// Determinism of features (law 1): same seed and dims => same features.
func TestDeterminism(t *testing.T) {
	dims := oneDim(0, 1, 10)
	src1 := rand.NewSource(42)
	src2 := rand.NewSource(42)

	c1, err := NewCorrect(dims, 4, src1)
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}
	c2, err := NewCorrect(dims, 4, src2)
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}

	for _, x := range []float64{0.0, 0.1, 0.5, 0.99, 1.0} {
		f1, err := c1.FeaturesOf([]float64{x})
		if err != nil {
			t.Fatalf("FeaturesOf: %v", err)
		}
		f2, err := c2.FeaturesOf([]float64{x})
		if err != nil {
			t.Fatalf("FeaturesOf: %v", err)
		}
		for i := range f1 {
			if f1[i] != f2[i] {
				t.Errorf("x=%v: instance mismatch at tiling %d: %v != %v", x, i, f1[i], f2[i])
			}
		}

		// Repeated calls on the same instance must also agree.
		f3, err := c1.FeaturesOf([]float64{x})
		if err != nil {
			t.Fatalf("FeaturesOf: %v", err)
		}
		for i := range f1 {
			if f1[i] != f3[i] {
				t.Errorf("x=%v: repeat-call mismatch at tiling %d", x, i)
			}
		}
	}
}

// Feature cardinality (law 2): |featuresOf(x)| == K, every index in [0, Size()).
func TestFeatureCardinality(t *testing.T) {
	dims := []DimensionInfo{
		{Bounds: r1.Interval{Min: -1, Max: 1}, GridIdeal: 4, Generalisation: 1},
		{Bounds: r1.Interval{Min: 0, Max: 10}, GridIdeal: 8, Generalisation: 2},
	}
	src := rand.NewSource(7)
	const numTilings = 5
	c, err := NewCorrect(dims, numTilings, src)
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}

	f, err := c.FeaturesOf([]float64{0.3, 4.2})
	if err != nil {
		t.Fatalf("FeaturesOf: %v", err)
	}
	if len(f) != numTilings {
		t.Fatalf("len(features) = %d, want %d", len(f), numTilings)
	}
	for _, i := range f {
		if i < 0 || i >= c.Size() {
			t.Errorf("feature index %d outside [0, %d)", i, c.Size())
		}
	}
}

// Correct coder uniqueness (law 3): distinct grid-coordinate tuples map
// to distinct indices.
func TestCorrectUniqueness(t *testing.T) {
	dims := []DimensionInfo{
		{Bounds: r1.Interval{Min: 0, Max: 1}, GridIdeal: 3, Generalisation: 1},
		{Bounds: r1.Interval{Min: 0, Max: 1}, GridIdeal: 3, Generalisation: 1},
	}
	c, err := NewCorrect(dims, 2, zeroSource{})
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}

	// Within a single tiling, every distinct grid-coordinate tuple must
	// map to a distinct index.
	seenPerTiling := make([]map[int]string, c.numTilings)
	for t := range seenPerTiling {
		seenPerTiling[t] = make(map[int]string)
	}

	step := 1.0 / 12
	for i := 0; i < 12; i++ {
		for j := 0; j < 12; j++ {
			x := []float64{float64(i) * step, float64(j) * step}
			f, err := c.FeaturesOf(x)
			if err != nil {
				t.Fatalf("FeaturesOf(%v): %v", x, err)
			}
			for t, idx := range f {
				g0 := c.gridCoord(x[0], t, 0)
				g1 := c.gridCoord(x[1], t, 1)
				tuple := fmt.Sprintf("%d,%d", g0, g1)
				if prior, ok := seenPerTiling[t][idx]; ok && prior != tuple {
					t.Errorf("tiling %d: index %d reused by tuples %q and %q", t, idx, prior, tuple)
				}
				seenPerTiling[t][idx] = tuple
			}
		}
	}
}

// Linearity (law 4): value(x) == sum of weights[i] for i in featuresOf(x).
func TestLinearity(t *testing.T) {
	dims := oneDim(0, 1, 10)
	c, err := NewCorrect(dims, 3, rand.NewSource(1))
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}

	weights := make([]float64, c.Size())
	for i := range weights {
		weights[i] = float64(i) * 0.01
	}

	x := []float64{0.37}
	features, err := c.FeaturesOf(x)
	if err != nil {
		t.Fatalf("FeaturesOf: %v", err)
	}
	var want float64
	for _, i := range features {
		want += weights[i]
	}

	got, err := Value(c, mat.NewVecDense(len(weights), weights), x)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != want {
		t.Errorf("Value(x) = %v, want %v", got, want)
	}
}

// S6: hashed coder dimension and size.
func TestHashedS6(t *testing.T) {
	dims := []DimensionInfo{
		{Bounds: r1.Interval{Min: 0, Max: 1}, GridIdeal: 4, Generalisation: 1},
		{Bounds: r1.Interval{Min: 0, Max: 1}, GridIdeal: 4, Generalisation: 1},
	}
	h, err := NewHashed(dims, 4, 100, rand.NewSource(3), UNH)
	if err != nil {
		t.Fatalf("NewHashed: %v", err)
	}
	if h.Dims() != 2 {
		t.Errorf("Dims() = %d, want 2", h.Dims())
	}
	if h.Size() != 100 {
		t.Errorf("Size() = %d, want 100", h.Size())
	}

	f, err := h.FeaturesOf([]float64{0.4, 0.9})
	if err != nil {
		t.Fatalf("FeaturesOf: %v", err)
	}
	if len(f) != 4 {
		t.Fatalf("len(features) = %d, want 4", len(f))
	}
	for _, i := range f {
		if i < 0 || i >= 100 {
			t.Errorf("feature index %d outside [0, 100)", i)
		}
	}
}

// MT19937 hashed coder must also be deterministic and respect bounds.
func TestHashedMT19937(t *testing.T) {
	dims := oneDim(0, 1, 8)
	h, err := NewHashed(dims, 6, 50, rand.NewSource(9), MT19937)
	if err != nil {
		t.Fatalf("NewHashed: %v", err)
	}

	f1, err := h.FeaturesOf([]float64{0.62})
	if err != nil {
		t.Fatalf("FeaturesOf: %v", err)
	}
	f2, err := h.FeaturesOf([]float64{0.62})
	if err != nil {
		t.Fatalf("FeaturesOf: %v", err)
	}
	for i := range f1 {
		if f1[i] != f2[i] {
			t.Errorf("MT19937 hash nondeterministic at tiling %d: %v != %v", i, f1[i], f2[i])
		}
		if f1[i] < 0 || f1[i] >= 50 {
			t.Errorf("feature index %d outside [0, 50)", f1[i])
		}
	}
}

// Out-of-domain inputs are rejected.
func TestOutOfDomain(t *testing.T) {
	c, err := NewCorrect(oneDim(0, 1, 10), 1, zeroSource{})
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}

	if _, err := c.FeaturesOf([]float64{1.5}); err == nil {
		t.Error("FeaturesOf(1.5): want OutOfDomain error, got nil")
	}
	if _, err := c.FeaturesOf([]float64{-0.1}); err == nil {
		t.Error("FeaturesOf(-0.1): want OutOfDomain error, got nil")
	}
}

// Invalid construction configuration is rejected.
func TestInvalidConfig(t *testing.T) {
	cases := []DimensionInfo{
		{Bounds: r1.Interval{Min: 1, Max: 0}, GridIdeal: 10, Generalisation: 1}, // hi <= lo
		{Bounds: r1.Interval{Min: 0, Max: 1}, GridIdeal: 0, Generalisation: 1},  // gridIdeal < 1
		{Bounds: r1.Interval{Min: 0, Max: 1}, GridIdeal: 10, Generalisation: 0}, // generalisation <= 0
	}
	for _, d := range cases {
		if _, err := NewCorrect([]DimensionInfo{d}, 1, zeroSource{}); err == nil {
			t.Errorf("NewCorrect(%+v): want error, got nil", d)
		}
	}
}
