package placement

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// countingSource wraps a PCG source and counts draws.
type countingSource struct {
	src   *rand.PCG
	draws int
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.src.Uint64()
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("pick-%d", n)
	}
}

func TestSampleRadiusBounds(t *testing.T) {
	assert.InDelta(t, MinRadius, SampleRadius(0), 1e-12)
	assert.InDelta(t, MaxRadius, SampleRadius(1), 1e-12)
	assert.Less(t, SampleRadius(0.999999), MaxRadius)
}

func TestSampleRadiusIsAreaPreserving(t *testing.T) {
	const (
		n     = 20000
		rings = 10
	)
	rng := rand.New(rand.NewPCG(7, 11))

	// Equal-area ring boundaries: r_i^2 = r_min^2 + i/k (r_max^2 - r_min^2).
	r2Min := MinRadius * MinRadius
	r2Max := MaxRadius * MaxRadius
	bounds := make([]float64, rings+1)
	for i := range bounds {
		bounds[i] = math.Sqrt(r2Min + float64(i)/rings*(r2Max-r2Min))
	}

	counts := make([]int, rings)
	for i := 0; i < n; i++ {
		r := SampleRadius(rng.Float64())
		for b := 0; b < rings; b++ {
			if r >= bounds[b] && r < bounds[b+1] {
				counts[b]++
				break
			}
		}
	}

	expected := float64(n) / rings
	for b, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.1, "ring %d count %d", b, c)
	}
}

func TestPlaceFieldsAndBounds(t *testing.T) {
	p := NewSeeded(42, WithIDSource(sequentialIDs()))
	var existing []types.Pick
	for i := 0; i < 25; i++ {
		got := p.Place(existing, "win")
		assert.Equal(t, fmt.Sprintf("pick-%d", i+1), got.ID)
		assert.Equal(t, "win", got.Text)
		assert.Equal(t, PickHeight, got.Height)
		assert.GreaterOrEqual(t, got.Radius, MinRadius)
		assert.LessOrEqual(t, got.Radius, MaxRadius)
		assert.GreaterOrEqual(t, got.Angle, 0.0)
		assert.Less(t, got.Angle, 2*math.Pi)
		existing = append(existing, got)
	}
}

func TestPlaceIsDeterministicForSeed(t *testing.T) {
	existing := []types.Pick{{ID: "a", Angle: 0, Radius: 1}}
	a := NewSeeded(99, WithIDSource(sequentialIDs())).Place(existing, "x")
	b := NewSeeded(99, WithIDSource(sequentialIDs())).Place(existing, "x")
	assert.Equal(t, a, b)
}

func TestPlaceDefaultIDsAreUUIDs(t *testing.T) {
	a := PlaceNewPick(nil, "one")
	b := PlaceNewPick(nil, "two")
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPlaceAvoidsCollisions(t *testing.T) {
	// Six picks spread around a ring, pairwise far apart, leave most of the
	// annulus open.
	var existing []types.Pick
	for i := 0; i < 6; i++ {
		existing = append(existing, types.Pick{
			ID:     fmt.Sprintf("e%d", i),
			Angle:  float64(i) * math.Pi / 3,
			Radius: 1.0,
			Height: PickHeight,
		})
	}
	for i := range existing {
		for j := i + 1; j < len(existing); j++ {
			require.GreaterOrEqual(t, Distance(existing[i], existing[j]), MinDist)
		}
	}

	const trials = 60
	ok := 0
	for seed := uint64(1); seed <= trials; seed++ {
		got := NewSeeded(seed).Place(existing, "new")
		clearOfAll := true
		for _, e := range existing {
			if Distance(got, e) < MinDist {
				clearOfAll = false
				break
			}
		}
		if clearOfAll {
			ok++
		}
	}
	assert.GreaterOrEqual(t, ok, trials-1)
}

func TestPlaceSaturatedAnnulusFallsBack(t *testing.T) {
	// A grid with 0.1 spacing leaves no point of the annulus MinDist away
	// from every pick, so every checked sample is rejected.
	var existing []types.Pick
	for x := -2.0; x <= 2.0; x += 0.1 {
		for z := -2.0; z <= 2.0; z += 0.1 {
			existing = append(existing, types.Pick{
				ID:     fmt.Sprintf("g%.1f_%.1f", x, z),
				Angle:  math.Atan2(z, x),
				Radius: math.Hypot(x, z),
			})
		}
	}

	src := &countingSource{src: rand.NewPCG(3, 5)}
	p := New(rand.New(src))
	got := p.Place(existing, "crowded")

	assert.Equal(t, "crowded", got.Text)
	assert.Equal(t, PickHeight, got.Height)
	assert.GreaterOrEqual(t, got.Radius, MinRadius)
	assert.LessOrEqual(t, got.Radius, MaxRadius)
	// Two draws per sample: MaxAttempts rejected plus one unchecked.
	assert.Equal(t, 2*(MaxAttempts+1), src.draws)
}

func TestPlaceEmptyCakeAcceptsFirstSample(t *testing.T) {
	src := &countingSource{src: rand.NewPCG(1, 2)}
	New(rand.New(src)).Place(nil, "first")
	assert.Equal(t, 2, src.draws)
}

func TestDistance(t *testing.T) {
	a := types.Pick{Angle: 0, Radius: 1}
	b := types.Pick{Angle: math.Pi, Radius: 1}
	assert.InDelta(t, 2.0, Distance(a, b), 1e-12)

	x, z := Position(math.Pi/2, 1.5)
	assert.InDelta(t, 0.0, x, 1e-12)
	assert.InDelta(t, 1.5, z, 1e-12)
}
