// Package placement chooses where a new pick goes on the cake top.
//
// Positions are drawn uniformly by area over the annulus between MinRadius
// and MaxRadius and rejected while they land within MinDist of an existing
// pick. After MaxAttempts rejections one more sample is returned unchecked:
// placement degrades to allowing overlap and never fails.
package placement

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// Placement bounds, in cake-top units.
const (
	MinRadius   = 0.15 // keeps picks off the exact center
	MaxRadius   = 1.85 // keeps picks inside the frosting rim
	MinDist     = 0.34 // minimum planar distance between picks
	MaxAttempts = 60
	PickHeight  = 0.6
)

// Placer places picks using its own random source. A Placer is not safe for
// concurrent use because *rand.Rand is not.
type Placer struct {
	rng   *rand.Rand
	newID func() string
}

// Option configures a Placer.
type Option func(*Placer)

// WithIDSource replaces the UUID generator used for new pick IDs.
func WithIDSource(fn func() string) Option {
	return func(p *Placer) {
		p.newID = fn
	}
}

// New returns a Placer drawing from rng. A nil rng uses a randomly seeded
// source.
func New(rng *rand.Rand, opts ...Option) *Placer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p := &Placer{rng: rng, newID: uuid.NewString}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewSeeded returns a Placer with a deterministic PCG source.
func NewSeeded(seed uint64, opts ...Option) *Placer {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), opts...)
}

// PlaceNewPick places a pick using a freshly seeded Placer.
func PlaceNewPick(existing []types.Pick, text string) types.Pick {
	return New(nil).Place(existing, text)
}

// Place returns a new pick labeled text whose position keeps at least
// MinDist from every pick in existing, when such a position is found within
// MaxAttempts samples.
func (p *Placer) Place(existing []types.Pick, text string) types.Pick {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		angle, radius := p.sample()
		if isClear(existing, angle, radius) {
			return p.pick(text, angle, radius)
		}
	}
	angle, radius := p.sample()
	return p.pick(text, angle, radius)
}

func (p *Placer) sample() (angle, radius float64) {
	angle = p.rng.Float64() * 2 * math.Pi
	radius = SampleRadius(p.rng.Float64())
	return angle, radius
}

func (p *Placer) pick(text string, angle, radius float64) types.Pick {
	return types.Pick{
		ID:     p.newID(),
		Text:   text,
		Angle:  angle,
		Radius: radius,
		Height: PickHeight,
	}
}

// SampleRadius maps u in [0,1) to a radius in [MinRadius, MaxRadius) so that
// uniform u gives uniform density per unit area of the annulus.
func SampleRadius(u float64) float64 {
	r2Min := MinRadius * MinRadius
	r2Max := MaxRadius * MaxRadius
	return math.Sqrt(u*(r2Max-r2Min) + r2Min)
}

// Position projects a polar cake-top position onto the plane.
func Position(angle, radius float64) (x, z float64) {
	return math.Cos(angle) * radius, math.Sin(angle) * radius
}

// Distance returns the planar distance between two picks.
func Distance(a, b types.Pick) float64 {
	ax, az := Position(a.Angle, a.Radius)
	bx, bz := Position(b.Angle, b.Radius)
	return math.Hypot(ax-bx, az-bz)
}

func isClear(existing []types.Pick, angle, radius float64) bool {
	x, z := Position(angle, radius)
	for _, e := range existing {
		ex, ez := Position(e.Angle, e.Radius)
		if math.Hypot(ex-x, ez-z) < MinDist {
			return false
		}
	}
	return true
}
