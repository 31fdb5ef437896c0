package equipment

import (
	"math/rand/v2"
	"sync"
)

const (
	flowrateJitter = 15.0
	pressureJitter = 2.0
)

// MaxSamplePoints caps one scatter sample. Totals above it are drawn at the
// cap so a remote record cannot force an unbounded allocation.
const MaxSamplePoints = 10_000

// Point is one synthetic scatter sample.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Synthesize draws TotalEquipment points, at most MaxSamplePoints, scattered
// around the dataset's flowrate and pressure averages. A nil rnd uses the
// global source.
func Synthesize(d *Dataset, rnd *rand.Rand) []Point {
	if d == nil || d.TotalEquipment <= 0 {
		return []Point{}
	}
	uniform := func(lo, hi float64) float64 {
		if rnd == nil {
			return lo + rand.Float64()*(hi-lo)
		}
		return lo + rnd.Float64()*(hi-lo)
	}
	points := make([]Point, min(d.TotalEquipment, MaxSamplePoints))
	for i := range points {
		points[i] = Point{
			X: d.AvgFlowrate + uniform(-flowrateJitter, flowrateJitter),
			Y: d.AvgPressure + uniform(-pressureJitter, pressureJitter),
		}
	}
	return points
}

// Sampler keeps the scatter sample of the most recently rendered dataset so
// repeated renders of the same dataset reuse one sample. Identity is the
// dataset pointer: an equal-valued copy gets a fresh draw.
type Sampler struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	key    *Dataset
	points []Point
}

// NewSampler builds a sampler. A nil rnd uses the global source.
func NewSampler(rnd *rand.Rand) *Sampler {
	return &Sampler{rnd: rnd}
}

// Sample returns the memoized sample for d, drawing a new one when d differs
// from the previous call.
func (s *Sampler) Sample(d *Dataset) []Point {
	if d == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == d && s.points != nil {
		return s.points
	}
	s.key = d
	s.points = Synthesize(d, s.rnd)
	return s.points
}
