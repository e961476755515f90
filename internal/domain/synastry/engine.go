// Package synastry scores the compatibility of two natal profiles from their
// elemental compositions.
package synastry

import (
	"math"

	"github.com/yanqian/astro-profile/internal/domain/natal"
)

const (
	baseScore = 50.0
	maxScore  = 99.0
)

// Compute scores two profiles. It has no failure modes.
func Compute(a, b natal.Profile) Result {
	return ComputeElements(a.Elements, b.Elements)
}

// ComputeElements scores two compositions. A zero composition is treated as
// the even split.
func ComputeElements(a, b natal.ElementalComposition) Result {
	score := Score(a, b)
	connection := "Intense"
	if score > 70 {
		connection = "Fluid"
	}
	return Result{
		Score:    int(math.Floor(score)),
		Guidance: Guidance(BandFor(score)),
		Aspects: []Aspect{
			{Type: AspectElementalConnection, Value: connection},
			{Type: AspectNumericVibration, Value: "Balanced"},
		},
	}
}

// Score returns the clamped score before flooring: 50 plus half the shared
// strength across the four elements, capped at 99.
func Score(a, b natal.ElementalComposition) float64 {
	if a.IsZero() {
		a = natal.EvenComposition()
	}
	if b.IsZero() {
		b = natal.EvenComposition()
	}
	shared := 0
	for _, el := range natal.Elements {
		shared += min(a.Weight(el), b.Weight(el))
	}
	return math.Min(baseScore+float64(shared)/2, maxScore)
}

// BandFor maps a clamped score to its guidance band.
func BandFor(score float64) Band {
	switch {
	case score > 80:
		return BandHarmony
	case score > 60:
		return BandComplementary
	default:
		return BandGrowth
	}
}

// Guidance returns the narrative for a band.
func Guidance(band Band) string {
	switch band {
	case BandHarmony:
		return GuidanceHarmony
	case BandComplementary:
		return GuidanceComplementary
	default:
		return GuidanceGrowth
	}
}
