package synastry

import "github.com/yanqian/astro-profile/internal/domain/natal"

// Aspect is a categorical label attached to a compatibility result.
type Aspect struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Result is the derived compatibility between two profiles.
type Result struct {
	Score    int      `json:"score"`
	Guidance string   `json:"guidance"`
	Aspects  []Aspect `json:"aspects"`
}

// Band names the guidance category of a score.
type Band string

const (
	BandHarmony       Band = "harmony"
	BandComplementary Band = "complementary"
	BandGrowth        Band = "growth"
)

const (
	GuidanceHarmony       = "Your elemental natures flow together with rare ease. Shared strengths reinforce each other, making this a naturally harmonious bond."
	GuidanceComplementary = "You balance each other well. Where one of you is strong the other finds support, and your differences tend to complete rather than divide."
	GuidanceGrowth        = "This connection asks for patience. Your elemental natures pull in different directions, offering real room for growth when both of you stay curious."
)

const (
	AspectElementalConnection = "Elemental Connection"
	AspectNumericVibration    = "Numeric Vibration"
)

// Pair is the compatibility input: elemental compositions of both sides.
type Pair struct {
	A natal.ElementalComposition
	B natal.ElementalComposition
}
