package synastry

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/astro-profile/internal/domain/natal"
)

func TestComputeHighHarmonyScenario(t *testing.T) {
	a := natal.Profile{Elements: natal.ElementalComposition{Fire: 40, Earth: 20, Air: 20, Water: 20}}
	b := natal.Profile{Elements: natal.ElementalComposition{Fire: 30, Earth: 30, Air: 20, Water: 20}}

	res := Compute(a, b)
	require.Equal(t, 95, res.Score)
	require.Equal(t, GuidanceHarmony, res.Guidance)
	require.Equal(t, []Aspect{
		{Type: AspectElementalConnection, Value: "Fluid"},
		{Type: AspectNumericVibration, Value: "Balanced"},
	}, res.Aspects)
}

func TestComputeClampsBelowHundred(t *testing.T) {
	same := natal.ElementalComposition{Fire: 25, Earth: 25, Air: 25, Water: 25}
	res := ComputeElements(same, same)
	require.Equal(t, 99, res.Score)
	require.Equal(t, GuidanceHarmony, res.Guidance)
}

func TestComputeDisjointProfiles(t *testing.T) {
	res := ComputeElements(
		natal.ElementalComposition{Fire: 100},
		natal.ElementalComposition{Water: 100},
	)
	require.Equal(t, 50, res.Score)
	require.Equal(t, GuidanceGrowth, res.Guidance)
	require.Equal(t, "Intense", res.Aspects[0].Value)
}

func TestComputeBandsOnUnflooredScore(t *testing.T) {
	res := ComputeElements(
		natal.ElementalComposition{Fire: 61, Water: 39},
		natal.ElementalComposition{Fire: 21, Earth: 79},
	)
	require.Equal(t, 60, res.Score)
	require.Equal(t, GuidanceComplementary, res.Guidance)

	res = ComputeElements(
		natal.ElementalComposition{Fire: 61, Water: 39},
		natal.ElementalComposition{Fire: 23, Earth: 77},
	)
	require.Equal(t, 61, res.Score)
	require.Equal(t, GuidanceComplementary, res.Guidance)
}

func TestBandBoundaries(t *testing.T) {
	require.Equal(t, BandGrowth, BandFor(60))
	require.Equal(t, BandComplementary, BandFor(60.5))
	require.Equal(t, BandComplementary, BandFor(80))
	require.Equal(t, BandHarmony, BandFor(80.5))
}

func TestComputeMissingElementsUseEvenSplit(t *testing.T) {
	res := ComputeElements(natal.ElementalComposition{}, natal.ElementalComposition{Fire: 70, Earth: 10, Air: 10, Water: 10})
	require.Equal(t, 50+(25+10+10+10)/2, res.Score)
}

func TestScoreProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		a := randomComposition(rng)
		b := randomComposition(rng)
		res := ComputeElements(a, b)
		require.Less(t, res.Score, 100)
		require.GreaterOrEqual(t, res.Score, 50)
		require.Len(t, res.Aspects, 2)
		require.Equal(t, res, ComputeElements(b, a))
	}
}

func TestScoreIsMonotonicInOverlap(t *testing.T) {
	a := natal.ElementalComposition{Fire: 70, Earth: 10, Air: 10, Water: 10}
	prevScore := -1.0
	prevRank := -1
	for shift := 0; shift <= 60; shift++ {
		b := natal.ElementalComposition{Fire: 10 + shift, Earth: 10, Air: 10, Water: 70 - shift}
		score := Score(a, b)
		rank := bandRank(BandFor(score))
		require.GreaterOrEqual(t, score, prevScore)
		require.GreaterOrEqual(t, rank, prevRank)
		prevScore, prevRank = score, rank
	}
}

func TestServiceCompare(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	res := svc.Compare(context.Background(), Pair{
		A: natal.ElementalComposition{Fire: 40, Earth: 20, Air: 20, Water: 20},
		B: natal.ElementalComposition{Fire: 30, Earth: 30, Air: 20, Water: 20},
	})
	require.Equal(t, 95, res.Score)
}

func randomComposition(rng *rand.Rand) natal.ElementalComposition {
	raw := map[natal.Element]float64{}
	for _, el := range natal.Elements {
		raw[el] = rng.Float64() * float64(rng.Intn(5))
	}
	return natal.NormalizeElements(raw)
}

func bandRank(b Band) int {
	switch b {
	case BandHarmony:
		return 2
	case BandComplementary:
		return 1
	default:
		return 0
	}
}
