package natal

import "math"

// NormalizeElements rescales raw weights so the four elements sum to exactly
// 100. Negative and non-finite weights count as zero; an all-zero input yields
// the even split. Rounding residue goes to the largest element.
func NormalizeElements(raw map[Element]float64) ElementalComposition {
	var (
		weights [4]float64
		peak    float64
	)
	for i, el := range Elements {
		w := raw[el]
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			w = 0
		}
		weights[i] = w
		peak = math.Max(peak, w)
	}
	if peak == 0 {
		return EvenComposition()
	}

	var total float64
	for i := range weights {
		weights[i] /= peak
		total += weights[i]
	}

	var (
		out     [4]int
		sum     int
		largest int
	)
	for i, w := range weights {
		out[i] = int(math.Round(w * 100 / total))
		sum += out[i]
		if w > weights[largest] {
			largest = i
		}
	}
	out[largest] += 100 - sum

	return ElementalComposition{Fire: out[0], Earth: out[1], Air: out[2], Water: out[3]}
}

// tallyElements weights each placement's element; the luminaries count double.
func tallyElements(planets []Planet) map[Element]float64 {
	raw := make(map[Element]float64, 4)
	for _, p := range planets {
		el := p.Sign.Element()
		if el == "" {
			continue
		}
		weight := 1.0
		if isLuminary(p.Name) {
			weight = 2
		}
		raw[el] += weight
	}
	return raw
}
