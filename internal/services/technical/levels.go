package technical

import (
	"sort"

	"CoinSage/internal/domain/models"
)

const (
	levelWindow = 20
	maxLevels   = 5
)

// SupportResistance extracts price levels from local extrema. A bar is a
// resistance candidate when its high equals the maximum of the centered
// window around it, and a support candidate symmetrically for lows. The
// boundary bars that lack a full centered window are skipped.
//
// Resistance levels come back highest first, support levels lowest first,
// at most maxLevels each.
func SupportResistance(bars []models.Bar) (support, resistance []float64) {
	if len(bars) <= 2*levelWindow {
		return []float64{}, []float64{}
	}
	half := levelWindow / 2

	isWindowMax := func(i int) bool {
		for j := i - half; j < i-half+levelWindow; j++ {
			if bars[j].High > bars[i].High {
				return false
			}
		}
		return true
	}
	isWindowMin := func(i int) bool {
		for j := i - half; j < i-half+levelWindow; j++ {
			if bars[j].Low < bars[i].Low {
				return false
			}
		}
		return true
	}

	var res, sup []float64
	for i := levelWindow; i < len(bars)-levelWindow; i++ {
		if isWindowMax(i) {
			res = append(res, bars[i].High)
		}
		if isWindowMin(i) {
			sup = append(sup, bars[i].Low)
		}
	}

	res = dedupe(res)
	sup = dedupe(sup)
	sort.Sort(sort.Reverse(sort.Float64Slice(res)))
	sort.Float64s(sup)
	if len(res) > maxLevels {
		res = res[:maxLevels]
	}
	if len(sup) > maxLevels {
		sup = sup[:maxLevels]
	}
	return sup, res
}

func dedupe(vals []float64) []float64 {
	seen := make(map[float64]struct{}, len(vals))
	out := vals[:0]
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if out == nil {
		return []float64{}
	}
	return out
}
