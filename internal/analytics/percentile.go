package analytics

import (
	"math"
	"sort"
	"strconv"

	"combinepulse/pkg/contracts/domain"
)

// FractionalRanks returns the 1-based ascending rank of every value. Tied
// values share the mean of the rank positions they occupy.
func FractionalRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && values[order[j]] == values[order[i]] {
			j++
		}
		// positions i+1 .. j
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}
	return ranks
}

// PercentileRanks scales FractionalRanks to 0-100
func PercentileRanks(values []float64) []float64 {
	ranks := FractionalRanks(values)
	n := float64(len(values))
	for i := range ranks {
		ranks[i] = ranks[i] / n * 100
	}
	return ranks
}

// PercentileRank places candidate among the non-null results of test for
// players drafted in round and returns its percentile. Rows without a result
// are left out of the ranking base.
func PercentileRank(t *Table, round int, test domain.Test, candidate float64) (float64, error) {
	if err := domain.ValidateRound(round); err != nil {
		return 0, err
	}
	if math.IsNaN(candidate) || math.IsInf(candidate, 0) {
		return 0, &domain.InvalidSelectionError{
			Field:  "value",
			Value:  strconv.FormatFloat(candidate, 'g', -1, 64),
			Reason: "value must be a finite number",
		}
	}

	inRound := t.FilterRound(round)
	values, err := inRound.Values(test)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, inRound.emptyError("percentile", test)
	}

	base := append(values, candidate)
	ranks := PercentileRanks(base)
	return ranks[len(base)-1], nil
}
