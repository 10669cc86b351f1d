package analytics

import (
	"sort"

	"github.com/aclements/go-moremath/stats"

	"combinepulse/pkg/contracts/domain"
)

// whiskerFactor is the IQR multiple that bounds the whiskers
const whiskerFactor = 1.5

// Box describes the distribution of one test within one draft round
type Box struct {
	Round       int
	Count       int
	Min         float64
	Q1          float64
	Median      float64
	Q3          float64
	Max         float64
	WhiskerLow  float64
	WhiskerHigh float64
	Outliers    []float64
}

// RoundDistribution returns one box per round that has at least one result
// for test, ordered by round.
func RoundDistribution(t *Table, test domain.Test) ([]Box, error) {
	col, err := t.Column(test)
	if err != nil {
		return nil, err
	}

	byRound := make(map[int][]float64)
	for _, r := range t.rows {
		if v := r.Tests[col]; v != nil {
			byRound[r.Round] = append(byRound[r.Round], *v)
		}
	}
	if len(byRound) == 0 {
		return nil, t.emptyError("distribution", test)
	}

	rounds := make([]int, 0, len(byRound))
	for round := range byRound {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	boxes := make([]Box, 0, len(rounds))
	for _, round := range rounds {
		boxes = append(boxes, newBox(round, byRound[round]))
	}
	return boxes, nil
}

func newBox(round int, values []float64) Box {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	dist := stats.Sample{Xs: sorted, Sorted: true}
	lo, hi := dist.Bounds()
	b := Box{
		Round:  round,
		Count:  len(sorted),
		Min:    lo,
		Max:    hi,
		Q1:     linearQuantile(sorted, 0.25),
		Median: dist.Quantile(0.5),
		Q3:     linearQuantile(sorted, 0.75),
	}

	iqr := b.Q3 - b.Q1
	lowFence := b.Q1 - whiskerFactor*iqr
	highFence := b.Q3 + whiskerFactor*iqr
	b.WhiskerLow, b.WhiskerHigh = b.Max, b.Min
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if v < b.WhiskerLow {
			b.WhiskerLow = v
		}
		if v > b.WhiskerHigh {
			b.WhiskerHigh = v
		}
	}
	return b
}

// linearQuantile interpolates between the two closest ranks of an ascending,
// non-empty slice. Box plot quartiles are drawn this way rather than with the
// R8 estimate of stats.Sample.Quantile.
func linearQuantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	i := int(pos)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (pos-float64(i))*(sorted[i+1]-sorted[i])
}
