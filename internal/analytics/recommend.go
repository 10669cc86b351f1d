package analytics

import (
	"combinepulse/pkg/contracts/domain"
)

// DefaultTopPicks is the number of picks averaged per round
const DefaultTopPicks = 5

// TestAverage is the mean result of one designated test
type TestAverage struct {
	Test    domain.Test
	Average float64
}

// Recommendation summarizes the earliest complete picks of a round
type Recommendation struct {
	Position domain.Position
	Round    int
	Averages []TestAverage
	Players  []Row
}

// TopPicks orders the table by draft position, keeps the complete rows of
// round and averages the designated tests of the first limit of them. Fewer
// rows than limit average whatever is available.
func TopPicks(t *Table, round int, limit int) (Recommendation, error) {
	if err := domain.ValidateRound(round); err != nil {
		return Recommendation{}, err
	}
	if limit <= 0 {
		limit = DefaultTopPicks
	}

	inRound := t.SortedByDraftOrder().FilterRound(round)

	picks := make([]Row, 0, limit)
	for _, r := range inRound.rows {
		if !r.Complete() {
			continue
		}
		picks = append(picks, r.clone())
		if len(picks) == limit {
			break
		}
	}
	if len(picks) == 0 {
		return Recommendation{}, inRound.emptyError("top picks", "")
	}

	rec := Recommendation{
		Position: t.position,
		Round:    round,
		Averages: make([]TestAverage, len(t.tests)),
		Players:  picks,
	}
	for i, test := range t.tests {
		var sum float64
		for _, r := range picks {
			sum += *r.Tests[i]
		}
		rec.Averages[i] = TestAverage{Test: test, Average: sum / float64(len(picks))}
	}
	return rec, nil
}
