package analytics

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combinepulse/pkg/contracts/domain"
)

func TestAggregates(t *testing.T) {
	records := []domain.PlayerRecord{
		player("A", domain.PositionRB, 1, 5, withTest(domain.TestForty, 4.40)),
		player("B", domain.PositionRB, 2, 40, withTest(domain.TestForty, 4.60)),
		player("C", domain.PositionRB, 3, 70, withTest(domain.TestForty, 4.50)),
		player("D", domain.PositionRB, 4, 100, withTest(domain.TestForty, 4.70)),
		player("E", domain.PositionRB, 5, 140), // no forty
	}
	rb := mustProject(records, domain.PositionRB)

	tests := []struct {
		name string
		fn   func(*Table, domain.Test) (float64, error)
		want float64
	}{
		{"minimum", Minimum, 4.40},
		{"maximum", Maximum, 4.70},
		{"mean", Mean, 4.55},
		{"median of even count", Median, 4.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(rb, domain.TestForty)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	t.Run("median of odd count", func(t *testing.T) {
		got, err := Median(rb.FilterRound(1), domain.TestForty)
		require.NoError(t, err)
		assert.InDelta(t, 4.40, got, 1e-9)
	})

	t.Run("summary", func(t *testing.T) {
		s, err := Summarize(rb, domain.TestForty)
		require.NoError(t, err)
		assert.Equal(t, 4, s.Count)
		assert.Equal(t, domain.TestForty, s.Test)
		assert.InDelta(t, 4.40, s.Min, 1e-9)
		assert.InDelta(t, 4.70, s.Max, 1e-9)
		assert.InDelta(t, 4.55, s.Mean, 1e-9)
		assert.InDelta(t, 4.55, s.Median, 1e-9)
		assert.Greater(t, s.StdDev, 0.0)
	})

	t.Run("single value has zero deviation", func(t *testing.T) {
		s, err := Summarize(rb.FilterRound(2), domain.TestForty)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Count)
		assert.Equal(t, 0.0, s.StdDev)
	})
}

func TestAggregateEmpty(t *testing.T) {
	records := []domain.PlayerRecord{
		player("QB1", domain.PositionQB, 3, 70, withTest(domain.TestForty, 4.9)),
		player("QB2", domain.PositionQB, 3, 80),
		player("QB3", domain.PositionQB, 1, 2, withTest(domain.TestBenchReps, 18)),
	}
	qb := mustProject(records, domain.PositionQB)

	_, err := Minimum(qb.FilterRound(3), domain.TestBenchReps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyAggregate))

	var empty *domain.EmptyAggregateError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, domain.PositionQB, empty.Position)
	assert.Equal(t, domain.TestBenchReps, empty.Test)
	assert.Equal(t, 3, empty.Round)
	assert.Contains(t, err.Error(), "insufficient data")

	for _, fn := range []func(*Table, domain.Test) (float64, error){Maximum, Mean, Median} {
		_, err := fn(qb.FilterRound(3), domain.TestBenchReps)
		assert.ErrorIs(t, err, domain.ErrEmptyAggregate)
	}

	_, err = Summarize(mustProject(nil, domain.PositionQB), domain.TestForty)
	assert.ErrorIs(t, err, domain.ErrEmptyAggregate)
}

func TestAggregateRejectsUndesignatedTest(t *testing.T) {
	qb := mustProject([]domain.PlayerRecord{
		player("QB", domain.PositionQB, 1, 1, withTest(domain.TestCone, 7.0)),
	}, domain.PositionQB)

	_, err := Mean(qb, domain.TestCone)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestAggregateOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, pos := range domain.Positions() {
		var records []domain.PlayerRecord
		for i := 0; i < 60; i++ {
			opts := []playerOpt{}
			for _, test := range pos.Tests() {
				if rng.Intn(4) == 0 {
					continue
				}
				opts = append(opts, withTest(test, 3+rng.Float64()*30))
			}
			records = append(records, player("P", pos, 1+rng.Intn(7), i+1, opts...))
		}
		table := mustProject(records, pos)

		for _, test := range pos.Tests() {
			s, err := Summarize(table, test)
			require.NoError(t, err)
			assert.LessOrEqual(t, s.Min, s.Median, "%s %s", pos, test)
			assert.LessOrEqual(t, s.Median, s.Max, "%s %s", pos, test)
			assert.LessOrEqual(t, s.Min, s.Mean, "%s %s", pos, test)
			assert.LessOrEqual(t, s.Mean, s.Max, "%s %s", pos, test)
		}
	}
}

func TestMedianLeavesValuesUntouched(t *testing.T) {
	records := []domain.PlayerRecord{
		player("A", domain.PositionWR, 1, 1, withTest(domain.TestVertical, 40)),
		player("B", domain.PositionWR, 1, 2, withTest(domain.TestVertical, 30)),
		player("C", domain.PositionWR, 1, 3, withTest(domain.TestVertical, 35)),
	}
	wr := mustProject(records, domain.PositionWR)

	got, err := Median(wr, domain.TestVertical)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, got, 1e-9)

	values, err := wr.Values(domain.TestVertical)
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 30, 35}, values, "table order is kept")
}
