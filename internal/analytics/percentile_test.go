package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combinepulse/pkg/contracts/domain"
)

func fortyTable() *Table {
	return mustProject([]domain.PlayerRecord{
		player("A", domain.PositionWR, 1, 1, withTest(domain.TestForty, 4.4)),
		player("B", domain.PositionWR, 1, 2, withTest(domain.TestForty, 4.5)),
		player("C", domain.PositionWR, 1, 3, withTest(domain.TestForty, 4.6)),
		player("D", domain.PositionWR, 2, 40, withTest(domain.TestForty, 4.3)),
	}, domain.PositionWR)
}

func TestFractionalRanks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"distinct", []float64{3, 1, 2}, []float64{3, 1, 2}},
		{"pair tie", []float64{4.4, 4.5, 4.6, 4.5}, []float64{1, 2.5, 4, 2.5}},
		{"all equal", []float64{7, 7, 7}, []float64{2, 2, 2}},
		{"empty", nil, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FractionalRanks(tt.values))
		})
	}
}

func TestPercentileRank(t *testing.T) {
	wr := fortyTable()

	t.Run("candidate tied with history", func(t *testing.T) {
		p, err := PercentileRank(wr, 1, domain.TestForty, 4.5)
		require.NoError(t, err)
		assert.Equal(t, 62.5, p)
	})

	t.Run("candidate above all values", func(t *testing.T) {
		p, err := PercentileRank(wr, 1, domain.TestForty, 5.0)
		require.NoError(t, err)
		assert.Equal(t, 100.0, p)
	})

	t.Run("candidate below all values", func(t *testing.T) {
		p, err := PercentileRank(wr, 1, domain.TestForty, 4.0)
		require.NoError(t, err)
		assert.Equal(t, 25.0, p)
	})

	t.Run("other rounds are ignored", func(t *testing.T) {
		p, err := PercentileRank(wr, 2, domain.TestForty, 4.35)
		require.NoError(t, err)
		assert.Equal(t, 100.0, p)
	})

	t.Run("sentinel value is ranked like any other", func(t *testing.T) {
		p, err := PercentileRank(wr, 1, domain.TestForty, 0)
		require.NoError(t, err)
		assert.Equal(t, 25.0, p)
	})

	t.Run("table is not modified", func(t *testing.T) {
		before := wr.Rows()
		_, err := PercentileRank(wr, 1, domain.TestForty, 4.45)
		require.NoError(t, err)
		assert.Equal(t, before, wr.Rows())
	})
}

func TestPercentileRankNulls(t *testing.T) {
	wr := mustProject([]domain.PlayerRecord{
		player("A", domain.PositionWR, 3, 70, withTest(domain.TestForty, 4.4)),
		player("B", domain.PositionWR, 3, 71),
		player("C", domain.PositionWR, 3, 72),
		player("D", domain.PositionWR, 3, 73, withTest(domain.TestForty, 4.6)),
	}, domain.PositionWR)

	// base is {4.4, 4.6, 4.5}: nulls are not part of the count
	p, err := PercentileRank(wr, 3, domain.TestForty, 4.5)
	require.NoError(t, err)
	assert.InDelta(t, 200.0/3, p, 1e-9)
}

func TestPercentileRankErrors(t *testing.T) {
	wr := fortyTable()

	_, err := PercentileRank(wr, 5, domain.TestForty, 4.5)
	assert.ErrorIs(t, err, domain.ErrEmptyAggregate)

	_, err = PercentileRank(wr, 8, domain.TestForty, 4.5)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	_, err = PercentileRank(wr, 1, domain.TestBenchReps, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	_, err = PercentileRank(wr, 1, domain.TestForty, math.NaN())
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestPercentileRankProperties(t *testing.T) {
	wr := fortyTable()

	candidates := []float64{0, 3.9, 4.41, 4.45, 4.55, 4.59, 4.61, 6}
	prev := -1.0
	for _, c := range candidates {
		p, err := PercentileRank(wr, 1, domain.TestForty, c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
		assert.GreaterOrEqual(t, p, prev, "percentile of %v", c)
		prev = p
	}
}
