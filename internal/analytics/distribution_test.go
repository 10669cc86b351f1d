package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combinepulse/pkg/contracts/domain"
)

func TestRoundDistribution(t *testing.T) {
	var records []domain.PlayerRecord
	for i, v := range []float64{3, 1, 5, 2, 4} {
		records = append(records, player("R2", domain.PositionOLB, 2, 40+i, withTest(domain.TestVertical, v)))
	}
	for i, v := range []float64{1, 2, 3, 4, 100} {
		records = append(records, player("R1", domain.PositionOLB, 1, 1+i, withTest(domain.TestVertical, v)))
	}
	records = append(records, player("R5 no vertical", domain.PositionOLB, 5, 150))

	boxes, err := RoundDistribution(mustProject(records, domain.PositionOLB), domain.TestVertical)
	require.NoError(t, err)
	require.Len(t, boxes, 2, "rounds without results have no box")

	r1 := boxes[0]
	assert.Equal(t, 1, r1.Round)
	assert.Equal(t, 5, r1.Count)
	assert.Equal(t, 2.0, r1.Q1)
	assert.InDelta(t, 3.0, r1.Median, 1e-9)
	assert.Equal(t, 4.0, r1.Q3)
	assert.Equal(t, 1.0, r1.WhiskerLow)
	assert.Equal(t, 4.0, r1.WhiskerHigh)
	assert.Equal(t, []float64{100}, r1.Outliers)
	assert.Equal(t, 100.0, r1.Max)

	r2 := boxes[1]
	assert.Equal(t, 2, r2.Round)
	assert.Equal(t, 1.0, r2.Min)
	assert.Equal(t, 5.0, r2.Max)
	assert.InDelta(t, 3.0, r2.Median, 1e-9)
	assert.Equal(t, 1.0, r2.WhiskerLow)
	assert.Equal(t, 5.0, r2.WhiskerHigh)
	assert.Empty(t, r2.Outliers)
}

func TestRoundDistributionEmpty(t *testing.T) {
	_, err := RoundDistribution(mustProject(nil, domain.PositionDT), domain.TestCone)
	assert.ErrorIs(t, err, domain.ErrEmptyAggregate)

	_, err = RoundDistribution(mustProject(nil, domain.PositionDT), domain.TestShuttle)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestLinearQuantile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, linearQuantile(sorted, 0))
	assert.Equal(t, 40.0, linearQuantile(sorted, 1))
	assert.Equal(t, 17.5, linearQuantile(sorted, 0.25))
	assert.Equal(t, 25.0, linearQuantile(sorted, 0.5))
	assert.Equal(t, 32.5, linearQuantile(sorted, 0.75))
	assert.Equal(t, 7.0, linearQuantile([]float64{7}, 0.25))
}
