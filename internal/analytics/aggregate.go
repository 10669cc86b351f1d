package analytics

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"combinepulse/pkg/contracts/domain"
)

// Summary holds the descriptive statistics of one test
type Summary struct {
	Test   domain.Test
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Minimum returns the smallest non-null result of test
func Minimum(t *Table, test domain.Test) (float64, error) {
	s, err := sample(t, test, "minimum")
	if err != nil {
		return 0, err
	}
	lo, _ := s.Bounds()
	return lo, nil
}

// Maximum returns the largest non-null result of test
func Maximum(t *Table, test domain.Test) (float64, error) {
	s, err := sample(t, test, "maximum")
	if err != nil {
		return 0, err
	}
	_, hi := s.Bounds()
	return hi, nil
}

// Mean returns the arithmetic mean of the non-null results of test
func Mean(t *Table, test domain.Test) (float64, error) {
	s, err := sample(t, test, "mean")
	if err != nil {
		return 0, err
	}
	return s.Mean(), nil
}

// Median returns the median of the non-null results of test. An even count
// averages the two middle values.
func Median(t *Table, test domain.Test) (float64, error) {
	s, err := sample(t, test, "median")
	if err != nil {
		return 0, err
	}
	return s.Quantile(0.5), nil
}

// Summarize computes all summary statistics in one pass over the table
func Summarize(t *Table, test domain.Test) (Summary, error) {
	s, err := sample(t, test, "summary")
	if err != nil {
		return Summary{}, err
	}

	lo, hi := s.Bounds()
	sum := Summary{
		Test:   test,
		Count:  len(s.Xs),
		Min:    lo,
		Max:    hi,
		Mean:   s.Mean(),
		Median: s.Quantile(0.5),
	}
	if len(s.Xs) > 1 {
		if sd := s.StdDev(); !math.IsNaN(sd) {
			sum.StdDev = sd
		}
	}
	return sum, nil
}

func sample(t *Table, test domain.Test, op string) (*stats.Sample, error) {
	values, err := t.Values(test)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, t.emptyError(op, test)
	}
	return &stats.Sample{Xs: values}, nil
}
