// Package analytics holds the statistics behind the combine dashboard.
//
// Position tables are built once from the drafted players of a dataset and
// never modified afterwards. Every function here is a pure computation over
// a table:
//
//   - table.go: position projection, round filtering and draft ordering
//   - aggregate.go: minimum, maximum, mean and median of a designated test
//   - percentile.go: fractional rank of a candidate within a round
//   - recommend.go: average results of the earliest complete picks of a round
//   - distribution.go: per-round box statistics for the distribution plot
//
// Null test results never count as zero. When a computation has no values
// to work on it returns a *domain.EmptyAggregateError.
package analytics
