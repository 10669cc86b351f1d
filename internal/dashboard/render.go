package dashboard

import (
	"fmt"

	"combinepulse/internal/analytics"
	"combinepulse/internal/dataset"
	"combinepulse/pkg/contracts/domain"
)

// Render computes the dashboard for a state. It reads the dataset and
// nothing else, so equal inputs always give equal views. Any error ends the
// render and is returned to the caller.
func Render(ds *dataset.Dataset, state State, policy Policy) (*View, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}
	if policy.TopPicks <= 0 {
		policy.TopPicks = analytics.DefaultTopPicks
	}

	table, err := ds.Table(state.Position)
	if err != nil {
		return nil, err
	}

	summary, err := RenderSummary(table, state.Test)
	if err != nil {
		return nil, err
	}

	plot, err := RenderPlot(table, state)
	if err != nil {
		return nil, err
	}

	var percentile *PercentileView
	if state.Provided() || !policy.SkipSentinelPercentile {
		percentile, err = RenderPercentile(table, state)
		if err != nil {
			return nil, err
		}
	}

	recs, err := RenderRecommendations(table, state.Round, policy.TopPicks)
	if err != nil {
		return nil, err
	}

	from, to := ds.YearRange()
	return &View{
		Heading: Heading,
		Intro:   Intro,
		State:   state,
		Options: RenderOptions(state.Position),
		Title: fmt.Sprintf("Summary statistics for %s test for %s from %d-%d NFL Combines",
			state.Test, state.Position.Plural(), from, to),
		Summary:         summary,
		Plot:            plot,
		Percentile:      percentile,
		Recommendations: recs,
		Dataset:         ds.Fingerprint(),
	}, nil
}

// RenderOptions lists every position with its tests; Tests holds the tests
// of the selected position
func RenderOptions(selected domain.Position) Options {
	opts := Options{}
	for r := domain.MinRound; r <= domain.MaxRound; r++ {
		opts.Rounds = append(opts.Rounds, r)
	}
	for _, pos := range domain.Positions() {
		po := PositionOption{Code: pos, Name: pos.DisplayName()}
		for _, t := range pos.Tests() {
			po.Tests = append(po.Tests, testOption(t))
		}
		if pos == selected {
			opts.Tests = po.Tests
		}
		opts.Positions = append(opts.Positions, po)
	}
	return opts
}

// RenderSummary formats the four summary statistics of a test
func RenderSummary(table *analytics.Table, test domain.Test) (SummaryView, error) {
	s, err := analytics.Summarize(table, test)
	if err != nil {
		return SummaryView{}, err
	}
	return SummaryView{
		Test:    test,
		Count:   s.Count,
		Minimum: stat("Minimum", s.Min),
		Maximum: stat("Maximum", s.Max),
		Average: stat("Average", s.Mean),
		Median:  stat("Median", s.Median),
		StdDev:  s.StdDev,
	}, nil
}

// RenderPlot builds the per-round boxes and the candidate overlay. The
// overlay is left out when no candidate was entered.
func RenderPlot(table *analytics.Table, state State) (PlotView, error) {
	boxes, err := analytics.RoundDistribution(table, state.Test)
	if err != nil {
		return PlotView{}, err
	}

	plot := PlotView{
		Title:  fmt.Sprintf("%s %s Statistics for each Round", state.Position.DisplayName(), state.Test),
		XLabel: "Round",
		YLabel: string(state.Test),
		Boxes:  make([]BoxView, len(boxes)),
	}
	for i, b := range boxes {
		plot.Boxes[i] = BoxView{
			Round:       b.Round,
			Count:       b.Count,
			Min:         b.Min,
			Q1:          b.Q1,
			Median:      b.Median,
			Q3:          b.Q3,
			Max:         b.Max,
			WhiskerLow:  b.WhiskerLow,
			WhiskerHigh: b.WhiskerHigh,
			Outliers:    b.Outliers,
		}
	}
	if state.Provided() {
		plot.Overlay = &OverlayView{Index: state.Round - 1, Round: state.Round, Value: state.Candidate}
	}
	return plot, nil
}

// RenderPercentile ranks the candidate within its round
func RenderPercentile(table *analytics.Table, state State) (*PercentileView, error) {
	p, err := analytics.PercentileRank(table, state.Round, state.Test, state.Candidate)
	if err != nil {
		return nil, err
	}
	return &PercentileView{
		Value:   p,
		Display: fmt.Sprintf("%.2f", p),
		Message: fmt.Sprintf("This player falls in the %.2fth percentile of %s.", p, state.Position.Plural()),
	}, nil
}

// RenderRecommendations averages the designated tests of the top picks
func RenderRecommendations(table *analytics.Table, round, limit int) (RecommendationView, error) {
	if limit <= 0 {
		limit = analytics.DefaultTopPicks
	}
	rec, err := analytics.TopPicks(table, round, limit)
	if err != nil {
		return RecommendationView{}, err
	}

	view := RecommendationView{
		Heading: "Recommended Statistics",
		Message: fmt.Sprintf("These are the average statistics for %s who were one of the top %d picked in the round you're looking at:",
			table.Position().Plural(), len(rec.Players)),
		Averages: make([]Stat, len(rec.Averages)),
		Players:  make([]PickedPlayer, len(rec.Players)),
	}
	for i, avg := range rec.Averages {
		view.Averages[i] = stat(string(avg.Test), avg.Average)
	}
	for i, p := range rec.Players {
		view.Players[i] = PickedPlayer{Name: p.Name, Year: p.Year, Round: p.Round, Pick: *p.Pick}
	}
	return view, nil
}

// RenderTable lists the rows of a position table in draft order
func RenderTable(table *analytics.Table) TableView {
	sorted := table.SortedByDraftOrder()
	tests := sorted.Tests()
	view := TableView{
		Position: sorted.Position(),
		Round:    sorted.Round(),
		Tests:    tests,
		Players:  make([]PlayerRow, 0, sorted.Len()),
	}
	for _, r := range sorted.Rows() {
		row := PlayerRow{
			Name:    r.Name,
			Height:  r.Height,
			Weight:  r.Weight,
			Results: make(map[domain.Test]*float64, len(tests)),
			Year:    r.Year,
			Round:   r.Round,
			Pick:    r.Pick,
		}
		for i, t := range tests {
			row.Results[t] = r.Test(i)
		}
		view.Players = append(view.Players, row)
	}
	return view
}

func stat(label string, v float64) Stat {
	return Stat{Label: label, Value: v, Display: fmt.Sprintf("%.2f", v)}
}

func testOption(t domain.Test) TestOption {
	return TestOption{Name: t, Label: t.Label(), Unit: t.Unit(), LowerIsBetter: t.LowerIsBetter()}
}
