package dashboard

import (
	"combinepulse/pkg/contracts/domain"
)

// Dashboard copy
const (
	Heading = "NFL Combine Analysis"
	Intro   = "Provide a position, a combine test, and the round you have a draft pick in. " +
		"You'll be able to see statistics for that test and position from past combines. " +
		"You can also input a statistic you have for a player and see how they rank against past players. " +
		"The position and round are used to recommend what statistics you may want to look for at that position."
)

// View is the complete rendered dashboard for one State
type View struct {
	Heading         string             `json:"heading"`
	Intro           string             `json:"intro"`
	State           State              `json:"state"`
	Options         Options            `json:"options"`
	Title           string             `json:"title"`
	Summary         SummaryView        `json:"summary"`
	Plot            PlotView           `json:"plot"`
	Percentile      *PercentileView    `json:"percentile,omitempty"`
	Recommendations RecommendationView `json:"recommendations"`
	Dataset         string             `json:"dataset"`
}

// Options lists the valid selections so clients only offer tracked
// combinations
type Options struct {
	Positions []PositionOption `json:"positions"`
	Tests     []TestOption     `json:"tests"`
	Rounds    []int            `json:"rounds"`
}

// PositionOption is one selectable position
type PositionOption struct {
	Code  domain.Position `json:"code"`
	Name  string          `json:"name"`
	Tests []TestOption    `json:"tests"`
}

// TestOption is one selectable combine test
type TestOption struct {
	Name          domain.Test `json:"name"`
	Label         string      `json:"label"`
	Unit          string      `json:"unit"`
	LowerIsBetter bool        `json:"lower_is_better"`
}

// SummaryView holds the four summary statistics of the selected test
type SummaryView struct {
	Test    domain.Test `json:"test"`
	Count   int         `json:"count"`
	Minimum Stat        `json:"minimum"`
	Maximum Stat        `json:"maximum"`
	Average Stat        `json:"average"`
	Median  Stat        `json:"median"`
	StdDev  float64     `json:"std_dev"`
}

// Stat is a value with its two-decimal display form
type Stat struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// PlotView is the data of the per-round distribution plot
type PlotView struct {
	Title   string       `json:"title"`
	XLabel  string       `json:"x_label"`
	YLabel  string       `json:"y_label"`
	Boxes   []BoxView    `json:"boxes"`
	Overlay *OverlayView `json:"overlay,omitempty"`
}

// BoxView is one round's box
type BoxView struct {
	Round       int       `json:"round"`
	Count       int       `json:"count"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	WhiskerLow  float64   `json:"whisker_low"`
	WhiskerHigh float64   `json:"whisker_high"`
	Outliers    []float64 `json:"outliers,omitempty"`
}

// OverlayView is the candidate point drawn over the boxes. Index is the
// zero-based position of the round on the x axis.
type OverlayView struct {
	Index int     `json:"index"`
	Round int     `json:"round"`
	Value float64 `json:"value"`
}

// PercentileView is the candidate's rank within its round
type PercentileView struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Message string  `json:"message"`
}

// RecommendationView shows the average results of the top picks
type RecommendationView struct {
	Heading  string         `json:"heading"`
	Message  string         `json:"message"`
	Averages []Stat         `json:"averages"`
	Players  []PickedPlayer `json:"players"`
}

// PickedPlayer is one of the picks behind a recommendation
type PickedPlayer struct {
	Name  string `json:"name"`
	Year  int    `json:"year"`
	Round int    `json:"round"`
	Pick  int    `json:"pick"`
}

// TableView is a position table as clients receive it
type TableView struct {
	Position domain.Position `json:"position"`
	Round    int             `json:"round,omitempty"`
	Tests    []domain.Test   `json:"tests"`
	Players  []PlayerRow     `json:"players"`
}

// PlayerRow is one row of a TableView. Missing results are null.
type PlayerRow struct {
	Name    string                   `json:"name"`
	Height  *float64                 `json:"height"`
	Weight  *float64                 `json:"weight"`
	Results map[domain.Test]*float64 `json:"results"`
	Year    int                      `json:"year"`
	Round   int                      `json:"round"`
	Pick    *int                     `json:"pick"`
}
