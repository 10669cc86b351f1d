// Package api contains the HTTP request contracts of the combine dashboard.
// Version v1 represents the current stable API version.
package api

// Query tags name the URL query parameter; path parameters come from the
// router and use the param tag.

// DashboardRequest asks for a full dashboard view
type DashboardRequest struct {
	Position string  `json:"position" query:"position" validate:"required,position"`
	Test     string  `json:"test" query:"test" validate:"required,combine_test"`
	Round    int     `json:"round" query:"round" validate:"required,min=1,max=7"`
	Value    float64 `json:"value" query:"value" validate:"gte=0"`
}

// PlayersRequest lists the rows of a position table, optionally for one round
type PlayersRequest struct {
	Position string `json:"position" param:"position" validate:"required,position"`
	Round    int    `json:"round" query:"round" validate:"omitempty,min=1,max=7"`
}

// SummaryRequest asks for the aggregate statistics of one test
type SummaryRequest struct {
	Position string `json:"position" param:"position" validate:"required,position"`
	Test     string `json:"test" query:"test" validate:"required,combine_test"`
	Round    int    `json:"round" query:"round" validate:"omitempty,min=1,max=7"`
}

// PercentileRequest ranks a candidate value within one round
type PercentileRequest struct {
	Position string  `json:"position" param:"position" validate:"required,position"`
	Test     string  `json:"test" query:"test" validate:"required,combine_test"`
	Round    int     `json:"round" query:"round" validate:"required,min=1,max=7"`
	Value    float64 `json:"value" query:"value" validate:"gte=0"`
}

// RecommendationsRequest asks for the top picks of a round
type RecommendationsRequest struct {
	Position string `json:"position" param:"position" validate:"required,position"`
	Round    int    `json:"round" query:"round" validate:"required,min=1,max=7"`
	Limit    int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=50"`
}

// ExportRequest downloads a position table
type ExportRequest struct {
	Position string `json:"position" param:"position" validate:"required,position"`
	Format   string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
	Round    int    `json:"round" query:"round" validate:"omitempty,min=1,max=7"`
}
