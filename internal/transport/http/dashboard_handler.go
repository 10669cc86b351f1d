package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"combinepulse/internal/dashboard"
	apierrors "combinepulse/internal/errors"
	"combinepulse/internal/exporter"
	"combinepulse/internal/infrastructure"
	custommw "combinepulse/internal/middleware"
	api "combinepulse/pkg/contracts/api/v1"
	"combinepulse/pkg/contracts/domain"
)

// DashboardHandler serves the dashboard views and the per-position queries
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *custommw.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// PositionsResponse lists the selectable positions and rounds
type PositionsResponse struct {
	Positions []dashboard.PositionOption `json:"positions"`
	Rounds    []int                      `json:"rounds"`
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *custommw.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       infrastructure.WithComponent(logger, "dashboard_handler"),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes registers the dashboard routes on r
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/positions", h.GetPositions)

	r.Route("/positions/{position}", func(r chi.Router) {
		r.Get("/players", h.GetPlayers)
		r.Get("/summary", h.GetSummary)
		r.Get("/percentile", h.GetPercentile)
		r.Get("/recommendations", h.GetRecommendations)
		r.Get("/export", h.Export)
	})
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var req api.DashboardRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	pos, test, err := parseSelection(req.Position, req.Test)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	infrastructure.SetSpanAttributes(r.Context(), map[string]interface{}{
		"combine.position": string(pos),
		"combine.test":     string(test),
		"combine.round":    req.Round,
		"combine.value":    req.Value,
	})

	h.logger.DebugContext(r.Context(), "rendering dashboard",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("position", string(pos)),
		slog.String("test", string(test)),
		slog.Int("round", req.Round),
		slog.Float64("value", req.Value))

	view, err := h.service.Render(r.Context(), dashboard.State{
		Position:  pos,
		Test:      test,
		Round:     req.Round,
		Candidate: req.Value,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// GetPositions handles GET /api/positions
func (h *DashboardHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	opts := h.service.Options("")
	render.JSON(w, r, PositionsResponse{Positions: opts.Positions, Rounds: opts.Rounds})
}

// GetPlayers handles GET /api/positions/{position}/players
func (h *DashboardHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	var req api.PlayersRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	pos, err := domain.ParsePosition(req.Position)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	players, err := h.service.Players(r.Context(), pos, req.Round)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, players)
}

// GetSummary handles GET /api/positions/{position}/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var req api.SummaryRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	pos, test, err := parseSelection(req.Position, req.Test)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), pos, test, req.Round)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}

// GetPercentile handles GET /api/positions/{position}/percentile
func (h *DashboardHandler) GetPercentile(w http.ResponseWriter, r *http.Request) {
	var req api.PercentileRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	pos, test, err := parseSelection(req.Position, req.Test)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	p, err := h.service.Percentile(r.Context(), dashboard.State{
		Position:  pos,
		Test:      test,
		Round:     req.Round,
		Candidate: req.Value,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, p)
}

// GetRecommendations handles GET /api/positions/{position}/recommendations
func (h *DashboardHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var req api.RecommendationsRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	pos, err := domain.ParsePosition(req.Position)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rec, err := h.service.Recommend(r.Context(), pos, req.Round, req.Limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, rec)
}

// Export handles GET /api/positions/{position}/export. The file is built in
// memory first so a failure still produces a problem response.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	pos, err := domain.ParsePosition(req.Position)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format := req.Format
	if format == "" {
		format = exporter.FormatCSV
	}

	table, err := h.service.Table(r.Context(), pos, req.Round)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(&buf, format, table); err != nil {
		var formatErr *exporter.ErrUnsupportedFormat
		if errors.As(err, &formatErr) {
			h.errorHandler.HandleError(w, r, apierrors.UnsupportedFormat(formatErr.Format))
			return
		}
		h.errorHandler.HandleError(w, r, fmt.Errorf("export %s table: %w", pos, err))
		return
	}

	h.logger.InfoContext(r.Context(), "position table exported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("position", string(pos)),
		slog.String("format", format),
		slog.Int("rows", table.Len()))

	w.Header().Set("Content-Type", exporter.ContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.FileName(table, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func parseSelection(position, test string) (domain.Position, domain.Test, error) {
	pos, err := domain.ParsePosition(position)
	if err != nil {
		return "", "", err
	}
	t, err := domain.ParseTest(test)
	if err != nil {
		return "", "", err
	}
	return pos, t, nil
}
