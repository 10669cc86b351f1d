package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"combinepulse/internal/dataset"
	apierrors "combinepulse/internal/errors"
	"combinepulse/internal/infrastructure"
	"combinepulse/internal/services"
)

// DatasetHandler exposes the dataset metadata and the reload operation
type DatasetHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// ReloadResponse is returned after a successful reload
type ReloadResponse struct {
	Status  string       `json:"status"`
	Dataset dataset.Info `json:"dataset"`
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		logger:       infrastructure.WithComponent(logger, "dataset_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes. admin guards the reload route.
func (h *DatasetHandler) Routes(admin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetInfo)
	r.With(admin).Post("/reload", h.Reload)
	return r
}

// GetInfo handles GET /api/dataset
func (h *DatasetHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// Reload handles POST /api/dataset/reload. A failed reload keeps the
// previous dataset.
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", reqID),
		slog.String("remote_addr", r.RemoteAddr))

	info, err := h.service.Reload(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrReloadInProgress) {
			h.errorHandler.HandleError(w, r, apierrors.New(http.StatusConflict, "RELOAD_IN_PROGRESS", err.Error()))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.String("request_id", reqID),
		slog.Int("drafted", info.Drafted),
		slog.String("fingerprint", info.Fingerprint))

	render.JSON(w, r, ReloadResponse{Status: "reloaded", Dataset: info})
}
