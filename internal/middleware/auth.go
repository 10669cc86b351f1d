package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	apierrors "combinepulse/internal/errors"
)

// APIKeyHeader carries the admin API key
const APIKeyHeader = "X-API-Key"

// APIKeyAuth protects administrative routes with a single shared key. An
// empty key leaves the routes open.
func APIKeyAuth(apiKey string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		expected := []byte(apiKey)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				logger.WarnContext(r.Context(), "missing API key",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				errorHandler.HandleError(w, r, apierrors.New(http.StatusUnauthorized, "API_KEY_REQUIRED", "API key required"))
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				logger.WarnContext(r.Context(), "invalid API key",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				errorHandler.HandleError(w, r, apierrors.New(http.StatusUnauthorized, "INVALID_API_KEY", "Invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
