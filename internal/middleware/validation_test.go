package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "combinepulse/internal/errors"
	api "combinepulse/pkg/contracts/api/v1"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	problems, ok := apiErr.Details.([]apierrors.ValidationError)
	require.True(t, ok)
	out := make(map[string]string, len(problems))
	for _, p := range problems {
		out[p.Field] = p.Message
	}
	return out
}

func TestBindDashboardRequest(t *testing.T) {
	v := NewRequestValidator()

	var req api.DashboardRequest
	httpReq := httptest.NewRequest(http.MethodGet, "/api/dashboard?position=wr&test=Forty&round=1&value=4.45", nil)
	require.NoError(t, v.Bind(httpReq, &req))

	assert.Equal(t, "wr", req.Position)
	assert.Equal(t, "Forty", req.Test)
	assert.Equal(t, 1, req.Round)
	assert.InDelta(t, 4.45, req.Value, 1e-9)
}

func TestBindRejectsBadValues(t *testing.T) {
	v := NewRequestValidator()

	tests := []struct {
		name   string
		url    string
		fields map[string]string
	}{
		{
			name: "unparsable numbers",
			url:  "/api/dashboard?position=QB&test=Forty&round=first&value=fast",
			fields: map[string]string{
				"round": "must be a whole number",
				"value": "must be a number",
			},
		},
		{
			name: "missing and out of range",
			url:  "/api/dashboard?position=K&round=9&value=-1",
			fields: map[string]string{
				"position": "position must be one of: QB, DT, RB, WR, OLB",
				"test":     "test is required",
				"round":    "round must be at most 7",
				"value":    "value must be greater than or equal to 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req api.DashboardRequest
			err := v.Bind(httptest.NewRequest(http.MethodGet, tt.url, nil), &req)
			assert.Equal(t, tt.fields, validationFields(t, err))
		})
	}
}

func TestBindPathParameter(t *testing.T) {
	v := NewRequestValidator()

	httpReq := withURLParam(httptest.NewRequest(http.MethodGet, "/api/positions/RB/export?format=xlsx&round=2", nil), "position", "RB")
	var req api.ExportRequest
	require.NoError(t, v.Bind(httpReq, &req))
	assert.Equal(t, "RB", req.Position)
	assert.Equal(t, "xlsx", req.Format)
	assert.Equal(t, 2, req.Round)

	httpReq = withURLParam(httptest.NewRequest(http.MethodGet, "/api/positions/RB/export?format=pdf", nil), "position", "RB")
	req = api.ExportRequest{}
	fields := validationFields(t, v.Bind(httpReq, &req))
	assert.Equal(t, "format must be one of: csv, xlsx", fields["format"])
}

func TestBindRequiresStructPointer(t *testing.T) {
	v := NewRequestValidator()
	var req api.SummaryRequest
	assert.Error(t, v.Bind(httptest.NewRequest(http.MethodGet, "/", nil), req))
}

func TestCustomTagsAcceptDisplayNames(t *testing.T) {
	v := NewRequestValidator()
	err := v.ValidateStruct(&api.SummaryRequest{Position: "Wide Receiver", Test: "vertical"})
	assert.NoError(t, err)
}
