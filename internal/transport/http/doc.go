// Package http implements the HTTP handlers of the combine dashboard. It is
// a thin layer between the transport and the services: handlers bind and
// validate the request, call one service method and render the result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → DashboardService → Dataset
//	                                              ↓
//	HTTP Response ← Handler ← View ←──────────────┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
//	    var req api.SummaryRequest
//	    if err := h.validator.Bind(r, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    summary, err := h.service.Summary(r.Context(), pos, test, req.Round)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    render.JSON(w, r, summary)
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/combine/insufficient-data",
//	    "title": "Insufficient Data",
//	    "status": 422,
//	    "detail": "insufficient data for QB BenchReps in round 3",
//	    "instance": "/api/dashboard",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against a mocked service.
package http
