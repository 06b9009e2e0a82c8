package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"auditfeed/internal/auditlog/client"
	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/service"
	dErrors "auditfeed/pkg/domain-errors"
	"auditfeed/pkg/platform/httputil"
	"auditfeed/pkg/platform/middleware/request"
)

// Reporter runs one audit log report.
type Reporter interface {
	Report(ctx context.Context, req service.ReportRequest) ([]models.AuditRecord, error)
}

// Handler serves audit log reports over HTTP.
type Handler struct {
	reporter Reporter
	logger   *slog.Logger
}

// New creates a report handler.
func New(reporter Reporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{reporter: reporter, logger: logger}
}

// Register mounts the handler routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/audit/{category}", h.HandleReport)
}

// ReportResponse is the body of a successful report.
type ReportResponse struct {
	ContentType string               `json:"content_type"`
	Count       int                  `json:"count"`
	Records     []models.AuditRecord `json:"records"`
}

// HandleReport handles GET /v1/audit/{category}?startTime=&endTime=.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, err := parseReportRequest(r)
	if err != nil {
		h.logger.InfoContext(ctx, "rejected report request", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	records, err := h.reporter.Report(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "report failed",
			"content_type", req.Category.ContentType(),
			"error", err,
			"request_id", requestID,
		)
		writeReportError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ReportResponse{
		ContentType: req.Category.ContentType(),
		Count:       len(records),
		Records:     records,
	})
}

func parseReportRequest(r *http.Request) (service.ReportRequest, error) {
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		return service.ReportRequest{}, err
	}

	q := r.URL.Query()
	start, err := parseQueryTime("startTime", q.Get("startTime"))
	if err != nil {
		return service.ReportRequest{}, err
	}
	end, err := parseQueryTime("endTime", q.Get("endTime"))
	if err != nil {
		return service.ReportRequest{}, err
	}
	window, err := models.NewTimeWindow(start, end)
	if err != nil {
		return service.ReportRequest{}, err
	}
	return service.ReportRequest{Category: category, Window: window}, nil
}

func parseQueryTime(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, models.QueryTimeLayout} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, dErrors.Newf(dErrors.CodeValidation, "%s %q is not a valid date/time", name, raw)
}

// writeReportError maps pipeline failures. Management API failures keep the
// remote code and message; timeouts become 504.
func writeReportError(w http.ResponseWriter, err error) {
	var se *client.ServiceError
	switch {
	case errors.As(err, &se):
		status := http.StatusBadGateway
		code := dErrors.CodeUpstream
		if se.Category == client.ErrorTimeout {
			status = http.StatusGatewayTimeout
			code = dErrors.CodeTimeout
		}
		httputil.WriteJSON(w, status, httputil.ErrorResponse{
			Error:            httputil.DomainCodeToHTTPCode(code),
			ErrorDescription: se.Message,
			UpstreamCode:     se.Code,
			UpstreamStatus:   se.StatusCode,
		})
	case errors.Is(err, context.DeadlineExceeded):
		httputil.WriteError(w, dErrors.New(dErrors.CodeTimeout, "report timed out"))
	default:
		httputil.WriteError(w, err)
	}
}
