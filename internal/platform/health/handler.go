// Package health serves the report server's probes. Readiness is decided by
// the credential the server calls the management API with: a report cannot
// succeed once the access token has expired or cannot be read.
package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"auditfeed/internal/auditlog/credential"
	"auditfeed/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Handler answers liveness, readiness and status probes for one tenant.
type Handler struct {
	startTime   time.Time
	environment string
	tenantID    string
	accessToken string
	now         func() time.Time
}

// New creates a probe handler for the tenant the server reports on.
func New(environment, tenantID, accessToken string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		tenantID:    tenantID,
		accessToken: accessToken,
		now:         time.Now,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// ReadinessResponse describes the credential the server is using.
// TokenExpiresAt is empty for tokens without an exp claim.
type ReadinessResponse struct {
	Status             string `json:"status"`
	TenantID           string `json:"tenant_id"`
	TokenExpiresAt     string `json:"token_expires_at,omitempty"`
	TokenExpiresInSecs int64  `json:"token_expires_in_seconds,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

// HandleReadiness answers 503 when the access token is unreadable or expired.
func (h *Handler) HandleReadiness(w http.ResponseWriter, _ *http.Request) {
	response := h.readiness(h.now())
	status := http.StatusOK
	if response.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, response)
}

func (h *Handler) readiness(now time.Time) ReadinessResponse {
	response := ReadinessResponse{Status: "ready", TenantID: h.tenantID}

	exp, err := credential.TokenExpiry(h.accessToken)
	if err != nil {
		response.Status = "not_ready"
		response.Reason = err.Error()
		return response
	}
	if exp.IsZero() {
		return response
	}

	response.TokenExpiresAt = exp.Format(time.RFC3339)
	if !now.Before(exp) {
		response.Status = "not_ready"
		response.Reason = "access token expired"
		return response
	}
	response.TokenExpiresInSecs = int64(exp.Sub(now).Seconds())
	return response
}

// StatusResponse is the response for the general health status endpoint.
type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	TenantID      string `json:"tenant_id"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		TenantID:      h.tenantID,
		UptimeSeconds: int64(now.Sub(h.startTime).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}
