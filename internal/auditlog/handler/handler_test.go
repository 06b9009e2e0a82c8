package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"auditfeed/internal/auditlog/client"
	"auditfeed/internal/auditlog/handler/mocks"
	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/service"
	"auditfeed/pkg/platform/httputil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	reporter *mocks.MockReporter
	router   chi.Router
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.reporter = mocks.NewMockReporter(s.ctrl)
	s.router = chi.NewRouter()
	New(s.reporter, nil).Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) get(target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func (s *HandlerSuite) decodeError(w *httptest.ResponseRecorder) httputil.ErrorResponse {
	var body httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *HandlerSuite) TestReturnsRecordsInOrder() {
	records := []models.AuditRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	s.reporter.EXPECT().
		Report(gomock.Any(), service.ReportRequest{Category: models.CategorySharePoint}).
		Return(records, nil)

	w := s.get("/v1/audit/SharePoint")

	s.Equal(http.StatusOK, w.Code)
	var body ReportResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("Audit.SharePoint", body.ContentType)
	s.Equal(3, body.Count)
	s.Equal(records, body.Records)
}

func (s *HandlerSuite) TestPassesTimeWindow() {
	start := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	s.reporter.EXPECT().
		Report(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req service.ReportRequest) ([]models.AuditRecord, error) {
			s.Equal(models.CategoryExchange, req.Category)
			s.Equal(start, req.Window.Start)
			s.Equal(start.Add(2*time.Hour), req.Window.End)
			return []models.AuditRecord{}, nil
		})

	w := s.get("/v1/audit/Exchange?startTime=2026-10-17T00:00:00&endTime=2026-10-17T02:00:00Z")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"content_type":"Audit.Exchange","count":0,"records":[]}`, w.Body.String())
}

func (s *HandlerSuite) TestValidationErrorsNeverReachTheReporter() {
	for _, target := range []string{
		"/v1/audit/Teams",
		"/v1/audit/DLP?startTime=2026-10-17T00:00:00",
		"/v1/audit/DLP?startTime=2026-10-17T05:00:00&endTime=2026-10-17T04:00:00",
		"/v1/audit/DLP?startTime=noon&endTime=2026-10-17T04:00:00",
	} {
		w := s.get(target)
		s.Equal(http.StatusBadRequest, w.Code, target)
		s.Equal("validation_error", s.decodeError(w).Error, target)
	}
}

func (s *HandlerSuite) TestServiceErrorKeepsRemoteDiagnostics() {
	s.reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("list content: %w", &client.ServiceError{
		Category:   client.ErrorBadRequest,
		StatusCode: http.StatusBadRequest,
		Code:       "AF20055",
		Message:    "Start time and end time must both be specified (or both omitted) and must be less than or equal to 24 hours apart.",
	}))

	w := s.get("/v1/audit/General")

	s.Equal(http.StatusBadGateway, w.Code)
	body := s.decodeError(w)
	s.Equal("upstream_failure", body.Error)
	s.Equal("AF20055", body.UpstreamCode)
	s.Equal(http.StatusBadRequest, body.UpstreamStatus)
	s.Contains(body.ErrorDescription, "24 hours apart")
}

func (s *HandlerSuite) TestTimeoutsBecomeGatewayTimeout() {
	s.reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Return(nil, &client.ServiceError{
		Category: client.ErrorTimeout,
		Message:  "request timeout",
	})
	w := s.get("/v1/audit/AzureActiveDirectory")
	s.Equal(http.StatusGatewayTimeout, w.Code)
	s.Equal("upstream_timeout", s.decodeError(w).Error)

	s.reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("fetch content x: %w", context.DeadlineExceeded))
	w = s.get("/v1/audit/AzureActiveDirectory")
	s.Equal(http.StatusGatewayTimeout, w.Code)
}

func TestParseQueryTime(t *testing.T) {
	got, err := parseQueryTime("startTime", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseQueryTime("startTime", "2026-10-17T01:02:03+01:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17T00:02:03", got.UTC().Format(models.QueryTimeLayout))
}
