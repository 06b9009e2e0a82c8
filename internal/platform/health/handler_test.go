package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenant = "contoso-tenant"

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return token
}

func newHandler(accessToken string) *Handler {
	h := New("test", testTenant, accessToken)
	h.now = func() time.Time { return testNow }
	return h
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func readiness(t *testing.T, w *httptest.ResponseRecorder) ReadinessResponse {
	t.Helper()
	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLiveness(t *testing.T) {
	w := serve(newHandler("not-a-jwt"), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Run("valid token reports tenant and expiry", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"tid": testTenant, "exp": testNow.Add(90 * time.Minute).Unix()})

		w := serve(newHandler(token), "/health/ready")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ReadinessResponse{
			Status:             "ready",
			TenantID:           testTenant,
			TokenExpiresAt:     "2026-10-18T10:30:00Z",
			TokenExpiresInSecs: 5400,
		}, readiness(t, w))
	})

	t.Run("token without exp stays ready", func(t *testing.T) {
		w := serve(newHandler(signedToken(t, jwt.MapClaims{"tid": testTenant})), "/health/ready")
		require.Equal(t, http.StatusOK, w.Code)
		body := readiness(t, w)
		assert.Equal(t, "ready", body.Status)
		assert.Empty(t, body.TokenExpiresAt)
	})

	t.Run("expired token is not ready", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"tid": testTenant, "exp": testNow.Add(-time.Minute).Unix()})

		w := serve(newHandler(token), "/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := readiness(t, w)
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "access token expired", body.Reason)
		assert.Equal(t, "2026-10-18T08:59:00Z", body.TokenExpiresAt)
		assert.Zero(t, body.TokenExpiresInSecs)
	})

	t.Run("unreadable token is not ready", func(t *testing.T) {
		w := serve(newHandler("not-a-jwt"), "/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := readiness(t, w)
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, testTenant, body.TenantID)
		assert.Equal(t, "access token is not a valid JWT", body.Reason)
	})
}

func TestStatus(t *testing.T) {
	h := newHandler("not-a-jwt")
	h.startTime = testNow.Add(-2 * time.Minute)

	w := serve(h, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   "test",
		TenantID:      testTenant,
		UptimeSeconds: 120,
		Timestamp:     "2026-10-18T09:00:00Z",
	}, body)
}
