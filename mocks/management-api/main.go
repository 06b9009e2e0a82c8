// Command management-api is a local stand-in for the Office 365 Management
// Activity API. It serves subscription, content listing and content blob
// endpoints for any tenant so the auditlog CLI and report server can run
// without a real tenant.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort           = "9090"
	defaultLatencyMs      = "50"
	defaultBlobCount      = "23"
	defaultRecordsPerBlob = "3"
	queryTimeLayout       = "2006-01-02T15:04:05"
)

var contentTypes = map[string]string{
	"Audit.AzureActiveDirectory": "AzureActiveDirectory",
	"Audit.Exchange":             "Exchange",
	"Audit.SharePoint":           "SharePoint",
	"Audit.General":              "General",
	"DLP.All":                    "DLP",
}

type subscription struct {
	ContentType string          `json:"contentType"`
	Status      string          `json:"status"`
	Webhook     json.RawMessage `json:"webhook"`
}

type contentDescriptor struct {
	ContentType       string `json:"contentType"`
	ContentID         string `json:"contentId"`
	ContentURI        string `json:"contentUri"`
	ContentCreated    string `json:"contentCreated"`
	ContentExpiration string `json:"contentExpiration"`
}

type auditRecord struct {
	CreationTime string `json:"CreationTime"`
	ID           string `json:"Id"`
	Operation    string `json:"Operation"`
	Workload     string `json:"Workload"`
	UserID       string `json:"UserId"`
	User         string `json:"User"`
	UserType     int    `json:"UserType"`
	ClientIP     string `json:"ClientIP"`
	RecordType   int    `json:"RecordType"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type server struct {
	publicURL      string
	latency        time.Duration
	blobCount      int
	recordsPerBlob int

	mu            sync.Mutex
	subscriptions map[string]map[string]bool // tenant -> content type -> enabled
}

func main() {
	port := getEnv("PORT", defaultPort)
	s := &server{
		publicURL:      getEnv("PUBLIC_URL", "http://localhost:"+port),
		latency:        time.Duration(getEnvInt("LATENCY_MS", defaultLatencyMs)) * time.Millisecond,
		blobCount:      getEnvInt("BLOB_COUNT", defaultBlobCount),
		recordsPerBlob: getEnvInt("RECORDS_PER_BLOB", defaultRecordsPerBlob),
		subscriptions:  make(map[string]map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/v1.0/{tenant}/activity/feed/subscriptions/list", s.authorized(s.handleList))
	mux.HandleFunc("POST /api/v1.0/{tenant}/activity/feed/subscriptions/start", s.authorized(s.handleStart))
	mux.HandleFunc("GET /api/v1.0/{tenant}/activity/feed/subscriptions/content", s.authorized(s.handleContent))
	mux.HandleFunc("GET /api/v1.0/{tenant}/activity/feed/audit/{contentID}", s.authorized(s.handleBlob))

	log.Printf("mock management activity api listening on :%s", port)
	log.Printf("blobs per listing: %d, records per blob: %d, latency: %s", s.blobCount, s.recordsPerBlob, s.latency)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "management-api",
	})
}

// authorized rejects requests without a bearer token. The token itself is
// not inspected.
func (s *server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeError(w, http.StatusUnauthorized, "AF10001", "Authorization has been denied for this request.")
			return
		}
		next(w, r)
	}
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")

	s.mu.Lock()
	subs := make([]subscription, 0, len(s.subscriptions[tenant]))
	for ct, enabled := range s.subscriptions[tenant] {
		status := "disabled"
		if enabled {
			status = "enabled"
		}
		subs = append(subs, subscription{ContentType: ct, Status: status, Webhook: json.RawMessage("null")})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, subs)
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")
	ct := r.URL.Query().Get("contentType")
	if _, ok := contentTypes[ct]; !ok {
		writeError(w, http.StatusBadRequest, "AF20023", fmt.Sprintf("The content type %q is not valid.", ct))
		return
	}

	s.mu.Lock()
	if s.subscriptions[tenant] == nil {
		s.subscriptions[tenant] = make(map[string]bool)
	}
	s.subscriptions[tenant][ct] = true
	s.mu.Unlock()

	log.Printf("started subscription tenant=%s contentType=%s", tenant, ct)
	writeJSON(w, http.StatusOK, subscription{ContentType: ct, Status: "enabled", Webhook: json.RawMessage("null")})
}

func (s *server) handleContent(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")
	q := r.URL.Query()
	ct := q.Get("contentType")

	s.mu.Lock()
	enabled := s.subscriptions[tenant][ct]
	s.mu.Unlock()
	if !enabled {
		writeError(w, http.StatusBadRequest, "AF20022", "No subscription found for the specified content type")
		return
	}

	end := time.Now().UTC().Truncate(time.Second)
	start := end.Add(-24 * time.Hour)
	rawStart, rawEnd := q.Get("startTime"), q.Get("endTime")
	if rawStart != "" || rawEnd != "" {
		var err1, err2 error
		start, err1 = time.Parse(queryTimeLayout, rawStart)
		end, err2 = time.Parse(queryTimeLayout, rawEnd)
		if err1 != nil || err2 != nil || end.Before(start) || end.Sub(start) > 24*time.Hour {
			writeError(w, http.StatusBadRequest, "AF20055",
				"Start time and end time must both be specified (or both omitted) and must be less than or equal to 24 hours apart.")
			return
		}
	}

	step := end.Sub(start) / time.Duration(max(s.blobCount, 1))
	descriptors := make([]contentDescriptor, s.blobCount)
	for i := range descriptors {
		created := start.Add(time.Duration(i) * step)
		id := fmt.Sprintf("%s$%d$%s", strings.ReplaceAll(ct, ".", ""), created.Unix(), strconv.Itoa(i))
		descriptors[i] = contentDescriptor{
			ContentType:       ct,
			ContentID:         id,
			ContentURI:        fmt.Sprintf("%s/api/v1.0/%s/activity/feed/audit/%s", s.publicURL, tenant, id),
			ContentCreated:    created.Format(time.RFC3339),
			ContentExpiration: created.Add(7 * 24 * time.Hour).Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, descriptors)
}

func (s *server) handleBlob(w http.ResponseWriter, r *http.Request) {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	contentID := r.PathValue("contentID")
	parts := strings.Split(contentID, "$")
	if len(parts) != 3 {
		writeError(w, http.StatusNotFound, "AF20051", "Content requested with the given contentId was not found.")
		return
	}
	workload := "General"
	for ct, name := range contentTypes {
		if strings.ReplaceAll(ct, ".", "") == parts[0] {
			workload = name
		}
	}
	unix, _ := strconv.ParseInt(parts[1], 10, 64)
	created := time.Unix(unix, 0).UTC()

	records := make([]auditRecord, s.recordsPerBlob)
	for i := range records {
		records[i] = auditRecord{
			CreationTime: created.Add(time.Duration(i) * time.Second).Format(queryTimeLayout),
			ID:           fmt.Sprintf("%s-%s-%d", parts[1], parts[2], i),
			Operation:    "FileAccessed",
			Workload:     workload,
			UserID:       fmt.Sprintf("user%d@contoso.onmicrosoft.com", i),
			User:         fmt.Sprintf("user%d@contoso.onmicrosoft.com", i),
			ClientIP:     fmt.Sprintf("10.0.%s.%d", parts[2], i+1),
			RecordType:   6,
		}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	n, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil {
		n, _ = strconv.Atoi(fallback)
	}
	return n
}
