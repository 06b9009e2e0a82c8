package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"auditfeed/internal/auditlog/client"
	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/service/mocks"
)

func TestFetcherFetch(t *testing.T) {
	const uri = "https://manage.office.com/api/v1.0/t/activity/feed/audit/blob-1"

	t.Run("returns records verbatim", func(t *testing.T) {
		want := []models.AuditRecord{
			{ID: "r2", Operation: "FileDeleted"},
			{ID: "r1", Operation: "FileDeleted"},
			{ID: "r1", Operation: "FileDeleted"},
		}
		ctrl := gomock.NewController(t)
		api := mocks.NewMockRequester(ctrl)
		api.EXPECT().
			Get(gomock.Any(), uri, gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ url.Values, out any) error {
				*out.(*[]models.AuditRecord) = want
				return nil
			})

		got, err := NewFetcher(api).Fetch(context.Background(), uri)
		require.NoError(t, err)
		assert.Equal(t, want, got, "no filtering or dedup")
	})

	t.Run("expired per-fetch timeout is a fetch failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mocks.NewMockRequester(ctrl)
		api.EXPECT().
			Get(gomock.Any(), uri, gomock.Nil(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ string, _ url.Values, _ any) error {
				_, ok := ctx.Deadline()
				assert.True(t, ok, "fetch must run under a deadline")
				<-ctx.Done()
				return ctx.Err()
			})

		start := time.Now()
		_, err := NewFetcher(api, WithFetchTimeout(20*time.Millisecond)).Fetch(context.Background(), uri)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("failure is returned unmodified", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mocks.NewMockRequester(ctrl)
		api.EXPECT().Get(gomock.Any(), uri, gomock.Nil(), gomock.Any()).Return(errUpstream)

		_, err := NewFetcher(api).Fetch(context.Background(), uri)
		assert.Equal(t, errUpstream, err)
	})
}

func TestFetcherFetch_OverHTTP(t *testing.T) {
	const blob = `[
		{"CreationTime":"2026-10-17T08:01:02","Id":"r1","Workload":"SharePoint","Operation":"FileAccessed","ClientIP":"1.2.3.4","User":"alice@contoso.com","UserType":0},
		{"CreationTime":"2026-10-17T08:01:03","Id":"r2","Workload":"SharePoint","Operation":"FileDeleted","UserId":"bob@contoso.com","ObjectId":"/sites/finance/q3.xlsx"}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blobs/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, blob)
	}))
	t.Cleanup(srv.Close)

	api, err := client.New(srv.URL+"/api/v1.0", "t", "token")
	require.NoError(t, err)

	records, err := NewFetcher(api).Fetch(context.Background(), srv.URL+"/blobs/1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "alice@contoso.com", records[0].User)
	assert.Equal(t, "alice@contoso.com", records[0].Actor())
	assert.Equal(t, "bob@contoso.com", records[1].Actor())

	out, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, blob, string(out), "records encode back to what the service sent")
}
