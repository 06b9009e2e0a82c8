package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "auditfeed/pkg/domain-errors"
)

func TestParseCategory(t *testing.T) {
	t.Run("maps every tag to its content type", func(t *testing.T) {
		cases := map[string]string{
			"AzureActiveDirectory": "Audit.AzureActiveDirectory",
			"Exchange":             "Audit.Exchange",
			"SharePoint":           "Audit.SharePoint",
			"General":              "Audit.General",
			"DLP":                  "DLP.All",
		}
		for tag, want := range cases {
			c, err := ParseCategory(tag)
			require.NoError(t, err, tag)
			assert.Equal(t, want, c.ContentType())
		}
	})

	t.Run("unknown tag is a validation error naming allowed values", func(t *testing.T) {
		_, err := ParseCategory("Teams")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "Teams is not a valid value")
		assert.Contains(t, err.Error(), "SharePoint")
	})

	t.Run("content type strings are not accepted as tags", func(t *testing.T) {
		_, err := ParseCategory("Audit.SharePoint")
		assert.Error(t, err)
	})

	t.Run("unknown category has no content type", func(t *testing.T) {
		assert.False(t, Category("Teams").IsValid())
		assert.Empty(t, Category("Teams").ContentType())
	})

	t.Run("categories are listed in stable order", func(t *testing.T) {
		assert.Equal(t, []Category{
			CategoryAzureActiveDirectory,
			CategoryDLP,
			CategoryExchange,
			CategoryGeneral,
			CategorySharePoint,
		}, Categories())
	})
}

func TestNewTimeWindow(t *testing.T) {
	start := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)

	t.Run("neither bound yields an unset window", func(t *testing.T) {
		w, err := NewTimeWindow(nil, nil)
		require.NoError(t, err)
		assert.False(t, w.IsSet())
		assert.Zero(t, w.Span())
	})

	t.Run("start without end is rejected", func(t *testing.T) {
		_, err := NewTimeWindow(&start, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("end without start is rejected", func(t *testing.T) {
		_, err := NewTimeWindow(nil, &end)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := NewTimeWindow(&end, &start)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("bounds are normalized to UTC and formatted for the query", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*60*60)
		localStart := start.In(loc)
		w, err := NewTimeWindow(&localStart, &end)
		require.NoError(t, err)
		assert.True(t, w.IsSet())
		assert.Equal(t, "2026-10-17T08:00:00", w.StartParam())
		assert.Equal(t, "2026-10-17T14:00:00", w.EndParam())
		assert.Equal(t, 6*time.Hour, w.Span())
	})
}

func TestTimeWindowValidate(t *testing.T) {
	assert.NoError(t, TimeWindow{}.Validate())
	assert.Error(t, TimeWindow{Start: time.Now()}.Validate())
	assert.Error(t, TimeWindow{End: time.Now()}.Validate())
}
