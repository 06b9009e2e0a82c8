package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"auditfeed/internal/auditlog/models"
	dErrors "auditfeed/pkg/domain-errors"
)

func decodeRecords(t *testing.T, raw string) []models.AuditRecord {
	t.Helper()
	var records []models.AuditRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	return records
}

func TestWriteRecords_Text(t *testing.T) {
	records := decodeRecords(t, `[
		{"Id":"r1","Operation":"FileAccessed","Workload":"SharePoint","ClientIP":"1.2.3.4","User":"alice@contoso.com"},
		{"Id":"r2","Operation":"MailItemsAccessed","Workload":"Exchange","ClientIP":"10.0.0.2","UserId":"bob@contoso.com","User":"bob"}
	]`)

	var out bytes.Buffer
	require.NoError(t, writeRecords(&out, outputText, records))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"FileAccessed", "r1", "alice@contoso.com", "SharePoint", "1.2.3.4"}, strings.Fields(lines[1]),
		"User fills the UserId column when UserId is absent")
	assert.Equal(t, []string{"MailItemsAccessed", "r2", "bob@contoso.com", "Exchange", "10.0.0.2"}, strings.Fields(lines[2]))
}

func TestWriteRecords_KeepsServiceProperties(t *testing.T) {
	const raw = `[{"Id":"r1","Operation":"FileAccessed","Workload":"SharePoint","User":"alice@contoso.com","UserType":0,"SiteUrl":"https://contoso.sharepoint.com"}]`
	records := decodeRecords(t, raw)

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeRecords(&out, outputJSON, records))
		assert.JSONEq(t, `[{"CreationTime":"","Id":"r1","Operation":"FileAccessed","Workload":"SharePoint","User":"alice@contoso.com","UserType":0,"SiteUrl":"https://contoso.sharepoint.com"}]`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeRecords(&out, outputYAML, records))

		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "alice@contoso.com", decoded[0]["User"])
		assert.Equal(t, 0, decoded[0]["UserType"])
		assert.Equal(t, "https://contoso.sharepoint.com", decoded[0]["SiteUrl"])
	})
}

func TestParseOutputFormat(t *testing.T) {
	f, err := parseOutputFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, outputYAML, f)

	_, err = parseOutputFormat("csv")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
