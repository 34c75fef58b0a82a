package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrhman06/session-audit-api/internal/database"
)

func TestExportCSV(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	answers := completeAnswers()
	answers["Positive Comments"] = "Great pacing"
	record, err := svc.Submit(ctx, answers)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf, database.AuditFilter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, ExportColumns(), header)
	assert.Equal(t, "Timestamp", header[0])
	assert.Equal(t, "Auditor", header[34])
	assert.Equal(t, "Score", header[35])
	assert.Equal(t, "Session Rating", header[36])
	assert.Equal(t, "Our Comments", header[len(header)-1])

	cell := func(row []string, column string) string {
		for i, name := range header {
			if name == column {
				return row[i]
			}
		}
		t.Fatalf("column %q not in header", column)
		return ""
	}

	data := rows[1]
	assert.Equal(t, record.CreatedAt.Format("2006-01-02 15:04:05"), cell(data, "Timestamp"))
	assert.Equal(t, "100", cell(data, "Score"))
	assert.Equal(t, "Excellent", cell(data, "Session Rating"))
	assert.Equal(t, "Cairo", cell(data, "Governorate"))
	assert.Equal(t, "20", cell(data, "Break Time ( Minutes)"))
	assert.Equal(t, "Great pacing", cell(data, "Positive Comments"))
	assert.Equal(t, "", cell(data, "Negative Comments"))
}

func TestExportCSVHonorsFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, completeAnswers())
	require.NoError(t, err)

	giza := completeAnswers()
	giza["Governorate"] = "Giza"
	_, err = svc.Submit(ctx, giza)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf, database.AuditFilter{Governorate: "Giza"}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2) // header + one matching record
}

func TestExportCSVEmptyTable(t *testing.T) {
	svc, _ := newTestService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, database.AuditFilter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ExportColumns(), rows[0])
}
