package dataset

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeExport(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var header = []interface{}{"Call ID", "Call Time", "From", "Cost", "Direction", "Status", "Call Activity Details"}

func TestLoad(t *testing.T) {
	path := writeExport(t, [][]interface{}{
		header,
		{"501", "2025-08-14 09:20:00", "0161 555 0000", "0.00", "Outbound", "Unanswered", "voicemail left"},
		{"500", "2025-08-14 09:15:42", "07551234567", "£0.04", "Inbound", "Answered", "front desk"},
	})

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// stable order: call time ascending
	assert.Equal(t, "500", recs[0].ID)
	assert.Equal(t, "501", recs[1].ID)

	assert.Equal(t, "07551234567", recs[0].CallFrom)
	assert.True(t, recs[0].Cost.Equal(decimal.RequireFromString("0.04")))
	assert.Equal(t, "Inbound", recs[0].Direction)

	// derived matching fields
	assert.Equal(t, 15*60+42, recs[0].MinuteSec)
	assert.Contains(t, recs[0].Haystack, "7551234567")
}

func TestLoadGroupsRedirectLegs(t *testing.T) {
	path := writeExport(t, [][]interface{}{
		header,
		{"700", "2025-08-14 10:00:00", "07551234567", "0.04", "Inbound", "Unanswered", "rang reception"},
		{"700", "2025-08-14 10:00:20", "07551234567", "0.02", "Internal", "Answered", "redirected to 0161 555 0000"},
	})

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, "700", got.ID)
	// first leg wins the scalar fields
	assert.Equal(t, 0, got.MinuteSec)
	assert.True(t, got.Cost.Equal(decimal.RequireFromString("0.04")))
	// per-leg text joins
	assert.Equal(t, "Inbound, Internal", got.Direction)
	assert.Equal(t, "Unanswered, Answered", got.Status)
	assert.Equal(t, "rang reception, redirected to 0161 555 0000", got.ActivityDetails)
	// the joined haystack carries the redirect target digits
	assert.Contains(t, got.Haystack, "01615550000")
}

func TestLoadRejectsBadCallTime(t *testing.T) {
	path := writeExport(t, [][]interface{}{
		header,
		{"500", "not a time", "07551234567", "0.04", "Inbound", "Answered", ""},
	})

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call time")
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	path := writeExport(t, [][]interface{}{
		{"Foo", "Bar"},
		{"1", "2"},
	})

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadSkipsBlankIDs(t *testing.T) {
	path := writeExport(t, [][]interface{}{
		header,
		{"", "2025-08-14 09:15:42", "07551234567", "", "Inbound", "Answered", ""},
		{"500", "2025-08-14 09:15:42", "07551234567", "", "Inbound", "Answered", ""},
	})

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "500", recs[0].ID)
}
