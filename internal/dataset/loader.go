package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"call-recon-go/internal/keys"
	"call-recon-go/internal/types"
)

// Call-time formats seen in provider exports.
var timeFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// Load reads a telephony billing export, auto-detecting columns by
// header heuristics. Rows sharing a Call ID (redirect legs) collapse
// into one record: first call time / from / cost, free-text fields
// joined. An unparseable call time is a validation error; matching
// downstream tolerates everything else being absent.
func Load(path string) ([]types.BillingRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	idIdx, timeIdx, fromIdx, costIdx, dirIdx, statusIdx, detailsIdx := -1, -1, -1, -1, -1, -1, -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "call id") || l == "callid" || l == "id":
			if idIdx == -1 {
				idIdx = i
			}
		case strings.Contains(l, "time"):
			if timeIdx == -1 {
				timeIdx = i
			}
		case l == "from" || strings.Contains(l, "call from") || strings.Contains(l, "caller"):
			if fromIdx == -1 {
				fromIdx = i
			}
		case strings.Contains(l, "cost"):
			costIdx = i
		case strings.Contains(l, "direction"):
			dirIdx = i
		case strings.Contains(l, "status"):
			statusIdx = i
		case strings.Contains(l, "activity") || strings.Contains(l, "details"):
			detailsIdx = i
		}
	}
	if idIdx == -1 || timeIdx == -1 {
		return nil, fmt.Errorf("missing required columns (call id, call time), got: %v", header)
	}

	var out []types.BillingRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		cell := func(idx int) string {
			if idx >= 0 && idx < len(r) {
				return strings.TrimSpace(r[idx])
			}
			return ""
		}
		id := cell(idIdx)
		if id == "" {
			continue
		}
		ct, err := parseCallTime(cell(timeIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d (call id %s): %w", i+1, id, err)
		}
		rec := types.BillingRecord{
			ID:              id,
			CallTime:        ct,
			CallFrom:        cell(fromIdx),
			Direction:       cell(dirIdx),
			Status:          cell(statusIdx),
			ActivityDetails: cell(detailsIdx),
		}
		if c := cell(costIdx); c != "" {
			rec.Cost, err = parseCost(c)
			if err != nil {
				return nil, fmt.Errorf("row %d (call id %s): %w", i+1, id, err)
			}
		}
		out = append(out, rec)
	}

	out = groupByCallID(out)
	for i := range out {
		keys.DeriveBilling(&out[i])
	}
	return out, nil
}

// groupByCallID collapses duplicate Call IDs, keeping the first-seen
// scalar fields and joining the per-leg text fields. Output order is
// call time then id, stable for identical inputs.
func groupByCallID(recs []types.BillingRecord) []types.BillingRecord {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].ID != recs[j].ID {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CallTime.Before(recs[j].CallTime)
	})

	var out []types.BillingRecord
	for _, r := range recs {
		if len(out) == 0 || out[len(out)-1].ID != r.ID {
			out = append(out, r)
			continue
		}
		last := &out[len(out)-1]
		last.Direction = joinField(last.Direction, r.Direction)
		last.Status = joinField(last.Status, r.Status)
		last.ActivityDetails = joinField(last.ActivityDetails, r.ActivityDetails)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CallTime.Equal(out[j].CallTime) {
			return out[i].CallTime.Before(out[j].CallTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func joinField(a, b string) string {
	if b == "" {
		return a
	}
	if a == "" {
		return b
	}
	return a + ", " + b
}

func parseCallTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty call time")
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable call time %q", s)
}

// parseCost tolerates currency symbols and thousand separators.
func parseCost(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("£", "", "$", "", "€", "", ",", "").Replace(s)
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid cost: %w", err)
	}
	return d, nil
}
