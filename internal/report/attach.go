// Package report folds a resolved recording mapping back onto the
// billing dataset and builds the per-site aggregate view.
package report

import (
	"call-recon-go/internal/keys"
	"call-recon-go/internal/types"
)

// Attach left-merges the resolved mapping onto the billing set by id.
// Billing rows that received no recording keep empty recording columns.
func Attach(billing []types.BillingRecord, recordings []types.RecordingMetadata, matches []types.MatchResult) []types.EnrichedRecord {
	byFilename := make(map[string]types.RecordingMetadata, len(recordings))
	for _, r := range recordings {
		byFilename[r.Filename] = r
	}
	byBillingID := make(map[string]types.MatchResult, len(matches))
	for _, m := range matches {
		if m.Matched() {
			byBillingID[m.BillingID] = m
		}
	}

	out := make([]types.EnrichedRecord, 0, len(billing))
	for _, b := range billing {
		row := types.EnrichedRecord{BillingRecord: b}
		if m, ok := byBillingID[b.ID]; ok {
			rec := byFilename[m.Filename]
			row.Filename = rec.Filename
			row.Site = rec.Site
			row.PhoneKey = rec.PhoneKey
			row.Transcript = rec.Transcript
			row.DeltaSec = m.DeltaSec
		}
		out = append(out, row)
	}
	return out
}

// ImputeSites labels rows that got no recording and carry no site yet,
// by scanning the known site names over the row's free text. The first
// site to claim a row removes it from later scans; rows still empty
// after that get one shot at the fallback site. Rows that match
// nothing keep an empty site.
func ImputeSites(rows []types.EnrichedRecord, sites []string, fallback string) {
	pending := make([]int, 0, len(rows))
	for i, r := range rows {
		if r.Filename == "" && r.Site == "" {
			pending = append(pending, i)
		}
	}

	for _, site := range sites {
		remaining := pending[:0]
		for _, i := range pending {
			text := rows[i].CallFrom + " " + rows[i].ActivityDetails
			if keys.ContainsNormalized(text, site) {
				rows[i].Site = site
			} else {
				remaining = append(remaining, i)
			}
		}
		pending = remaining
	}

	if fallback == "" {
		return
	}
	for _, i := range pending {
		text := rows[i].CallFrom + " " + rows[i].ActivityDetails
		if keys.ContainsNormalized(text, fallback) {
			rows[i].Site = fallback
		}
	}
}
