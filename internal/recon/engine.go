// Package recon matches audio recordings against billing-log rows when
// the two datasets share no key: candidates come from phone-fragment
// containment, disambiguation from clock proximity, and a final dedup
// pass guarantees a 1:1 mapping per batch.
package recon

import (
	"strings"

	"call-recon-go/internal/keys"
	"call-recon-go/internal/types"
)

// CircularDelta is the distance between two points on a 3600-second
// clock, wrapping at the minute-hour boundary.
func CircularDelta(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 3600-d {
		return 3600 - d
	}
	return d
}

// Candidates returns the billing records whose digit haystack contains
// the recording's phone key as a contiguous substring. A key shorter
// than the configured minimum yields no candidates; time proximity is
// never consulted for it.
func Candidates(phoneKey string, billing []types.BillingRecord, cfg Config) []types.BillingRecord {
	pk := keys.NormalizeDigits(phoneKey)
	if pk == "" || len(pk) < cfg.MinPhoneKeyLen {
		return nil
	}
	var out []types.BillingRecord
	for _, b := range billing {
		if strings.Contains(b.Haystack, pk) {
			out = append(out, b)
		}
	}
	return out
}

// pickBest selects the candidate with the smallest circular delta to
// the recording's clock, within the threshold. Ties keep the earliest
// candidate so repeated runs stay bit-identical.
func pickBest(rec types.RecordingMetadata, cands []types.BillingRecord, cfg Config) (string, int, bool) {
	if rec.MinuteSec == types.NoClock {
		return "", 0, false
	}
	bestID, bestDelta := "", -1
	for _, c := range cands {
		if c.MinuteSec == types.NoClock {
			continue
		}
		delta := CircularDelta(rec.MinuteSec, c.MinuteSec)
		if delta > cfg.MaxDeltaSec {
			continue
		}
		if bestDelta == -1 || delta < bestDelta {
			bestID, bestDelta = c.ID, delta
		}
	}
	if bestDelta == -1 {
		return "", 0, false
	}
	return bestID, bestDelta, true
}

// resolveConflicts enforces the 1:1 mapping: when several recordings
// claim one billing id, the smallest delta wins (earliest recording on
// ties) and every other claim is cleared. Losers are not re-scored
// against their next-best candidate; that is the documented policy,
// not an oversight.
func resolveConflicts(results []types.MatchResult) {
	winner := map[string]int{}
	for i, r := range results {
		if !r.Matched() {
			continue
		}
		w, ok := winner[r.BillingID]
		if !ok || r.DeltaSec < results[w].DeltaSec {
			winner[r.BillingID] = i
		}
	}
	for i := range results {
		if results[i].Matched() && winner[results[i].BillingID] != i {
			results[i].BillingID = ""
			results[i].DeltaSec = 0
		}
	}
}

// Reconcile runs one batch: for every recording it generates candidates
// from the phone key, scores them by clock proximity, then dedups
// collisions across the whole batch. Inputs are not mutated; calling
// twice on the same inputs yields identical output. A recording that
// finds no match is a normal outcome, never an error.
func Reconcile(recordings []types.RecordingMetadata, billing []types.BillingRecord, cfg Config) []types.MatchResult {
	results := make([]types.MatchResult, 0, len(recordings))
	for _, rec := range recordings {
		res := types.MatchResult{Filename: rec.Filename}
		cands := Candidates(rec.PhoneKey, billing, cfg)
		if id, delta, ok := pickBest(rec, cands, cfg); ok {
			res.BillingID = id
			res.DeltaSec = delta
		}
		results = append(results, res)
	}
	resolveConflicts(results)
	return results
}
