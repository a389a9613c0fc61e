package types

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// NoClock marks an absent minute-second reading.
const NoClock = -1

// BillingRecord is one row of the telephony provider's call log.
// Haystack and MinuteSec are derived at ingestion (see internal/keys).
type BillingRecord struct {
	ID              string          `json:"id"`
	CallTime        time.Time       `json:"call_time"`
	CallFrom        string          `json:"call_from,omitempty"`
	Direction       string          `json:"direction,omitempty"`
	Status          string          `json:"status,omitempty"`
	Cost            decimal.Decimal `json:"cost"`
	ActivityDetails string          `json:"activity_details,omitempty"`

	Haystack  string `json:"-"`
	MinuteSec int    `json:"-"`
}

// RecordingMetadata holds the facts derivable from one audio file's name,
// plus the transcript filled in by the transcription collaborator.
type RecordingMetadata struct {
	Filename   string `json:"filename"`
	Site       string `json:"site,omitempty"`
	PhoneKey   string `json:"phone_key,omitempty"`
	MinuteSec  int    `json:"minute_sec"`
	Transcript string `json:"transcript,omitempty"`
}

// MatchResult ties one recording to at most one billing record.
// BillingID is empty when the recording found no match; DeltaSec is
// meaningful only when BillingID is set.
type MatchResult struct {
	Filename  string `json:"filename"`
	BillingID string `json:"billing_id,omitempty"`
	DeltaSec  int    `json:"delta_sec,omitempty"`
}

// Matched reports whether the result carries a billing association.
func (m MatchResult) Matched() bool { return m.BillingID != "" }

// MarshalJSON keeps delta_sec on the wire exactly when billing_id is:
// an unmatched result omits both, a matched one carries both, even at
// delta zero.
func (m MatchResult) MarshalJSON() ([]byte, error) {
	type alias MatchResult
	if !m.Matched() {
		return json.Marshal(struct {
			alias
			DeltaSec *int `json:"delta_sec,omitempty"`
		}{alias: alias(m)})
	}
	return json.Marshal(struct {
		alias
		DeltaSec int `json:"delta_sec"`
	}{alias: alias(m), DeltaSec: m.DeltaSec})
}

// EnrichedRecord is a billing row with its resolved recording columns
// joined in. Rows without a recording keep empty recording fields.
type EnrichedRecord struct {
	BillingRecord
	Filename   string `json:"filename,omitempty"`
	Site       string `json:"site,omitempty"`
	PhoneKey   string `json:"phone_key,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	DeltaSec   int    `json:"delta_sec,omitempty"`
}

// MarshalJSON mirrors MatchResult: delta_sec is present exactly when a
// recording is attached.
func (e EnrichedRecord) MarshalJSON() ([]byte, error) {
	type alias EnrichedRecord
	if e.Filename == "" {
		return json.Marshal(struct {
			alias
			DeltaSec *int `json:"delta_sec,omitempty"`
		}{alias: alias(e)})
	}
	return json.Marshal(struct {
		alias
		DeltaSec int `json:"delta_sec"`
	}{alias: alias(e), DeltaSec: e.DeltaSec})
}
