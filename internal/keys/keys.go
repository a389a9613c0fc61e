// Package keys derives matching keys from recording filenames and
// billing free-text fields. Everything here is best-effort: a filename
// that encodes no usable key simply yields absent fields.
package keys

import (
	"regexp"
	"strconv"
	"strings"

	"call-recon-go/internal/types"
)

var (
	nonDigitRe = regexp.MustCompile(`\D+`)
	phoneKeyRe = regexp.MustCompile(`-(\d+)_`)
	clockRe    = regexp.MustCompile(`_(\d+)`)
)

// NormalizeDigits strips everything but decimal digits.
func NormalizeDigits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// ExtractPhoneKey pulls the digit run delimited by "-" and "_" out of a
// recording filename. Runs of 7+ digits are trimmed to their last 7 so
// national and local dialing prefixes collapse to the same key. Returns
// "" when the filename carries no such run.
func ExtractPhoneKey(name string) string {
	m := phoneKeyRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	num := m[1]
	if len(num) >= 7 {
		return num[len(num)-7:]
	}
	return num
}

// ExtractClock reads the minute and second out of the 14-digit
// YYYYMMDDHHMMSS token embedded in a recording filename. Only offsets
// 10-13 are trusted; the recorder's date and hour drift against the
// billing clock, the position within the minute does not.
func ExtractClock(name string) (minute, second int, ok bool) {
	// A run of any length other than 14 is not a timestamp token.
	var ts string
	for _, m := range clockRe.FindAllStringSubmatch(name, -1) {
		if len(m[1]) == 14 {
			ts = m[1]
			break
		}
	}
	if ts == "" {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(ts[10:12])
	if err != nil {
		return 0, 0, false
	}
	second, err = strconv.Atoi(ts[12:14])
	if err != nil {
		return 0, 0, false
	}
	// keep the derived reading on the 0-3599 clock
	if minute > 59 || second > 59 {
		return 0, 0, false
	}
	return minute, second, true
}

// ContainsNormalized reports whether needle occurs in hay, ignoring case
// and whitespace on both sides.
func ContainsNormalized(hay, needle string) bool {
	n := strings.ReplaceAll(strings.ToLower(needle), " ", "")
	if n == "" {
		return false
	}
	h := strings.ReplaceAll(strings.ToLower(hay), " ", "")
	return strings.Contains(h, n)
}

// ExtractSite returns the first known site name found in the filename,
// or "" when none matches.
func ExtractSite(name string, sites []string) string {
	for _, s := range sites {
		if ContainsNormalized(name, s) {
			return s
		}
	}
	return ""
}

// ParseRecording builds recording metadata purely from a filename.
func ParseRecording(filename string, sites []string) types.RecordingMetadata {
	rec := types.RecordingMetadata{
		Filename:  filename,
		Site:      ExtractSite(filename, sites),
		PhoneKey:  ExtractPhoneKey(filename),
		MinuteSec: types.NoClock,
	}
	if min, sec, ok := ExtractClock(filename); ok {
		rec.MinuteSec = min*60 + sec
	}
	return rec
}

// DeriveBilling fills the derived matching fields on a billing record:
// the digits-only haystack over its free-text fields and the
// minute-second position of its call time.
func DeriveBilling(b *types.BillingRecord) {
	b.Haystack = NormalizeDigits(b.CallFrom + " | " + b.ActivityDetails)
	if b.CallTime.IsZero() {
		b.MinuteSec = types.NoClock
		return
	}
	b.MinuteSec = b.CallTime.Minute()*60 + b.CallTime.Second()
}
