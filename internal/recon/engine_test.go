package recon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-recon-go/internal/keys"
	"call-recon-go/internal/types"
)

func billingRow(id, callFrom, details string, hour, min, sec int) types.BillingRecord {
	b := types.BillingRecord{
		ID:              id,
		CallTime:        time.Date(2025, 8, 14, hour, min, sec, 0, time.UTC),
		CallFrom:        callFrom,
		ActivityDetails: details,
	}
	keys.DeriveBilling(&b)
	return b
}

func recording(filename string) types.RecordingMetadata {
	return keys.ParseRecording(filename, nil)
}

func TestCircularDelta(t *testing.T) {
	assert.Equal(t, 0, CircularDelta(930, 930))
	assert.Equal(t, 12, CircularDelta(930, 942))
	assert.Equal(t, 12, CircularDelta(942, 930))
	// wraparound: 59:58 vs 00:05
	assert.Equal(t, 7, CircularDelta(3598, 5))
	assert.Equal(t, 7, CircularDelta(5, 3598))
	assert.Equal(t, 1800, CircularDelta(0, 1800))
}

func TestCandidates(t *testing.T) {
	cfg := DefaultConfig()
	billing := []types.BillingRecord{
		billingRow("1", "07551234567", "", 9, 0, 0),
		billingRow("2", "07999999999", "note mentions 1234567 inside a longer run", 9, 0, 0),
		billingRow("3", "07000000000", "", 9, 0, 0),
	}

	got := Candidates("1234567", billing, cfg)
	require.Len(t, got, 2, "substring containment, not token match")
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	t.Run("key below minimum yields nothing", func(t *testing.T) {
		assert.Empty(t, Candidates("1234", billing, cfg))
	})

	t.Run("absent key yields nothing", func(t *testing.T) {
		assert.Empty(t, Candidates("", billing, cfg))
	})

	t.Run("key is digit-normalized before use", func(t *testing.T) {
		assert.Len(t, Candidates("123-4567", billing, cfg), 2)
	})
}

func TestReconcileDirectMatch(t *testing.T) {
	// billing 09:15:42 vs recording clock 09:15:30 -> delta 12s
	billing := []types.BillingRecord{billingRow("500", "07551234567", "", 9, 15, 42)}
	recs := []types.RecordingMetadata{recording("store-5551234567_20250814091530.wav")}

	out := Reconcile(recs, billing, DefaultConfig())
	require.Len(t, out, 1)
	assert.Equal(t, "500", out[0].BillingID)
	assert.Equal(t, 12, out[0].DeltaSec)
}

func TestReconcileCollisionKeepsSmallestDelta(t *testing.T) {
	billing := []types.BillingRecord{billingRow("700", "07551234567", "", 9, 15, 0)}
	recs := []types.RecordingMetadata{
		recording("y-5551234567_20250814091540.wav"), // delta 40
		recording("x-5551234567_20250814091505.wav"), // delta 5
	}

	out := Reconcile(recs, billing, DefaultConfig())
	require.Len(t, out, 2)
	assert.False(t, out[0].Matched(), "larger delta loses its claim")
	assert.Equal(t, 0, out[0].DeltaSec)
	assert.Equal(t, "700", out[1].BillingID)
	assert.Equal(t, 5, out[1].DeltaSec)
}

func TestReconcileCollisionTieKeepsFirstRecording(t *testing.T) {
	billing := []types.BillingRecord{billingRow("700", "07551234567", "", 9, 15, 10)}
	recs := []types.RecordingMetadata{
		recording("a-5551234567_20250814091505.wav"), // delta 5
		recording("b-5551234567_20250814091515.wav"), // delta 5
	}

	out := Reconcile(recs, billing, DefaultConfig())
	assert.Equal(t, "700", out[0].BillingID)
	assert.False(t, out[1].Matched())
}

func TestReconcileWraparound(t *testing.T) {
	// recording 59:58, billing 00:05 -> circular delta 7
	billing := []types.BillingRecord{billingRow("42", "07551234567", "", 10, 0, 5)}
	recs := []types.RecordingMetadata{recording("x-5551234567_20250814095958.wav")}

	out := Reconcile(recs, billing, DefaultConfig())
	require.True(t, out[0].Matched())
	assert.Equal(t, 7, out[0].DeltaSec)
}

func TestReconcileShortKeyNeverMatches(t *testing.T) {
	// time proximity would be perfect, but the key is 4 digits
	billing := []types.BillingRecord{billingRow("1", "1234", "", 9, 15, 30)}
	recs := []types.RecordingMetadata{recording("x-1234_20250814091530.wav")}

	out := Reconcile(recs, billing, DefaultConfig())
	assert.False(t, out[0].Matched())
}

func TestReconcileThresholdBoundary(t *testing.T) {
	cfg := DefaultConfig()
	recs := []types.RecordingMetadata{recording("x-5551234567_20250814091500.wav")}

	at := []types.BillingRecord{billingRow("1", "07551234567", "", 9, 16, 0)} // delta 60
	out := Reconcile(recs, at, cfg)
	assert.True(t, out[0].Matched(), "delta of exactly 60 is within threshold")

	over := []types.BillingRecord{billingRow("1", "07551234567", "", 9, 16, 1)} // delta 61
	out = Reconcile(recs, over, cfg)
	assert.False(t, out[0].Matched())
}

func TestReconcileMissingClock(t *testing.T) {
	billing := []types.BillingRecord{billingRow("1", "07551234567", "", 9, 15, 30)}
	recs := []types.RecordingMetadata{recording("x-5551234567.wav")}

	out := Reconcile(recs, billing, DefaultConfig())
	assert.False(t, out[0].Matched(), "no clock means no time score, not an error")
}

func TestReconcileProximityTieKeepsEarliestBillingRow(t *testing.T) {
	billing := []types.BillingRecord{
		billingRow("200", "07551234567", "", 9, 15, 25), // delta 5
		billingRow("100", "07551234567", "", 9, 15, 35), // delta 5
	}
	recs := []types.RecordingMetadata{recording("x-5551234567_20250814091530.wav")}

	out := Reconcile(recs, billing, DefaultConfig())
	assert.Equal(t, "200", out[0].BillingID)
}

func TestReconcileMatchesComeFromCandidateSet(t *testing.T) {
	cfg := DefaultConfig()
	billing := []types.BillingRecord{
		billingRow("1", "07551234567", "", 9, 15, 30),
		billingRow("2", "07990000000", "", 9, 15, 30), // perfect time, wrong number
	}
	recs := []types.RecordingMetadata{recording("x-5551234567_20250814091530.wav")}

	out := Reconcile(recs, billing, cfg)
	require.True(t, out[0].Matched())

	cands := Candidates(recs[0].PhoneKey, billing, cfg)
	ids := map[string]bool{}
	for _, c := range cands {
		ids[c.ID] = true
	}
	assert.True(t, ids[out[0].BillingID], "never selected on time alone")
	assert.LessOrEqual(t, out[0].DeltaSec, cfg.MaxDeltaSec)
}

func TestReconcileDeterministic(t *testing.T) {
	billing := []types.BillingRecord{
		billingRow("10", "07551234567", "", 9, 15, 42),
		billingRow("11", "07551234567", "", 9, 15, 20),
		billingRow("12", "07887654321", "", 9, 44, 2),
	}
	recs := []types.RecordingMetadata{
		recording("a-5551234567_20250814091530.wav"),
		recording("b-5551234567_20250814091525.wav"),
		recording("c-7654321_20250814094400.wav"),
		recording("d-12_20250814094400.wav"),
	}
	cfg := DefaultConfig()

	first := Reconcile(recs, billing, cfg)
	second := Reconcile(recs, billing, cfg)
	require.Equal(t, first, second)

	t.Run("no two recordings share a billing id", func(t *testing.T) {
		seen := map[string]string{}
		for _, m := range first {
			if !m.Matched() {
				continue
			}
			prev, dup := seen[m.BillingID]
			assert.False(t, dup, "billing id %s claimed by %s and %s", m.BillingID, prev, m.Filename)
			seen[m.BillingID] = m.Filename
		}
	})
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MinPhoneKeyLen = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.MaxDeltaSec = 1800
	assert.Error(t, bad.Validate())
}
