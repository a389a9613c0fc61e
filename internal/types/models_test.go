package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchResultJSON(t *testing.T) {
	t.Run("matched carries delta even at zero", func(t *testing.T) {
		raw, err := json.Marshal(MatchResult{Filename: "a.wav", BillingID: "500"})
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "500", got["billing_id"])
		assert.Contains(t, got, "delta_sec")
		assert.EqualValues(t, 0, got["delta_sec"])
	})

	t.Run("unmatched omits both", func(t *testing.T) {
		raw, err := json.Marshal(MatchResult{Filename: "a.wav"})
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.NotContains(t, got, "billing_id")
		assert.NotContains(t, got, "delta_sec")
	})
}

func TestEnrichedRecordJSON(t *testing.T) {
	t.Run("attached row carries delta even at zero", func(t *testing.T) {
		row := EnrichedRecord{
			BillingRecord: BillingRecord{ID: "500"},
			Filename:      "a.wav",
		}
		raw, err := json.Marshal(row)
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "a.wav", got["filename"])
		assert.Contains(t, got, "delta_sec")
	})

	t.Run("bare billing row omits delta", func(t *testing.T) {
		raw, err := json.Marshal(EnrichedRecord{BillingRecord: BillingRecord{ID: "501"}})
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.NotContains(t, got, "filename")
		assert.NotContains(t, got, "delta_sec")
	})
}
