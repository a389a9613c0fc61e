// Package transcription is the client for the external transcription
// gateway. The reconciliation engine never depends on it; transcripts
// are opaque pass-through data.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"call-recon-go/internal/logger"
)

var httpClient = &http.Client{
	Timeout: 12 * time.Second,
}

type transcribeRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcribeResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	Reason string `json:"reason,omitempty"`
}

// GetTranscript exchanges an audio reference for its transcript text,
// retrying transient gateway failures with exponential backoff.
func GetTranscript(ctx context.Context, audioURL string) (string, error) {
	log := logger.New().WithField("module", "transcription").WithField("audio_url", audioURL)

	gateway := os.Getenv("TRANSCRIBE_URL")
	if gateway == "" {
		return "", errors.New("TRANSCRIBE_URL not set")
	}

	body, _ := json.Marshal(transcribeRequest{AudioURL: audioURL})

	var text string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, gateway, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if key := os.Getenv("TRANSCRIBE_API_KEY"); key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 500 {
			return fmt.Errorf("gateway error %d: %s", resp.StatusCode, raw)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("gateway rejected request %d: %s", resp.StatusCode, raw))
		}

		var parsed transcribeResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("unexpected gateway response: %s", raw))
		}
		if parsed.Status != "" && parsed.Status != "Success" {
			return fmt.Errorf("transcription not ready: %s %s", parsed.Status, parsed.Reason)
		}
		text = parsed.Text
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		log.WithError(err).Warn("transcription failed")
		return "", fmt.Errorf("transcribe %s: %w", audioURL, err)
	}
	return text, nil
}
