// Package pipeline runs one reconciliation cycle end to end: ingest
// both datasets, transcribe, match, attach, persist, aggregate. Each
// cycle is self-contained; independent cycles may run in parallel.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"call-recon-go/internal/archive"
	"call-recon-go/internal/dataset"
	"call-recon-go/internal/logger"
	"call-recon-go/internal/recon"
	"call-recon-go/internal/report"
	"call-recon-go/internal/store"
	"call-recon-go/internal/types"
)

// Transcriber exchanges an audio reference for transcript text. It is
// the seam for the external transcription gateway; transcripts are
// opaque to matching.
type Transcriber func(ctx context.Context, audioURL string) (string, error)

type Result struct {
	Matches    []types.MatchResult    `json:"matches"`
	Enriched   []types.EnrichedRecord `json:"enriched"`
	Insight    report.Insight         `json:"insight"`
	DurationMs int64                  `json:"duration_ms"`
}

// Run executes one cycle over a (billing export, recordings archive)
// pair. The transcriber and store are both optional: without a
// transcriber the transcript columns stay empty, without a store the
// resolved mapping is not written through as recording foreign keys.
func Run(ctx context.Context, reportPath, recordingsPath string, cfg recon.Config, tr Transcriber, st *store.Store) (Result, error) {
	start := time.Now()

	billing, err := dataset.Load(reportPath)
	if err != nil {
		return Result{}, fmt.Errorf("load billing export: %w", err)
	}
	recordings, err := archive.LoadRecordings(recordingsPath, cfg.Sites)
	if err != nil {
		return Result{}, fmt.Errorf("load recordings: %w", err)
	}
	log := logger.New().WithBatch(len(recordings), len(billing)).WithField("component", "pipeline")
	log.Info("batch loaded")

	if tr != nil {
		for i := range recordings {
			text, err := tr(ctx, recordings[i].Filename)
			if err != nil {
				// one bad audio file never fails the batch
				log.WithField("filename", recordings[i].Filename).WithError(err).Warn("transcription failed")
				continue
			}
			recordings[i].Transcript = text
		}
	}

	matches := recon.Reconcile(recordings, billing, cfg)

	matched := 0
	for _, m := range matches {
		if m.Matched() {
			matched++
		}
	}
	log.WithField("matched", matched).WithField("unmatched", len(matches)-matched).Info("reconciliation complete")

	enriched := report.Attach(billing, recordings, matches)
	report.ImputeSites(enriched, cfg.Sites, cfg.FallbackSite)

	if st != nil {
		if err := st.SaveRecordings(ctx, recordings); err != nil {
			return Result{}, fmt.Errorf("persist recordings: %w", err)
		}
		for _, r := range recordings {
			if r.Transcript == "" {
				continue
			}
			if err := st.SetTranscript(ctx, r.Filename, r.Transcript); err != nil {
				return Result{}, fmt.Errorf("persist transcript %s: %w", r.Filename, err)
			}
		}
		if err := st.ApplyMatches(ctx, matches); err != nil {
			return Result{}, fmt.Errorf("persist matches: %w", err)
		}
	}

	return Result{
		Matches:    matches,
		Enriched:   enriched,
		Insight:    report.Aggregate(enriched),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
