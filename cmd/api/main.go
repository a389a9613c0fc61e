package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"call-recon-go/internal/config"
	"call-recon-go/internal/logger"
	"call-recon-go/internal/pipeline"
	"call-recon-go/internal/store"
	"call-recon-go/internal/transcription"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-recon-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			log.WithError(err).Fatal("failed to open store")
		}
		defer st.Close()
		log.WithField("db_path", cfg.DBPath).Info("store opened")
	}

	var tr pipeline.Transcriber
	if os.Getenv("TRANSCRIBE_URL") != "" {
		tr = transcription.GetTranscript
		log.Info("transcription gateway enabled")
	}

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		if st != nil {
			if err := st.Health(r.Context()); err != nil {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		fmt.Fprint(w, "ok")
	})

	// reconcile endpoint: run one cycle over a report + recordings pair
	mux.HandleFunc("/reconcile", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "reconcile")
		reqLog.Info("reconcile request received")

		reportPath := cfg.ReportPath
		if p := r.URL.Query().Get("report"); p != "" {
			reportPath = p
		}
		recordingsPath := cfg.RecordingsPath
		if p := r.URL.Query().Get("recordings"); p != "" {
			recordingsPath = p
		}
		reqLog = reqLog.WithField("report", reportPath).WithField("recordings", recordingsPath)

		res, err := pipeline.Run(r.Context(), reportPath, recordingsPath, cfg.Recon, tr, st)
		if err != nil {
			reqLog.WithError(err).Warn("reconcile failed")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reqLog.WithField("duration_ms", res.DurationMs).Info("reconcile finished")

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			reqLog.WithError(err).Error("failed to write response")
		}
	})

	// summary endpoint: aggregate view only, same cycle recomputed
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "summary")
		res, err := pipeline.Run(r.Context(), cfg.ReportPath, cfg.RecordingsPath, cfg.Recon, nil, nil)
		if err != nil {
			reqLog.WithError(err).Warn("summary failed")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(res.Insight)
	})

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
