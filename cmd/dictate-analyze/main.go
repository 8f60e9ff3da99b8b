// Command dictate-analyze runs the paralinguistic analysis pipeline over a
// recorded utterance: a WAV file plus its transcript. It prints the combined
// report as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dacasine/Dictate-windows-sub000/internal/analysis"
	"github.com/dacasine/Dictate-windows-sub000/internal/config"
	"github.com/dacasine/Dictate-windows-sub000/internal/observe"
	"github.com/dacasine/Dictate-windows-sub000/pkg/audio"
	"github.com/dacasine/Dictate-windows-sub000/pkg/transcript"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (optional)")
	audioPath := flag.String("audio", "", "path to a 16-bit PCM WAV file (optional)")
	transcriptPath := flag.String("transcript", "", "path to the transcript JSON file")
	language := flag.String("language", "en", "transcript language code (e.g. en, de, fr, es)")
	resampleRate := flag.Int("resample", 0, "resample audio to this rate before analysis (0 = keep)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (optional)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "dictate-analyze: config file %q not found — omit -config to use defaults\n", *configPath)
			} else {
				fmt.Fprintf(os.Stderr, "dictate-analyze: %v\n", err)
			}
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.Level.Slog(),
	}))
	slog.SetDefault(logger)

	if *transcriptPath == "" {
		fmt.Fprintln(os.Stderr, "dictate-analyze: -transcript is required")
		flag.Usage()
		return 2
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics (optional) ────────────────────────────────────────────────────
	if *metricsAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "dictate-analyze"})
		if err != nil {
			slog.Error("failed to initialise metrics provider", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("metrics shutdown error", "err", err)
			}
		}()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "err", err)
			}
		}()
		defer srv.Close()
		slog.Info("serving metrics", "addr", *metricsAddr)
	}

	// ── Inputs ────────────────────────────────────────────────────────────────
	doc, err := loadTranscript(*transcriptPath)
	if err != nil {
		slog.Error("failed to load transcript", "err", err)
		return 1
	}
	lang := doc.Language
	if lang == "" {
		lang = *language
	}

	var buf audio.Buffer
	if *audioPath != "" {
		buf, err = audio.ReadWAVFile(*audioPath)
		if err != nil {
			slog.Error("failed to read audio", "err", err)
			return 1
		}
		if buf.Channels > 1 {
			buf = buf.Downmixed()
		}
		if *resampleRate > 0 && *resampleRate != buf.SampleRate {
			buf = buf.Resampled(*resampleRate)
		}
		slog.Info("audio loaded",
			"path", *audioPath,
			"sample_rate", buf.SampleRate,
			"duration", buf.Duration(),
		)
	}

	// ── Run ───────────────────────────────────────────────────────────────────
	engine := analysis.New(cfg, logger, observe.DefaultMetrics())
	rep, err := engine.Analyze(ctx, buf, doc.Text, doc.segments(), lang)
	if err != nil {
		slog.Error("analysis failed", "err", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		slog.Error("failed to encode report", "err", err)
		return 1
	}
	return 0
}

// transcriptDoc is the on-disk transcript format: full text plus per-segment
// timings in seconds.
type transcriptDoc struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func loadTranscript(path string) (*transcriptDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	var doc transcriptDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	return &doc, nil
}

// segments converts the seconds-based timings into the pipeline's native
// form.
func (d *transcriptDoc) segments() []transcript.Segment {
	segs := make([]transcript.Segment, 0, len(d.Segments))
	for _, s := range d.Segments {
		segs = append(segs, transcript.Segment{
			Text:  s.Text,
			Start: time.Duration(s.Start * float64(time.Second)),
			End:   time.Duration(s.End * float64(time.Second)),
		})
	}
	return segs
}
