// Package analysis wires the individual speech analyzers into a single
// pipeline. The acoustic pass runs first; its result then feeds the
// hesitation, emotion, and formatting stages, which run concurrently since
// none of them mutates shared state.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dacasine/Dictate-windows-sub000/internal/config"
	"github.com/dacasine/Dictate-windows-sub000/internal/emotion"
	"github.com/dacasine/Dictate-windows-sub000/internal/format"
	"github.com/dacasine/Dictate-windows-sub000/internal/hesitation"
	"github.com/dacasine/Dictate-windows-sub000/internal/observe"
	"github.com/dacasine/Dictate-windows-sub000/pkg/audio"
	"github.com/dacasine/Dictate-windows-sub000/pkg/prosody"
	"github.com/dacasine/Dictate-windows-sub000/pkg/transcript"
)

// Report is the combined output of one pipeline run.
type Report struct {
	// Prosody is nil when the acoustic pass could not run (no audio, or an
	// unusable buffer). The remaining fields are still populated from the
	// transcript alone.
	Prosody *prosody.Result `json:"prosody,omitempty"`

	Hesitation hesitation.Result `json:"hesitation"`
	Emotion    emotion.Result    `json:"emotion"`

	// FormattedText is the transcript with emphasis, inferred punctuation,
	// and pause-derived breaks applied.
	FormattedText string `json:"formatted_text"`

	// Summary is a one-line human-readable digest of the run.
	Summary string `json:"summary"`
}

// Engine runs the full analysis pipeline.
type Engine struct {
	log     *slog.Logger
	metrics *observe.Metrics

	prosody    *prosody.Analyzer
	hesitation *hesitation.Analyzer
	emotion    *emotion.Analyzer
	formatter  *format.Formatter
}

// New builds an Engine from cfg. A nil log falls back to [slog.Default], a
// nil metrics to [observe.DefaultMetrics].
func New(cfg *config.Config, log *slog.Logger, metrics *observe.Metrics) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	return &Engine{
		log:     log,
		metrics: metrics,
		prosody: prosody.New(prosody.WithConfig(prosody.Config{
			Window:             time.Duration(cfg.Prosody.WindowMs) * time.Millisecond,
			Hop:                time.Duration(cfg.Prosody.HopMs) * time.Millisecond,
			PitchMinHz:         cfg.Prosody.PitchMinHz,
			PitchMaxHz:         cfg.Prosody.PitchMaxHz,
			YinThreshold:       cfg.Prosody.YinThreshold,
			SilenceThresholdDB: cfg.Prosody.SilenceThresholdDB,
			WhisperThresholdDB: cfg.Prosody.WhisperThresholdDB,
			MinPause:           time.Duration(cfg.Prosody.MinPauseMs) * time.Millisecond,
		})),
		hesitation: hesitation.New(
			hesitation.WithLanguagePolicy(hesitation.LanguagePolicy(cfg.Hesitation.LanguagePolicy)),
			hesitation.WithFuzzyFillers(cfg.Hesitation.FuzzyFillers),
		),
		emotion:   emotion.New(emotion.WithThresholds(thresholdsFromConfig(cfg.Emotion))),
		formatter: format.New(),
	}
}

// Analyze runs the pipeline over one utterance: raw audio, its transcript
// text, and the per-segment timeline.
//
// The acoustic pass is best-effort: an empty or unusable buffer degrades to a
// transcript-only analysis with a nil Report.Prosody. Context cancellation is
// the only error returned.
func (e *Engine) Analyze(ctx context.Context, buf audio.Buffer, text string, segs []transcript.Segment, lang string) (*Report, error) {
	status := "ok"

	pros, err := e.runProsody(ctx, buf)
	if err != nil {
		e.metrics.AnalysisRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		return nil, err
	}
	if pros == nil {
		status = "degraded"
	}

	rep := &Report{Prosody: pros}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		rep.Hesitation = e.hesitation.Analyze(text, segs, pros, lang)
		e.metrics.HesitationDuration.Record(gctx, time.Since(start).Seconds())
		return gctx.Err()
	})
	g.Go(func() error {
		start := time.Now()
		rep.Emotion = e.emotion.Analyze(segs, pros)
		e.metrics.EmotionDuration.Record(gctx, time.Since(start).Seconds())
		return gctx.Err()
	})
	g.Go(func() error {
		start := time.Now()
		rep.FormattedText = e.formatter.Format(text, segs, pros)
		e.metrics.FormatDuration.Record(gctx, time.Since(start).Seconds())
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		e.metrics.AnalysisRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		return nil, fmt.Errorf("analysis: cancelled: %w", err)
	}

	for _, ann := range rep.Hesitation.Annotations {
		e.metrics.AnnotationsEmitted.Add(ctx, 1,
			metric.WithAttributes(attribute.String("type", ann.Type.String())))
	}
	for _, seg := range rep.Emotion.Segments {
		e.metrics.EmotionSegments.Add(ctx, 1,
			metric.WithAttributes(attribute.String("tag", string(seg.Tag))))
	}
	e.metrics.AnalysisRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))

	rep.Summary = summarize(rep)
	e.log.Info("analysis complete",
		"status", status,
		"segments", len(segs),
		"annotations", len(rep.Hesitation.Annotations),
		"dominant_emotion", string(rep.Emotion.Dominant),
	)
	return rep, nil
}

// runProsody performs the acoustic pass. Cancellation propagates as an
// error; every other failure degrades to a nil result so the lexical stages
// can still run.
func (e *Engine) runProsody(ctx context.Context, buf audio.Buffer) (*prosody.Result, error) {
	if len(buf.Data) == 0 {
		e.log.Debug("no audio provided, skipping acoustic analysis")
		return nil, nil
	}

	start := time.Now()
	pros, err := e.prosody.Analyze(ctx, buf)
	e.metrics.ProsodyDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		e.log.Warn("acoustic analysis failed, continuing without prosody", "error", err)
		return nil, nil
	}

	e.metrics.WindowsProcessed.Add(ctx, int64(len(pros.Windows)))
	e.metrics.PausesDetected.Add(ctx, int64(len(pros.Pauses)))
	return pros, nil
}

// summarize builds the one-line digest for a completed report.
func summarize(rep *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fluency %.2f, %d fillers, %d corrections, dominant emotion %s (%.2f)",
		rep.Hesitation.Fluency,
		rep.Hesitation.FillerCount,
		rep.Hesitation.CorrectionCount,
		rep.Emotion.Dominant,
		rep.Emotion.DominantConfidence,
	)
	if rep.Prosody != nil {
		fmt.Fprintf(&b, ", %d pauses", len(rep.Prosody.Pauses))
	}
	if rep.Emotion.Warn {
		b.WriteString("; ")
		b.WriteString(rep.Emotion.WarningMessage)
	}
	return b.String()
}

// thresholdsFromConfig maps the YAML threshold table onto the classifier's
// native form.
func thresholdsFromConfig(c config.EmotionConfig) emotion.Thresholds {
	return emotion.Thresholds{
		AngryEnergyDB:          c.AngryEnergyDB,
		AngryPitchDelta:        c.AngryPitchDelta,
		StressedPitchStd:       c.StressedPitchStd,
		ExcitedEnergyDB:        c.ExcitedEnergyDB,
		ExcitedPitchTrend:      c.ExcitedPitchTrend,
		SadEnergyDB:            c.SadEnergyDB,
		SadPitchTrend:          c.SadPitchTrend,
		UncertainEnergyDB:      c.UncertainEnergyDB,
		UncertainPitchStd:      c.UncertainPitchStd,
		ConfidentEnergyLowDB:   c.ConfidentEnergyLowDB,
		ConfidentEnergyHighDB:  c.ConfidentEnergyHighDB,
		ConfidentPitchStd:      c.ConfidentPitchStd,
		CalmPitchStd:           c.CalmPitchStd,
		WarnAngryConfidence:    c.WarnAngryConfidence,
		WarnStressedConfidence: c.WarnStressedConfidence,
	}
}
