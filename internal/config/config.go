// Package config provides the configuration schema and loader for the
// speech-analysis pipeline. Every tunable threshold of the prosody,
// hesitation, and emotion analyzers is exposed here so deployments can
// adjust behaviour without a code change.
package config

import "log/slog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l onto the corresponding slog level. Unrecognised levels map to
// Info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure, typically loaded from a YAML
// file via [Load].
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Prosody    ProsodyConfig    `yaml:"prosody"`
	Hesitation HesitationConfig `yaml:"hesitation"`
	Emotion    EmotionConfig    `yaml:"emotion"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level LogLevel `yaml:"level"`
}

// ProsodyConfig holds the acoustic analysis parameters.
type ProsodyConfig struct {
	// WindowMs and HopMs set the analysis window duration and stride in
	// milliseconds. HopMs must not exceed WindowMs.
	WindowMs int `yaml:"window_ms"`
	HopMs    int `yaml:"hop_ms"`

	// PitchMinHz and PitchMaxHz bound the speech pitch search range.
	PitchMinHz float64 `yaml:"pitch_min_hz"`
	PitchMaxHz float64 `yaml:"pitch_max_hz"`

	// YinThreshold is the CMND dip acceptance threshold.
	YinThreshold float64 `yaml:"yin_threshold"`

	// SilenceThresholdDB and WhisperThresholdDB classify window loudness.
	// Silence must sit below whisper.
	SilenceThresholdDB float64 `yaml:"silence_threshold_db"`
	WhisperThresholdDB float64 `yaml:"whisper_threshold_db"`

	// MinPauseMs is the minimum silent-run span reported as a pause.
	MinPauseMs int `yaml:"min_pause_ms"`
}

// HesitationConfig holds the lexical analysis policies.
type HesitationConfig struct {
	// LanguagePolicy selects lexicon scope: "union" searches all supported
	// languages (tolerant of language switches, occasional cross-language
	// false positives), "strict" only the detected language's lexicon.
	LanguagePolicy string `yaml:"language_policy"`

	// FuzzyFillers enables tolerant filler matching ("umm" for "um") at
	// reduced confidence.
	FuzzyFillers bool `yaml:"fuzzy_fillers"`
}

// EmotionConfig mirrors the emotion classifier's threshold table. See the
// emotion package for field semantics.
type EmotionConfig struct {
	AngryEnergyDB          float64 `yaml:"angry_energy_db"`
	AngryPitchDelta        float64 `yaml:"angry_pitch_delta"`
	StressedPitchStd       float64 `yaml:"stressed_pitch_std"`
	ExcitedEnergyDB        float64 `yaml:"excited_energy_db"`
	ExcitedPitchTrend      float64 `yaml:"excited_pitch_trend"`
	SadEnergyDB            float64 `yaml:"sad_energy_db"`
	SadPitchTrend          float64 `yaml:"sad_pitch_trend"`
	UncertainEnergyDB      float64 `yaml:"uncertain_energy_db"`
	UncertainPitchStd      float64 `yaml:"uncertain_pitch_std"`
	ConfidentEnergyLowDB   float64 `yaml:"confident_energy_low_db"`
	ConfidentEnergyHighDB  float64 `yaml:"confident_energy_high_db"`
	ConfidentPitchStd      float64 `yaml:"confident_pitch_std"`
	CalmPitchStd           float64 `yaml:"calm_pitch_std"`
	WarnAngryConfidence    float64 `yaml:"warn_angry_confidence"`
	WarnStressedConfidence float64 `yaml:"warn_stressed_confidence"`
}

// Default returns the full default configuration. [Load] decodes user YAML
// over this baseline, so omitted fields keep their defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: LogInfo},
		Prosody: ProsodyConfig{
			WindowMs:           50,
			HopMs:              25,
			PitchMinHz:         60,
			PitchMaxHz:         500,
			YinThreshold:       0.15,
			SilenceThresholdDB: -40,
			WhisperThresholdDB: -28,
			MinPauseMs:         200,
		},
		Hesitation: HesitationConfig{
			LanguagePolicy: "union",
			FuzzyFillers:   false,
		},
		Emotion: EmotionConfig{
			AngryEnergyDB:          4,
			AngryPitchDelta:        0.20,
			StressedPitchStd:       0.25,
			ExcitedEnergyDB:        4,
			ExcitedPitchTrend:      0.1,
			SadEnergyDB:            -8,
			SadPitchTrend:          -0.05,
			UncertainEnergyDB:      -4,
			UncertainPitchStd:      0.16,
			ConfidentEnergyLowDB:   -2,
			ConfidentEnergyHighDB:  4,
			ConfidentPitchStd:      0.08,
			CalmPitchStd:           0.12,
			WarnAngryConfidence:    0.6,
			WarnStressedConfidence: 0.7,
		},
	}
}
