package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Logging.Level.IsValid() {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}

	p := cfg.Prosody
	if p.WindowMs <= 0 {
		errs = append(errs, fmt.Errorf("prosody.window_ms: must be positive, got %d", p.WindowMs))
	}
	if p.HopMs <= 0 {
		errs = append(errs, fmt.Errorf("prosody.hop_ms: must be positive, got %d", p.HopMs))
	}
	if p.HopMs > 0 && p.WindowMs > 0 && p.HopMs > p.WindowMs {
		errs = append(errs, fmt.Errorf("prosody.hop_ms: %d exceeds window_ms %d", p.HopMs, p.WindowMs))
	}
	if p.PitchMinHz <= 0 || p.PitchMaxHz <= p.PitchMinHz {
		errs = append(errs, fmt.Errorf("prosody: invalid pitch range %g-%gHz", p.PitchMinHz, p.PitchMaxHz))
	}
	if p.YinThreshold <= 0 || p.YinThreshold >= 1 {
		errs = append(errs, fmt.Errorf("prosody.yin_threshold: %g outside (0, 1)", p.YinThreshold))
	}
	if p.SilenceThresholdDB >= p.WhisperThresholdDB {
		errs = append(errs, fmt.Errorf("prosody: silence threshold %gdB must sit below whisper threshold %gdB",
			p.SilenceThresholdDB, p.WhisperThresholdDB))
	}
	if p.MinPauseMs <= 0 {
		errs = append(errs, fmt.Errorf("prosody.min_pause_ms: must be positive, got %d", p.MinPauseMs))
	}

	switch cfg.Hesitation.LanguagePolicy {
	case "union", "strict":
	default:
		errs = append(errs, fmt.Errorf("hesitation.language_policy: %q is not union or strict", cfg.Hesitation.LanguagePolicy))
	}

	e := cfg.Emotion
	if e.WarnAngryConfidence < 0 || e.WarnAngryConfidence > 1 {
		errs = append(errs, fmt.Errorf("emotion.warn_angry_confidence: %g outside [0, 1]", e.WarnAngryConfidence))
	}
	if e.WarnStressedConfidence < 0 || e.WarnStressedConfidence > 1 {
		errs = append(errs, fmt.Errorf("emotion.warn_stressed_confidence: %g outside [0, 1]", e.WarnStressedConfidence))
	}
	if e.ConfidentEnergyLowDB >= e.ConfidentEnergyHighDB {
		errs = append(errs, fmt.Errorf("emotion: confident energy band %g..%gdB is empty",
			e.ConfidentEnergyLowDB, e.ConfidentEnergyHighDB))
	}

	return errors.Join(errs...)
}
