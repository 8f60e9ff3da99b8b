package emotion

// Thresholds holds every decision constant of the classifier. The defaults
// are heuristic and deliberately exposed as configuration rather than
// hard-coded at the call sites, so deployments can tune them without a code
// change.
type Thresholds struct {
	// Angry: energy delta above AngryEnergyDB and pitch delta above
	// AngryPitchDelta.
	AngryEnergyDB   float64 `yaml:"angry_energy_db"`
	AngryPitchDelta float64 `yaml:"angry_pitch_delta"`

	// Stressed: pitch-delta standard deviation above StressedPitchStd with
	// positive energy delta.
	StressedPitchStd float64 `yaml:"stressed_pitch_std"`

	// Excited: energy delta above ExcitedEnergyDB and pitch trend above
	// ExcitedPitchTrend.
	ExcitedEnergyDB   float64 `yaml:"excited_energy_db"`
	ExcitedPitchTrend float64 `yaml:"excited_pitch_trend"`

	// Sad: energy delta below SadEnergyDB and pitch trend below SadPitchTrend.
	SadEnergyDB   float64 `yaml:"sad_energy_db"`
	SadPitchTrend float64 `yaml:"sad_pitch_trend"`

	// Uncertain: energy delta below UncertainEnergyDB and pitch-delta
	// standard deviation above UncertainPitchStd.
	UncertainEnergyDB float64 `yaml:"uncertain_energy_db"`
	UncertainPitchStd float64 `yaml:"uncertain_pitch_std"`

	// Confident: energy delta inside (ConfidentEnergyLowDB,
	// ConfidentEnergyHighDB) and pitch-delta standard deviation below
	// ConfidentPitchStd.
	ConfidentEnergyLowDB  float64 `yaml:"confident_energy_low_db"`
	ConfidentEnergyHighDB float64 `yaml:"confident_energy_high_db"`
	ConfidentPitchStd     float64 `yaml:"confident_pitch_std"`

	// Calm: negative energy delta and pitch-delta standard deviation below
	// CalmPitchStd.
	CalmPitchStd float64 `yaml:"calm_pitch_std"`

	// WarnAngryConfidence and WarnStressedConfidence gate the session
	// warning flag on the dominant emotion's confidence.
	WarnAngryConfidence    float64 `yaml:"warn_angry_confidence"`
	WarnStressedConfidence float64 `yaml:"warn_stressed_confidence"`
}

// DefaultThresholds returns the standard decision constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
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
	}
}

// features summarises the non-silent prosody windows overlapping one
// transcript segment.
type features struct {
	energyDelta float64 // mean energy delta, dB
	pitchDelta  float64 // mean pitch delta
	pitchStd    float64 // pitch-delta standard deviation
	pitchTrend  float64 // second-half mean minus first-half mean pitch delta
}

// rule is one (predicate, tag, confidence) entry of the ordered decision
// list. Rules are evaluated in sequence and the first match wins.
type rule struct {
	tag        Tag
	match      func(f features) bool
	confidence func(f features) float64
}

// rules materialises the ordered decision list for the thresholds.
func (t Thresholds) rules() []rule {
	return []rule{
		{
			tag:   Angry,
			match: func(f features) bool { return f.energyDelta > t.AngryEnergyDB && f.pitchDelta > t.AngryPitchDelta },
			confidence: func(f features) float64 {
				return clamp((f.energyDelta/10+f.pitchDelta)*0.8, 0.4, 0.95)
			},
		},
		{
			tag:   Stressed,
			match: func(f features) bool { return f.pitchStd > t.StressedPitchStd && f.energyDelta > 0 },
			confidence: func(f features) float64 {
				return clamp(f.pitchStd*2, 0.4, 0.9)
			},
		},
		{
			tag:   Excited,
			match: func(f features) bool { return f.energyDelta > t.ExcitedEnergyDB && f.pitchTrend > t.ExcitedPitchTrend },
			confidence: func(f features) float64 {
				return clamp((f.energyDelta/8+f.pitchTrend)*0.7, 0.4, 0.9)
			},
		},
		{
			tag:   Sad,
			match: func(f features) bool { return f.energyDelta < t.SadEnergyDB && f.pitchTrend < t.SadPitchTrend },
			confidence: func(f features) float64 {
				return clamp((abs(f.energyDelta)/12)*0.8, 0.35, 0.85)
			},
		},
		{
			tag:   Uncertain,
			match: func(f features) bool { return f.energyDelta < t.UncertainEnergyDB && f.pitchStd > t.UncertainPitchStd },
			confidence: func(f features) float64 {
				return clamp((abs(f.energyDelta)/8+f.pitchStd)*0.6, 0.35, 0.85)
			},
		},
		{
			tag: Confident,
			match: func(f features) bool {
				return f.energyDelta > t.ConfidentEnergyLowDB &&
					f.energyDelta < t.ConfidentEnergyHighDB &&
					f.pitchStd < t.ConfidentPitchStd
			},
			confidence: func(f features) float64 {
				return clamp((1-f.pitchStd/t.ConfidentPitchStd)*0.7, 0.4, 0.85)
			},
		},
		{
			tag:        Calm,
			match:      func(f features) bool { return f.energyDelta < 0 && f.pitchStd < t.CalmPitchStd },
			confidence: func(features) float64 { return 0.5 },
		},
	}
}
