// Package hesitation detects fluency events in a transcribed utterance:
// filler words, self-corrections, uncertainty, fatigue, and topic changes.
//
// Detection is lexical first (multilingual filler and correction-marker
// tables) with acoustic-confidence fusion where a prosody result is
// available: low-energy stretches boost uncertainty confidence, and pitch or
// energy shifts between segments signal topic changes. The analyzer is a
// best-effort enricher — absent transcript text yields a perfect fluency
// score and no annotations, never an error.
package hesitation

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/dacasine/Dictate-windows-sub000/pkg/prosody"
	"github.com/dacasine/Dictate-windows-sub000/pkg/transcript"
)

// Type identifies the kind of hesitation event an [Annotation] records.
type Type int

const (
	// TypeFiller marks a lexical hesitation token ("um", "euh").
	TypeFiller Type = iota

	// TypeSelfCorrection marks a phrase introducing a restatement.
	TypeSelfCorrection

	// TypeUncertainty marks a stretch with high filler density.
	TypeUncertainty

	// TypeFatigue marks a significant speech-rate drop across the session.
	TypeFatigue

	// TypeTopicChange marks a prosodic shift between adjacent segments.
	TypeTopicChange
)

// String returns the lowercase event name.
func (t Type) String() string {
	switch t {
	case TypeFiller:
		return "filler"
	case TypeSelfCorrection:
		return "self-correction"
	case TypeUncertainty:
		return "uncertainty"
	case TypeFatigue:
		return "fatigue"
	case TypeTopicChange:
		return "topic-change"
	}
	return "unknown"
}

// MarshalText renders the event name, so annotations serialise readably in
// JSON reports.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Annotation is one detected hesitation event.
type Annotation struct {
	Type Type

	// Start and End locate the event on the utterance timeline. For events
	// without exact word timings the span is estimated by linear mapping of
	// the token position onto the overall transcript span.
	Start time.Duration
	End   time.Duration

	// Text is the source text that triggered the event.
	Text string

	// Suggestion is an optional human-readable hint (e.g., the restated
	// phrase after a self-correction marker). Empty when not applicable.
	Suggestion string

	// Confidence in [0, 1].
	Confidence float64
}

// Result is the complete hesitation profile of one utterance. Immutable once
// returned.
type Result struct {
	// Annotations is ordered by start time.
	Annotations []Annotation

	// Fluency scores overall delivery in [0, 1]; 1 means no hesitation
	// events at all.
	Fluency float64

	// FatigueLevel in [0, 1]; 0 unless a fatigue event was detected.
	FatigueLevel float64

	FillerCount     int
	CorrectionCount int
}

// LanguagePolicy selects which lexicons participate in filler detection.
type LanguagePolicy string

const (
	// PolicyUnion searches the union of all supported languages' lexicons.
	// Tolerant of mid-utterance language switches at the cost of occasional
	// cross-language false positives.
	PolicyUnion LanguagePolicy = "union"

	// PolicyStrict searches only the resolved language's lexicon, falling
	// back to the union when the language is unknown.
	PolicyStrict LanguagePolicy = "strict"
)

// IsValid reports whether p is a recognised policy.
func (p LanguagePolicy) IsValid() bool {
	return p == PolicyUnion || p == PolicyStrict
}

const (
	fillerConfidence     = 0.9
	fuzzyConfidence      = 0.7
	correctionConfidence = 0.7
	suggestionMaxChars   = 60
	fuzzySimilarity      = 0.9
	fuzzyMinRunes        = 3
)

// Option is a functional option for configuring an [Analyzer].
type Option func(*Analyzer)

// WithLanguagePolicy sets the lexicon selection policy. Default: [PolicyUnion].
func WithLanguagePolicy(p LanguagePolicy) Option {
	return func(a *Analyzer) { a.policy = p }
}

// WithFuzzyFillers enables tolerant filler matching: tokens within a
// Jaro-Winkler similarity of 0.9 to a lexicon entry ("umm" for "um") are
// counted at reduced confidence. Default: off, for exact lexical matching.
func WithFuzzyFillers(enabled bool) Option {
	return func(a *Analyzer) { a.fuzzy = enabled }
}

// Analyzer detects hesitation events. Stateless and safe for concurrent use.
type Analyzer struct {
	policy LanguagePolicy
	fuzzy  bool
}

// New returns an [Analyzer] configured with the supplied options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{policy: PolicyUnion}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze produces the hesitation profile for an utterance.
//
// segs may be nil (event times degrade to zero spans) and pros may be nil
// (acoustic confidence fusion and topic-change detection are skipped).
// lang is an optional detected language code ("en-US", "de"); unrecognised
// codes fall back to the union of all supported lexicons.
func (a *Analyzer) Analyze(text string, segs []transcript.Segment, pros *prosody.Result, lang string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Fluency: 1}
	}

	fillers, markers := a.lexicons(lang)
	m := tokenMatcher{set: fillers, fuzzy: a.fuzzy}

	var anns []Annotation

	fillerAnns := a.detectFillers(text, segs, m)
	anns = append(anns, fillerAnns...)

	corrections := a.detectCorrections(text, segs, markers)
	anns = append(anns, corrections...)

	uncertainty := a.detectUncertainty(segs, pros, m)
	anns = append(anns, uncertainty...)

	fatigueAnn, fatigueLevel := detectFatigue(segs)
	if fatigueAnn != nil {
		anns = append(anns, *fatigueAnn)
	}

	anns = append(anns, detectTopicChanges(segs, pros)...)

	sort.SliceStable(anns, func(i, j int) bool { return anns[i].Start < anns[j].Start })

	fluency := 1.0 -
		minf(0.5, float64(len(fillerAnns))*0.05) -
		minf(0.3, float64(len(corrections))*0.08) -
		minf(0.2, float64(len(uncertainty))*0.1)

	return Result{
		Annotations:     anns,
		Fluency:         clamp(fluency, 0, 1),
		FatigueLevel:    fatigueLevel,
		FillerCount:     len(fillerAnns),
		CorrectionCount: len(corrections),
	}
}

// lexicons resolves the filler and correction-marker sets for a detected
// language code according to the configured policy.
func (a *Analyzer) lexicons(lang string) (fillers, markers lexiconSet) {
	base := baseLang(lang)
	_, known := fillerLexicons[base]
	if a.policy == PolicyStrict && known {
		return buildSet(fillerLexicons, []string{base}), buildSet(correctionMarkers, []string{base})
	}
	return buildSet(fillerLexicons, supportedLanguages), buildSet(correctionMarkers, supportedLanguages)
}

// tokenMatcher tests normalised tokens against a filler set, optionally with
// fuzzy tolerance.
type tokenMatcher struct {
	set   lexiconSet
	fuzzy bool
}

// match reports whether tok is a filler and the confidence of the match.
func (m tokenMatcher) match(tok string) (bool, float64) {
	if tok == "" {
		return false, 0
	}
	if m.set.contains(tok) {
		return true, fillerConfidence
	}
	if !m.fuzzy || len([]rune(tok)) < fuzzyMinRunes {
		return false, 0
	}
	for entry := range m.set {
		if len([]rune(entry)) < fuzzyMinRunes-1 {
			continue
		}
		if matchr.JaroWinkler(tok, entry, false) >= fuzzySimilarity {
			return true, fuzzyConfidence
		}
	}
	return false, 0
}

// normalizeToken lowercases a token and strips surrounding punctuation.
func normalizeToken(tok string) string {
	return strings.TrimFunc(strings.ToLower(tok), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// detectFillers scans whitespace-split tokens for unigram and adjacent-bigram
// lexicon hits. Event times are estimated by linearly mapping the token
// position onto the overall transcript span.
func (a *Analyzer) detectFillers(text string, segs []transcript.Segment, m tokenMatcher) []Annotation {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}
	norm := make([]string, len(tokens))
	for i, tok := range tokens {
		norm[i] = normalizeToken(tok)
	}

	spanStart, spanEnd := transcript.Span(segs)
	wordDur := time.Duration(0)
	if spanEnd > spanStart {
		wordDur = (spanEnd - spanStart) / time.Duration(len(tokens))
	}
	at := func(i, words int) (time.Duration, time.Duration) {
		start := spanStart + time.Duration(i)*wordDur
		return start, start + time.Duration(words)*wordDur
	}

	var anns []Annotation
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			bigram := norm[i] + " " + norm[i+1]
			if m.set.contains(bigram) {
				start, end := at(i, 2)
				anns = append(anns, Annotation{
					Type: TypeFiller, Start: start, End: end,
					Text:       tokens[i] + " " + tokens[i+1],
					Confidence: fillerConfidence,
				})
				i++
				continue
			}
		}
		if ok, conf := m.match(norm[i]); ok {
			start, end := at(i, 1)
			anns = append(anns, Annotation{
				Type: TypeFiller, Start: start, End: end,
				Text:       tokens[i],
				Confidence: conf,
			})
		}
	}
	return anns
}

// detectCorrections finds self-correction marker phrases at word boundaries
// and extracts the following text (up to 60 characters) as a suggestion.
func (a *Analyzer) detectCorrections(text string, segs []transcript.Segment, markers lexiconSet) []Annotation {
	lower := strings.ToLower(text)
	spanStart, spanEnd := transcript.Span(segs)
	span := spanEnd - spanStart

	var anns []Annotation
	for marker := range markers {
		for from := 0; ; {
			idx := strings.Index(lower[from:], marker)
			if idx < 0 {
				break
			}
			idx += from
			from = idx + len(marker)
			if !wordBounded(lower, idx, len(marker)) {
				continue
			}

			var start, end time.Duration
			if span > 0 && len(text) > 0 {
				start = spanStart + time.Duration(float64(span)*float64(idx)/float64(len(text)))
				end = spanStart + time.Duration(float64(span)*float64(idx+len(marker))/float64(len(text)))
			}
			anns = append(anns, Annotation{
				Type: TypeSelfCorrection, Start: start, End: end,
				Text:       text[idx : idx+len(marker)],
				Suggestion: suggestionAfter(text, idx+len(marker)),
				Confidence: correctionConfidence,
			})
		}
	}
	// Marker iteration order is map-random; restore text order.
	sort.SliceStable(anns, func(i, j int) bool { return anns[i].Start < anns[j].Start })
	return anns
}

// wordBounded reports whether text[idx:idx+n] is not adjacent to a letter on
// either side.
func wordBounded(text string, idx, n int) bool {
	if r, size := utf8.DecodeLastRuneInString(text[:idx]); size > 0 && unicode.IsLetter(r) {
		return false
	}
	if r, size := utf8.DecodeRuneInString(text[idx+n:]); size > 0 && unicode.IsLetter(r) {
		return false
	}
	return true
}

// suggestionAfter builds a restatement hint from the text following a
// correction marker.
func suggestionAfter(text string, from int) string {
	rest := strings.TrimLeft(text[from:], " \t,.:;—-")
	if rest == "" {
		return ""
	}
	if len(rest) > suggestionMaxChars {
		cut := suggestionMaxChars
		for cut > 0 && !utf8.RuneStart(rest[cut]) {
			cut--
		}
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}

// detectUncertainty slides a 3-segment window across the transcript and
// flags stretches whose filler-token density reaches 0.25. Confidence is
// density-based, boosted when overlapping prosody windows show depressed
// energy.
func (a *Analyzer) detectUncertainty(segs []transcript.Segment, pros *prosody.Result, m tokenMatcher) []Annotation {
	const windowSegs = 3
	if len(segs) < windowSegs {
		return nil
	}

	var anns []Annotation
	for i := 0; i+windowSegs <= len(segs); i++ {
		start := segs[i].Start
		end := segs[i+windowSegs-1].End

		overlaps := false
		for _, prev := range anns {
			if start < prev.End && end > prev.Start {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		var words, fillerToks int
		for _, seg := range segs[i : i+windowSegs] {
			w, f := countFillerTokens(seg.Text, m)
			words += w
			fillerToks += f
		}
		if words == 0 {
			continue
		}
		density := float64(fillerToks) / float64(words)
		if density < 0.25 {
			continue
		}

		conf := minf(1, density*2)
		if pros != nil {
			if ws := pros.NonSilentOverlapping(start, end); len(ws) > 0 && meanEnergyDelta(ws) < -3 {
				conf = minf(1, conf+0.2)
			}
		}

		anns = append(anns, Annotation{
			Type: TypeUncertainty, Start: start, End: end,
			Text:       joinSegmentText(segs[i : i+windowSegs]),
			Confidence: conf,
		})
	}
	return anns
}

// countFillerTokens tokenises text and returns the total token count and the
// number of tokens consumed by filler hits (a bigram hit consumes two).
func countFillerTokens(text string, m tokenMatcher) (words, fillers int) {
	tokens := strings.Fields(text)
	norm := make([]string, len(tokens))
	for i, tok := range tokens {
		norm[i] = normalizeToken(tok)
	}
	words = len(tokens)
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && m.set.contains(norm[i]+" "+norm[i+1]) {
			fillers += 2
			i++
			continue
		}
		if ok, _ := m.match(norm[i]); ok {
			fillers++
		}
	}
	return words, fillers
}

// detectFatigue compares speech rates of the first and last quarter of the
// session. Requires at least 8 segments.
func detectFatigue(segs []transcript.Segment) (*Annotation, float64) {
	if len(segs) < 8 {
		return nil, 0
	}
	q := len(segs) / 4
	firstRate := speechRate(segs[:q])
	lastRate := speechRate(segs[len(segs)-q:])
	if firstRate <= 0 {
		return nil, 0
	}
	ratio := lastRate / firstRate
	if ratio >= 0.70 {
		return nil, 0
	}

	level := clamp(1-ratio, 0, 1)
	last := segs[len(segs)-q:]
	return &Annotation{
		Type:       TypeFatigue,
		Start:      last[0].Start,
		End:        last[len(last)-1].End,
		Text:       joinSegmentText(last),
		Confidence: clamp((0.70-ratio)*5, 0.3, 1),
	}, level
}

// speechRate returns mean words per second over the segments' spoken time.
func speechRate(segs []transcript.Segment) float64 {
	var dur time.Duration
	for _, s := range segs {
		dur += s.Duration()
	}
	if dur <= 0 {
		return 0
	}
	return float64(transcript.Words(segs)) / dur.Seconds()
}

// detectTopicChanges compares mean pitch delta and mean energy of adjacent
// segments' non-silent prosody windows. Requires at least 4 segments and a
// prosody result.
func detectTopicChanges(segs []transcript.Segment, pros *prosody.Result) []Annotation {
	if len(segs) < 4 || pros == nil {
		return nil
	}

	var anns []Annotation
	for i := 0; i+1 < len(segs); i++ {
		cur := pros.NonSilentOverlapping(segs[i].Start, segs[i].End)
		next := pros.NonSilentOverlapping(segs[i+1].Start, segs[i+1].End)
		if len(cur) == 0 || len(next) == 0 {
			continue
		}

		pitchShift := meanPitchDelta(next) - meanPitchDelta(cur)
		energyShift := meanEnergy(next) - meanEnergy(cur)
		if abs(pitchShift) <= 0.30 && abs(energyShift) <= 8 {
			continue
		}

		boundary := segs[i].End
		conf := 0.6
		if _, ok := pros.PauseNear(boundary, 200*time.Millisecond); ok {
			conf = 0.85
		}

		end := segs[i+1].Start
		if end < boundary {
			end = boundary
		}
		anns = append(anns, Annotation{
			Type:       TypeTopicChange,
			Start:      boundary,
			End:        end,
			Text:       strings.TrimSpace(segs[i+1].Text),
			Confidence: conf,
		})
	}
	return anns
}

func joinSegmentText(segs []transcript.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func meanEnergyDelta(ws []prosody.Window) float64 {
	var sum float64
	for _, w := range ws {
		sum += w.EnergyDelta
	}
	return sum / float64(len(ws))
}

func meanPitchDelta(ws []prosody.Window) float64 {
	var sum float64
	for _, w := range ws {
		sum += w.PitchDelta
	}
	return sum / float64(len(ws))
}

func meanEnergy(ws []prosody.Window) float64 {
	var sum float64
	for _, w := range ws {
		sum += w.Energy
	}
	return sum / float64(len(ws))
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
