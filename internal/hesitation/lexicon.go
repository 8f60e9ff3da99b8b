package hesitation

import "strings"

// fillerLexicons maps a base language code to its hesitation filler entries.
// Single-word entries are matched against unigrams, multi-word entries
// against adjacent token bigrams. The tables are loaded once at process start
// and never mutated at runtime.
var fillerLexicons = map[string][]string{
	"en": {"um", "uh", "er", "ah", "hmm", "mhm", "you know", "sort of", "kind of"},
	"de": {"äh", "ähm", "hm", "halt", "quasi", "sozusagen", "na ja"},
	"fr": {"euh", "ben", "bah", "hein", "tu vois", "en fait"},
	"es": {"este", "pues", "eh", "o sea", "a ver"},
}

// correctionMarkers maps a base language code to phrases that introduce a
// self-correction. Matched case-insensitively at word boundaries.
var correctionMarkers = map[string][]string{
	"en": {"i mean", "i meant to say", "scratch that", "let me rephrase", "or rather", "actually no"},
	"de": {"ich meine", "beziehungsweise", "nein warte", "also nochmal"},
	"fr": {"je veux dire", "enfin non", "c'est-à-dire"},
	"es": {"quiero decir", "es decir", "mejor dicho"},
}

// supportedLanguages lists the base codes with lexicon coverage, in the
// deterministic order used when building union sets.
var supportedLanguages = []string{"en", "de", "fr", "es"}

// baseLang normalises a detected language code to its base form:
// "en-US" -> "en", "de_DE" -> "de".
func baseLang(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

// lexiconSet is an immutable set of lowercase lexicon entries.
type lexiconSet map[string]struct{}

func (s lexiconSet) contains(entry string) bool {
	_, ok := s[entry]
	return ok
}

// buildSet collects entries for the given languages from src into a set.
func buildSet(src map[string][]string, langs []string) lexiconSet {
	set := make(lexiconSet)
	for _, lang := range langs {
		for _, entry := range src[lang] {
			set[entry] = struct{}{}
		}
	}
	return set
}
