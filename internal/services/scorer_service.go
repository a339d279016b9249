package services

import (
	"strings"

	"emergenzchat/internal/logger"
)

// Scoring weights and bounds. A keyword hit is worth more than a surprise
// marker; the final score is clamped to scoreCeiling.
const (
	keywordWeight  = 15
	surpriseWeight = 10
	scoreCeiling   = 100

	// PulseThreshold is the score above which the UI flashes its
	// emergence indicator.
	PulseThreshold = 40
)

// emergenceKeywords are matched as plain substrings of the lowercased
// reply. Substring matching is intentional and must stay that way: "neu"
// hitting inside "neuronal" is part of the observed scoring behavior, and
// switching to word-boundary matching would change scores.
var emergenceKeywords = []string{
	"emergenz",
	"emergent",
	"selbstorganisation",
	"muster",
	"komplex",
	"wechselwirkung",
	"schwarm",
	"kollektiv",
	"entsteh",
	"neu",
	"unvorhersehbar",
	"spontan",
	"synergie",
	"ordnung",
	"ebene",
	"ganzes",
	"vernetz",
	"dynamik",
}

// surpriseMarkers signal excitement in a reply. The bare exclamation mark
// is one of them, so enthusiastic punctuation alone moves the score.
var surpriseMarkers = []string{
	"!",
	"überraschend",
	"unerwartet",
	"erstaunlich",
	"wow",
}

// ScorerService computes the emergence score of a reply. The score is a
// pure function of the text and the two fixed marker lists; it carries no
// state between calls, so every analysis overwrites the previous score
// rather than accumulating.
type ScorerService struct {
	initialized bool
}

// NewScorerService creates a new ScorerService instance.
func NewScorerService() *ScorerService {
	return &ScorerService{initialized: false}
}

// Name returns the service name "scorer" for registration.
func (s *ScorerService) Name() string {
	return "scorer"
}

// Initialize sets up the ScorerService for operation.
func (s *ScorerService) Initialize() error {
	s.initialized = true
	return nil
}

// Analyze returns the emergence score of text in [0, 100].
// Matching is case-insensitive; occurrences are counted non-overlapping per
// marker. Text without any hits scores 0.
func (s *ScorerService) Analyze(text string) int {
	lowered := strings.ToLower(text)

	keywordHits := 0
	for _, keyword := range emergenceKeywords {
		keywordHits += strings.Count(lowered, keyword)
	}

	surprises := 0
	for _, marker := range surpriseMarkers {
		surprises += strings.Count(lowered, marker)
	}

	score := keywordHits*keywordWeight + surprises*surpriseWeight
	if score > scoreCeiling {
		score = scoreCeiling
	}

	logger.Debug("Reply analyzed", "keyword_hits", keywordHits, "surprises", surprises, "score", score)
	return score
}
