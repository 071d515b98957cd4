package classifier

import (
	"context"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/pkg/logger"
)

// heuristicConfidence is the fixed confidence of keyword classification,
// whether it runs as the chosen strategy or as the delegated strategy's
// fallback.
const heuristicConfidence = 0.5

const maxKeywords = 5

type categoryKeywords struct {
	category models.Category
	keywords []string
}

// Category table order is the tie-break: the first category with a matching
// keyword wins.
var categoryTable = []categoryKeywords{
	{models.CategoryMedical, []string{"heart", "pain", "bleeding", "unconscious", "breathing", "chest", "headache", "fever", "injury", "symptoms"}},
	{models.CategoryFire, []string{"fire", "smoke", "burning", "explosion", "flame", "heat", "blaze"}},
	{models.CategorySecurity, []string{"attack", "threat", "danger", "weapon", "robbery", "assault", "suspicious", "intruder", "violence"}},
	{models.CategoryAccident, []string{"car", "crash", "fall", "collision", "traffic", "broken", "wound", "accident", "injury"}},
	{models.CategoryNaturalDisaster, []string{"earthquake", "flood", "storm", "hurricane", "tornado", "landslide", "tsunami"}},
	{models.CategoryTechnical, []string{"system", "failure", "outage", "error", "technical", "malfunction", "bug"}},
}

var (
	highSeverityMarkers     = []string{"urgent", "immediately"}
	criticalSeverityMarkers = []string{"critical", "emergency"}
)

// Baseline severity per category; urgency and criticality markers in the
// text only ever bump it upwards.
var categoryBaseSeverity = map[models.Category]models.Severity{
	models.CategoryMedical:         models.SeverityHigh,
	models.CategoryFire:            models.SeverityCritical,
	models.CategorySecurity:        models.SeverityHigh,
	models.CategoryAccident:        models.SeverityHigh,
	models.CategoryNaturalDisaster: models.SeverityCritical,
	models.CategoryTechnical:       models.SeverityMedium,
}

var severityRank = map[models.Severity]int{
	models.SeverityLow:      0,
	models.SeverityMedium:   1,
	models.SeverityHigh:     2,
	models.SeverityCritical: 3,
}

func maxSeverity(a, b models.Severity) models.Severity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// Heuristic classifies by substring matching against the fixed category
// tables. It never fails and carries a fixed confidence.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Classify(_ context.Context, description string) TextSignal {
	lower := strings.ToLower(description)

	category := models.CategoryUnknown
	for _, entry := range categoryTable {
		if containsAny(lower, entry.keywords) {
			category = entry.category
			break
		}
	}

	severity := models.SeverityMedium
	if base, ok := categoryBaseSeverity[category]; ok {
		severity = base
	}
	if containsAny(lower, highSeverityMarkers) {
		severity = maxSeverity(severity, models.SeverityHigh)
	}
	if containsAny(lower, criticalSeverityMarkers) {
		severity = maxSeverity(severity, models.SeverityCritical)
	}

	urgency := models.UrgencyMedium
	if severity == models.SeverityCritical {
		urgency = models.UrgencyImmediate
	}

	logger.Debug("Heuristic classification",
		zap.String("category", string(category)),
		zap.String("severity", string(severity)),
	)

	return TextSignal{
		Category:     category,
		Severity:     severity,
		Urgency:      urgency,
		Keywords:     extractKeywords(description, maxKeywords),
		IncidentType: "USER_SAFETY",
		Confidence:   heuristicConfidence,
	}
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// extractKeywords tokenizes the description and keeps the first n distinct
// word tokens. Tokenization failures degrade to whitespace splitting.
func extractKeywords(description string, n int) []string {
	var tokens []string

	doc, err := prose.NewDocument(description,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		logger.Warn("Tokenization failed, splitting on whitespace", zap.Error(err))
		tokens = strings.Fields(description)
	} else {
		for _, tok := range doc.Tokens() {
			tokens = append(tokens, tok.Text)
		}
	}

	keywords := make([]string, 0, n)
	seen := make(map[string]bool)
	for _, tok := range tokens {
		word := strings.ToLower(strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == n {
			break
		}
	}

	return keywords
}
