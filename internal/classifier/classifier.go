package classifier

import (
	"context"

	"github.com/allinone/backend/internal/storage/models"
)

// TextSignal is the classifier's assessment of one free-text report. It is
// produced once per submission and never mutated afterwards.
type TextSignal struct {
	Category           models.Category `json:"category"`
	Severity           models.Severity `json:"severity"`
	Urgency            models.Urgency  `json:"urgency"`
	Keywords           []string        `json:"keywords"`
	LocationIndicators []string        `json:"location_indicators"`
	MedicalIndicators  []string        `json:"medical_indicators"`
	SafetyConcerns     []string        `json:"safety_concerns"`
	TechnicalIssues    []string        `json:"technical_issues"`
	AffectedSystems    []string        `json:"affected_systems"`
	UserImpact         string          `json:"user_impact"`
	BusinessImpact     string          `json:"business_impact"`
	IncidentType       string          `json:"incident_type"`
	Confidence         float64         `json:"confidence"`
}

// Classifier turns a non-empty description into a TextSignal. Implementations
// must always return a usable signal; degraded upstreams lower the confidence
// instead of surfacing an error. Callers reject empty descriptions before
// calling Classify.
type Classifier interface {
	Classify(ctx context.Context, description string) TextSignal
}
