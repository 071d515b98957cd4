package fusion

import (
	"testing"

	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/internal/storage/models"
)

func textWith(severity models.Severity, confidence float64) classifier.TextSignal {
	return classifier.TextSignal{Severity: severity, Confidence: confidence}
}

func TestFuseSeverityBands(t *testing.T) {
	if got := FuseSeverity(textWith(models.SeverityLow, 0.5), nil, nil); got != models.SeverityLow {
		t.Fatalf("LOW text alone: got %s", got)
	}
	if got := FuseSeverity(textWith(models.SeverityMedium, 0.5), nil, nil); got != models.SeverityMedium {
		t.Fatalf("MEDIUM text alone: got %s", got)
	}
	if got := FuseSeverity(textWith(models.SeverityHigh, 0.5), nil, nil); got != models.SeverityMedium {
		t.Fatalf("HIGH text alone scores 3, expected MEDIUM band, got %s", got)
	}
	if got := FuseSeverity(textWith(models.SeverityCritical, 0.5), nil, nil); got != models.SeverityHigh {
		t.Fatalf("CRITICAL text alone scores 4, expected HIGH band, got %s", got)
	}
}

func TestFuseSeverityModalitiesAdd(t *testing.T) {
	voice := &VoiceSignal{PanicLevel: PanicLevelHigh, Urgency: models.UrgencyImmediate, Confidence: 0.7}
	image := &ImageSignal{InjuryDetected: true, SafetyLevel: SafetyLevelDangerous, Confidence: 0.6}

	if got := FuseSeverity(textWith(models.SeverityLow, 0.5), voice, nil); got != models.SeverityHigh {
		t.Fatalf("LOW + panicked voice scores 5, expected HIGH, got %s", got)
	}
	if got := FuseSeverity(textWith(models.SeverityMedium, 0.5), voice, image); got != models.SeverityCritical {
		t.Fatalf("all positive signals must reach CRITICAL, got %s", got)
	}
}

// Adding any single positive signal must never lower the resulting band.
func TestFuseSeverityMonotonic(t *testing.T) {
	rank := map[models.Severity]int{
		models.SeverityLow:      0,
		models.SeverityMedium:   1,
		models.SeverityHigh:     2,
		models.SeverityCritical: 3,
	}
	severities := []models.Severity{
		models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical,
	}

	for _, sev := range severities {
		text := textWith(sev, 0.5)
		base := FuseSeverity(text, nil, nil)

		steps := []struct {
			name  string
			voice *VoiceSignal
			image *ImageSignal
		}{
			{"voice panic", &VoiceSignal{PanicLevel: PanicLevelHigh}, nil},
			{"voice urgency", &VoiceSignal{Urgency: models.UrgencyImmediate}, nil},
			{"image injury", nil, &ImageSignal{InjuryDetected: true}},
			{"image danger", nil, &ImageSignal{SafetyLevel: SafetyLevelDangerous}},
		}

		for _, step := range steps {
			got := FuseSeverity(text, step.voice, step.image)
			if rank[got] < rank[base] {
				t.Fatalf("%s lowered band from %s to %s at text severity %s", step.name, base, got, sev)
			}
		}
	}
}

func TestFuseConfidenceMeanOfPresent(t *testing.T) {
	text := textWith(models.SeverityMedium, 0.9)
	voice := &VoiceSignal{Confidence: 0.7}
	image := &ImageSignal{Confidence: 0.5}

	got := FuseConfidence(text, voice, image)
	want := (0.9 + 0.7 + 0.5) / 3
	if got != want {
		t.Fatalf("expected %f, got %f", want, got)
	}

	got = FuseConfidence(text, nil, nil)
	if got != 0.9 {
		t.Fatalf("absent signals must not dilute the mean, got %f", got)
	}
}

func TestFuseConfidenceDefaultsWithoutSignals(t *testing.T) {
	got := FuseConfidence(textWith(models.SeverityMedium, 0), nil, nil)
	if got != 0.5 {
		t.Fatalf("expected exact 0.5 default, got %f", got)
	}
}
