package fusion

import (
	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/internal/storage/models"
)

const (
	PanicLevelLow    = "LOW"
	PanicLevelMedium = "MEDIUM"
	PanicLevelHigh   = "HIGH"

	SafetyLevelSafe      = "SAFE"
	SafetyLevelDangerous = "DANGEROUS"
)

// VoiceSignal is the voice-tone assessment of an audio attachment.
type VoiceSignal struct {
	Urgency             models.Urgency `json:"urgency"`
	PanicLevel          string         `json:"panic_level"`
	BackgroundSounds    []string       `json:"background_sounds"`
	SpeechClarity       string         `json:"speech_clarity"`
	VoiceStress         string         `json:"voice_stress"`
	EmergencyIndicators []string       `json:"emergency_indicators"`
	Language            string         `json:"language_detected"`
	Confidence          float64        `json:"confidence"`
}

// ImageSignal is the safety assessment of an image attachment.
type ImageSignal struct {
	InjuryDetected      bool     `json:"injury_detected"`
	DamageAssessment    string   `json:"damage_assessment"`
	SituationAnalysis   string   `json:"situation_analysis"`
	SafetyLevel         string   `json:"safety_level"`
	EmergencyIndicators []string `json:"emergency_indicators"`
	PeopleCount         int      `json:"people_count"`
	VehicleInvolved     bool     `json:"vehicle_involved"`
	FireDetected        bool     `json:"fire_detected"`
	SmokeDetected       bool     `json:"smoke_detected"`
	Confidence          float64  `json:"confidence"`
}

// Point values per signal. Every positive signal only ever raises the score,
// so the resulting band is monotonic in its inputs.
const (
	pointsCritical = 4
	pointsHigh     = 3
	pointsMedium   = 2
	pointsLow      = 1
	pointsModality = 2
)

// Severity bands over the fused score.
const (
	criticalThreshold = 6
	highThreshold     = 4
	mediumThreshold   = 2
)

// FuseSeverity combines the text severity with the optional voice and image
// signals into one band. Absent signals contribute nothing.
func FuseSeverity(text classifier.TextSignal, voice *VoiceSignal, image *ImageSignal) models.Severity {
	score := 0

	switch text.Severity {
	case models.SeverityCritical:
		score += pointsCritical
	case models.SeverityHigh:
		score += pointsHigh
	case models.SeverityMedium:
		score += pointsMedium
	default:
		score += pointsLow
	}

	if voice != nil && voice.PanicLevel == PanicLevelHigh {
		score += pointsModality
	}
	if voice != nil && voice.Urgency == models.UrgencyImmediate {
		score += pointsModality
	}
	if image != nil && image.InjuryDetected {
		score += pointsModality
	}
	if image != nil && image.SafetyLevel == SafetyLevelDangerous {
		score += pointsModality
	}

	switch {
	case score >= criticalThreshold:
		return models.SeverityCritical
	case score >= highThreshold:
		return models.SeverityHigh
	case score >= mediumThreshold:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// FuseConfidence is the arithmetic mean of the confidences that are actually
// present; signals without a confidence are excluded from both sides of the
// division. With nothing to average, it is exactly 0.5.
func FuseConfidence(text classifier.TextSignal, voice *VoiceSignal, image *ImageSignal) float64 {
	sum := 0.0
	factors := 0

	if text.Confidence > 0 {
		sum += text.Confidence
		factors++
	}
	if voice != nil && voice.Confidence > 0 {
		sum += voice.Confidence
		factors++
	}
	if image != nil && image.Confidence > 0 {
		sum += image.Confidence
		factors++
	}

	if factors == 0 {
		return 0.5
	}
	return sum / float64(factors)
}
