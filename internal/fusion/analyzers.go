package fusion

import (
	"context"

	"go.uber.org/zap"

	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/pkg/logger"
)

// VoiceAnalyzer assesses tone and urgency from an audio attachment reference.
type VoiceAnalyzer interface {
	AnalyzeVoice(ctx context.Context, audioRef string) (*VoiceSignal, error)
}

// ImageAnalyzer assesses injury and scene safety from an image reference.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageRef string) (*ImageSignal, error)
}

// StaticVoiceAnalyzer returns a fixed neutral reading. It stands in until a
// real tone-analysis backend is wired up.
type StaticVoiceAnalyzer struct{}

func (StaticVoiceAnalyzer) AnalyzeVoice(_ context.Context, audioRef string) (*VoiceSignal, error) {
	logger.Debug("Voice analysis requested", zap.String("audio_ref", audioRef))
	return &VoiceSignal{
		Urgency:             models.UrgencyMedium,
		PanicLevel:          PanicLevelLow,
		BackgroundSounds:    []string{},
		SpeechClarity:       "GOOD",
		VoiceStress:         "NORMAL",
		EmergencyIndicators: []string{},
		Language:            "en",
		Confidence:          0.7,
	}, nil
}

// StaticImageAnalyzer returns a fixed clear-scene reading.
type StaticImageAnalyzer struct{}

func (StaticImageAnalyzer) AnalyzeImage(_ context.Context, imageRef string) (*ImageSignal, error) {
	logger.Debug("Image analysis requested", zap.String("image_ref", imageRef))
	return &ImageSignal{
		InjuryDetected:      false,
		DamageAssessment:    "NONE",
		SituationAnalysis:   "CLEAR",
		SafetyLevel:         SafetyLevelSafe,
		EmergencyIndicators: []string{},
		PeopleCount:         0,
		Confidence:          0.6,
	}, nil
}
