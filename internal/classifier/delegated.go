package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/metrics"
	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/pkg/circuitbreaker"
	"github.com/allinone/backend/pkg/logger"
	"github.com/allinone/backend/pkg/retry"
)

// SignalCache stores classification results keyed by description so repeated
// reports of the same emergency skip the completion service.
type SignalCache interface {
	GetSignal(ctx context.Context, description string) (*TextSignal, bool)
	SetSignal(ctx context.Context, description string, signal TextSignal)
}

// Delegated asks the external completion service for a structured
// classification. Any transport failure or unparsable reply silently
// downgrades to the heuristic strategy; the caller never sees an error.
type Delegated struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	fallback    *Heuristic
	cache       SignalCache
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type Options struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Cache       SignalCache
}

func NewDelegated(opts Options) *Delegated {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	cb := circuitbreaker.New("classifier", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    2,
		InitialDelay:   300 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Delegated classifier initialized", zap.String("model", opts.Model))

	return &Delegated{
		client:      openai.NewClient(opts.APIKey),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		fallback:    NewHeuristic(),
		cache:       opts.Cache,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

const classificationSystemPrompt = `You are an emergency triage analyst. Analyze the emergency description and respond with JSON only, no prose:
{
  "category": "MEDICAL|FIRE|SECURITY|ACCIDENT|NATURAL_DISASTER|TECHNICAL",
  "severity": "LOW|MEDIUM|HIGH|CRITICAL",
  "urgency": "LOW|MEDIUM|HIGH|IMMEDIATE",
  "keywords": ["extracted", "keywords"],
  "location_indicators": ["location", "clues"],
  "medical_indicators": ["symptoms", "conditions"],
  "safety_concerns": ["safety", "risks"],
  "technical_issues": ["system", "problems"],
  "affected_systems": ["systems", "impacted"],
  "user_impact": "description of impact on users",
  "business_impact": "description of business impact",
  "confidence": 0.0,
  "incident_type": "USER_SAFETY|SYSTEM_FAILURE|SECURITY_BREACH|NATURAL_EVENT"
}`

func (d *Delegated) Classify(ctx context.Context, description string) TextSignal {
	if d.cache != nil {
		if cached, ok := d.cache.GetSignal(ctx, description); ok {
			return *cached
		}
	}

	signal, err := d.classifyRemote(ctx, description)
	if err != nil {
		logger.Warn("Completion service degraded, using heuristic classification",
			zap.Error(err),
		)
		metrics.ClassifierDowngrades.Inc()
		return d.fallback.Classify(ctx, description)
	}

	if d.cache != nil {
		d.cache.SetSignal(ctx, description, *signal)
	}

	return *signal
}

func (d *Delegated) classifyRemote(ctx context.Context, description string) (*TextSignal, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var content string

	err := d.cb.Execute(ctx, func() error {
		return retry.Do(ctx, d.retryConfig, func() error {
			resp, err := d.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model: d.model,
					Messages: []openai.ChatCompletionMessage{
						{
							Role:    openai.ChatMessageRoleSystem,
							Content: classificationSystemPrompt,
						},
						{
							Role:    openai.ChatMessageRoleUser,
							Content: "Emergency description: " + description,
						},
					},
					Temperature: d.temperature,
					MaxTokens:   d.maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			content = resp.Choices[0].Message.Content
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	signal, err := parseSignal(content)
	if err != nil {
		return nil, fmt.Errorf("unparsable classification: %w", err)
	}

	logger.Debug("Delegated classification",
		zap.String("category", string(signal.Category)),
		zap.String("severity", string(signal.Severity)),
		zap.Float64("confidence", signal.Confidence),
	)

	return signal, nil
}

var (
	validCategories = map[models.Category]bool{
		models.CategoryMedical:         true,
		models.CategoryFire:            true,
		models.CategorySecurity:        true,
		models.CategoryAccident:        true,
		models.CategoryNaturalDisaster: true,
		models.CategoryTechnical:       true,
	}
	validSeverities = map[models.Severity]bool{
		models.SeverityLow:      true,
		models.SeverityMedium:   true,
		models.SeverityHigh:     true,
		models.SeverityCritical: true,
	}
	validUrgencies = map[models.Urgency]bool{
		models.UrgencyLow:       true,
		models.UrgencyMedium:    true,
		models.UrgencyHigh:      true,
		models.UrgencyImmediate: true,
	}
)

// parseSignal validates the completion output against the structured shape.
// Anything outside the enumerated values is treated as unparsable so the
// caller can fall back.
func parseSignal(content string) (*TextSignal, error) {
	payload := extractJSON(content)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in completion output")
	}

	var signal TextSignal
	if err := json.Unmarshal([]byte(payload), &signal); err != nil {
		return nil, err
	}

	if !validCategories[signal.Category] {
		return nil, fmt.Errorf("unknown category %q", signal.Category)
	}
	if !validSeverities[signal.Severity] {
		return nil, fmt.Errorf("unknown severity %q", signal.Severity)
	}
	if !validUrgencies[signal.Urgency] {
		signal.Urgency = models.UrgencyMedium
	}
	if signal.Confidence <= 0 || signal.Confidence > 1 {
		signal.Confidence = heuristicConfidence
	}
	if signal.IncidentType == "" {
		signal.IncidentType = "USER_SAFETY"
	}

	return &signal, nil
}

// extractJSON strips markdown fences and surrounding prose from a completion
// reply, keeping the outermost object.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
