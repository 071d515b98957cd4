package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/allinone/backend/internal/broadcast"
	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/internal/fusion"
	"github.com/allinone/backend/internal/metrics"
	"github.com/allinone/backend/internal/notify"
	"github.com/allinone/backend/internal/plan"
	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/internal/storage/sqlite"
	"github.com/allinone/backend/internal/summary"
	"github.com/allinone/backend/pkg/idgen"
	"github.com/allinone/backend/pkg/logger"
)

// Pipeline stages. Transitions are strictly sequential; FAILED is reachable
// from any of them.
type Stage string

const (
	StageReceived   Stage = "RECEIVED"
	StageClassified Stage = "CLASSIFIED"
	StageSummarized Stage = "SUMMARIZED"
	StagePlanned    Stage = "PLANNED"
	StageDispatched Stage = "DISPATCHED"
	StageFailed     Stage = "FAILED"
)

// RawInput is one emergency submission. Immutable once received.
type RawInput struct {
	Description string
	AudioRef    string
	ImageRef    string
	Location    *models.Location
	UserRole    models.Role
}

// Result is what the caller gets back: the persisted record plus the derived
// response plan.
type Result struct {
	Incident models.IncidentRecord `json:"incident"`
	Plan     plan.ResponsePlan     `json:"responsePlan"`
}

// Store is the durable incident store contract the orchestrator needs.
type Store interface {
	InsertIncident(ctx context.Context, record *models.IncidentRecord) error
	GetIncident(ctx context.Context, id string) (*models.IncidentRecord, error)
	AttachMedia(ctx context.Context, id, mediaRef string) (*models.IncidentRecord, error)
	SetStatus(ctx context.Context, id string, status models.Status) (*models.IncidentRecord, error)
	RecentIncidents(ctx context.Context, n int) ([]models.IncidentRecord, error)
}

// Orchestrator runs the triage pipeline and decides which side effects fire.
// Given a well-formed input it always produces a usable result; internal
// failures degrade to a fixed low-confidence record instead of erroring.
type Orchestrator struct {
	classifier classifier.Classifier
	voice      fusion.VoiceAnalyzer
	image      fusion.ImageAnalyzer
	store      Store
	dispatcher *broadcast.Dispatcher
	notifier   notify.Notifier
	ids        idgen.Generator
	now        func() time.Time
}

type Deps struct {
	Classifier    classifier.Classifier
	VoiceAnalyzer fusion.VoiceAnalyzer
	ImageAnalyzer fusion.ImageAnalyzer
	Store         Store
	Dispatcher    *broadcast.Dispatcher
	Notifier      notify.Notifier
	IDs           idgen.Generator
	Now           func() time.Time
}

func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.VoiceAnalyzer == nil {
		deps.VoiceAnalyzer = fusion.StaticVoiceAnalyzer{}
	}
	if deps.ImageAnalyzer == nil {
		deps.ImageAnalyzer = fusion.StaticImageAnalyzer{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.IDs == nil {
		deps.IDs = idgen.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Orchestrator{
		classifier: deps.Classifier,
		voice:      deps.VoiceAnalyzer,
		image:      deps.ImageAnalyzer,
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		ids:        deps.IDs,
		now:        deps.Now,
	}
}

// Triage runs the full pipeline for one submission. The only error it ever
// returns is ErrMissingDescription, raised before the pipeline starts.
func (o *Orchestrator) Triage(ctx context.Context, input RawInput) (*Result, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrMissingDescription
	}
	if input.UserRole == "" {
		input.UserRole = models.RoleUnknown
	}

	start := o.now()

	record, responsePlan, err := o.runPipeline(ctx, input)
	if err != nil {
		logger.Error("Triage pipeline failed, emitting fallback record",
			zap.Error(err),
			zap.String("role", string(input.UserRole)),
		)
		metrics.TriageFallbacks.Inc()
		record = fallbackRecord(input)
		responsePlan = plan.Synthesize(record.Category, record.Severity, record.Priority, record.UserRole)
	}

	record.ID = o.ids.NewID()
	record.CreatedAt = o.now()
	record.Status = models.StatusActive

	o.dispatch(record)

	metrics.TriageTotal.WithLabelValues(string(record.Category), string(record.Severity)).Inc()
	metrics.TriageDuration.Observe(o.now().Sub(start).Seconds())
	metrics.ConfidenceScore.Observe(record.Confidence)

	logger.Info("Triage dispatched",
		zap.String("incident_id", record.ID),
		zap.String("category", string(record.Category)),
		zap.String("severity", string(record.Severity)),
		zap.String("priority", string(record.Priority)),
		zap.Float64("confidence", record.Confidence),
	)

	return &Result{Incident: record, Plan: responsePlan}, nil
}

func (o *Orchestrator) runPipeline(ctx context.Context, input RawInput) (record models.IncidentRecord, responsePlan plan.ResponsePlan, err error) {
	stage := StageReceived
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invariant violated at stage %s: %v", stage, r)
		}
	}()

	signal := o.classifier.Classify(ctx, input.Description)
	stage = StageClassified

	var voiceSignal *fusion.VoiceSignal
	if input.AudioRef != "" {
		voiceSignal, err = o.voice.AnalyzeVoice(ctx, input.AudioRef)
		if err != nil {
			logger.Warn("Voice analysis unavailable", zap.Error(err))
			voiceSignal, err = nil, nil
		}
	}

	var imageSignal *fusion.ImageSignal
	if input.ImageRef != "" {
		imageSignal, err = o.image.AnalyzeImage(ctx, input.ImageRef)
		if err != nil {
			logger.Warn("Image analysis unavailable", zap.Error(err))
			imageSignal, err = nil, nil
		}
	}

	severity := fusion.FuseSeverity(signal, voiceSignal, imageSignal)
	confidence := fusion.FuseConfidence(signal, voiceSignal, imageSignal)

	record = summary.Build(signal, severity, confidence, input.Location, input.UserRole)
	if len(record.ActionItems) == 0 {
		record.ActionItems = genericActionItems()
	}
	stage = StageSummarized

	responsePlan = plan.Synthesize(record.Category, record.Severity, record.Priority, record.UserRole)
	stage = StagePlanned

	return record, responsePlan, nil
}

// dispatch fires the side effects once the record is final: persist,
// broadcast the creation, and alert the notification channel for urgent
// priorities. Neither the notifier nor the broadcast block the caller, and
// their failures are logged, never surfaced.
func (o *Orchestrator) dispatch(record models.IncidentRecord) {
	persistCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.store.InsertIncident(persistCtx, &record); err != nil {
		logger.Error("Failed to persist incident",
			zap.String("incident_id", record.ID),
			zap.Error(err),
		)
	}

	o.dispatcher.Created(record)

	if record.Priority == models.PriorityImmediate || record.Priority == models.PriorityUrgent {
		alert := notify.Alert{
			IncidentID: record.ID,
			Role:       record.UserRole,
			Category:   record.Category,
			Priority:   record.Priority,
			Summary:    strings.Join(record.ImmediateActions, "; "),
			Location:   record.Location,
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := o.notifier.Notify(ctx, alert); err != nil {
				metrics.NotificationsTotal.WithLabelValues("error").Inc()
				logger.Error("Notification failed",
					zap.String("incident_id", record.ID),
					zap.Error(err),
				)
				return
			}
			metrics.NotificationsTotal.WithLabelValues("ok").Inc()
		}()
	}
}

// AttachMedia attaches a media reference to an existing incident and
// re-broadcasts the full record.
func (o *Orchestrator) AttachMedia(ctx context.Context, id, mediaRef string) (*models.IncidentRecord, error) {
	record, err := o.store.AttachMedia(ctx, id, mediaRef)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	o.dispatcher.Updated(*record)
	return record, nil
}

// SetStatus transitions an incident's status and re-broadcasts.
func (o *Orchestrator) SetStatus(ctx context.Context, id string, status models.Status) (*models.IncidentRecord, error) {
	record, err := o.store.SetStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	o.dispatcher.Updated(*record)
	return record, nil
}

const defaultRecentLimit = 100

// Recent serves the recent-activity view. The working set answers first;
// after a restart it is empty, so the durable store backfills the list.
func (o *Orchestrator) Recent(ctx context.Context, limit int) []models.IncidentRecord {
	records := o.dispatcher.Recent(limit)
	if len(records) > 0 {
		return records
	}

	n := limit
	if n <= 0 {
		n = defaultRecentLimit
	}
	stored, err := o.store.RecentIncidents(ctx, n)
	if err != nil {
		logger.Warn("Failed to load recent incidents from store", zap.Error(err))
		return records
	}
	if len(stored) == 0 {
		return records
	}
	return stored
}

// Get returns one incident, consulting the working set before the store.
func (o *Orchestrator) Get(ctx context.Context, id string) (*models.IncidentRecord, error) {
	if record, ok := o.dispatcher.Get(id); ok {
		return &record, nil
	}

	record, err := o.store.GetIncident(ctx, id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// fallbackRecord is the fixed degraded result for pipeline failures. Its
// shape is deterministic so operators can recognize it at a glance.
func fallbackRecord(input RawInput) models.IncidentRecord {
	return models.IncidentRecord{
		Category: models.CategoryUnknown,
		Severity: models.SeverityMedium,
		Priority: models.PriorityNormal,
		Urgency:  models.UrgencyMedium,
		Location: input.Location,
		Description: models.StructuredDescription{
			Category:          models.CategoryUnknown,
			Severity:          models.SeverityMedium,
			Urgency:           models.UrgencyMedium,
			Keywords:          []string{},
			MedicalIndicators: []string{},
			SafetyConcerns:    []string{},
			TechnicalIssues:   []string{},
			AffectedSystems:   []string{},
			UserImpact:        "Unknown",
			BusinessImpact:    "Unknown",
		},
		RecommendedServices:   []string{"emergency_services"},
		EstimatedResponseTime: "5-8 minutes",
		ActionItems:           genericActionItems(),
		UserRole:              input.UserRole,
		Confidence:            0.3,
		IncidentType:          "USER_SAFETY",
		AffectedSystems:       []string{},
		UserImpact:            "Unknown",
		BusinessImpact:        "Unknown",
		TechnicalIssues:       []string{},
		ImmediateActions:      []string{"Assess situation", "Call appropriate services"},
		EscalationPath: models.EscalationPath{
			Immediate: "first_responder",
			Secondary: "team_lead",
			Tertiary:  "manager",
		},
		Communication: models.CommunicationPlan{
			Primary:   "emergency_services",
			Secondary: "family_contacts",
			Tertiary:  "work_contacts",
			Channels:  []string{"phone", "sms", "app", "email"},
		},
		Resources: models.ResourceRequirements{
			Personnel:  "minimal_team",
			Equipment:  "standard",
			Vehicles:   "single",
			Facilities: "local_facility",
		},
	}
}

func genericActionItems() []string {
	return []string{"Stay calm", "Keep phone accessible", "Wait for emergency services"}
}
