package models

import "time"

// Category is the emergency type bucket.
type Category string

const (
	CategoryMedical         Category = "MEDICAL"
	CategoryFire            Category = "FIRE"
	CategorySecurity        Category = "SECURITY"
	CategoryAccident        Category = "ACCIDENT"
	CategoryNaturalDisaster Category = "NATURAL_DISASTER"
	CategoryTechnical       Category = "TECHNICAL"
	CategoryUnknown         Category = "UNKNOWN"
)

// Severity is the ordinal band describing how serious a situation is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Priority describes response speed. It is derived from Severity alone.
type Priority string

const (
	PriorityLow       Priority = "LOW"
	PriorityNormal    Priority = "NORMAL"
	PriorityUrgent    Priority = "URGENT"
	PriorityImmediate Priority = "IMMEDIATE"
)

type Urgency string

const (
	UrgencyLow       Urgency = "LOW"
	UrgencyMedium    Urgency = "MEDIUM"
	UrgencyHigh      Urgency = "HIGH"
	UrgencyImmediate Urgency = "IMMEDIATE"
)

type Role string

const (
	RoleSenior  Role = "SENIOR"
	RoleChild   Role = "CHILD"
	RoleWoman   Role = "WOMAN"
	RoleLayman  Role = "LAYMAN"
	RoleUnknown Role = "UNKNOWN"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusResolved Status = "RESOLVED"
)

var severityToPriority = map[Severity]Priority{
	SeverityCritical: PriorityImmediate,
	SeverityHigh:     PriorityUrgent,
	SeverityMedium:   PriorityNormal,
	SeverityLow:      PriorityLow,
}

// PriorityFor maps a severity band to its response priority. Nothing but the
// severity may influence this mapping.
func PriorityFor(severity Severity) Priority {
	if p, ok := severityToPriority[severity]; ok {
		return p
	}
	return PriorityNormal
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StructuredDescription is the classifier's view of the free-text report,
// embedded in the persisted record.
type StructuredDescription struct {
	Category          Category `json:"category"`
	Severity          Severity `json:"severity"`
	Urgency           Urgency  `json:"urgency"`
	Keywords          []string `json:"keywords"`
	MedicalIndicators []string `json:"medicalIndicators"`
	SafetyConcerns    []string `json:"safetyConcerns"`
	TechnicalIssues   []string `json:"technicalIssues"`
	AffectedSystems   []string `json:"affectedSystems"`
	UserImpact        string   `json:"userImpact"`
	BusinessImpact    string   `json:"businessImpact"`
}

type EscalationPath struct {
	Immediate string `json:"immediate"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

type CommunicationPlan struct {
	Primary   string   `json:"primary"`
	Secondary string   `json:"secondary"`
	Tertiary  string   `json:"tertiary"`
	Channels  []string `json:"channels"`
}

type ResourceRequirements struct {
	Personnel  string `json:"personnel"`
	Equipment  string `json:"equipment"`
	Vehicles   string `json:"vehicles"`
	Facilities string `json:"facilities"`
}

// IncidentRecord is the canonical triage result. Records are append-only:
// after creation only the media reference and the status may change.
type IncidentRecord struct {
	ID                    string                `json:"id"`
	Category              Category              `json:"category"`
	Severity              Severity              `json:"severity"`
	Priority              Priority              `json:"priority"`
	Urgency               Urgency               `json:"urgency"`
	Location              *Location             `json:"location,omitempty"`
	Description           StructuredDescription `json:"description"`
	RecommendedServices   []string              `json:"recommendedServices"`
	EstimatedResponseTime string                `json:"estimatedResponseTime"`
	ActionItems           []string              `json:"actionItems"`
	UserRole              Role                  `json:"userRole"`
	Confidence            float64               `json:"confidence"`
	CreatedAt             time.Time             `json:"createdAt"`
	Status                Status                `json:"status"`
	MediaRef              string                `json:"mediaUrl,omitempty"`

	IncidentType    string   `json:"incidentType"`
	AffectedSystems []string `json:"affectedSystems"`
	UserImpact      string   `json:"userImpact"`
	BusinessImpact  string   `json:"businessImpact"`
	TechnicalIssues []string `json:"technicalIssues"`

	ImmediateActions []string             `json:"immediateActions"`
	EscalationPath   EscalationPath       `json:"escalationPath"`
	Communication    CommunicationPlan    `json:"communicationPlan"`
	Resources        ResourceRequirements `json:"resourceRequirements"`
}
