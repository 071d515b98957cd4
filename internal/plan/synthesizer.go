// Package plan derives the operational response plan from a summarized
// incident. The field names and fallback values are a fixed contract with
// downstream consumers; do not rename or restructure them.
package plan

import (
	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/internal/summary"
)

type ResponsePlan struct {
	ImmediateResponse     ImmediateResponse     `json:"immediateResponse"`
	EscalationMatrix      EscalationMatrix      `json:"escalationMatrix"`
	CoordinationPlan      CoordinationPlan      `json:"coordinationPlan"`
	ResourceAllocation    ResourceAllocation    `json:"resourceAllocation"`
	CommunicationStrategy CommunicationStrategy `json:"communicationStrategy"`
}

type ImmediateResponse struct {
	FirstResponder        string   `json:"firstResponder"`
	EstimatedArrival      string   `json:"estimatedArrival"`
	InitialActions        []string `json:"initialActions"`
	CommunicationChannels []string `json:"communicationChannels"`
}

type EscalationMatrix struct {
	Level1         string `json:"level1"`
	Level2         string `json:"level2"`
	Level3         string `json:"level3"`
	AutoEscalation string `json:"autoEscalation"`
}

type CoordinationPlan struct {
	PrimaryContact       string   `json:"primaryContact"`
	BackupContact        string   `json:"backupContact"`
	Stakeholders         []string `json:"stakeholders"`
	NotificationSequence []string `json:"notificationSequence"`
}

type ResourceAllocation struct {
	Personnel  string   `json:"personnel"`
	Equipment  []string `json:"equipment"`
	Vehicles   []string `json:"vehicles"`
	Facilities string   `json:"facilities"`
}

type CommunicationStrategy struct {
	InternalUpdates     string `json:"internalUpdates"`
	ExternalUpdates     string `json:"externalUpdates"`
	PublicAnnouncements string `json:"publicAnnouncements"`
	MediaHandling       string `json:"mediaHandling"`
}

var firstResponderTable = map[models.Category]string{
	models.CategoryMedical:   "paramedic",
	models.CategoryFire:      "firefighter",
	models.CategorySecurity:  "police_officer",
	models.CategoryTechnical: "technical_specialist",
}

var primaryContactTable = map[models.Category]string{
	models.CategoryMedical:   "emergency_medical_services",
	models.CategoryFire:      "fire_department",
	models.CategorySecurity:  "police_department",
	models.CategoryTechnical: "it_support_team",
}

var equipmentTable = map[models.Category][]string{
	models.CategoryMedical:   {"first_aid_kit", "defibrillator", "medical_supplies"},
	models.CategoryFire:      {"fire_extinguisher", "safety_equipment", "evacuation_gear"},
	models.CategorySecurity:  {"communication_devices", "safety_equipment"},
	models.CategoryTechnical: {"diagnostic_tools", "backup_systems"},
}

var vehicleTable = map[models.Category][]string{
	models.CategoryMedical:   {"ambulance"},
	models.CategoryFire:      {"fire_truck", "ambulance"},
	models.CategorySecurity:  {"police_vehicle"},
	models.CategoryTechnical: {"service_vehicle"},
}

var notificationSequenceTable = map[models.Priority][]string{
	models.PriorityImmediate: {"emergency_services", "family", "work"},
	models.PriorityUrgent:    {"emergency_services", "family"},
	models.PriorityNormal:    {"coordinator", "family"},
	models.PriorityLow:       {"coordinator"},
}

// Synthesize expands the incident into the full response plan. Pure function
// of category, severity, priority, and role.
func Synthesize(category models.Category, severity models.Severity, priority models.Priority, role models.Role) ResponsePlan {
	return ResponsePlan{
		ImmediateResponse: ImmediateResponse{
			FirstResponder:        lookup(firstResponderTable, category, "emergency_responder"),
			EstimatedArrival:      summary.EstimatedResponseTime(category),
			InitialActions:        summary.ImmediateActions(category),
			CommunicationChannels: []string{"phone", "sms", "app_notification"},
		},
		EscalationMatrix:      escalationMatrix(severity, priority),
		CoordinationPlan:      coordinationPlan(category, priority, role),
		ResourceAllocation:    resourceAllocation(category, severity),
		CommunicationStrategy: communicationStrategy(severity),
	}
}

func escalationMatrix(severity models.Severity, priority models.Priority) EscalationMatrix {
	matrix := EscalationMatrix{
		Level1:         "emergency_services",
		Level2:         "supervisor",
		Level3:         "manager",
		AutoEscalation: "15_minutes",
	}
	if severity == models.SeverityLow {
		matrix.Level1 = "local_team"
	}
	if severity == models.SeverityHigh {
		matrix.Level2 = "emergency_coordinator"
	}
	if severity == models.SeverityCritical {
		matrix.Level3 = "emergency_management"
	}
	if priority == models.PriorityImmediate {
		matrix.AutoEscalation = "5_minutes"
	}
	return matrix
}

func coordinationPlan(category models.Category, priority models.Priority, role models.Role) CoordinationPlan {
	stakeholders := []string{"emergency_services", "family_contacts"}
	switch role {
	case models.RoleSenior:
		stakeholders = append(stakeholders, "medical_provider", "caregiver")
	case models.RoleChild:
		stakeholders = append(stakeholders, "parents", "school_authorities")
	}

	sequence, ok := notificationSequenceTable[priority]
	if !ok {
		sequence = notificationSequenceTable[models.PriorityNormal]
	}
	out := make([]string, len(sequence))
	copy(out, sequence)

	return CoordinationPlan{
		PrimaryContact:       lookup(primaryContactTable, category, "emergency_coordinator"),
		BackupContact:        "backup_coordinator",
		Stakeholders:         stakeholders,
		NotificationSequence: out,
	}
}

func resourceAllocation(category models.Category, severity models.Severity) ResourceAllocation {
	personnel := "minimal_response_team"
	if severity == models.SeverityCritical {
		personnel = "full_emergency_team"
	}

	return ResourceAllocation{
		Personnel:  personnel,
		Equipment:  lookupList(equipmentTable, category, []string{"standard_equipment"}),
		Vehicles:   lookupList(vehicleTable, category, []string{"emergency_vehicle"}),
		Facilities: "local_facility",
	}
}

func communicationStrategy(severity models.Severity) CommunicationStrategy {
	strategy := CommunicationStrategy{
		InternalUpdates:     "every_5_minutes",
		ExternalUpdates:     "every_15_minutes",
		PublicAnnouncements: "as_needed",
		MediaHandling:       "standard_protocol",
	}
	if severity == models.SeverityCritical {
		strategy.PublicAnnouncements = "immediate"
		strategy.MediaHandling = "designated_spokesperson"
	}
	return strategy
}

func lookup(table map[models.Category]string, category models.Category, fallback string) string {
	if v, ok := table[category]; ok {
		return v
	}
	return fallback
}

func lookupList(table map[models.Category][]string, category models.Category, fallback []string) []string {
	base, ok := table[category]
	if !ok {
		base = fallback
	}
	out := make([]string, len(base))
	copy(out, base)
	return out
}
