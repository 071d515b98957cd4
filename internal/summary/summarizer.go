// Package summary turns a fused classification into the canonical incident
// record fields. Everything here is a pure lookup over fixed tables; the
// tables themselves are never handed out by reference.
package summary

import (
	"fmt"

	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/internal/storage/models"
)

var serviceTable = map[models.Category][]string{
	models.CategoryMedical:         {"ambulance", "hospital", "emergency_room", "paramedic"},
	models.CategoryFire:            {"fire_department", "ambulance", "police", "emergency_services"},
	models.CategorySecurity:        {"police", "ambulance", "security"},
	models.CategoryAccident:        {"ambulance", "police", "fire_department", "tow_truck"},
	models.CategoryNaturalDisaster: {"emergency_services", "police", "fire_department", "rescue"},
	models.CategoryTechnical:       {"technical_support", "emergency_services"},
}

var fallbackServices = []string{"emergency_services"}

var responseBaseMinutes = map[models.Category]int{
	models.CategoryMedical:         5,
	models.CategoryFire:            3,
	models.CategorySecurity:        4,
	models.CategoryAccident:        6,
	models.CategoryNaturalDisaster: 8,
	models.CategoryTechnical:       10,
}

const fallbackBaseMinutes = 5

var roleActionItems = map[models.Role][]string{
	models.RoleSenior: {
		"Stay calm and seated if possible",
		"Keep emergency contacts nearby",
		"Follow medical instructions carefully",
	},
	models.RoleChild: {
		"Stay with a trusted adult",
		"Don't hide or run away",
		"Listen to emergency instructions",
	},
	models.RoleWoman: {
		"Move to a safe, well-lit area",
		"Keep phone accessible",
		"Contact emergency contacts",
	},
	models.RoleLayman: {
		"Assess the situation safely",
		"Call emergency services if needed",
		"Follow safety protocols",
	},
}

var categoryActionItems = map[models.Category][]string{
	models.CategoryMedical: {
		"Keep the person calm and comfortable",
		"Don't move them if injured",
		"Monitor breathing and consciousness",
	},
	models.CategoryFire: {
		"Evacuate immediately",
		"Don't use elevators",
		"Stay low to avoid smoke",
	},
	models.CategorySecurity: {
		"Lock doors and windows",
		"Stay quiet and hidden",
		"Call police immediately",
	},
	models.CategoryTechnical: {
		"Document the issue",
		"Contact technical support",
		"Follow system protocols",
	},
}

var immediateActionTable = map[models.Category][]string{
	models.CategoryMedical:   {"Assess consciousness", "Check breathing", "Call ambulance"},
	models.CategoryFire:      {"Evacuate area", "Call fire department", "Account for people"},
	models.CategorySecurity:  {"Secure location", "Call police", "Document incident"},
	models.CategoryTechnical: {"Isolate affected systems", "Contact IT support", "Assess impact"},
}

var fallbackImmediateActions = []string{"Assess situation", "Call appropriate services"}

// Build assembles the incident fields from the text signal and the fused
// severity. The orchestrator assigns identity, timestamps, and status.
func Build(signal classifier.TextSignal, severity models.Severity, confidence float64, location *models.Location, role models.Role) models.IncidentRecord {
	category := signal.Category
	if category == "" {
		category = models.CategoryUnknown
	}

	urgency := signal.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}

	return models.IncidentRecord{
		Category:              category,
		Severity:              severity,
		Priority:              models.PriorityFor(severity),
		Urgency:               urgency,
		Location:              location,
		Description:           structuredDescription(signal),
		RecommendedServices:   RecommendedServices(category, severity),
		EstimatedResponseTime: EstimatedResponseTime(category),
		ActionItems:           ActionItems(category, role),
		UserRole:              role,
		Confidence:            confidence,

		IncidentType:    signal.IncidentType,
		AffectedSystems: orEmpty(signal.AffectedSystems),
		UserImpact:      orUnknown(signal.UserImpact),
		BusinessImpact:  orUnknown(signal.BusinessImpact),
		TechnicalIssues: orEmpty(signal.TechnicalIssues),

		ImmediateActions: ImmediateActions(category),
		EscalationPath:   escalationPath(severity),
		Communication:    communicationPlan(),
		Resources:        resourceRequirements(severity),
	}
}

// RecommendedServices returns the category's base service list with the
// severity-driven additions. The returned slice is always a fresh copy so
// the appends can never leak back into the table.
func RecommendedServices(category models.Category, severity models.Severity) []string {
	base, ok := serviceTable[category]
	if !ok {
		base = fallbackServices
	}

	services := make([]string, len(base), len(base)+2)
	copy(services, base)

	if severity == models.SeverityCritical {
		services = append(services, "emergency_coordinator", "emergency_management")
	}
	if severity == models.SeverityHigh {
		services = append(services, "supervisor", "backup_team")
	}

	return services
}

func EstimatedResponseTime(category models.Category) string {
	base, ok := responseBaseMinutes[category]
	if !ok {
		base = fallbackBaseMinutes
	}
	return fmt.Sprintf("%d-%d minutes", base, base+3)
}

// ActionItems concatenates role-specific items with category-specific items,
// in that order. Unknown roles or categories simply contribute nothing.
func ActionItems(category models.Category, role models.Role) []string {
	items := make([]string, 0, 6)
	items = append(items, roleActionItems[role]...)
	items = append(items, categoryActionItems[category]...)
	return items
}

func ImmediateActions(category models.Category) []string {
	actions, ok := immediateActionTable[category]
	if !ok {
		actions = fallbackImmediateActions
	}
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}

func escalationPath(severity models.Severity) models.EscalationPath {
	path := models.EscalationPath{
		Immediate: "first_responder",
		Secondary: "team_lead",
		Tertiary:  "coordinator",
	}
	if severity == models.SeverityCritical {
		path.Immediate = "emergency_services"
	}
	if severity == models.SeverityHigh {
		path.Secondary = "supervisor"
	}
	if severity == models.SeverityMedium {
		path.Tertiary = "manager"
	}
	return path
}

func communicationPlan() models.CommunicationPlan {
	return models.CommunicationPlan{
		Primary:   "emergency_services",
		Secondary: "family_contacts",
		Tertiary:  "work_contacts",
		Channels:  []string{"phone", "sms", "app", "email"},
	}
}

func resourceRequirements(severity models.Severity) models.ResourceRequirements {
	req := models.ResourceRequirements{
		Personnel:  "minimal_team",
		Equipment:  "standard",
		Vehicles:   "single",
		Facilities: "local_facility",
	}
	if severity == models.SeverityCritical {
		req.Personnel = "full_team"
		req.Vehicles = "multiple"
		req.Facilities = "emergency_center"
	}
	return req
}

func structuredDescription(signal classifier.TextSignal) models.StructuredDescription {
	return models.StructuredDescription{
		Category:          signal.Category,
		Severity:          signal.Severity,
		Urgency:           signal.Urgency,
		Keywords:          orEmpty(signal.Keywords),
		MedicalIndicators: orEmpty(signal.MedicalIndicators),
		SafetyConcerns:    orEmpty(signal.SafetyConcerns),
		TechnicalIssues:   orEmpty(signal.TechnicalIssues),
		AffectedSystems:   orEmpty(signal.AffectedSystems),
		UserImpact:        signal.UserImpact,
		BusinessImpact:    signal.BusinessImpact,
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
