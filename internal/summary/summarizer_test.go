package summary

import (
	"testing"

	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/internal/storage/models"
)

func TestRecommendedServicesCriticalAppends(t *testing.T) {
	services := RecommendedServices(models.CategoryFire, models.SeverityCritical)
	if services[0] != "fire_department" {
		t.Fatalf("base list must come first, got %v", services)
	}
	last := services[len(services)-1]
	if last != "emergency_management" {
		t.Fatalf("expected CRITICAL append, got %v", services)
	}
}

func TestRecommendedServicesHighAppends(t *testing.T) {
	services := RecommendedServices(models.CategoryMedical, models.SeverityHigh)
	if services[len(services)-2] != "supervisor" || services[len(services)-1] != "backup_team" {
		t.Fatalf("expected HIGH appends, got %v", services)
	}
}

func TestRecommendedServicesFallback(t *testing.T) {
	services := RecommendedServices(models.CategoryUnknown, models.SeverityLow)
	if len(services) != 1 || services[0] != "emergency_services" {
		t.Fatalf("expected fallback list, got %v", services)
	}
}

// The appends must never contaminate the shared tables across calls.
func TestRecommendedServicesCopyOnRead(t *testing.T) {
	first := RecommendedServices(models.CategoryFire, models.SeverityCritical)
	second := RecommendedServices(models.CategoryFire, models.SeverityLow)
	if len(second) >= len(first) {
		t.Fatalf("table contaminated: LOW call returned %v", second)
	}
	for _, s := range second {
		if s == "emergency_coordinator" {
			t.Fatalf("CRITICAL append leaked into table: %v", second)
		}
	}
}

func TestEstimatedResponseTime(t *testing.T) {
	if got := EstimatedResponseTime(models.CategoryFire); got != "3-6 minutes" {
		t.Fatalf("expected 3-6 minutes for FIRE, got %q", got)
	}
	if got := EstimatedResponseTime(models.CategoryUnknown); got != "5-8 minutes" {
		t.Fatalf("expected fallback 5-8 minutes, got %q", got)
	}
}

func TestActionItemsRoleThenCategory(t *testing.T) {
	items := ActionItems(models.CategoryFire, models.RoleWoman)
	if len(items) != 6 {
		t.Fatalf("expected 3 role + 3 category items, got %v", items)
	}
	if items[0] != "Move to a safe, well-lit area" {
		t.Fatalf("role items must come first, got %v", items)
	}
	if items[3] != "Evacuate immediately" {
		t.Fatalf("category items must follow, got %v", items)
	}
}

func TestActionItemsUnknownContributesNothing(t *testing.T) {
	items := ActionItems(models.CategoryNaturalDisaster, models.RoleUnknown)
	if len(items) != 0 {
		t.Fatalf("unknown role and uncovered category must yield no items, got %v", items)
	}
}

func TestBuildPriorityConsistentWithSeverity(t *testing.T) {
	severities := map[models.Severity]models.Priority{
		models.SeverityCritical: models.PriorityImmediate,
		models.SeverityHigh:     models.PriorityUrgent,
		models.SeverityMedium:   models.PriorityNormal,
		models.SeverityLow:      models.PriorityLow,
	}

	for severity, want := range severities {
		record := Build(classifier.TextSignal{Category: models.CategoryMedical}, severity, 0.7, nil, models.RoleLayman)
		if record.Priority != want {
			t.Fatalf("severity %s: expected priority %s, got %s", severity, want, record.Priority)
		}
	}
}

func TestBuildDefaults(t *testing.T) {
	record := Build(classifier.TextSignal{}, models.SeverityMedium, 0.5, nil, models.RoleLayman)
	if record.Category != models.CategoryUnknown {
		t.Fatalf("expected UNKNOWN category default, got %s", record.Category)
	}
	if record.Urgency != models.UrgencyMedium {
		t.Fatalf("expected MEDIUM urgency default, got %s", record.Urgency)
	}
	if record.UserImpact != "Unknown" || record.BusinessImpact != "Unknown" {
		t.Fatalf("expected Unknown impact defaults, got %+v", record)
	}
	if record.AffectedSystems == nil || record.TechnicalIssues == nil {
		t.Fatal("expected empty, non-nil slices")
	}
}

func TestBuildEscalationPath(t *testing.T) {
	record := Build(classifier.TextSignal{Category: models.CategoryFire}, models.SeverityCritical, 0.9, nil, models.RoleWoman)
	if record.EscalationPath.Immediate != "emergency_services" {
		t.Fatalf("expected emergency_services for CRITICAL, got %s", record.EscalationPath.Immediate)
	}
	if record.Resources.Personnel != "full_team" || record.Resources.Facilities != "emergency_center" {
		t.Fatalf("expected CRITICAL resource requirements, got %+v", record.Resources)
	}

	record = Build(classifier.TextSignal{Category: models.CategoryFire}, models.SeverityLow, 0.9, nil, models.RoleWoman)
	if record.EscalationPath.Immediate != "first_responder" {
		t.Fatalf("expected first_responder for LOW, got %s", record.EscalationPath.Immediate)
	}
}
