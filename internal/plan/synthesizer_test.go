package plan

import (
	"testing"

	"github.com/allinone/backend/internal/storage/models"
)

func TestEscalationMatrixContract(t *testing.T) {
	p := Synthesize(models.CategoryFire, models.SeverityLow, models.PriorityLow, models.RoleLayman)
	if p.EscalationMatrix.Level1 != "local_team" {
		t.Fatalf("LOW severity must map level1 to local_team, got %s", p.EscalationMatrix.Level1)
	}
	if p.EscalationMatrix.AutoEscalation != "15_minutes" {
		t.Fatalf("non-IMMEDIATE priority must auto-escalate in 15_minutes, got %s", p.EscalationMatrix.AutoEscalation)
	}

	p = Synthesize(models.CategoryFire, models.SeverityCritical, models.PriorityImmediate, models.RoleLayman)
	if p.EscalationMatrix.Level1 != "emergency_services" {
		t.Fatalf("non-LOW severity must map level1 to emergency_services, got %s", p.EscalationMatrix.Level1)
	}
	if p.EscalationMatrix.Level3 != "emergency_management" {
		t.Fatalf("CRITICAL severity must map level3 to emergency_management, got %s", p.EscalationMatrix.Level3)
	}
	if p.EscalationMatrix.AutoEscalation != "5_minutes" {
		t.Fatalf("IMMEDIATE priority must auto-escalate in 5_minutes, got %s", p.EscalationMatrix.AutoEscalation)
	}
}

func TestCoordinationStakeholdersByRole(t *testing.T) {
	p := Synthesize(models.CategoryMedical, models.SeverityHigh, models.PriorityUrgent, models.RoleSenior)
	found := false
	for _, s := range p.CoordinationPlan.Stakeholders {
		if s == "caregiver" {
			found = true
		}
	}
	if !found {
		t.Fatalf("SENIOR role must add caregiver, got %v", p.CoordinationPlan.Stakeholders)
	}

	p = Synthesize(models.CategoryMedical, models.SeverityHigh, models.PriorityUrgent, models.RoleChild)
	if p.CoordinationPlan.Stakeholders[len(p.CoordinationPlan.Stakeholders)-1] != "school_authorities" {
		t.Fatalf("CHILD role must add school_authorities, got %v", p.CoordinationPlan.Stakeholders)
	}
}

func TestNotificationSequenceByPriority(t *testing.T) {
	p := Synthesize(models.CategoryFire, models.SeverityCritical, models.PriorityImmediate, models.RoleWoman)
	seq := p.CoordinationPlan.NotificationSequence
	if len(seq) != 3 || seq[0] != "emergency_services" || seq[2] != "work" {
		t.Fatalf("unexpected IMMEDIATE sequence %v", seq)
	}

	p = Synthesize(models.CategoryFire, models.SeverityLow, models.PriorityLow, models.RoleWoman)
	seq = p.CoordinationPlan.NotificationSequence
	if len(seq) != 1 || seq[0] != "coordinator" {
		t.Fatalf("unexpected LOW sequence %v", seq)
	}
}

func TestFallbackValuesNeverEmpty(t *testing.T) {
	p := Synthesize(models.CategoryUnknown, models.SeverityMedium, models.PriorityNormal, models.RoleUnknown)
	if p.ImmediateResponse.FirstResponder != "emergency_responder" {
		t.Fatalf("expected fallback first responder, got %s", p.ImmediateResponse.FirstResponder)
	}
	if p.CoordinationPlan.PrimaryContact != "emergency_coordinator" {
		t.Fatalf("expected fallback primary contact, got %s", p.CoordinationPlan.PrimaryContact)
	}
	if len(p.ResourceAllocation.Equipment) == 0 || p.ResourceAllocation.Equipment[0] != "standard_equipment" {
		t.Fatalf("expected fallback equipment, got %v", p.ResourceAllocation.Equipment)
	}
	if len(p.ResourceAllocation.Vehicles) == 0 || p.ResourceAllocation.Vehicles[0] != "emergency_vehicle" {
		t.Fatalf("expected fallback vehicle, got %v", p.ResourceAllocation.Vehicles)
	}
	if p.ResourceAllocation.Facilities != "local_facility" {
		t.Fatalf("expected local_facility, got %s", p.ResourceAllocation.Facilities)
	}
}

func TestCommunicationStrategyCriticalOverrides(t *testing.T) {
	p := Synthesize(models.CategoryFire, models.SeverityCritical, models.PriorityImmediate, models.RoleWoman)
	if p.CommunicationStrategy.PublicAnnouncements != "immediate" {
		t.Fatalf("expected immediate announcements, got %s", p.CommunicationStrategy.PublicAnnouncements)
	}
	if p.CommunicationStrategy.MediaHandling != "designated_spokesperson" {
		t.Fatalf("expected designated_spokesperson, got %s", p.CommunicationStrategy.MediaHandling)
	}

	p = Synthesize(models.CategoryFire, models.SeverityMedium, models.PriorityNormal, models.RoleWoman)
	if p.CommunicationStrategy.PublicAnnouncements != "as_needed" || p.CommunicationStrategy.MediaHandling != "standard_protocol" {
		t.Fatalf("unexpected non-critical strategy %+v", p.CommunicationStrategy)
	}
}

func TestEquipmentCopyOnRead(t *testing.T) {
	first := Synthesize(models.CategoryMedical, models.SeverityHigh, models.PriorityUrgent, models.RoleLayman)
	first.ResourceAllocation.Equipment[0] = "tampered"
	second := Synthesize(models.CategoryMedical, models.SeverityHigh, models.PriorityUrgent, models.RoleLayman)
	if second.ResourceAllocation.Equipment[0] != "first_aid_kit" {
		t.Fatalf("equipment table contaminated: %v", second.ResourceAllocation.Equipment)
	}
}
