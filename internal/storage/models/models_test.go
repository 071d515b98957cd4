package models

import "testing"

func TestPriorityForCoversEverySeverity(t *testing.T) {
	cases := map[Severity]Priority{
		SeverityCritical: PriorityImmediate,
		SeverityHigh:     PriorityUrgent,
		SeverityMedium:   PriorityNormal,
		SeverityLow:      PriorityLow,
	}

	for severity, want := range cases {
		if got := PriorityFor(severity); got != want {
			t.Fatalf("PriorityFor(%s) = %s, want %s", severity, got, want)
		}
	}
}

func TestPriorityForUnknownSeverityDefaultsToNormal(t *testing.T) {
	if got := PriorityFor(Severity("BOGUS")); got != PriorityNormal {
		t.Fatalf("unknown severity must map to NORMAL, got %s", got)
	}
}
