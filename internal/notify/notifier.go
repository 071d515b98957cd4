// Package notify is the outbound alert channel contract. The engine decides
// when to alert and what the message says; delivery is a collaborator
// concern behind the Notifier interface.
package notify

import (
	"context"
	"fmt"

	"github.com/allinone/backend/internal/storage/models"
)

// Alert is the payload handed to the notification channel for every urgent
// incident. The engine invokes it exactly once per record.
type Alert struct {
	IncidentID string           `json:"incidentId"`
	Role       models.Role      `json:"role"`
	Category   models.Category  `json:"category"`
	Priority   models.Priority  `json:"priority"`
	Summary    string           `json:"summary"`
	Location   *models.Location `json:"location,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// FormatMessage renders the alert body sent over SMS or read out by voice.
func FormatMessage(alert Alert) string {
	location := "N/A"
	if alert.Location != nil {
		location = fmt.Sprintf("%g,%g", alert.Location.Lat, alert.Location.Lng)
	}
	return fmt.Sprintf("EMERGENCY ALERT\nCategory: %s\nRole: %s\nLocation: %s\n%s",
		alert.Category, alert.Role, location, alert.Summary)
}

// Nop discards alerts. Used when no notification channel is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error {
	return nil
}
