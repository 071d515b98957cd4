package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allinone/backend/pkg/circuitbreaker"
	"github.com/allinone/backend/pkg/logger"
)

// Webhook posts alerts to an SMS/voice gateway endpoint. Each delivery
// carries an idempotency key so gateway retries cannot double-send.
type Webhook struct {
	url        string
	contact    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewWebhook(url, contact string, timeout time.Duration) *Webhook {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	cb := circuitbreaker.New("notifier", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	return &Webhook{
		url:        url,
		contact:    contact,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

func (w *Webhook) Notify(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(map[string]interface{}{
		"to":       w.contact,
		"message":  FormatMessage(alert),
		"priority": alert.Priority,
		"alert":    alert,
	})
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	return w.cb.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build notification request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", uuid.New().String())

		resp, err := w.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to deliver notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("notification gateway returned status %d", resp.StatusCode)
		}

		logger.Info("Notification delivered",
			zap.String("incident_id", alert.IncidentID),
			zap.String("priority", string(alert.Priority)),
		)
		return nil
	})
}
