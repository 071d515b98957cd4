package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/allinone/backend/internal/broadcast"
	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/internal/storage/sqlite"
	"github.com/allinone/backend/internal/triage"
	"github.com/allinone/backend/pkg/idgen"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]models.IncidentRecord
	order   []string
}

func (s *memStore) InsertIncident(_ context.Context, record *models.IncidentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = *record
	s.order = append(s.order, record.ID)
	return nil
}

func (s *memStore) GetIncident(_ context.Context, id string) (*models.IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	return &record, nil
}

func (s *memStore) RecentIncidents(_ context.Context, n int) ([]models.IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []models.IncidentRecord
	for i := len(s.order) - 1; i >= 0 && len(records) < n; i-- {
		records = append(records, s.records[s.order[i]])
	}
	return records, nil
}

func (s *memStore) AttachMedia(_ context.Context, id, mediaRef string) (*models.IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	record.MediaRef = mediaRef
	s.records[id] = record
	return &record, nil
}

func (s *memStore) SetStatus(_ context.Context, id string, status models.Status) (*models.IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	record.Status = status
	s.records[id] = record
	return &record, nil
}

type nopSink struct{}

func (nopSink) Broadcast(broadcast.Event) {}

func newTestApp() *fiber.App {
	orchestrator := triage.NewOrchestrator(triage.Deps{
		Classifier: classifier.NewHeuristic(),
		Store:      &memStore{records: make(map[string]models.IncidentRecord)},
		Dispatcher: broadcast.NewDispatcher(broadcast.NewRecentSet(100), nopSink{}),
		IDs:        &idgen.Sequential{Prefix: "EMG"},
	})

	h := NewEmergencyHandler(orchestrator)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/emergency", h.HandleSubmit)
	api.Get("/emergencies", h.HandleRecent)
	api.Get("/emergency/:id", h.HandleGet)
	api.Patch("/emergency/:id", h.HandleUpdate)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	return doJSON(t, app, "POST", path, body)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}

	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("failed to decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestSubmitMissingDescription(t *testing.T) {
	app := newTestApp()

	status, body := postJSON(t, app, "/api/v1/emergency", map[string]interface{}{
		"description": "   ",
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["code"] != "MISSING_DESCRIPTION" {
		t.Fatalf("expected MISSING_DESCRIPTION code, got %v", body["code"])
	}
}

func TestSubmitReturnsIncidentAndPlan(t *testing.T) {
	app := newTestApp()

	status, body := postJSON(t, app, "/api/v1/emergency", map[string]interface{}{
		"description": "There is a fire in the building",
		"userRole":    "WOMAN",
		"location":    map[string]float64{"lat": 12.97, "lng": 77.59},
	})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}

	incident, ok := body["incident"].(map[string]interface{})
	if !ok {
		t.Fatalf("response missing incident: %v", body)
	}
	if incident["category"] != "FIRE" {
		t.Fatalf("expected FIRE category, got %v", incident["category"])
	}
	if incident["status"] != "ACTIVE" {
		t.Fatalf("expected ACTIVE status, got %v", incident["status"])
	}
	if _, ok := body["responsePlan"].(map[string]interface{}); !ok {
		t.Fatalf("response missing responsePlan: %v", body)
	}
}

func TestRecentListsSubmissions(t *testing.T) {
	app := newTestApp()

	for _, description := range []string{"fire in kitchen", "chest pain and dizziness"} {
		status, _ := postJSON(t, app, "/api/v1/emergency", map[string]interface{}{
			"description": description,
		})
		if status != fiber.StatusOK {
			t.Fatalf("submit failed with %d", status)
		}
	}

	status, body := doJSON(t, app, "GET", "/api/v1/emergencies", nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["count"] != float64(2) {
		t.Fatalf("expected 2 incidents, got %v", body["count"])
	}
}

func TestGetIncidentByID(t *testing.T) {
	app := newTestApp()

	status, created := postJSON(t, app, "/api/v1/emergency", map[string]interface{}{
		"description": "fire in the basement",
	})
	if status != fiber.StatusOK {
		t.Fatalf("submit failed with %d", status)
	}
	id := created["incident"].(map[string]interface{})["id"].(string)

	status, body := doJSON(t, app, "GET", "/api/v1/emergency/"+id, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}
	incident := body["incident"].(map[string]interface{})
	if incident["id"] != id {
		t.Fatalf("expected incident %s, got %v", id, incident["id"])
	}
}

func TestGetUnknownIncident(t *testing.T) {
	app := newTestApp()

	status, body := doJSON(t, app, "GET", "/api/v1/emergency/EMG-missing", nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND code, got %v", body["code"])
	}
}

func TestUpdateUnknownIncident(t *testing.T) {
	app := newTestApp()

	status, body := doJSON(t, app, "PATCH", "/api/v1/emergency/EMG-missing", map[string]interface{}{
		"mediaUrl": "/uploads/x.mp4",
	})
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND code, got %v", body["code"])
	}
}

func TestUpdateAttachesMedia(t *testing.T) {
	app := newTestApp()

	status, created := postJSON(t, app, "/api/v1/emergency", map[string]interface{}{
		"description": "smoke coming from the garage",
	})
	if status != fiber.StatusOK {
		t.Fatalf("submit failed with %d", status)
	}
	id := created["incident"].(map[string]interface{})["id"].(string)

	status, body := doJSON(t, app, "PATCH", "/api/v1/emergency/"+id, map[string]interface{}{
		"mediaUrl": "/uploads/scene.jpg",
	})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}
	incident := body["incident"].(map[string]interface{})
	if incident["mediaUrl"] != "/uploads/scene.jpg" {
		t.Fatalf("media not attached: %v", incident)
	}
}

func TestUpdateRejectsEmptyBody(t *testing.T) {
	app := newTestApp()

	status, body := doJSON(t, app, "PATCH", "/api/v1/emergency/EMG-1", map[string]interface{}{})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["code"] != "EMPTY_UPDATE" {
		t.Fatalf("expected EMPTY_UPDATE code, got %v", body["code"])
	}
}
