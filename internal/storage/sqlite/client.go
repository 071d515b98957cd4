package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/pkg/logger"
)

var ErrNotFound = errors.New("incident not found")

// Client is the durable incident store. Records are append-only: inserts
// never overwrite, and the only permitted mutations are attaching a media
// reference and changing the status.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		severity TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		media_ref TEXT,
		confidence REAL NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_incidents_created ON incidents(created_at);
	CREATE INDEX IF NOT EXISTS idx_incidents_category ON incidents(category);
	CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertIncident(ctx context.Context, record *models.IncidentRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal incident: %w", err)
	}

	query := `
		INSERT INTO incidents (id, category, severity, priority, status, media_ref, confidence, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = c.db.ExecContext(ctx, query,
		record.ID,
		record.Category,
		record.Severity,
		record.Priority,
		record.Status,
		record.MediaRef,
		record.Confidence,
		string(payload),
		record.CreatedAt.Unix(),
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}

	logger.Debug("Incident persisted",
		zap.String("incident_id", record.ID),
		zap.String("category", string(record.Category)),
	)
	return nil
}

func (c *Client) GetIncident(ctx context.Context, id string) (*models.IncidentRecord, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM incidents WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	var record models.IncidentRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident: %w", err)
	}
	return &record, nil
}

// AttachMedia sets the media reference on an existing incident and returns
// the updated record.
func (c *Client) AttachMedia(ctx context.Context, id, mediaRef string) (*models.IncidentRecord, error) {
	return c.mutate(ctx, id, func(record *models.IncidentRecord) {
		record.MediaRef = mediaRef
	})
}

// SetStatus transitions an incident's status and returns the updated record.
func (c *Client) SetStatus(ctx context.Context, id string, status models.Status) (*models.IncidentRecord, error) {
	return c.mutate(ctx, id, func(record *models.IncidentRecord) {
		record.Status = status
	})
}

func (c *Client) mutate(ctx context.Context, id string, apply func(*models.IncidentRecord)) (*models.IncidentRecord, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var payload string
	err = tx.QueryRowContext(ctx, `SELECT payload FROM incidents WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}

	var record models.IncidentRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident: %w", err)
	}

	apply(&record)

	updated, err := json.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal incident: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE incidents SET payload = ?, status = ?, media_ref = ?, updated_at = ? WHERE id = ?`,
		string(updated), record.Status, record.MediaRef, time.Now().Unix(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	logger.Debug("Incident updated", zap.String("incident_id", id))
	return &record, nil
}

// RecentIncidents returns the n most recently created incidents, newest
// first.
func (c *Client) RecentIncidents(ctx context.Context, n int) ([]models.IncidentRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT payload FROM incidents ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var records []models.IncidentRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		var record models.IncidentRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal incident: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
