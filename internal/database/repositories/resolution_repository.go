package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/modules/matching"
)

// ResolutionRun is a persisted resolution with its summary columns
// denormalized for listing without deserializing the full document.
type ResolutionRun struct {
	ID                 string    `json:"id"`
	FilingID           string    `json:"filing_id"`
	EngineVersion      string    `json:"engine_version"`
	TotalComponents    int       `json:"total_components"`
	Resolved           int       `json:"resolved"`
	Unresolved         int       `json:"unresolved"`
	ResolutionRate     float64   `json:"resolution_rate"`
	HighConfidenceRate float64   `json:"high_confidence_rate"`
	CreatedAt          time.Time `json:"created_at"`
}

// ResolutionRepository stores and retrieves resolution runs.
type ResolutionRepository struct {
	*BaseRepository
}

// NewResolutionRepository creates a resolution repository.
func NewResolutionRepository(db *sql.DB, log zerolog.Logger) *ResolutionRepository {
	return &ResolutionRepository{
		BaseRepository: NewBase(db, log.With().Str("repo", "resolution").Logger()),
	}
}

// SaveRun persists a resolution map and returns the generated run id.
func (r *ResolutionRepository) SaveRun(resolution *matching.ResolutionMap) (string, error) {
	doc, err := json.Marshal(resolution)
	if err != nil {
		return "", fmt.Errorf("serializing resolution map: %w", err)
	}

	id := uuid.NewString()
	summary := resolution.Summary()

	_, err = r.DB().Exec(`
		INSERT INTO resolution_runs (
			id, filing_id, engine_version,
			total_components, resolved, unresolved,
			resolution_rate, high_confidence_rate, resolution_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, resolution.FilingID, resolution.EngineVersion,
		summary.TotalComponents, summary.Resolved, summary.Unresolved,
		summary.ResolutionRate, summary.HighConfidenceRate, string(doc),
	)
	if err != nil {
		return "", fmt.Errorf("inserting resolution run: %w", err)
	}

	r.log.Debug().
		Str("run_id", id).
		Str("filing_id", resolution.FilingID).
		Msg("Resolution run saved")

	return id, nil
}

// GetRun loads a single run with its full resolution map.
func (r *ResolutionRepository) GetRun(id string) (*ResolutionRun, *matching.ResolutionMap, error) {
	row := r.DB().QueryRow(`
		SELECT id, filing_id, engine_version,
		       total_components, resolved, unresolved,
		       resolution_rate, high_confidence_rate,
		       resolution_json, created_at
		FROM resolution_runs WHERE id = ?`, id)

	var run ResolutionRun
	var doc, createdAt string
	err := row.Scan(
		&run.ID, &run.FilingID, &run.EngineVersion,
		&run.TotalComponents, &run.Resolved, &run.Unresolved,
		&run.ResolutionRate, &run.HighConfidenceRate,
		&doc, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading resolution run: %w", err)
	}
	run.CreatedAt = parseTimestamp(createdAt)

	var resolution matching.ResolutionMap
	if err := json.Unmarshal([]byte(doc), &resolution); err != nil {
		return nil, nil, fmt.Errorf("deserializing resolution map: %w", err)
	}

	return &run, &resolution, nil
}

// ListRuns returns the most recent runs, optionally filtered by
// filing id.
func (r *ResolutionRepository) ListRuns(filingID string, limit int) ([]ResolutionRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, filing_id, engine_version,
		       total_components, resolved, unresolved,
		       resolution_rate, high_confidence_rate, created_at
		FROM resolution_runs`
	args := []interface{}{}
	if filingID != "" {
		query += " WHERE filing_id = ?"
		args = append(args, filingID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing resolution runs: %w", err)
	}
	defer rows.Close()

	var runs []ResolutionRun
	for rows.Next() {
		var run ResolutionRun
		var createdAt string
		err := rows.Scan(
			&run.ID, &run.FilingID, &run.EngineVersion,
			&run.TotalComponents, &run.Resolved, &run.Unresolved,
			&run.ResolutionRate, &run.HighConfidenceRate, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning resolution run: %w", err)
		}
		run.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
