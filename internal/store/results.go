package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type resultRepo struct {
	db *sql.DB
}

const resultColumns = `id, session_id, type_code, secondary_type, confidence, confidence_level,
	test_length, total_responses, completed_at, payload`

func (r *resultRepo) SaveResult(ctx context.Context, rec *ResultRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	payload := string(rec.Payload)
	if payload == "" {
		payload = "{}"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Type, rec.SecondaryType, rec.Confidence, rec.ConfidenceLevel,
		rec.TestLength, rec.TotalResponses, formatTime(rec.CompletedAt), payload)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func scanResult(s scanner) (ResultRecord, error) {
	var (
		rec     ResultRecord
		ts      string
		payload string
	)
	err := s.Scan(&rec.ID, &rec.SessionID, &rec.Type, &rec.SecondaryType, &rec.Confidence, &rec.ConfidenceLevel,
		&rec.TestLength, &rec.TotalResponses, &ts, &payload)
	if err != nil {
		return rec, err
	}
	rec.Payload = []byte(payload)
	rec.CompletedAt, err = parseTime(ts)
	return rec, err
}

func (r *resultRepo) ListResults(ctx context.Context, limit int) ([]ResultRecord, error) {
	q := `SELECT ` + resultColumns + ` FROM results ORDER BY completed_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ErrAmbiguousID is returned when a result ID prefix matches several rows.
var ErrAmbiguousID = errors.New("ambiguous result id")

func (r *resultRepo) GetResult(ctx context.Context, id string) (*ResultRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		id, id+"%", id)
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	defer rows.Close()

	var found []ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(found) == 0:
		return nil, nil
	case found[0].ID == id || len(found) == 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
}

func (r *resultRepo) TypeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT type_code, COUNT(*) FROM results GROUP BY type_code`)
	if err != nil {
		return nil, fmt.Errorf("type counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			code string
			n    int
		)
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		out[code] = n
	}
	return out, rows.Err()
}
