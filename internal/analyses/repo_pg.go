package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"cutquote-backend/internal/design"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a finished analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, file_name, format, storage_key, size_bytes, status, items, report,
	error_message, duration_ms, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	items, err := json.Marshal(analysis.Items)
	if err != nil {
		return err
	}
	report, err := json.Marshal(analysis.Report)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.FileName,
		string(analysis.Format),
		nullString(analysis.StorageKey),
		analysis.SizeBytes,
		analysis.Status,
		items,
		report,
		nullString(analysis.ErrorMessage),
		analysis.DurationMs,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID, including its items and report.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, file_name, format, storage_key, size_bytes, status, error_message, duration_ms, created_at,
       items, report
FROM analyses
WHERE id = $1
LIMIT 1`
	var items, report []byte
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID), &items, &report)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &a.Items); err != nil {
			return Analysis{}, err
		}
	}
	if len(report) > 0 && string(report) != "null" {
		var rep design.Report
		if err := json.Unmarshal(report, &rep); err != nil {
			return Analysis{}, err
		}
		a.Report = &rep
	}
	return a, nil
}

// List returns analyses newest first, with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	const query = `
SELECT id, file_name, format, storage_key, size_bytes, status, error_message, duration_ms, created_at
FROM analyses
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, sql.NullInt64{Int64: int64(limit), Valid: limit > 0}, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return analyses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner, extra ...any) (Analysis, error) {
	var a Analysis
	var format string
	var storageKey, errorMessage sql.NullString
	dest := []any{
		&a.ID,
		&a.FileName,
		&format,
		&storageKey,
		&a.SizeBytes,
		&a.Status,
		&errorMessage,
		&a.DurationMs,
		&a.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Analysis{}, err
	}
	a.Format = design.Format(format)
	a.StorageKey = storageKey.String
	a.ErrorMessage = errorMessage.String
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
