package training

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a training record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	const query = `
INSERT INTO training_jobs (
	id, material, thickness_mm, num_letters, num_shapes, complexity_score, has_intricate_details,
	width_mm, height_mm, cutting_type, cutting_time_minutes, quantity, rush_job, actual_price, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.DB.ExecContext(ctx, query,
		record.ID,
		record.Material,
		record.ThicknessMM,
		record.NumLetters,
		record.NumShapes,
		record.ComplexityScore,
		record.HasIntricateDetails,
		record.WidthMM,
		record.HeightMM,
		record.CuttingType,
		record.CuttingTimeMinutes,
		record.Quantity,
		record.RushJob,
		record.ActualPrice,
		record.CreatedAt,
	)
	return err
}

// All returns every record, oldest first.
func (r *PGRepo) All(ctx context.Context) ([]Record, error) {
	const query = `
SELECT id, material, thickness_mm, num_letters, num_shapes, complexity_score, has_intricate_details,
       width_mm, height_mm, cutting_type, cutting_time_minutes, quantity, rush_job, actual_price, created_at
FROM training_jobs
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Material,
			&rec.ThicknessMM,
			&rec.NumLetters,
			&rec.NumShapes,
			&rec.ComplexityScore,
			&rec.HasIntricateDetails,
			&rec.WidthMM,
			&rec.HeightMM,
			&rec.CuttingType,
			&rec.CuttingTimeMinutes,
			&rec.Quantity,
			&rec.RushJob,
			&rec.ActualPrice,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

var _ Repo = (*PGRepo)(nil)
