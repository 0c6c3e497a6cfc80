package quotes

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the quote header and its items in one transaction.
func (r *PGRepo) Create(ctx context.Context, quote Quote) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertQuote = `
INSERT INTO quotes (
	id, quote_number, customer_name, customer_email, customer_phone, customer_whatsapp,
	notes, total, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = tx.ExecContext(ctx, insertQuote,
		quote.ID,
		quote.QuoteNumber,
		quote.CustomerName,
		nullString(quote.CustomerEmail),
		nullString(quote.CustomerPhone),
		nullString(quote.CustomerWhatsApp),
		nullString(quote.Notes),
		quote.Total,
		quote.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateNumber
		}
		return err
	}

	const insertItem = `
INSERT INTO quote_items (
	quote_id, position, item_name, material, thickness_mm, num_letters, num_shapes,
	complexity_score, has_intricate_details, width_mm, height_mm, cutting_type,
	cutting_time_minutes, quantity, rush_job, item_price
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	for i, item := range quote.Items {
		if _, err := tx.ExecContext(ctx, insertItem,
			quote.ID,
			i,
			item.ItemName,
			item.Material,
			item.ThicknessMM,
			item.NumLetters,
			item.NumShapes,
			item.ComplexityScore,
			item.HasIntricateDetails,
			item.WidthMM,
			item.HeightMM,
			item.CuttingType,
			item.CuttingTimeMinutes,
			item.Quantity,
			item.RushJob,
			item.ItemPrice,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LastNumber returns the highest issued number with the given prefix.
func (r *PGRepo) LastNumber(ctx context.Context, prefix string) (string, error) {
	const query = `
SELECT quote_number
FROM quotes
WHERE quote_number LIKE $1
ORDER BY length(quote_number) DESC, quote_number DESC
LIMIT 1`
	var number string
	err := r.DB.QueryRowContext(ctx, query, escapeLike(prefix)+"%").Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return number, nil
}

const headerColumns = `
q.id, q.quote_number, q.customer_name, q.customer_email, q.customer_phone, q.customer_whatsapp,
q.notes, q.total, q.created_at,
(SELECT COUNT(*) FROM quote_items i WHERE i.quote_id = q.id)`

// GetByID returns a quote with its items.
func (r *PGRepo) GetByID(ctx context.Context, quoteID string) (Quote, error) {
	query := `SELECT` + headerColumns + `
FROM quotes q
WHERE q.id = $1
LIMIT 1`
	quote, err := scanHeader(r.DB.QueryRowContext(ctx, query, quoteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, err
	}

	const itemsQuery = `
SELECT item_name, material, thickness_mm, num_letters, num_shapes, complexity_score,
       has_intricate_details, width_mm, height_mm, cutting_type, cutting_time_minutes,
       quantity, rush_job, item_price
FROM quote_items
WHERE quote_id = $1
ORDER BY position ASC`
	rows, err := r.DB.QueryContext(ctx, itemsQuery, quoteID)
	if err != nil {
		return Quote{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ItemName,
			&item.Material,
			&item.ThicknessMM,
			&item.NumLetters,
			&item.NumShapes,
			&item.ComplexityScore,
			&item.HasIntricateDetails,
			&item.WidthMM,
			&item.HeightMM,
			&item.CuttingType,
			&item.CuttingTimeMinutes,
			&item.Quantity,
			&item.RushJob,
			&item.ItemPrice,
		); err != nil {
			return Quote{}, err
		}
		quote.Items = append(quote.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Quote{}, err
	}
	return quote, nil
}

// List returns quote headers, newest first, with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Quote, error) {
	query := `SELECT` + headerColumns + `
FROM quotes q
ORDER BY q.created_at DESC, q.quote_number DESC
LIMIT $1 OFFSET $2`
	return r.queryHeaders(ctx, query, nullLimit(limit), offset)
}

// Search matches the customer name or quote number, ignoring case.
func (r *PGRepo) Search(ctx context.Context, query string, limit int) ([]Quote, error) {
	stmt := `SELECT` + headerColumns + `
FROM quotes q
WHERE q.customer_name ILIKE $1 OR q.quote_number ILIKE $1
ORDER BY q.created_at DESC
LIMIT $2`
	return r.queryHeaders(ctx, stmt, "%"+escapeLike(query)+"%", nullLimit(limit))
}

// Delete removes a quote; items go with it through the foreign key.
func (r *PGRepo) Delete(ctx context.Context, quoteID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1`, quoteID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) queryHeaders(ctx context.Context, query string, args ...any) ([]Quote, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []Quote{}
	for rows.Next() {
		q, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quotes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHeader(row rowScanner) (Quote, error) {
	var q Quote
	var email, phone, whatsapp, notes sql.NullString
	if err := row.Scan(
		&q.ID,
		&q.QuoteNumber,
		&q.CustomerName,
		&email,
		&phone,
		&whatsapp,
		&notes,
		&q.Total,
		&q.CreatedAt,
		&q.ItemCount,
	); err != nil {
		return Quote{}, err
	}
	q.CustomerEmail = email.String
	q.CustomerPhone = phone.String
	q.CustomerWhatsApp = whatsapp.String
	q.Notes = notes.String
	return q, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullLimit(limit int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ Repo = (*PGRepo)(nil)
