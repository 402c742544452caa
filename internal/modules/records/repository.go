package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/database"
	"github.com/aristath/turnips/internal/domain"
)

// ErrNotFound is returned when a batch or record does not exist.
var ErrNotFound = errors.New("not found")

const recordColumns = `id, batch_id, position, owner, island_name, week_index, purchase_price,
	prices, previous_pattern, current_pattern`

const batchColumns = `id, source, layout, started_at, finished_at, rows_total, rows_blank,
	records_parsed, rows_skipped, weeks`

// Repository stores batches in the records database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a records repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "records").Logger(),
	}
}

// SaveBatch writes the batch with its records and skipped rows in one
// transaction. Record positions follow slice order.
func (r *Repository) SaveBatch(ctx context.Context, batch Batch, recs []domain.WeeklyRecord, skipped []SkippedRow) error {
	if batch.ID == "" {
		return fmt.Errorf("batch id is required")
	}

	err := database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ingest_batches (`+batchColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.ID, batch.Source, batch.Layout,
			batch.StartedAt.Unix(), batch.FinishedAt.Unix(),
			batch.RowsTotal, batch.RowsBlank, batch.RecordsParsed, batch.RowsSkipped, batch.Weeks,
		)
		if err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}

		recordStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO weekly_records (batch_id, position, owner, island_name, week_index,
				purchase_price, prices, previous_pattern, current_pattern)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare record insert: %w", err)
		}
		defer recordStmt.Close()

		for i, rec := range recs {
			prices, err := encodePrices(rec.Prices)
			if err != nil {
				return err
			}
			_, err = recordStmt.ExecContext(ctx,
				batch.ID, i, rec.Owner, rec.IslandName, rec.WeekIndex, rec.PurchasePrice,
				prices, int(rec.PreviousPattern), int(rec.CurrentPattern),
			)
			if err != nil {
				return fmt.Errorf("failed to insert record %d: %w", i, err)
			}
		}

		for _, row := range skipped {
			cells, err := encodeCells(row.Cells)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO skipped_rows (batch_id, week_index, reason, cells)
				VALUES (?, ?, ?, ?)`,
				batch.ID, row.WeekIndex, row.Reason, cells,
			)
			if err != nil {
				return fmt.Errorf("failed to insert skipped row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
	}

	r.log.Debug().
		Str("batch_id", batch.ID).
		Int("records", len(recs)).
		Int("skipped", len(skipped)).
		Msg("Saved batch")
	return nil
}

// GetBatch returns the batch with id.
func (r *Repository) GetBatch(ctx context.Context, id string) (*Batch, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM ingest_batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch %s: %w", id, err)
	}
	return batch, nil
}

// LatestBatch returns the most recently started batch, or ErrNotFound.
func (r *Repository) LatestBatch(ctx context.Context) (*Batch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+batchColumns+` FROM ingest_batches
		ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest batch: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns batches newest first. limit <= 0 means no limit.
func (r *Repository) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+batchColumns+` FROM ingest_batches
		ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	batches := make([]Batch, 0)
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, *batch)
	}
	return batches, rows.Err()
}

// GetRecords returns the records of a batch in input order, optionally
// restricted to one week.
func (r *Repository) GetRecords(ctx context.Context, batchID string, week *int) ([]StoredRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM weekly_records WHERE batch_id = ?`
	args := []interface{}{batchID}
	if week != nil {
		query += ` AND week_index = ?`
		args = append(args, *week)
	}
	query += ` ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	out := make([]StoredRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// GetRecord returns one stored record by id.
func (r *Repository) GetRecord(ctx context.Context, id int64) (*StoredRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM weekly_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	return rec, err
}

// GetSkippedRows returns the rejected rows of a batch.
func (r *Repository) GetSkippedRows(ctx context.Context, batchID string) ([]SkippedRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT week_index, reason, cells FROM skipped_rows
		WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skipped rows: %w", err)
	}
	defer rows.Close()

	out := make([]SkippedRow, 0)
	for rows.Next() {
		var row SkippedRow
		var blob []byte
		if err := rows.Scan(&row.WeekIndex, &row.Reason, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan skipped row: %w", err)
		}
		if row.Cells, err = decodeCells(blob); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CountRecords returns the number of stored records across all batches.
func (r *Repository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weekly_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// PruneBatches deletes all but the newest keep batches. Records and skipped
// rows go with their batch. Returns the number of batches removed.
func (r *Repository) PruneBatches(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM ingest_batches WHERE id NOT IN (
			SELECT id FROM ingest_batches ORDER BY started_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune batches: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(s scanner) (*Batch, error) {
	var b Batch
	var started, finished int64
	err := s.Scan(&b.ID, &b.Source, &b.Layout, &started, &finished,
		&b.RowsTotal, &b.RowsBlank, &b.RecordsParsed, &b.RowsSkipped, &b.Weeks)
	if err != nil {
		return nil, err
	}
	b.StartedAt = time.Unix(started, 0).UTC()
	b.FinishedAt = time.Unix(finished, 0).UTC()
	return &b, nil
}

func scanRecord(s scanner) (*StoredRecord, error) {
	var rec StoredRecord
	var blob []byte
	var previous, current int
	err := s.Scan(&rec.ID, &rec.BatchID, &rec.Position, &rec.Owner, &rec.IslandName,
		&rec.WeekIndex, &rec.PurchasePrice, &blob, &previous, &current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	if rec.Prices, err = decodePrices(blob); err != nil {
		return nil, err
	}
	rec.PreviousPattern = domain.PatternCategory(previous)
	rec.CurrentPattern = domain.PatternCategory(current)
	return &rec, nil
}
