package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/service"
)

const recordColumns = `id, user_id, type, code, metadata, metadata_type,
	account_name, account_number, created_at, updated_at, synced`

// UpsertRecords writes records durably; last write wins per record id.
// Every write stores the record's sync flag as-is, so a freshly mutated
// record lands dirty and stays dirty until a sync confirms it.
func (s *SQLiteStorage) UpsertRecords(ctx context.Context, records []model.QRRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.upsertRecordsTx(ctx, tx, records); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) upsertRecordsTx(ctx context.Context, tx *sql.Tx, records []model.QRRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO qr_records (
			id, user_id, type, code, metadata, metadata_type,
			account_name, account_number, created_at, updated_at, synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			type = excluded.type,
			code = excluded.code,
			metadata = excluded.metadata,
			metadata_type = excluded.metadata_type,
			account_name = excluded.account_name,
			account_number = excluded.account_number,
			updated_at = excluded.updated_at,
			synced = excluded.synced
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, rec := range records {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = now
		}

		if _, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.UserID,
			string(rec.Type),
			rec.Code,
			rec.Metadata,
			string(rec.MetadataType),
			rec.AccountName,
			rec.AccountNumber,
			rec.CreatedAt,
			rec.UpdatedAt,
			rec.Synced,
		); err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
	}

	return nil
}

// GetRecordByID returns a single record or common.ErrNotFound.
func (s *SQLiteStorage) GetRecordByID(ctx context.Context, id string) (*model.QRRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM qr_records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStorage) getRecordByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.QRRecord, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM qr_records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return rec, nil
}

// GetRecordsByUser returns a user's records, most recently updated first.
func (s *SQLiteStorage) GetRecordsByUser(ctx context.Context, userID string) ([]model.QRRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM qr_records
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for user %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

func (s *SQLiteStorage) getRecordsByUserTx(ctx context.Context, tx *sql.Tx, userID string) ([]model.QRRecord, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM qr_records
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for user %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

// GetRecords returns records matching the filter, most recent first.
func (s *SQLiteStorage) GetRecords(ctx context.Context, filter service.RecordFilter) ([]model.QRRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*filter.Type))
	}

	query := `SELECT ` + recordColumns + ` FROM qr_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

// GetUnsyncedRecords returns all dirty records, oldest mutation first so
// the backend sees edits in order.
func (s *SQLiteStorage) GetUnsyncedRecords(ctx context.Context) ([]model.QRRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM qr_records
		 WHERE synced = 0
		 ORDER BY updated_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsynced records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

func (s *SQLiteStorage) getUnsyncedRecordsTx(ctx context.Context, tx *sql.Tx) ([]model.QRRecord, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM qr_records
		 WHERE synced = 0
		 ORDER BY updated_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsynced records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

// MarkRecordsSynced flips the sync flag after a backend confirmation.
func (s *SQLiteStorage) MarkRecordsSynced(ctx context.Context, ids []string, syncedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.markRecordsSyncedTx(ctx, tx, ids, syncedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) markRecordsSyncedTx(ctx context.Context, tx *sql.Tx, ids []string, syncedAt time.Time) error {
	stmt, err := tx.PrepareContext(ctx,
		`UPDATE qr_records SET synced = 1, synced_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, syncedAt, id); err != nil {
			return fmt.Errorf("failed to mark record %s synced: %w", id, err)
		}
	}
	return nil
}

// DeleteRecord removes a record by id.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM qr_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: record %s", common.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStorage) deleteRecordTx(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM qr_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: record %s", common.ErrNotFound, id)
	}
	return nil
}

// GetRecordCount returns the total number of stored records.
func (s *SQLiteStorage) GetRecordCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qr_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.QRRecord, error) {
	var rec model.QRRecord
	var recType, metaType string

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&recType,
		&rec.Code,
		&rec.Metadata,
		&metaType,
		&rec.AccountName,
		&rec.AccountNumber,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.Synced,
	)
	if err != nil {
		return nil, err
	}

	rec.Type = model.RecordType(recType)
	rec.MetadataType = model.MetadataType(metaType)
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]model.QRRecord, error) {
	var records []model.QRRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}
