package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/revshift/revshift-server/internal/domain"
)

// RolloutRecordRepo implements [domain.RolloutRecordRepository] backed by SQLite.
type RolloutRecordRepo struct {
	DB *sql.DB
}

func (r *RolloutRecordRepo) Put(ctx context.Context, rec domain.RolloutRecord) error {
	splits, err := json.Marshal(rec.Splits)
	if err != nil {
		return fmt.Errorf("marshal splits: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO rollout_records (id, service_id, splits, state, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   service_id = excluded.service_id,
		   splits = excluded.splits,
		   state = excluded.state,
		   updated_at = excluded.updated_at`,
		rec.ID, string(rec.ServiceID), string(splits),
		string(rec.State), rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert rollout record: %w", err)
	}
	return nil
}

func (r *RolloutRecordRepo) Get(ctx context.Context, id string) (domain.RolloutRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, service_id, splits, state, updated_at
		 FROM rollout_records WHERE id = ?`,
		id,
	)
	return scanRolloutRecord(row)
}

func (r *RolloutRecordRepo) ListByService(ctx context.Context, serviceID domain.ServiceID) ([]domain.RolloutRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, service_id, splits, state, updated_at
		 FROM rollout_records WHERE service_id = ? ORDER BY updated_at, id`,
		string(serviceID),
	)
	if err != nil {
		return nil, fmt.Errorf("list rollout records: %w", err)
	}
	defer rows.Close()

	var records []domain.RolloutRecord
	for rows.Next() {
		rec, err := scanRolloutRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *RolloutRecordRepo) DeleteByService(ctx context.Context, serviceID domain.ServiceID) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM rollout_records WHERE service_id = ?`,
		string(serviceID),
	)
	if err != nil {
		return fmt.Errorf("delete rollout records: %w", err)
	}
	return nil
}

func scanRolloutRecord(s scanner) (domain.RolloutRecord, error) {
	var rec domain.RolloutRecord
	var serviceID, splitsJSON, stateStr, updatedAtStr string
	if err := s.Scan(&rec.ID, &serviceID, &splitsJSON, &stateStr, &updatedAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return rec, fmt.Errorf("scan rollout record: %w", err)
	}
	rec.ServiceID = domain.ServiceID(serviceID)
	rec.State = domain.RolloutState(stateStr)
	if err := json.Unmarshal([]byte(splitsJSON), &rec.Splits); err != nil {
		return rec, fmt.Errorf("unmarshal splits: %w", err)
	}
	t, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return rec, fmt.Errorf("parse updated_at: %w", err)
	}
	rec.UpdatedAt = t
	return rec, nil
}
