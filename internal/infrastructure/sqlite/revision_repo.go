package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/revshift/revshift-server/internal/domain"
)

// RevisionRepo implements [domain.RevisionRepository] backed by SQLite.
type RevisionRepo struct {
	DB *sql.DB
}

func (r *RevisionRepo) Create(ctx context.Context, rev domain.Revision) error {
	ready := 0
	if rev.Ready {
		ready = 1
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO revisions (service_id, name, ready, created_at) VALUES (?, ?, ?, ?)`,
		string(rev.ServiceID), rev.Name, ready, rev.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("revision %q: %w", rev.Name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func (r *RevisionRepo) Get(ctx context.Context, serviceID domain.ServiceID, name string) (domain.Revision, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT service_id, name, ready, created_at FROM revisions
		 WHERE service_id = ? AND name = ?`,
		string(serviceID), name,
	)
	return scanRevision(row)
}

func (r *RevisionRepo) ListByService(ctx context.Context, serviceID domain.ServiceID) ([]domain.Revision, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT service_id, name, ready, created_at FROM revisions
		 WHERE service_id = ? ORDER BY created_at, name`,
		string(serviceID),
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []domain.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

func (r *RevisionRepo) DeleteByService(ctx context.Context, serviceID domain.ServiceID) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM revisions WHERE service_id = ?`,
		string(serviceID),
	)
	if err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return nil
}

func scanRevision(s scanner) (domain.Revision, error) {
	var rev domain.Revision
	var serviceID, createdAtStr string
	var ready int
	if err := s.Scan(&serviceID, &rev.Name, &ready, &createdAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rev, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return rev, fmt.Errorf("scan revision: %w", err)
	}
	rev.ServiceID = domain.ServiceID(serviceID)
	rev.Ready = ready != 0
	t, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return rev, fmt.Errorf("parse created_at: %w", err)
	}
	rev.CreatedAt = t
	return rev, nil
}
