package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/revshift/revshift-server/internal/domain"
)

// ServiceRepo implements [domain.ServiceRepository] backed by SQLite.
type ServiceRepo struct {
	DB *sql.DB
}

func (r *ServiceRepo) Create(ctx context.Context, s domain.Service) error {
	splits, err := json.Marshal(s.Splits)
	if err != nil {
		return fmt.Errorf("marshal splits: %w", err)
	}
	observed, err := json.Marshal(s.ObservedSplits)
	if err != nil {
		return fmt.Errorf("marshal observed splits: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO services (id, name, splits, observed_splits, latest_ready_revision, state)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(s.ID), s.Name, string(splits), string(observed), s.LatestReadyRevision, string(s.State),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("service %q: %w", s.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *ServiceRepo) Get(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, name, splits, observed_splits, latest_ready_revision, state
		 FROM services WHERE id = ?`,
		string(id),
	)
	return scanService(row)
}

func (r *ServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, splits, observed_splits, latest_ready_revision, state
		 FROM services`,
	)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *ServiceRepo) Update(ctx context.Context, s domain.Service) error {
	splits, _ := json.Marshal(s.Splits)
	observed, _ := json.Marshal(s.ObservedSplits)

	res, err := r.DB.ExecContext(ctx,
		`UPDATE services
		 SET name = ?, splits = ?, observed_splits = ?, latest_ready_revision = ?, state = ?
		 WHERE id = ?`,
		s.Name, string(splits), string(observed), s.LatestReadyRevision, string(s.State), string(s.ID),
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("service %q: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ServiceRepo) Delete(ctx context.Context, id domain.ServiceID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("service %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanService(s scanner) (domain.Service, error) {
	var svc domain.Service
	var id, splitsJSON, observedJSON, stateStr string
	if err := s.Scan(&id, &svc.Name, &splitsJSON, &observedJSON, &svc.LatestReadyRevision, &stateStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return svc, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return svc, fmt.Errorf("scan service: %w", err)
	}
	svc.ID = domain.ServiceID(id)
	svc.State = domain.ServiceState(stateStr)

	if err := json.Unmarshal([]byte(splitsJSON), &svc.Splits); err != nil {
		return svc, fmt.Errorf("unmarshal splits: %w", err)
	}
	if err := json.Unmarshal([]byte(observedJSON), &svc.ObservedSplits); err != nil {
		return svc, fmt.Errorf("unmarshal observed splits: %w", err)
	}
	return svc, nil
}
