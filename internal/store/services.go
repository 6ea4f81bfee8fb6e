package store

import (
	"context"
	"database/sql"
	"fmt"

	"salonbook/internal/model"
)

// CreateService inserts a catalog entry.
func (s *Store) CreateService(ctx context.Context, svc *model.Service) error {
	_, err := s.ExecContext(ctx,
		"INSERT INTO services (id, catalogue_id, name, duration, price) VALUES (?, ?, ?, ?, ?)",
		svc.ID, svc.CatalogueID, svc.Name, svc.DurationRaw, svc.Price,
	)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// GetService looks up one catalog entry.
func (s *Store) GetService(ctx context.Context, id string) (*model.Service, error) {
	var svc model.Service
	err := s.QueryRowContext(ctx,
		"SELECT id, catalogue_id, name, duration, price FROM services WHERE id = ?", id,
	).Scan(&svc.ID, &svc.CatalogueID, &svc.Name, &svc.DurationRaw, &svc.Price)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select service: %w", err)
	}
	return &svc, nil
}

// GetServices resolves an ordered id list, preserving order. A missing id
// fails the whole lookup.
func (s *Store) GetServices(ctx context.Context, ids []string) ([]model.Service, error) {
	out := make([]model.Service, 0, len(ids))
	for _, id := range ids {
		svc, err := s.GetService(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", id, err)
		}
		out = append(out, *svc)
	}
	return out, nil
}

// ListServices returns the whole catalog ordered by catalogue and name.
func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT id, catalogue_id, name, duration, price FROM services ORDER BY catalogue_id, name")
	if err != nil {
		return nil, fmt.Errorf("select services: %w", err)
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.CatalogueID, &svc.Name, &svc.DurationRaw, &svc.Price); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}
