package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Staff struct {
	ID       string
	Name     string
	Username string
}

type CreateStaffInput struct {
	ID       string
	Name     string
	Username string
}

func (s *Store) CreateStaff(ctx context.Context, input CreateStaffInput) (Staff, error) {
	record := Staff{
		ID:       strings.TrimSpace(input.ID),
		Name:     strings.TrimSpace(input.Name),
		Username: strings.ToLower(strings.TrimSpace(input.Username)),
	}
	if record.Name == "" || record.Username == "" {
		return Staff{}, fmt.Errorf("staff name and username are required")
	}
	if record.ID == "" {
		record.ID = "stf_" + uuid.NewString()
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO staff (id, name, username, created_at_unix) VALUES (?, ?, ?, ?)`,
		record.ID,
		record.Name,
		record.Username,
		s.now().Unix(),
	); err != nil {
		return Staff{}, fmt.Errorf("insert staff: %w", err)
	}
	return record, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, username FROM staff ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	results := []Staff{}
	for rows.Next() {
		var record Staff
		if err := rows.Scan(&record.ID, &record.Name, &record.Username); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
