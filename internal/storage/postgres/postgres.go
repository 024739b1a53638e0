package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/storage"
)

type PostgresStorage struct {
	db *sql.DB
}

func New(ctx context.Context, connectionString string) (*PostgresStorage, error) {
	logger.GetFromContext(ctx).DebugContext(ctx, "initializing Postgres DB...")
	db, err := sql.Open("postgres", connectionString)

	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not access database: %w", err)
	}

	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) Up(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createReportsTable); err != nil {
		return fmt.Errorf("could not create table reports: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, createCreatedAtIndex); err != nil {
		return fmt.Errorf("could not create reports index: %w", err)
	}

	return nil
}

func (s *PostgresStorage) Save(ctx context.Context, a storage.Archived) error {
	_, err := s.db.ExecContext(ctx, addReport,
		a.Id.String(), string(a.Kind), a.From, a.To, a.CreatedAt, a.RowCount, a.Payload)
	if err != nil {
		return fmt.Errorf("could not save report: %w", err)
	}

	return nil
}

func (s *PostgresStorage) List(ctx context.Context, limit int) ([]storage.Archived, error) {
	rows, err := s.db.QueryContext(ctx, listReports, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list reports: %w", err)
	}

	defer rows.Close()

	result := []storage.Archived{}
	for rows.Next() {
		var (
			a    storage.Archived
			id   string
			kind string
		)
		if err := rows.Scan(&id, &kind, &a.From, &a.To, &a.CreatedAt, &a.RowCount); err != nil {
			return nil, fmt.Errorf("failed to fetch row: %w", err)
		}

		if a.Id, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad report id %q: %w", id, err)
		}
		a.Kind = report.Kind(kind)
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list reports: %w", err)
	}

	return result, nil
}

func (s *PostgresStorage) Report(ctx context.Context, id uuid.UUID) (storage.Archived, error) {
	a := storage.Archived{Id: id}
	var rawId, kind string

	err := s.db.QueryRowContext(ctx, getReportById, id.String()).
		Scan(&rawId, &kind, &a.From, &a.To, &a.CreatedAt, &a.RowCount, &a.Payload)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Archived{}, fmt.Errorf("%w: %s", storage.ErrReportNotFound, id)
		}

		return storage.Archived{}, fmt.Errorf("failed to fetch row: %w", err)
	}

	a.Kind = report.Kind(kind)
	return a, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
