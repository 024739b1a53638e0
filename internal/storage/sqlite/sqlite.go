package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/storage"
)

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SqliteStorage struct {
	db *sql.DB
}

func New(ctx context.Context, name string) (*SqliteStorage, error) {
	logger.GetFromContext(ctx).DebugContext(ctx, "initializing DB...", "db_name", name)
	db, err := sql.Open("sqlite3", name)

	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not access database: %w", err)
	}

	return &SqliteStorage{db: db}, nil
}

func (s *SqliteStorage) Up(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createReportsTable); err != nil {
		return fmt.Errorf("could not create table reports: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, createCreatedAtIndex); err != nil {
		return fmt.Errorf("could not create reports index: %w", err)
	}

	return nil
}

func (s *SqliteStorage) Save(ctx context.Context, a storage.Archived) error {
	_, err := s.db.ExecContext(ctx, addReport,
		a.Id.String(), string(a.Kind), formatTime(a.From), formatTime(a.To), formatTime(a.CreatedAt.UTC()), a.RowCount, a.Payload)
	if err != nil {
		return fmt.Errorf("could not save report: %w", err)
	}

	return nil
}

func (s *SqliteStorage) List(ctx context.Context, limit int) ([]storage.Archived, error) {
	rows, err := s.db.QueryContext(ctx, listReports, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list reports: %w", err)
	}
	defer rows.Close()

	result := []storage.Archived{}
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.id, &r.kind, &r.from, &r.to, &r.createdAt, &r.rowCount); err != nil {
			return nil, fmt.Errorf("failed to fetch row: %w", err)
		}

		a, err := r.archived()
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list reports: %w", err)
	}

	return result, nil
}

func (s *SqliteStorage) Report(ctx context.Context, id uuid.UUID) (storage.Archived, error) {
	var r record
	err := s.db.QueryRowContext(ctx, getReportById, id.String()).
		Scan(&r.id, &r.kind, &r.from, &r.to, &r.createdAt, &r.rowCount, &r.payload)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Archived{}, fmt.Errorf("%w: %s", storage.ErrReportNotFound, id)
		}

		return storage.Archived{}, fmt.Errorf("failed to fetch row: %w", err)
	}

	return r.archived()
}

func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

// record is a reports row as sqlite stores it, with times as text.
type record struct {
	id        string
	kind      string
	from      string
	to        string
	createdAt string
	rowCount  int
	payload   []byte
}

func (r record) archived() (storage.Archived, error) {
	id, err := uuid.Parse(r.id)
	if err != nil {
		return storage.Archived{}, fmt.Errorf("bad report id %q: %w", r.id, err)
	}

	a := storage.Archived{Id: id, Kind: report.Kind(r.kind), RowCount: r.rowCount, Payload: r.payload}
	for dst, raw := range map[*time.Time]string{&a.From: r.from, &a.To: r.to, &a.CreatedAt: r.createdAt} {
		t, err := time.Parse(timeLayout, raw)
		if err != nil {
			return storage.Archived{}, fmt.Errorf("bad timestamp %q in report %s: %w", raw, r.id, err)
		}
		*dst = t
	}

	return a, nil
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}
