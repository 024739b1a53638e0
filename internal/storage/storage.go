// Package storage archives rendered reports so past runs can be listed and
// printed again.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

var ErrReportNotFound = errors.New("report not found")

type Storage interface {
	Up(ctx context.Context) error
	Save(ctx context.Context, a Archived) error
	List(ctx context.Context, limit int) ([]Archived, error)
	Report(ctx context.Context, id uuid.UUID) (Archived, error)
	Close() error
}

// Archived is one stored report. Payload is the zstd compressed JSON report
// and is left empty by List.
type Archived struct {
	Id        uuid.UUID
	Kind      report.Kind
	From      time.Time
	To        time.Time
	CreatedAt time.Time
	RowCount  int
	Payload   []byte
}

// NewArchived encodes rep under a fresh id.
func NewArchived(id uuid.UUID, rep report.Report) (Archived, error) {
	payload, err := Encode(rep)
	if err != nil {
		return Archived{}, err
	}

	return Archived{
		Id:        id,
		Kind:      rep.Kind,
		From:      rep.Range.From,
		To:        rep.Range.To,
		CreatedAt: rep.GeneratedAt,
		RowCount:  rep.Len(),
		Payload:   payload,
	}, nil
}
