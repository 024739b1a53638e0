// Package archive opens the report archive named by a DSN.
package archive

import (
	"context"
	"strings"

	"github.com/BalanceBalls/timedoctor-reports/internal/storage"
	"github.com/BalanceBalls/timedoctor-reports/internal/storage/postgres"
	"github.com/BalanceBalls/timedoctor-reports/internal/storage/sqlite"
)

// Open connects to Postgres for postgres:// and postgresql:// DSNs and
// treats anything else as a sqlite file path. The schema is created if missing.
func Open(ctx context.Context, dsn string) (storage.Storage, error) {
	var (
		st  storage.Storage
		err error
	)

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		st, err = postgres.New(ctx, dsn)
	} else {
		st, err = sqlite.New(ctx, dsn)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Up(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return st, nil
}
