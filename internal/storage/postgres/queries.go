package postgres

const (
	createReportsTable = `
CREATE TABLE IF NOT EXISTS reports (
  id          UUID PRIMARY KEY,
  kind        TEXT NOT NULL,
  range_from  TIMESTAMPTZ NOT NULL,
  range_to    TIMESTAMPTZ NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL,
  row_count   INTEGER NOT NULL,
  payload     BYTEA NOT NULL
)`

	createCreatedAtIndex = `
CREATE INDEX IF NOT EXISTS reports_created_at ON reports (created_at)`

	addReport = `
INSERT INTO reports (id, kind, range_from, range_to, created_at, row_count, payload)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listReports = `
SELECT id, kind, range_from, range_to, created_at, row_count
FROM reports
ORDER BY created_at DESC
LIMIT $1`

	getReportById = `
SELECT id, kind, range_from, range_to, created_at, row_count, payload
FROM reports
WHERE id = $1`
)
