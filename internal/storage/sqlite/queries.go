package sqlite

const (
	createReportsTable = `
CREATE TABLE IF NOT EXISTS reports (
  id          TEXT PRIMARY KEY,
  kind        TEXT NOT NULL,
  range_from  TEXT NOT NULL,
  range_to    TEXT NOT NULL,
  created_at  TEXT NOT NULL,
  row_count   INTEGER NOT NULL,
  payload     BLOB NOT NULL
)`

	createCreatedAtIndex = `
CREATE INDEX IF NOT EXISTS reports_created_at ON reports (created_at)`

	addReport = `
INSERT INTO reports (id, kind, range_from, range_to, created_at, row_count, payload)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	listReports = `
SELECT id, kind, range_from, range_to, created_at, row_count
FROM reports
ORDER BY created_at DESC
LIMIT ?`

	getReportById = `
SELECT id, kind, range_from, range_to, created_at, row_count, payload
FROM reports
WHERE id = ?`
)
