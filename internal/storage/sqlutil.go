package storage

import (
	"database/sql"
	"time"
)

// sqliteTimeFormat is the DATETIME format SQLite's CURRENT_TIMESTAMP emits.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// nullable converts an empty string to a SQL NULL so foreign key columns
// stay valid when a reference is absent.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// strOf unwraps a nullable text column into a plain string.
func strOf(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// parseDBTime parses a DATETIME column value.
// SQLite may emit either its default format or RFC3339 depending on how the
// value was written.
func parseDBTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeFormat, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// formatDBTime renders a timestamp in the format parseDBTime expects first.
func formatDBTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeFormat)
}
