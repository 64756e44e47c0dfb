package sqlite

import (
	"strings"

	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

// clampPage applies pagination defaults and bounds.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = repository.DefaultPageSize
	}
	if limit > repository.MaxPageSize {
		limit = repository.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite exposes no typed error for this, so we
// match the message the engine produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
