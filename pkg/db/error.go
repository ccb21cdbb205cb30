package db

import "strings"

// IsPermissionDenied reports whether the error is a missing read grant.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	// PostgreSQL (error code 42501)
	if strings.Contains(msg, "permission denied") {
		return true
	}

	// MySQL (error code 1142)
	if strings.Contains(msg, "Error 1142") || strings.Contains(msg, "command denied") {
		return true
	}

	// Snowflake-style engines
	if strings.Contains(msg, "not authorized") || strings.Contains(msg, "Insufficient privileges") {
		return true
	}

	return false
}

// IsUndefinedRelation reports whether the error is a missing table or view.
func IsUndefinedRelation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	// PostgreSQL (error code 42P01)
	if strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation") {
		return true
	}

	// MySQL (error code 1146)
	if strings.Contains(msg, "Error 1146") || strings.Contains(msg, "doesn't exist") {
		return true
	}

	// SQLite
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such view") {
		return true
	}

	// Snowflake-style engines
	if strings.Contains(msg, "does not exist or not authorized") {
		return true
	}

	return false
}
