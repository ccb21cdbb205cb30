package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// parseOptionalInt parses a query value, leaving def when the value is empty.
func parseOptionalInt(value string, def int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parseList splits a comma-separated query value, dropping empty entries.
// Unknown values are kept as-is; they simply match no rows downstream.
func parseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseSnowflakeID(value string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed == 0 {
		return 0, newValidationError("id", "invalid_id", "id must be a snowflake identifier")
	}
	return parsed, nil
}
