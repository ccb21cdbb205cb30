package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFromRoute(t *testing.T) {
	assert.Equal(t, "credit-usage", pageFromRoute("/api/v1/credit-usage"))
	assert.Equal(t, "credit-usage", pageFromRoute("/api/v1/credit-usage/export"))
	assert.Equal(t, "backups", pageFromRoute("/api/v1/backups/schedules/:id"))
	assert.Equal(t, "", pageFromRoute("/health"))
	assert.Equal(t, "", pageFromRoute("unknown"))
}
