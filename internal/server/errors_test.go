package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	backupservice "github.com/smallbiznis/flowsight/internal/backup/service"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorDataUnavailable(t *testing.T) {
	status, payload := mapError(fmt.Errorf("credit usage: %w", warehouse.ErrDataUnavailable))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "data_unavailable", payload.Type)
	assert.Contains(t, payload.Hint, "openflow_cost_analysis")
	assert.Contains(t, payload.Hint, "Create the view")
}

func TestMapErrorPermissionDenied(t *testing.T) {
	status, payload := mapError(fmt.Errorf("credit usage: %w", warehouse.ErrPermissionDenied))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "permission_denied", payload.Type)
	assert.Contains(t, payload.Hint, "Grant SELECT")
}

func TestMapErrorQueryError(t *testing.T) {
	qe := &warehouse.QueryError{Op: "credit usage", Err: errors.New("connection reset")}
	status, payload := mapError(qe)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "query_error", payload.Type)
	assert.Contains(t, payload.Message, "connection reset")
	assert.Contains(t, payload.Hint, "twenty columns")
}

func TestMapErrorValidation(t *testing.T) {
	status, payload := mapError(newValidationError("lookback_minutes", "invalid_int", "must be an integer"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	assert.Len(t, payload.Errors, 1)
	assert.Equal(t, "lookback_minutes", payload.Errors[0].Field)
}

func TestMapErrorNotFound(t *testing.T) {
	status, payload := mapError(gorm.ErrRecordNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)

	status, _ = mapError(fmt.Errorf("%w: ghost", backupservice.ErrUnknownConnector))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMapErrorFallback(t *testing.T) {
	status, payload := mapError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", payload.Type)
	// never leak the raw error on unclassified failures
	assert.NotContains(t, payload.Message, "boom")
}

func TestClassifyErrorForLog(t *testing.T) {
	bucket, code := classifyErrorForLog(fmt.Errorf("op: %w", warehouse.ErrDataUnavailable))
	assert.Equal(t, "client_error", bucket)
	assert.Equal(t, "data_unavailable", code)

	bucket, code = classifyErrorForLog(&warehouse.QueryError{Op: "op", Err: errors.New("x")})
	assert.Equal(t, "upstream_error", bucket)
	assert.Equal(t, "query_error", code)

	bucket, _ = classifyErrorForLog(newValidationError("f", "c", "m"))
	assert.Equal(t, "client_error", bucket)

	bucket, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "server_error", bucket)
	assert.Equal(t, "internal_error", code)
}
