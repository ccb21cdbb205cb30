package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	backupservice "github.com/smallbiznis/flowsight/internal/backup/service"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Hint    string            `json:"hint,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// User-facing remediation hints per failure class.
const (
	hintDataUnavailable  = "The openflow_cost_analysis view was not found or returned no rows. Create the view in the warehouse, or run in standalone mode so the service can materialize it from telemetry."
	hintPermissionDenied = "The database role used by this service cannot read openflow_cost_analysis. Grant SELECT on the view (and usage on its schema) to that role."
	hintQueryError       = "The query failed against the warehouse. Check that the view's schema matches the expected twenty columns and that the warehouse is reachable."
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var qErr *warehouse.QueryError
	switch {
	case errors.Is(err, warehouse.ErrDataUnavailable):
		return http.StatusNotFound, errorPayload{
			Type:    "data_unavailable",
			Message: "no credit usage data is available",
			Hint:    hintDataUnavailable,
		}
	case errors.Is(err, warehouse.ErrPermissionDenied):
		return http.StatusForbidden, errorPayload{
			Type:    "permission_denied",
			Message: "access to the cost analysis relation was denied",
			Hint:    hintPermissionDenied,
		}
	case errors.As(err, &qErr):
		return http.StatusBadGateway, errorPayload{
			Type:    "query_error",
			Message: qErr.Error(),
			Hint:    hintQueryError,
		}
	case errors.Is(err, backupservice.ErrUnknownConnector):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "resource not found",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var ptr *ValidationErrors
	if errors.As(err, &ptr) {
		return ptr
	}
	var val ValidationErrors
	if errors.As(err, &val) {
		return &val
	}
	return nil
}

// classifyErrorForLog picks the request log bucket and code for a failed call.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if asValidationErrors(err) != nil {
		return "client_error", "validation_error"
	}
	code := warehouse.ErrorType(err)
	switch code {
	case "data_unavailable", "permission_denied":
		return "client_error", code
	case "query_error":
		return "upstream_error", code
	default:
		return "server_error", code
	}
}
