package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logdomain "github.com/smallbiznis/flowsight/internal/runtimelogs/domain"
)

func (s *Server) ListErrorLogs(c *gin.Context) {
	lookback, err := parseOptionalInt(c.Query("lookback_minutes"), 0)
	if err != nil {
		AbortWithError(c, newValidationError("lookback_minutes", "invalid_int", "lookback_minutes must be an integer"))
		return
	}

	resp, err := s.runtimeLogSvc.Errors(c.Request.Context(), logdomain.ErrorsRequest{
		LookbackMinutes: lookback,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListStuckConnections(c *gin.Context) {
	lookback, err := parseOptionalInt(c.Query("lookback_minutes"), 0)
	if err != nil {
		AbortWithError(c, newValidationError("lookback_minutes", "invalid_int", "lookback_minutes must be an integer"))
		return
	}
	threshold, err := parseOptionalInt(c.Query("threshold_minutes"), 0)
	if err != nil {
		AbortWithError(c, newValidationError("threshold_minutes", "invalid_int", "threshold_minutes must be an integer"))
		return
	}

	resp, err := s.runtimeLogSvc.Stuck(c.Request.Context(), logdomain.StuckRequest{
		LookbackMinutes:  lookback,
		ThresholdMinutes: threshold,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
