package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	connectordomain "github.com/smallbiznis/flowsight/internal/connectorstatus/domain"
)

func (s *Server) ListConnectors(c *gin.Context) {
	lookback, err := parseOptionalInt(c.Query("lookback_minutes"), 0)
	if err != nil {
		AbortWithError(c, newValidationError("lookback_minutes", "invalid_int", "lookback_minutes must be an integer"))
		return
	}

	resp, err := s.connectorSvc.List(c.Request.Context(), connectordomain.ListRequest{
		LookbackMinutes: lookback,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListConnectorNames(c *gin.Context) {
	names, err := s.connectorSvc.Names(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}
