package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
	"github.com/smallbiznis/flowsight/internal/warehouse"
)

func creditUsageRequest(c *gin.Context) creditusagedomain.ListRequest {
	req := creditusagedomain.ListRequest{
		Search: c.Query("search"),
	}
	for _, v := range parseList(c.Query("category")) {
		req.Categories = append(req.Categories, creditusagedomain.UsageCategory(v))
	}
	for _, v := range parseList(c.Query("efficiency")) {
		req.Efficiencies = append(req.Efficiencies, creditusagedomain.EfficiencyRating(v))
	}
	return req
}

func (s *Server) ListCreditUsage(c *gin.Context) {
	resp, err := s.creditUsageSvc.List(c.Request.Context(), creditUsageRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ExportCreditUsage(c *gin.Context) {
	if s.exportLimiter.Enabled() {
		allowed, err := s.exportLimiter.AllowExport(c.Request.Context(), c.ClientIP())
		if err != nil {
			// redis being down must not take exports with it
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "export", "limiter_error")
		} else if !allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "export", "throttled")
			c.Header("Retry-After", "2")
			c.JSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many export requests, retry shortly",
			}})
			return
		} else {
			s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), "export")
		}
	}

	var buf bytes.Buffer
	rows, err := s.creditUsageSvc.ExportCSV(c.Request.Context(), creditUsageRequest(c), &buf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("openflow_credit_usage_%s.csv", s.exportTimestamp())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Header("X-Exported-Rows", fmt.Sprintf("%d", rows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// CreditUsageViewSQL returns the canonical view definition so warehouse
// operators can create the relation this dashboard reads.
func (s *Server) CreditUsageViewSQL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"relation": warehouse.CostAnalysisRelation,
		"sql":      warehouse.CostAnalysisViewSQL,
	})
}

// RefreshRollup rebuilds the materialized cost analysis table on demand.
// Warehouse deployments do not own the relation and reject the call.
func (s *Server) RefreshRollup(c *gin.Context) {
	if !s.cfg.IsStandalone() {
		AbortWithError(c, newValidationError("mode", "not_standalone", "rollup refresh is only available in standalone mode"))
		return
	}
	if err := s.rollupSvc.Rebuild(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rebuilt"})
}

// DashboardConfig exposes the presentation settings the UI renders with.
func (s *Server) DashboardConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Get())
}
