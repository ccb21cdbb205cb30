package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	backupdomain "github.com/smallbiznis/flowsight/internal/backup/domain"
)

type createBackupRequest struct {
	ConnectorName string `json:"connector_name"`
}

func (s *Server) ListBackups(c *gin.Context) {
	backups, err := s.backupSvc.ListBackups(c.Request.Context(), strings.TrimSpace(c.Query("connector")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

func (s *Server) CreateBackup(c *gin.Context) {
	var req createBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body must be JSON"))
		return
	}
	if strings.TrimSpace(req.ConnectorName) == "" {
		AbortWithError(c, newValidationError("connector_name", "required", "connector_name is required"))
		return
	}

	b, err := s.backupSvc.BackupNow(c.Request.Context(), strings.TrimSpace(req.ConnectorName))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) ListBackupSchedules(c *gin.Context) {
	schedules, err := s.backupSvc.ListSchedules(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules})
}

func (s *Server) CreateBackupSchedule(c *gin.Context) {
	var req backupdomain.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body must be JSON"))
		return
	}
	req.ConnectorName = strings.TrimSpace(req.ConnectorName)
	req.Stage = strings.TrimSpace(req.Stage)
	req.TimeOfDay = strings.TrimSpace(req.TimeOfDay)
	if req.ConnectorName == "" {
		AbortWithError(c, newValidationError("connector_name", "required", "connector_name is required"))
		return
	}
	if _, _, err := backupdomain.ParseTimeOfDay(req.TimeOfDay); err != nil {
		AbortWithError(c, newValidationError("time_of_day", "invalid_time", "time_of_day must be HH:MM"))
		return
	}

	sched, err := s.backupSvc.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sched)
}

func (s *Server) DeleteBackupSchedule(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.backupSvc.DeleteSchedule(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
