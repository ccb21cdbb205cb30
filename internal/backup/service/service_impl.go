package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	backupdomain "github.com/smallbiznis/flowsight/internal/backup/domain"
	"github.com/smallbiznis/flowsight/internal/clock"
	obsmetrics "github.com/smallbiznis/flowsight/internal/observability/metrics"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnknownConnector is returned when a backup targets a connector no
// telemetry has ever mentioned.
var ErrUnknownConnector = errors.New("unknown connector")

type Params struct {
	fx.In

	DB         *gorm.DB
	Node       *snowflake.Node
	Clock      clock.Clock
	Log        *zap.Logger
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	node       *snowflake.Node
	clock      clock.Clock
	log        *zap.Logger
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) backupdomain.Service {
	return &Service{
		db:         p.DB,
		node:       p.Node,
		clock:      p.Clock,
		log:        p.Log.Named("backup.service"),
		obsMetrics: p.ObsMetrics,
	}
}

// snapshot is the stored backup payload: the connector's latest reported
// state plus its record and resource attributes.
type snapshot struct {
	ConnectorName string         `json:"connector_name"`
	ConnectorID   string         `json:"connector_id"`
	RuntimeKey    string         `json:"runtime_key"`
	DeploymentID  string         `json:"deployment_id"`
	CapturedAt    time.Time      `json:"captured_at"`
	ReportedAt    time.Time      `json:"reported_at"`
	Record        map[string]any `json:"record_attributes,omitempty"`
	Resource      map[string]any `json:"resource_attributes,omitempty"`
}

func (s *Service) BackupNow(ctx context.Context, connectorName string) (backupdomain.Backup, error) {
	return s.backup(ctx, connectorName, backupdomain.TriggerManual)
}

func (s *Service) backup(ctx context.Context, connectorName, trigger string) (backupdomain.Backup, error) {
	var latest telemetry.Event
	err := s.db.WithContext(ctx).
		Where("connector_name = ?", connectorName).
		Order("timestamp DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.obsMetrics.RecordBackupRun(ctx, trigger, false)
		return backupdomain.Backup{}, fmt.Errorf("%w: %s", ErrUnknownConnector, connectorName)
	}
	if err != nil {
		s.obsMetrics.RecordBackupRun(ctx, trigger, false)
		return backupdomain.Backup{}, warehouse.Classify("connector backup", err)
	}

	now := s.clock.Now()
	payload, err := json.Marshal(snapshot{
		ConnectorName: latest.ConnectorName,
		ConnectorID:   latest.ConnectorID,
		RuntimeKey:    latest.RuntimeKey,
		DeploymentID:  latest.DeploymentID,
		CapturedAt:    now,
		ReportedAt:    latest.Timestamp,
		Record:        latest.RecordAttributes,
		Resource:      latest.ResourceAttributes,
	})
	if err != nil {
		s.obsMetrics.RecordBackupRun(ctx, trigger, false)
		return backupdomain.Backup{}, err
	}

	b := backupdomain.Backup{
		ID:            s.node.Generate(),
		ConnectorName: connectorName,
		ObjectName:    backupdomain.ObjectName(connectorName, now),
		Trigger:       trigger,
		Payload:       payload,
		CreatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		s.obsMetrics.RecordBackupRun(ctx, trigger, false)
		return backupdomain.Backup{}, warehouse.Classify("connector backup", err)
	}

	s.obsMetrics.RecordBackupRun(ctx, trigger, true)
	s.log.Info("connector backup stored",
		zap.String("connector", connectorName),
		zap.String("object", b.ObjectName),
		zap.String("trigger", trigger),
	)
	return b, nil
}

func (s *Service) ListBackups(ctx context.Context, connectorName string) ([]backupdomain.Backup, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if connectorName != "" {
		q = q.Where("connector_name = ?", connectorName)
	}
	var backups []backupdomain.Backup
	if err := q.Find(&backups).Error; err != nil {
		return nil, warehouse.Classify("backup history", err)
	}
	return backups, nil
}

func (s *Service) CreateSchedule(ctx context.Context, req backupdomain.CreateScheduleRequest) (backupdomain.Schedule, error) {
	if req.ConnectorName == "" {
		return backupdomain.Schedule{}, errors.New("connector name is required")
	}
	if _, _, err := backupdomain.ParseTimeOfDay(req.TimeOfDay); err != nil {
		return backupdomain.Schedule{}, err
	}

	now := s.clock.Now()
	sched := backupdomain.Schedule{
		ID:            s.node.Generate(),
		ConnectorName: req.ConnectorName,
		Stage:         req.Stage,
		TimeOfDay:     req.TimeOfDay,
		Enabled:       true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Create(&sched).Error; err != nil {
		return backupdomain.Schedule{}, warehouse.Classify("backup schedule", err)
	}
	return sched, nil
}

func (s *Service) ListSchedules(ctx context.Context) ([]backupdomain.Schedule, error) {
	var schedules []backupdomain.Schedule
	err := s.db.WithContext(ctx).
		Order("connector_name, time_of_day").
		Find(&schedules).Error
	if err != nil {
		return nil, warehouse.Classify("backup schedule", err)
	}
	return schedules, nil
}

func (s *Service) DeleteSchedule(ctx context.Context, id snowflake.ID) error {
	res := s.db.WithContext(ctx).Delete(&backupdomain.Schedule{}, "id = ?", id)
	if res.Error != nil {
		return warehouse.Classify("backup schedule", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RunDue fires every schedule whose daily wall time has passed and that has
// not run yet today. Individual failures are logged and do not stop the
// sweep.
func (s *Service) RunDue(ctx context.Context) error {
	schedules, err := s.ListSchedules(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	var firstErr error
	for _, sched := range schedules {
		if !sched.Due(now) {
			continue
		}
		if _, err := s.backup(ctx, sched.ConnectorName, backupdomain.TriggerScheduled); err != nil {
			s.log.Warn("scheduled backup failed",
				zap.String("connector", sched.ConnectorName),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ranAt := now
		err = s.db.WithContext(ctx).
			Model(&backupdomain.Schedule{}).
			Where("id = ?", sched.ID).
			Updates(map[string]any{"last_run_at": ranAt, "updated_at": now}).Error
		if err != nil && firstErr == nil {
			firstErr = warehouse.Classify("backup schedule", err)
		}
	}
	return firstErr
}
