// Package scheduler drives the periodic background work: scheduled connector
// backups every minute and, in standalone mode, cost analysis rebuilds.
package scheduler

import (
	"context"
	"sync"
	"time"

	backupdomain "github.com/smallbiznis/flowsight/internal/backup/domain"
	"github.com/smallbiznis/flowsight/internal/config"
	"github.com/smallbiznis/flowsight/internal/creditusage/rollup"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const backupSweepInterval = time.Minute

type Params struct {
	fx.In

	Cfg     config.Config
	Backups backupdomain.Service
	Rollup  *rollup.Service
	Log     *zap.Logger
}

type Scheduler struct {
	cfg     config.Config
	backups backupdomain.Service
	rollup  *rollup.Service
	log     *zap.Logger

	mu         sync.Mutex
	backupBusy bool
	rollupBusy bool
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(p Params) *Scheduler {
	return &Scheduler{
		cfg:     p.Cfg,
		backups: p.Backups,
		rollup:  p.Rollup,
		log:     p.Log.Named("scheduler"),
	}
}

// Start launches the background loops until the lifecycle stops them.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		backupTicker := time.NewTicker(backupSweepInterval)
		defer backupTicker.Stop()

		var rollupC <-chan time.Time
		if s.cfg.Rollup.Enabled {
			refresh := time.Duration(s.cfg.Rollup.RefreshMinutes) * time.Minute
			if refresh <= 0 {
				refresh = 15 * time.Minute
			}
			rollupTicker := time.NewTicker(refresh)
			defer rollupTicker.Stop()
			rollupC = rollupTicker.C

			// build the relation before the first tick
			s.runRollup(ctx)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-backupTicker.C:
				s.runBackupSweep(ctx)
			case <-rollupC:
				s.runRollup(ctx)
			}
		}
	}()
}

// Stop cancels the loops and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) runBackupSweep(ctx context.Context) {
	s.mu.Lock()
	if s.backupBusy {
		s.mu.Unlock()
		return
	}
	s.backupBusy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.backupBusy = false
		s.mu.Unlock()
	}()

	if err := s.backups.RunDue(ctx); err != nil {
		s.log.Warn("backup sweep finished with errors", zap.Error(err))
	}
}

func (s *Scheduler) runRollup(ctx context.Context) {
	s.mu.Lock()
	if s.rollupBusy {
		s.mu.Unlock()
		return
	}
	s.rollupBusy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.rollupBusy = false
		s.mu.Unlock()
	}()

	if err := s.rollup.Rebuild(ctx); err != nil {
		s.log.Error("cost analysis rebuild failed", zap.Error(err))
	}
}

// Module wires the scheduler into the application lifecycle.
var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				log.Info("starting scheduler",
					zap.Bool("rollup_enabled", s.cfg.Rollup.Enabled),
				)
				s.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				s.Stop()
				return nil
			},
		})
	}),
)
