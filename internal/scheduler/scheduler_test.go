package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	backupdomain "github.com/smallbiznis/flowsight/internal/backup/domain"
	"github.com/smallbiznis/flowsight/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBackups struct {
	backupdomain.Service

	runDueCalls atomic.Int64
	runDueErr   error
	block       chan struct{}
}

func (f *fakeBackups) RunDue(context.Context) error {
	f.runDueCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.runDueErr
}

func newTestScheduler(backups *fakeBackups) *Scheduler {
	return New(Params{
		Cfg:     config.Config{Mode: config.ModeWarehouse},
		Backups: backups,
		Log:     zap.NewNop(),
	})
}

func TestBackupSweepRunsDueSchedules(t *testing.T) {
	backups := &fakeBackups{}
	s := newTestScheduler(backups)

	s.runBackupSweep(context.Background())
	assert.Equal(t, int64(1), backups.runDueCalls.Load())
}

func TestBackupSweepSwallowsErrors(t *testing.T) {
	backups := &fakeBackups{runDueErr: errors.New("boom")}
	s := newTestScheduler(backups)

	s.runBackupSweep(context.Background())
	assert.Equal(t, int64(1), backups.runDueCalls.Load())
}

func TestBackupSweepDoesNotOverlap(t *testing.T) {
	backups := &fakeBackups{block: make(chan struct{})}
	s := newTestScheduler(backups)

	started := make(chan struct{})
	go func() {
		close(started)
		s.runBackupSweep(context.Background())
	}()
	<-started

	// wait until the first sweep is inside RunDue
	for backups.runDueCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	s.runBackupSweep(context.Background())
	assert.Equal(t, int64(1), backups.runDueCalls.Load())

	close(backups.block)
}

func TestStartStop(t *testing.T) {
	backups := &fakeBackups{}
	s := newTestScheduler(backups)

	s.Start()
	s.Stop()
}
