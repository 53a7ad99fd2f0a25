package jobs

import (
	"context"
	"errors"
	"testing"

	"educycle_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingJob struct {
	calls int
	n     int64
	err   error
}

func (c *countingJob) PurgeExpired(context.Context) (int64, error) {
	c.calls++
	return c.n, c.err
}

func (c *countingJob) CloseFulfilled(context.Context) (int64, error) {
	c.calls++
	return c.n, c.err
}

func TestSetupAndStart_SchedulesConfiguredJobs(t *testing.T) {
	otp, bulk := &countingJob{}, &countingJob{}
	j := NewMaintenanceJobs(otp, bulk, zap.NewNop(), &config.Config{OTPCleanupJobSchedule: "@hourly"})
	require.NoError(t, j.SetupAndStart())
	defer j.Stop()
	assert.Len(t, j.cronScheduler.Entries(), 1)
}

func TestSetupAndStart_RejectsBadSpec(t *testing.T) {
	j := NewMaintenanceJobs(&countingJob{}, &countingJob{}, zap.NewNop(), &config.Config{BulkReconcileJobSchedule: "every now and then"})
	assert.Error(t, j.SetupAndStart())
}

func TestRunJob_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	j := NewMaintenanceJobs(&countingJob{}, &countingJob{}, zap.New(core), &config.Config{})

	ok := &countingJob{n: 3}
	j.runJob("otp_cleanup", ok.PurgeExpired)
	failing := &countingJob{err: errors.New("db down")}
	j.runJob("bulk_reconcile", failing.CloseFulfilled)

	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, logs.FilterMessage("Job run completed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Job run failed").Len())
}
