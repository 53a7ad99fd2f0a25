// File: internal/jobs/maintenance.go
package jobs

import (
	"context"
	"time"

	"educycle_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OTPPurger removes expired verification codes.
type OTPPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// BulkReconciler completes NGO bulk requests whose quantity has been met.
type BulkReconciler interface {
	CloseFulfilled(ctx context.Context) (int64, error)
}

// MaintenanceJobs runs periodic housekeeping on one cron scheduler.
type MaintenanceJobs struct {
	otp           OTPPurger
	bulk          BulkReconciler
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
	runTimeout    time.Duration
}

// NewMaintenanceJobs creates the scheduler. Nothing runs until SetupAndStart.
func NewMaintenanceJobs(otp OTPPurger, bulk BulkReconciler, logger *zap.Logger, cfg *config.Config) *MaintenanceJobs {
	scheduler := cron.New(
		cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
	)
	return &MaintenanceJobs{
		otp:           otp,
		bulk:          bulk,
		logger:        logger.Named("MaintenanceJobs"),
		cfg:           cfg,
		cronScheduler: scheduler,
		runTimeout:    5 * time.Minute,
	}
}

// SetupAndStart schedules every job that has a schedule and starts the scheduler.
// An empty schedule disables that job.
func (j *MaintenanceJobs) SetupAndStart() error {
	scheduled := 0
	for _, job := range []struct {
		name string
		spec string
		run  func(context.Context) (int64, error)
	}{
		{"otp_cleanup", j.cfg.OTPCleanupJobSchedule, j.otp.PurgeExpired},
		{"bulk_reconcile", j.cfg.BulkReconcileJobSchedule, j.bulk.CloseFulfilled},
	} {
		if job.spec == "" {
			j.logger.Warn("Job schedule not defined; job will not run.", zap.String("job", job.name))
			continue
		}
		name, run := job.name, job.run
		jobID, err := j.cronScheduler.AddFunc(job.spec, func() { j.runJob(name, run) })
		if err != nil {
			j.logger.Error("Failed to schedule job", zap.String("job", name), zap.String("spec", job.spec), zap.Error(err))
			return err
		}
		j.logger.Info("Job scheduled", zap.String("job", name), zap.String("spec", job.spec), zap.Any("jobID", jobID))
		scheduled++
	}
	if scheduled > 0 {
		j.cronScheduler.Start()
	}
	return nil
}

func (j *MaintenanceJobs) runJob(name string, run func(context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), j.runTimeout)
	defer cancel()

	n, err := run(ctx)
	if err != nil {
		j.logger.Error("Job run failed", zap.String("job", name), zap.Error(err))
		return
	}
	j.logger.Info("Job run completed", zap.String("job", name), zap.Int64("affected", n))
}

// Stop gracefully stops the cron scheduler.
func (j *MaintenanceJobs) Stop() {
	if j.cronScheduler == nil {
		return
	}
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Maintenance scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Maintenance scheduler stop timed out.")
	}
}
