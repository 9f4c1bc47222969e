package jobs

import (
	"context"

	"fabric-registry/internal/config"
	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
	"fabric-registry/internal/logger"
	"fabric-registry/internal/service"
)

// JobRunner coordinates the scheduled sweeps. The core has no background
// expiry of its own; the runner is an ordinary external caller invoking the
// public operations under an administrator principal.
type JobRunner struct {
	services  *service.Services
	config    *config.Config
	principal domain.PrincipalID
}

func NewJobRunner(services *service.Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services:  services,
		config:    cfg,
		principal: domain.PrincipalID(cfg.Scheduler.AdminPrincipal),
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// SweepExpiredSuspensions walks every known entity and lifts temporary
// suspensions whose deadline has passed.
func (jr *JobRunner) SweepExpiredSuspensions() {
	jr.runWithRecovery("SweepExpiredSuspensions", func() {
		ctx := fabric.WithPrincipal(context.Background(), jr.principal)

		for _, kind := range []domain.EntityKind{domain.KindUser, domain.KindOrganization} {
			ids, err := jr.services.Entities.All(ctx, kind)
			if err != nil {
				logger.Error("Failed to list entities for sweep", "kind", kind, "error", err)
				continue
			}
			for _, id := range ids {
				unsuspended, err := jr.services.Status.UnsuspendIfExpired(ctx, id)
				if err != nil {
					logger.Error("Failed to check suspension expiry", "entity", id, "error", err)
					continue
				}
				if unsuspended {
					logger.Info("Lifted expired suspension", "kind", kind, "entity", id)
				}
			}
		}
	})
}
