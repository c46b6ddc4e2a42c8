package jobs

import (
	"context"
	"time"

	"chainpay.backend/internal/usecases"
	"chainpay.backend/pkg/logger"
)

// ReconcileJob runs the reconciliation sweep on a fixed interval
type ReconcileJob struct {
	reconciler *usecases.ReconcilerUsecase
	interval   time.Duration
	stop       chan struct{}
}

func NewReconcileJob(reconciler *usecases.ReconcilerUsecase, interval time.Duration) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		interval:   interval,
		stop:       make(chan struct{}),
	}
}

func (j *ReconcileJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting reconciliation sweep job")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "reconciliation sweep job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "reconciliation sweep job stopped")
			return
		case <-ticker.C:
			j.reconciler.Sweep(ctx)
		}
	}
}

func (j *ReconcileJob) Stop() {
	close(j.stop)
}
