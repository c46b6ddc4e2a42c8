package jobs

import (
	"context"
	"time"

	"chainpay.backend/internal/usecases"
	"chainpay.backend/pkg/logger"
)

const requoteBatchSize = 200

// RequoteJob refreshes stale expected amounts for pending payments so the
// displayed crypto amount stays within the quote staleness window.
type RequoteJob struct {
	payments   *usecases.PaymentUsecase
	interval   time.Duration
	staleAfter time.Duration
	stop       chan struct{}
}

func NewRequoteJob(payments *usecases.PaymentUsecase, interval, staleAfter time.Duration) *RequoteJob {
	return &RequoteJob{
		payments:   payments,
		interval:   interval,
		staleAfter: staleAfter,
		stop:       make(chan struct{}),
	}
}

func (j *RequoteJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting quote refresh job")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "quote refresh job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "quote refresh job stopped")
			return
		case <-ticker.C:
			j.payments.RefreshStaleQuotes(ctx, j.staleAfter, requoteBatchSize)
		}
	}
}

func (j *RequoteJob) Stop() {
	close(j.stop)
}
