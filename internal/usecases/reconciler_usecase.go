package usecases

import (
	"context"
	"sync"
	"time"

	"chainpay.backend/internal/config"
	"chainpay.backend/internal/domain/entities"
	"chainpay.backend/internal/domain/repositories"
	"chainpay.backend/pkg/logger"
	"chainpay.backend/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sweepBatchSize = 500

// ReconcilerUsecase drives payment requests from pending to a terminal
// status. Sweep and CheckNow are both idempotent and safe to run
// concurrently over the same payment; the repository's conditional writes
// guarantee exactly one winning transition.
type ReconcilerUsecase struct {
	paymentRepo repositories.PaymentRequestRepository
	matchers    *MatcherRegistry
	dispatcher  *WebhookDispatcher
	cfg         config.ReconcileConfig
	recorder    metrics.Recorder
	now         func() time.Time
}

// NewReconcilerUsecase creates a new reconciler
func NewReconcilerUsecase(
	paymentRepo repositories.PaymentRequestRepository,
	matchers *MatcherRegistry,
	dispatcher *WebhookDispatcher,
	cfg config.ReconcileConfig,
	recorder metrics.Recorder,
) *ReconcilerUsecase {
	return &ReconcilerUsecase{
		paymentRepo: paymentRepo,
		matchers:    matchers,
		dispatcher:  dispatcher,
		cfg:         cfg,
		recorder:    recorder,
		now:         time.Now,
	}
}

// Sweep runs one reconciliation cycle: expire overdue payments first, then
// look for on-chain matches for the rest. Expiry runs first so stale
// payments cannot linger behind slow chain queries.
func (u *ReconcilerUsecase) Sweep(ctx context.Context) {
	started := u.now()
	u.recorder.IncCounter(metrics.CounterSweepRuns, nil)

	u.expireOverdue(ctx)
	u.matchPending(ctx)

	u.recorder.ObserveLatency(metrics.OperationSweep, time.Since(started), nil)
}

func (u *ReconcilerUsecase) expireOverdue(ctx context.Context) {
	expired, err := u.paymentRepo.ListExpiredPending(ctx, u.now(), sweepBatchSize)
	if err != nil {
		logger.Error(ctx, "failed to list expired payments", zap.Error(err))
		return
	}

	for _, payment := range expired {
		won, err := u.paymentRepo.MarkFailed(ctx, payment.ID)
		if err != nil {
			logger.Error(ctx, "failed to expire payment",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !won {
			continue
		}

		u.recorder.IncCounter(metrics.CounterPaymentsExpired, map[string]string{"network": paymentNetwork(payment)})
		logger.Info(ctx, "payment expired without a match",
			zap.String("payment_id", payment.ID.String()),
		)

		payment.Status = entities.PaymentStatusFailed
		u.dispatcher.NotifyAsync(payment)
	}
}

func (u *ReconcilerUsecase) matchPending(ctx context.Context) {
	pending, err := u.paymentRepo.ListPendingWithSelection(ctx, sweepBatchSize)
	if err != nil {
		logger.Error(ctx, "failed to list pending payments", zap.Error(err))
		return
	}

	// Payments reconcile independently; bound the parallelism so one sweep
	// cannot flood the chain data sources.
	semaphore := make(chan struct{}, u.cfg.MatchConcurrency)
	var wg sync.WaitGroup

	asOf := u.now()
	for _, payment := range pending {
		// Overdue payments belong to the expiry pass, this cycle or the next
		if payment.IsExpired(asOf) {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(payment *entities.PaymentRequest) {
			defer wg.Done()
			defer func() { <-semaphore }()
			u.tryMatch(ctx, payment)
		}(payment)
	}

	wg.Wait()
}

// tryMatch runs the chain matcher for one payment and applies the result.
// Chain-query failures are no-match for this cycle, never a payment failure.
func (u *ReconcilerUsecase) tryMatch(ctx context.Context, payment *entities.PaymentRequest) {
	matcher, err := u.matchers.ForPayment(payment)
	if err != nil {
		logger.Error(ctx, "no matcher for payment",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}

	network := paymentNetwork(payment)
	matchCtx, cancel := context.WithTimeout(ctx, u.cfg.MatcherTimeout)
	defer cancel()

	started := u.now()
	txRef, found, err := matcher.FindMatch(matchCtx, payment)
	u.recorder.ObserveLatency(metrics.OperationFindMatch, time.Since(started), map[string]string{"network": network})

	if err != nil {
		u.recorder.IncCounter(metrics.CounterMatcherErrors, map[string]string{"network": network})
		logger.Warn(ctx, "chain query failed, retrying next cycle",
			zap.String("payment_id", payment.ID.String()),
			zap.String("network", network),
			zap.Error(err),
		)
		return
	}
	if !found {
		return
	}

	won, err := u.paymentRepo.MarkCompleted(ctx, payment.ID, txRef)
	if err != nil {
		logger.Error(ctx, "failed to complete payment",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}
	if !won {
		return
	}

	u.recorder.IncCounter(metrics.CounterMatchesFound, map[string]string{"network": network})
	logger.Info(ctx, "payment matched on-chain",
		zap.String("payment_id", payment.ID.String()),
		zap.String("network", network),
		zap.String("tx_ref", txRef),
	)

	completed, err := u.paymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		logger.Error(ctx, "failed to reload completed payment",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}
	u.dispatcher.NotifyAsync(completed)
}

// CheckNow reconciles a single payment on demand. Terminal payments are
// returned as-is; expiry is never applied here, that is the sweep's
// exclusive responsibility.
func (u *ReconcilerUsecase) CheckNow(ctx context.Context, id uuid.UUID) (*entities.PaymentRequest, error) {
	payment, err := u.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.Status.IsTerminal() || !payment.HasSelection() || payment.IsExpired(u.now()) {
		return payment, nil
	}

	u.tryMatch(ctx, payment)

	return u.paymentRepo.GetByID(ctx, id)
}

func paymentNetwork(payment *entities.PaymentRequest) string {
	if payment.Asset == nil {
		return ""
	}
	return payment.Asset.Network
}
