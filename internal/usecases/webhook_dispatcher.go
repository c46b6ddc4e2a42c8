package usecases

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"chainpay.backend/internal/domain/entities"
	domainerrors "chainpay.backend/internal/domain/errors"
	"chainpay.backend/internal/domain/repositories"
	"chainpay.backend/pkg/logger"
	"chainpay.backend/pkg/metrics"
	"chainpay.backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// SignatureHeader carries the HMAC of the request body
const SignatureHeader = "X-Chainpay-Signature"

type webhookPayload struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	TxRef     string `json:"txRef,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SignWebhookBody computes the hex HMAC-SHA256 of a webhook body
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookDispatcher delivers signed state-transition events to merchant
// endpoints. Every attempt is recorded as its own delivery row; delivery
// never affects the payment's status.
type WebhookDispatcher struct {
	merchantRepo repositories.MerchantRepository
	deliveryRepo repositories.WebhookDeliveryRepository
	paymentRepo  repositories.PaymentRequestRepository
	httpClient   *http.Client
	maxAttempts  int
	backoff      time.Duration
	recorder     metrics.Recorder
	now          func() time.Time
}

// NewWebhookDispatcher creates a new webhook dispatcher
func NewWebhookDispatcher(
	merchantRepo repositories.MerchantRepository,
	deliveryRepo repositories.WebhookDeliveryRepository,
	paymentRepo repositories.PaymentRequestRepository,
	timeout time.Duration,
	maxAttempts int,
	backoff time.Duration,
	recorder metrics.Recorder,
) *WebhookDispatcher {
	return &WebhookDispatcher{
		merchantRepo: merchantRepo,
		deliveryRepo: deliveryRepo,
		paymentRepo:  paymentRepo,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxAttempts: maxAttempts,
		backoff:     backoff,
		recorder:    recorder,
		now:         time.Now,
	}
}

// Notify delivers a transition event for the payment, retrying a bounded
// number of times. Each attempt appends a delivery row.
func (d *WebhookDispatcher) Notify(ctx context.Context, payment *entities.PaymentRequest) error {
	merchant, err := d.merchantRepo.GetByID(ctx, payment.MerchantID)
	if err != nil {
		return err
	}
	if merchant.WebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(webhookPayload{
		PaymentID: payment.ID.String(),
		Status:    string(payment.Status),
		TxRef:     payment.MatchedTxRef.String,
		Timestamp: d.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	signature := SignWebhookBody(merchant.WebhookSecret, body)

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		d.recorder.IncCounter(metrics.CounterWebhookAttempts, nil)

		started := d.now()
		httpStatus, postErr := d.post(ctx, merchant.WebhookURL, signature, body)
		d.recorder.ObserveLatency(metrics.OperationWebhookDeliver, time.Since(started), nil)

		delivery := &entities.WebhookDelivery{
			ID:        utils.GenerateUUIDv7(),
			PaymentID: payment.ID,
			TargetURL: merchant.WebhookURL,
			Event:     payment.Status,
			Succeeded: postErr == nil && httpStatus >= 200 && httpStatus < 300,
			Attempt:   attempt,
			CreatedAt: d.now(),
		}
		if postErr == nil {
			delivery.HTTPStatus = null.IntFrom(httpStatus)
		}

		if err := d.deliveryRepo.Create(ctx, delivery); err != nil {
			logger.Error(ctx, "failed to record webhook delivery",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err),
			)
		}

		if delivery.Succeeded {
			return nil
		}

		d.recorder.IncCounter(metrics.CounterWebhookFailures, nil)
		logger.Warn(ctx, "webhook delivery failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Int("attempt", attempt),
			zap.Int("http_status", httpStatus),
			zap.Error(postErr),
		)

		if attempt < d.maxAttempts {
			select {
			case <-time.After(d.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return nil
}

// NotifyAsync delivers the event without blocking the caller. A slow or
// failing endpoint never delays a state transition.
func (d *WebhookDispatcher) NotifyAsync(payment *entities.PaymentRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(d.maxAttempts)*(d.httpClient.Timeout+d.backoff))
		defer cancel()

		if err := d.Notify(ctx, payment); err != nil {
			logger.Error(ctx, "webhook notification failed",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Resend re-sends the last known transition for a payment without re-running
// reconciliation. Pending payments have no transition to send.
func (d *WebhookDispatcher) Resend(ctx context.Context, paymentID uuid.UUID) error {
	payment, err := d.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if !payment.Status.IsTerminal() {
		return domainerrors.ErrNoTransitionToSend
	}
	return d.Notify(ctx, payment)
}

// Deliveries returns the delivery log matching the filter
func (d *WebhookDispatcher) Deliveries(ctx context.Context, filter entities.WebhookDeliveryFilter, limit, offset int) ([]*entities.WebhookDelivery, int, error) {
	return d.deliveryRepo.List(ctx, filter, limit, offset)
}

func (d *WebhookDispatcher) post(ctx context.Context, targetURL, signature string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signature)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
