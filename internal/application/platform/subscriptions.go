package platform

import (
	"context"
	"time"

	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// subscriptionTimeout bounds each webhook subscription call.
const subscriptionTimeout = 30 * time.Second

// SubscriptionOutcome is the terminal result of one subscription attempt.
type SubscriptionOutcome struct {
	ExternalID string
	Err        error
}

// SubscriptionFuture is a handle to an in-flight subscription attempt. The
// outcome channel is buffered, so a future nobody collects leaks nothing.
type SubscriptionFuture struct {
	ExternalID string
	outcome    <-chan SubscriptionOutcome
}

// Outcome returns the channel the attempt's result is delivered on.
func (f SubscriptionFuture) Outcome() <-chan SubscriptionOutcome {
	return f.outcome
}

// SubscriptionManager arms webhook subscriptions on freshly connected pages.
// Dispatch is fire-and-forget: the callback redirect never waits on it, and
// one page failing leaves the other attempts untouched. A subscription or
// verification call the platform rejects as invalid-credential clears that
// resource's stored token so the next sync re-tokenizes the page.
type SubscriptionManager struct {
	client     platform.Client
	resources  platform.ResourceRepository
	classifier platform.ErrorClassifier
	metrics    *telemetry.SyncMetrics
	logger     *zap.Logger
}

// NewSubscriptionManager creates a new SubscriptionManager. metrics may be
// nil when metrics are disabled.
func NewSubscriptionManager(
	client platform.Client,
	resources platform.ResourceRepository,
	classifier platform.ErrorClassifier,
	metrics *telemetry.SyncMetrics,
	logger *zap.Logger,
) *SubscriptionManager {
	return &SubscriptionManager{
		client:     client,
		resources:  resources,
		classifier: classifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Dispatch launches one subscription attempt per page resource and returns
// a future per attempt. Non-page resources are ignored: pixels have no
// webhook subscription. The attempts run on a context detached from the
// request, so an aborted redirect does not cancel them.
func (m *SubscriptionManager) Dispatch(ctx context.Context, resources []platform.Resource) []SubscriptionFuture {
	detached := context.WithoutCancel(ctx)

	futures := make([]SubscriptionFuture, 0, len(resources))
	for _, r := range resources {
		if r.Kind != platform.ResourceKindPage {
			continue
		}
		ch := make(chan SubscriptionOutcome, 1)
		futures = append(futures, SubscriptionFuture{ExternalID: r.ExternalID, outcome: ch})

		go func(externalID, token string) {
			callCtx, cancel := context.WithTimeout(detached, subscriptionTimeout)
			defer cancel()

			err := m.client.Subscribe(callCtx, externalID, token)
			if err != nil {
				m.logger.Warn("webhook subscription failed",
					zap.String("external_id", externalID),
					zap.Error(err),
				)
				if m.metrics != nil {
					m.metrics.RecordSubscriptionFailure(callCtx, platform.ResourceKindPage.String())
				}
				m.clearRejectedToken(callCtx, externalID, err)
			} else {
				m.logger.Info("webhook subscription armed",
					zap.String("external_id", externalID),
				)
			}
			ch <- SubscriptionOutcome{ExternalID: externalID, Err: err}
		}(r.ExternalID, r.AccessToken)
	}
	return futures
}

// Collect awaits the given futures up to the timeout. Attempts still running
// when the budget expires are reported with context.DeadlineExceeded; they
// keep running and log their own terminal outcome.
func (m *SubscriptionManager) Collect(futures []SubscriptionFuture, timeout time.Duration) []SubscriptionOutcome {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	outcomes := make([]SubscriptionOutcome, 0, len(futures))
	expired := false
	for _, f := range futures {
		if expired {
			select {
			case outcome := <-f.Outcome():
				outcomes = append(outcomes, outcome)
			default:
				outcomes = append(outcomes, SubscriptionOutcome{
					ExternalID: f.ExternalID,
					Err:        context.DeadlineExceeded,
				})
			}
			continue
		}
		select {
		case outcome := <-f.Outcome():
			outcomes = append(outcomes, outcome)
		case <-deadline.C:
			expired = true
			outcomes = append(outcomes, SubscriptionOutcome{
				ExternalID: f.ExternalID,
				Err:        context.DeadlineExceeded,
			})
		}
	}
	return outcomes
}

// Verify reports the current webhook subscription state of one page.
func (m *SubscriptionManager) Verify(ctx context.Context, resource *platform.Resource) (*platform.SubscriptionState, error) {
	state, err := m.client.CheckSubscription(ctx, resource.ExternalID, resource.AccessToken)
	if err != nil {
		m.clearRejectedToken(ctx, resource.ExternalID, err)
		return nil, err
	}
	return state, nil
}

// clearRejectedToken blanks a resource token the platform refused outright.
// Transient and permission failures leave the token in place.
func (m *SubscriptionManager) clearRejectedToken(ctx context.Context, externalID string, err error) {
	if m.classifier.Classify(err).Class != platform.ErrorClassInvalidCredential {
		return
	}
	if clearErr := m.resources.ClearToken(ctx, externalID); clearErr != nil {
		m.logger.Error("failed to clear rejected resource token",
			zap.String("external_id", externalID),
			zap.Error(clearErr),
		)
		return
	}
	m.logger.Warn("resource token rejected by platform, cleared stored token",
		zap.String("external_id", externalID),
	)
}
