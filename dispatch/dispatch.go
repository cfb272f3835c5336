// Package dispatch performs the paid-for side effect: delivering the
// submitted message to a notification channel.
package dispatch

import (
	"context"

	"github.com/cybergate-systems/relay/types"
)

// Dispatcher delivers a message once its payment has settled.
//
// The gate invokes Deliver synchronously exactly once per settled transaction
// and never retries; a failed delivery must not alter the payer-visible
// response, so failures are observed through logs and metrics instead.
type Dispatcher interface {
	Deliver(ctx context.Context, req *types.DeliveryRequest) error
}

// NoopDispatcher drops every delivery. Used when the notification channel is
// not configured, which degrades delivery without blocking payment.
type NoopDispatcher struct{}

func (NoopDispatcher) Deliver(context.Context, *types.DeliveryRequest) error {
	return nil
}
