// Package settlement binds the relay to an external settlement authority.
//
// The relay treats payment proofs as opaque tokens: everything about
// validating and executing a payment is delegated to a facilitator, and the
// gate only consumes the tagged result.
package settlement

import (
	"context"

	"github.com/cybergate-systems/relay/types"
)

// Client is the contract for payment settlement.
//
// Settle must be idempotent-safe: submitting the same proof twice must not
// double-charge (a guarantee provided by the settlement authority itself).
// An absent proof yields a payment challenge result rather than an error.
// The error return is reserved for infrastructure failures (timeouts,
// unreachable facilitator); a declined payment is a result, not an error.
type Client interface {
	Settle(ctx context.Context, req *types.SettleRequest) (*types.SettlementResult, error)
}
