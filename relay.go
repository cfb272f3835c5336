// Package relay implements a payment-gated message relay: a side-effecting
// action (delivering a user-submitted message to a notification channel) is
// gated behind proof of an on-chain micropayment using the x402 challenge /
// response protocol on HTTP 402.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cybergate-systems/relay/dispatch"
	"github.com/cybergate-systems/relay/logger"
	"github.com/cybergate-systems/relay/metrics"
	"github.com/cybergate-systems/relay/settlement"
	"github.com/cybergate-systems/relay/types"
)

// Request is a normalized inbound request as the gate sees it. The boundary
// is responsible for method and CORS handling; by the time a Request reaches
// the gate it is a POST to the gated resource.
type Request struct {
	// Proof is the raw payment header value, empty when absent. The gate
	// never inspects it.
	Proof string

	// Resource is the endpoint identity the proof is bound to.
	Resource types.Resource

	// Body is the raw JSON request body.
	Body []byte
}

// Outcome is the gate's decision: a status code plus a body. Body is either
// a json.RawMessage passed through verbatim from the settlement authority or
// a serializable response struct.
type Outcome struct {
	Status int
	Body   any
}

// Gate is the payment gate state machine. It owns the decision of challenge
// vs. settle vs. reject and guarantees the dispatcher runs at most once per
// settled transaction. A Gate holds no mutable state, so one instance serves
// any number of concurrent requests.
type Gate struct {
	config     *types.GateConfig
	settler    settlement.Client
	dispatcher dispatch.Dispatcher
	logger     logger.Logger
	metrics    metrics.Recorder
}

// New creates a Gate with the given configuration and collaborators.
func New(config *types.GateConfig, settler settlement.Client, dispatcher dispatch.Dispatcher, opts ...Option) *Gate {
	g := &Gate{
		config:     config,
		settler:    settler,
		dispatcher: dispatcher,
		logger:     logger.NoopLogger{},
		metrics:    metrics.NoopRecorder{},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Handle runs one request through the gate.
func (g *Gate) Handle(ctx context.Context, req *Request) *Outcome {
	if err := g.config.ValidateRecipient(); err != nil {
		g.logger.Error("gate misconfigured", map[string]any{"error": err.Error()})
		g.metrics.IncCounter("config_error", nil)
		return errorOutcome(http.StatusInternalServerError, err.Error())
	}

	in, err := types.ParseDeliveryInput(req.Body)
	if err != nil {
		g.metrics.IncCounter("invalid_request", nil)
		return errorOutcome(http.StatusBadRequest, err.Error())
	}

	price := g.resolvePrice(in.Amount)
	if !price.IsPositive() {
		g.metrics.IncCounter("invalid_amount", platformLabels(in.Platform))
		return errorOutcome(http.StatusBadRequest, "amount must be greater than zero")
	}

	// Settlement may move real money, so a client disconnect must not abort
	// it mid-flight.
	settleCtx := context.WithoutCancel(ctx)

	start := time.Now()
	result, err := g.settler.Settle(settleCtx, &types.SettleRequest{
		Proof:    req.Proof,
		Price:    price,
		Currency: g.config.Currency,
		PayTo:    g.config.RecipientAddress,
		ChainID:  g.config.ChainID,
		Resource: req.Resource,
	})
	g.metrics.ObserveLatency("settle", time.Since(start), platformLabels(in.Platform))

	if err != nil {
		// The payment may still be pending; reporting a decline here could
		// make the client believe it was not charged.
		g.logger.Error("settlement unavailable", map[string]any{
			"error":    err.Error(),
			"resource": req.Resource.URL,
		})
		g.metrics.IncCounter("settlement_error", platformLabels(in.Platform))
		return errorOutcome(http.StatusInternalServerError, "Settlement Unavailable")
	}

	if !result.Settled {
		if result.Status == http.StatusPaymentRequired {
			g.metrics.IncCounter("challenge", platformLabels(in.Platform))
		} else {
			g.logger.Info("payment rejected", map[string]any{
				"status":   result.Status,
				"resource": req.Resource.URL,
			})
			g.metrics.IncCounter("rejected", platformLabels(in.Platform))
		}
		return &Outcome{Status: result.Status, Body: json.RawMessage(result.Body)}
	}

	g.metrics.IncCounter("settled", platformLabels(in.Platform))
	g.deliver(ctx, in, price, result.TxHash)

	return &Outcome{
		Status: http.StatusOK,
		Body: &types.SuccessEnvelope{
			Success: true,
			Message: "Priority Mail Delivered!",
			Tx:      result.TxHash,
		},
	}
}

// deliver invokes the dispatcher exactly once for a settled transaction.
// Delivery failures never change the payer-visible response; they are logged
// and metered as a reconciliation signal, since the payer paid for an action
// that did not complete.
func (g *Gate) deliver(ctx context.Context, in *types.DeliveryInput, price decimal.Decimal, txHash string) {
	if ctx.Err() != nil {
		// The client is gone and the settled response can no longer be
		// communicated, so the message is not sent.
		g.logger.Warn("client disconnected after settlement, delivery skipped", map[string]any{
			"tx":       txHash,
			"platform": in.Platform.String(),
		})
		g.metrics.IncCounter("delivery_skipped", platformLabels(in.Platform))
		return
	}

	req := &types.DeliveryRequest{
		Platform: in.Platform,
		Username: in.Username,
		Message:  in.Message,
		Amount:   price,
		TxHash:   txHash,
	}

	start := time.Now()
	err := g.dispatcher.Deliver(context.WithoutCancel(ctx), req)
	g.metrics.ObserveLatency("deliver", time.Since(start), platformLabels(in.Platform))

	if err != nil {
		g.logger.Error("delivery failed for settled payment", map[string]any{
			"error":    err.Error(),
			"tx":       txHash,
			"platform": in.Platform.String(),
			"username": in.Username,
		})
		g.metrics.IncCounter("delivery_failed", platformLabels(in.Platform))
		return
	}

	g.metrics.IncCounter("delivered", platformLabels(in.Platform))
}

// resolvePrice returns the explicit amount when one was supplied, otherwise
// the configured default. An explicit zero is not defaulted; it fails the
// positivity check so the client gets an error instead of a surprise charge.
func (g *Gate) resolvePrice(amount *decimal.Decimal) decimal.Decimal {
	if amount == nil {
		return g.config.DefaultPrice
	}
	return *amount
}

func errorOutcome(status int, msg string) *Outcome {
	return &Outcome{
		Status: status,
		Body:   &types.ErrorBody{Error: msg},
	}
}

func platformLabels(p types.Platform) map[string]string {
	return map[string]string{"platform": p.String()}
}
