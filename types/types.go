package types

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Platform represents supported notification channels
type Platform string

const (
	PlatformTwitter  Platform = "Twitter"
	PlatformTelegram Platform = "Telegram"
	PlatformDiscord  Platform = "Discord"
)

func (p Platform) String() string {
	return string(p)
}

// Valid reports whether the platform is one the relay can address.
func (p Platform) Valid() bool {
	return p == PlatformTwitter || p == PlatformTelegram || p == PlatformDiscord
}

// GateConfig contains the immutable per-process configuration of the payment gate.
// It is loaded once at startup and never mutated afterwards.
type GateConfig struct {
	// RecipientAddress is the wallet that receives every settled payment.
	RecipientAddress string `json:"recipientAddress"`

	// DefaultPrice is charged when the request does not name an amount.
	DefaultPrice decimal.Decimal `json:"defaultPrice"`

	// Currency symbol quoted in challenges (e.g. "MON").
	Currency string `json:"currency"`

	// ChainID of the network payments settle on.
	ChainID int64 `json:"chainId"`

	// ResourcePath is the fixed path component of the resource identity.
	ResourcePath string `json:"resourcePath"`
}

// ValidateRecipient checks that the configured recipient is a usable wallet
// address. An empty or malformed address is a deployment defect, not a client
// error, so callers must surface it as a server-side failure.
func (c *GateConfig) ValidateRecipient() error {
	if c.RecipientAddress == "" {
		return &RelayError{
			Code:    ErrConfigError,
			Message: "Server Misconfiguration: recipient address missing",
		}
	}

	if !common.IsHexAddress(c.RecipientAddress) {
		return &RelayError{
			Code:    ErrConfigError,
			Message: fmt.Sprintf("Server Misconfiguration: invalid recipient address %q", c.RecipientAddress),
		}
	}

	return nil
}

// Resource identifies the endpoint a payment proof is bound to. Settlement
// binds the proof to this pair so it cannot be replayed against a different
// endpoint or method.
type Resource struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// PaymentChallenge is the 402 body describing what a client must pay before
// the relay will act. Built fresh per rejected request, never persisted.
type PaymentChallenge struct {
	Error    string `json:"error"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	PayTo    string `json:"payTo"`
	Resource string `json:"resourceUrl"`
	Method   string `json:"method"`
	ChainID  int64  `json:"chainId"`
}

// SettleRequest is the payload handed to a settlement client. Proof is the
// raw payment header exactly as the client supplied it; the gate never
// inspects or rewrites it.
type SettleRequest struct {
	Proof    string          `json:"proof,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	PayTo    string          `json:"payTo"`
	ChainID  int64           `json:"chainId"`
	Resource Resource        `json:"resource"`
}

// SettlementResult reports the outcome of a settlement attempt.
//
// Settled carries the transaction hash. A non-settled result carries the HTTP
// status and body dictated by the settlement authority, which the gate must
// pass through to the caller unchanged; this is how both the initial 402
// challenge and a rejected proof reach the client. Infrastructure failures are
// reported through the error return of Client.Settle, never through this
// struct.
type SettlementResult struct {
	Settled bool            `json:"settled"`
	TxHash  string          `json:"txHash,omitempty"`
	Status  int             `json:"status,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// DeliveryInput is the client-submitted request body before validation.
// Amount is a pointer so an absent field (fall back to the default price) can
// be told apart from an explicit zero (rejected).
type DeliveryInput struct {
	Platform Platform         `json:"platform" validate:"required,oneof=Twitter Telegram Discord"`
	Username string           `json:"username" validate:"required,max=128"`
	Message  string           `json:"message" validate:"required,max=4000"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
}

// DeliveryRequest is a validated delivery order. Amount is always the price
// that was actually settled, copied from the settle call rather than re-read
// from client input.
type DeliveryRequest struct {
	Platform Platform        `json:"platform"`
	Username string          `json:"username"`
	Message  string          `json:"message"`
	Amount   decimal.Decimal `json:"amount"`
	TxHash   string          `json:"txHash"`
}

// SuccessEnvelope is the 200 body returned to the payer once settlement
// succeeds, regardless of the delivery outcome.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Tx      string `json:"tx"`
}

// ErrorBody is the stable shape of every business-level error response.
type ErrorBody struct {
	Error string `json:"error"`
}
