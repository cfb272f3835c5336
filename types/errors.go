package types

// RelayError is a typed error carrying a stable machine-readable code.
type RelayError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RelayError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrConfigError      = "CONFIG_ERROR"
	ErrInvalidRequest   = "INVALID_REQUEST"
	ErrInvalidAmount    = "INVALID_AMOUNT"
	ErrSettlementFailed = "SETTLEMENT_FAILED"
	ErrDeliveryFailed   = "DELIVERY_FAILED"
)
