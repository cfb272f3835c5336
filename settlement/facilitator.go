package settlement

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cybergate-systems/relay/types"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// FacilitatorClient settles payments through an x402 facilitator's HTTP API.
//
// When a request carries no proof it does not call the facilitator at all:
// it issues the 402 challenge locally, since the challenge is fully
// determined by the gate's own configuration and the resource identity.
type FacilitatorClient struct {
	settleURL string
	client    *http.Client
	timeout   time.Duration
}

// settleBody is the facilitator settle payload.
type settleBody struct {
	PaymentData string `json:"paymentData"`
	ResourceURL string `json:"resourceUrl"`
	Method      string `json:"method"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	ChainID     int64  `json:"chainId"`
	PayTo       string `json:"payTo"`
}

// settleReceipt is the facilitator's success response.
type settleReceipt struct {
	Transaction string `json:"transaction"`
}

// NewFacilitatorClient creates a settlement client for the facilitator
// reachable at settleURL. A non-positive timeout falls back to 30s.
func NewFacilitatorClient(settleURL string, timeout time.Duration) *FacilitatorClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &FacilitatorClient{
		settleURL: settleURL,
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Settle submits a payment proof for settlement.
//
// Result mapping:
//   - no proof          -> 402 challenge result, no network call
//   - facilitator 2xx   -> settled result with the transaction hash
//   - facilitator 4xx   -> the facilitator's status and body, verbatim
//   - facilitator 5xx,
//     timeout, transport -> error (the payment may still be pending, so this
//     must never be reported to the payer as a decline)
func (f *FacilitatorClient) Settle(ctx context.Context, req *types.SettleRequest) (*types.SettlementResult, error) {
	if req.Proof == "" {
		return challenge(req), nil
	}

	settleCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := jsonCodec.Marshal(&settleBody{
		PaymentData: req.Proof,
		ResourceURL: req.Resource.URL,
		Method:      req.Resource.Method,
		Price:       req.Price.String(),
		Currency:    req.Currency,
		ChainID:     req.ChainID,
		PayTo:       req.PayTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settle request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(settleCtx, http.MethodPost, f.settleURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build settle request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("facilitator request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read facilitator response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var receipt settleReceipt
		if err := jsonCodec.Unmarshal(respBody, &receipt); err != nil {
			return nil, fmt.Errorf("failed to parse facilitator receipt: %w", err)
		}
		if receipt.Transaction == "" {
			return nil, &types.RelayError{
				Code:    types.ErrSettlementFailed,
				Message: "facilitator reported success without a transaction hash",
			}
		}
		return &types.SettlementResult{
			Settled: true,
			TxHash:  receipt.Transaction,
		}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The authority declined; its status and body are the response.
		return &types.SettlementResult{
			Settled: false,
			Status:  resp.StatusCode,
			Body:    respBody,
		}, nil

	default:
		return nil, &types.RelayError{
			Code:    types.ErrSettlementFailed,
			Message: fmt.Sprintf("facilitator returned status %d", resp.StatusCode),
		}
	}
}

func challenge(req *types.SettleRequest) *types.SettlementResult {
	body, _ := jsonCodec.Marshal(&types.PaymentChallenge{
		Error:    "Payment Required",
		Price:    req.Price.String(),
		Currency: req.Currency,
		PayTo:    req.PayTo,
		Resource: req.Resource.URL,
		Method:   req.Resource.Method,
		ChainID:  req.ChainID,
	})

	return &types.SettlementResult{
		Settled: false,
		Status:  http.StatusPaymentRequired,
		Body:    body,
	}
}
