// Package httpapi is the relay's request boundary: method and CORS handling,
// body plumbing, and response writing. All payment decisions live in the gate.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybergate-systems/relay"
	"github.com/cybergate-systems/relay/logger"
	"github.com/cybergate-systems/relay/types"
)

// PaymentHeader carries the opaque payment proof.
const PaymentHeader = "X-Payment"

// maxBodyBytes bounds the request body read. Messages are capped well below
// this by validation.
const maxBodyBytes = 1 << 20

// Relayer is the gate as the boundary sees it.
type Relayer interface {
	Handle(ctx context.Context, req *relay.Request) *relay.Outcome
}

// Handler exposes the gated endpoint.
type Handler struct {
	gate   Relayer
	path   string
	logger logger.Logger
}

func NewHandler(gate Relayer, path string, log logger.Logger) *Handler {
	return &Handler{
		gate:   gate,
		path:   path,
		logger: log,
	}
}

// Register mounts the gated endpoint. A single route answers every method so
// that OPTIONS, POST and the 405 fallback share one code path.
func (h *Handler) Register(r *gin.Engine) {
	r.Any(h.path, h.relay)
}

func (h *Handler) relay(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
	case http.MethodPost:
		h.post(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, types.ErrorBody{Error: "Method Not Allowed"})
	}
}

func (h *Handler) post(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorBody{Error: "failed to read request body"})
		return
	}

	outcome := h.gate.Handle(c.Request.Context(), &relay.Request{
		Proof: c.GetHeader(PaymentHeader),
		Resource: types.Resource{
			Method: http.MethodPost,
			URL:    resourceURL(c.Request, h.path),
		},
		Body: body,
	})

	writeOutcome(c, outcome)
}

func writeOutcome(c *gin.Context, out *relay.Outcome) {
	// Settlement authority bodies pass through byte for byte.
	if raw, ok := out.Body.(json.RawMessage); ok {
		c.Data(out.Status, "application/json", raw)
		return
	}

	c.JSON(out.Status, out.Body)
}

// resourceURL derives the identity the payment proof is bound to from the
// forwarded protocol and host, so proofs cannot be replayed against another
// deployment of the same path.
func resourceURL(r *http.Request, path string) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}

	return fmt.Sprintf("%s://%s%s", proto, r.Host, path)
}
