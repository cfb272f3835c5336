package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cybergate-systems/relay/types"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramDispatcher delivers messages to a Telegram chat via the Bot API.
type TelegramDispatcher struct {
	apiBase  string
	botToken string
	chatID   string
	currency string
	client   *http.Client
}

type sendMessageBody struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// NewTelegramDispatcher creates a dispatcher sending to one chat. The
// currency symbol is only used for message formatting.
func NewTelegramDispatcher(botToken, chatID, currency string) *TelegramDispatcher {
	return &TelegramDispatcher{
		apiBase:  defaultTelegramAPI,
		botToken: botToken,
		chatID:   chatID,
		currency: currency,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewTelegramDispatcherWithAPI is like NewTelegramDispatcher with a custom
// API base URL.
func NewTelegramDispatcherWithAPI(apiBase, botToken, chatID, currency string) *TelegramDispatcher {
	d := NewTelegramDispatcher(botToken, chatID, currency)
	d.apiBase = apiBase
	return d
}

// Deliver sends the message to the configured chat. User-controlled fields
// are HTML-escaped before interpolation since the message uses HTML parse
// mode.
func (d *TelegramDispatcher) Deliver(ctx context.Context, req *types.DeliveryRequest) error {
	body, err := jsonCodec.Marshal(&sendMessageBody{
		ChatID:                d.chatID,
		Text:                  d.formatMessage(req),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", d.apiBase, d.botToken)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var result sendMessageResponse
	if err := jsonCodec.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse telegram response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		return &types.RelayError{
			Code:    types.ErrDeliveryFailed,
			Message: fmt.Sprintf("telegram sendMessage returned status %d: %s", resp.StatusCode, result.Description),
		}
	}

	return nil
}

func (d *TelegramDispatcher) formatMessage(req *types.DeliveryRequest) string {
	return fmt.Sprintf(
		"<b>📨 NEW PRIORITY MAIL (PAID)</b>\n"+
			"--------------------------------\n"+
			"<b>Amount:</b> %s %s 💰\n"+
			"<b>From:</b> %s / %s\n"+
			"--------------------------------\n"+
			"<b>Message:</b>\n<i>%s</i>\n"+
			"--------------------------------\n"+
			"<b>Tx:</b> <code>%s</code>",
		req.Amount.String(), d.currency,
		html.EscapeString(req.Platform.String()), html.EscapeString(req.Username),
		html.EscapeString(req.Message),
		html.EscapeString(req.TxHash),
	)
}
