package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tbourn/go-sos-backend/internal/config"
	"github.com/tbourn/go-sos-backend/internal/domain"
)

// TwilioSender posts messages to a Twilio-compatible Messages endpoint.
// It maps a 2xx response to an accepted Result (with the provider SID) and
// anything else, including transport errors and deadline expiry, to a
// failure with a human-readable reason.
type TwilioSender struct {
	accountSID string
	authToken  string
	baseURL    string
	client     *http.Client
}

// NewTwilioSender builds a live sender from provider credentials. The
// http.Client carries no timeout of its own; per-send deadlines come from
// the context set by the Dispatcher.
func NewTwilioSender(p config.ProviderConfig) *TwilioSender {
	return &TwilioSender{
		accountSID: p.AccountSID,
		authToken:  p.AuthToken,
		baseURL:    strings.TrimRight(p.BaseURL, "/"),
		client:     &http.Client{},
	}
}

// twilioMessage is the subset of the provider's response we care about.
type twilioMessage struct {
	SID     string `json:"sid"`
	Message string `json:"message"` // error payload field
}

// Send submits one message. WhatsApp addresses are prefixed with "whatsapp:"
// exactly once, matching the provider's addressing scheme.
func (s *TwilioSender) Send(ctx context.Context, req Request) Result {
	to := req.To
	from := req.From
	if req.Channel == domain.ChannelWhatsApp {
		to = whatsAppAddr(to)
		from = whatsAppAddr(from)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", req.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{Err: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{Err: "timeout waiting for provider"}
		}
		return Result{Err: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var msg twilioMessage
	_ = json.Unmarshal(body, &msg)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := msg.Message
		if reason == "" {
			reason = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		return Result{Err: reason}
	}
	return Result{OK: true, ProviderRef: msg.SID}
}

// whatsAppAddr ensures the "whatsapp:" prefix is present exactly once.
func whatsAppAddr(addr string) string {
	return "whatsapp:" + strings.TrimPrefix(addr, "whatsapp:")
}

// interface guard
var _ Sender = (*TwilioSender)(nil)
