package dispatch

import (
	"context"
	"time"

	"github.com/tbourn/go-sos-backend/internal/config"
	"github.com/tbourn/go-sos-backend/internal/domain"
)

// Dispatcher wraps a Sender with per-channel sender addresses and a per-send
// deadline. It is the single entry point the alert fan-out uses; it never
// touches the recipient store itself, which keeps it independently testable
// against a fake provider.
type Dispatcher struct {
	sender  Sender
	from    map[domain.Channel]string
	timeout time.Duration
	demo    bool
	liveOK  bool // provider credentials present
}

// New selects the sender implementation from configuration: simulated when
// demo mode is on, live otherwise. A live dispatcher without credentials or
// without a channel's from-address leaves that channel unusable rather than
// failing sends at runtime.
func New(cfg config.Config) *Dispatcher {
	var s Sender
	if cfg.DemoMode {
		s = SimulatedSender{}
	} else {
		s = NewTwilioSender(cfg.Provider)
	}
	return &Dispatcher{
		sender: s,
		from: map[domain.Channel]string{
			domain.ChannelSMS:      cfg.Provider.SMSFrom,
			domain.ChannelWhatsApp: cfg.Provider.WhatsAppFrom,
		},
		timeout: cfg.DispatchTimeout,
		demo:    cfg.DemoMode,
		liveOK:  cfg.Provider.Configured(),
	}
}

// NewWithSender injects an explicit sender; every channel is usable. Intended
// for tests.
func NewWithSender(s Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		sender:  s,
		from:    map[domain.Channel]string{},
		timeout: timeout,
		demo:    true,
	}
}

// Usable reports whether messages can go out on ch. In demo mode every
// channel is usable. In live mode a channel needs provider credentials plus
// its own from-address; a missing from-address is a configuration gap, not a
// delivery failure, and callers skip the channel silently.
func (d *Dispatcher) Usable(ch domain.Channel) bool {
	if d.demo {
		return true
	}
	return d.liveOK && d.from[ch] != ""
}

// Send dispatches one message and returns the immediate outcome. The call is
// bounded by the configured per-send timeout so a hanging provider cannot
// stall the rest of the fan-out; expiry surfaces as a failed Result, never a
// panic or a blocked goroutine.
func (d *Dispatcher) Send(ctx context.Context, ch domain.Channel, to, body string) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res := d.sender.Send(ctx, Request{
		Channel: ch,
		From:    d.from[ch],
		To:      to,
		Body:    body,
	})
	observeSend(ch, res.OK)
	return res
}
