// Package dispatch abstracts "send a message to a phone-like address via a
// channel". Two Sender implementations exist behind the same capability: a
// live one that calls the external messaging provider, and a simulated one
// that always succeeds without any network call. Which one runs is decided
// once at process start from configuration and injected into the Dispatcher;
// call sites never branch on the mode.
package dispatch

import (
	"context"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// Request describes one outbound message.
type Request struct {
	Channel domain.Channel
	From    string // provider sender address for the channel
	To      string // contact's phone-like address
	Body    string // full composed message text
}

// Result is the immediate outcome of a send attempt. OK means the provider
// accepted the message; it does not imply final handset delivery (no
// delivery-status webhook exists in this system).
type Result struct {
	OK          bool
	ProviderRef string // provider message id when OK
	Err         string // failure reason when !OK
}

// Sender performs the actual provider call. Implementations must be safe for
// concurrent use and must honor ctx cancellation and deadlines.
type Sender interface {
	Send(ctx context.Context, req Request) Result
}
