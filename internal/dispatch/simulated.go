package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SimulatedSender accepts every message without contacting any provider.
// Used in demo mode so the full alert flow (rows, tokens, links, views) can
// be exercised with no credentials and no outbound traffic.
type SimulatedSender struct{}

// Send always succeeds with a synthetic provider reference.
func (SimulatedSender) Send(_ context.Context, req Request) Result {
	ref := "sim-" + uuid.NewString()
	log.Info().
		Str("channel", string(req.Channel)).
		Str("to", req.To).
		Str("provider_ref", ref).
		Msg("simulated send")
	return Result{OK: true, ProviderRef: ref}
}
