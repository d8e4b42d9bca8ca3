// Package transport delivers assembled message envelopes to a WhatsApp
// gateway. Gateways come in several API variants; Discover probes the
// known variants at startup and returns a client for the first one that
// responds.
package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/terastudio-org/BaileysHelper/internal/nativeflow"
)

// Transport sends a prepared envelope to one recipient. Implementations
// must be safe for concurrent use.
type Transport interface {
	// Deliver sends the envelope to the destination JID and returns the
	// gateway-assigned message id.
	Deliver(ctx context.Context, to string, envelope *nativeflow.MessageEnvelope, opts DeliverOptions) (*DeliveryResult, error)

	// Provider names the API variant in use, e.g. "multidevice-v2".
	Provider() string
}

// DeliverOptions carries per-send parameters forwarded to the gateway.
// The zero value is a plain send.
type DeliverOptions struct {
	// MessageID is the client-assigned message id. When empty the gateway
	// assigns one and returns it in the DeliveryResult.
	MessageID string

	// Ephemeral asks the gateway to send a disappearing message using the
	// chat's current timer.
	Ephemeral bool
}

// DeliveryResult reports a successful send.
type DeliveryResult struct {
	MessageID string `json:"messageId"`
	Provider  string `json:"provider"`
}

// ProbeAttempt records one failed candidate during discovery.
type ProbeAttempt struct {
	Provider string
	Err      error
}

// UnavailableError aggregates every failed probe when no gateway variant
// answered. It is returned by Discover, never by Deliver.
type UnavailableError struct {
	Attempts []ProbeAttempt
}

func (e *UnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return "no gateway providers configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Provider, a.Err)
	}
	return "no gateway provider available: " + strings.Join(parts, "; ")
}
