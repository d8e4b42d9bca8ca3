package transport

import (
	"context"
	"log"
	"time"
)

const probeTimeout = 5 * time.Second

// Discover probes the manifest's variants in order against one gateway
// and returns a client for the first that answers its health check. When
// every candidate fails it returns an *UnavailableError listing each
// attempt, so the operator sees all failures at once.
func Discover(ctx context.Context, baseURL, token string, manifest Manifest) (*GatewayClient, error) {
	candidates := manifest.enabled()
	unavailable := &UnavailableError{}

	for _, spec := range candidates {
		client := NewGatewayClient(baseURL, token, spec)

		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := client.Probe(probeCtx)
		cancel()

		if err == nil {
			log.Printf("transport: gateway speaks %s", spec.Name)
			return client, nil
		}
		log.Printf("transport: %s not available: %v", spec.Name, err)
		unavailable.Attempts = append(unavailable.Attempts, ProbeAttempt{Provider: spec.Name, Err: err})
	}

	return nil, unavailable
}
