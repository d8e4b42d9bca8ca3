package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/terastudio-org/BaileysHelper/internal/nativeflow"
)

// GatewayClient talks to one gateway API variant. Sends run through a
// circuit breaker so a flapping gateway fails fast instead of tying up
// request handlers.
type GatewayClient struct {
	baseURL  string
	token    string
	provider ProviderSpec
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewGatewayClient builds a client for one variant. It performs no I/O;
// use Probe or Discover to confirm the gateway actually speaks this
// variant.
func NewGatewayClient(baseURL, token string, provider ProviderSpec) *GatewayClient {
	return &GatewayClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		provider: provider,
		http:     &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "gateway-" + provider.Name,
			Timeout: 30 * time.Second,
		}),
	}
}

func (c *GatewayClient) Provider() string {
	return c.provider.Name
}

// sendRequest is the body posted to the variant's send path.
type sendRequest struct {
	To        string                      `json:"to"`
	MessageID string                      `json:"messageId,omitempty"`
	Ephemeral bool                        `json:"ephemeral,omitempty"`
	Message   *nativeflow.MessageEnvelope `json:"message"`
}

// sendResponse covers the id field names the variants use.
type sendResponse struct {
	MessageID string `json:"messageId"`
	ID        string `json:"id"`
}

// Probe checks the variant's health endpoint. A 2xx answer means the
// gateway speaks this variant.
func (c *GatewayClient) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.provider.HealthPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("probing %s: %w", c.provider.HealthPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("probe %s status %d", c.provider.HealthPath, resp.StatusCode)
	}
	return nil
}

func (c *GatewayClient) Deliver(ctx context.Context, to string, envelope *nativeflow.MessageEnvelope, opts DeliverOptions) (*DeliveryResult, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.deliver(ctx, to, envelope, opts)
	})
	if err != nil {
		return nil, err
	}
	return result.(*DeliveryResult), nil
}

func (c *GatewayClient) deliver(ctx context.Context, to string, envelope *nativeflow.MessageEnvelope, opts DeliverOptions) (*DeliveryResult, error) {
	payload, err := json.Marshal(sendRequest{
		To:        to,
		MessageID: opts.MessageID,
		Ephemeral: opts.Ephemeral,
		Message:   envelope,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.provider.SendPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, respBody)
	}

	var sr sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding send response: %w", err)
	}

	id := sr.MessageID
	if id == "" {
		id = sr.ID
	}
	if id == "" {
		// The legacy variant echoes nothing back; fall back to the id we sent.
		id = opts.MessageID
	}
	return &DeliveryResult{MessageID: id, Provider: c.provider.Name}, nil
}
