// Package payment talks to the hosted payment page provider. The contract is
// opaque: a charge request goes out, a session token and redirect URL come
// back, and the provider later posts signed status notifications.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

var (
	ErrNotConfigured  = errors.New("payment gateway is not configured")
	ErrGatewayRefused = errors.New("payment gateway refused the charge")
	ErrBadSignature   = errors.New("invalid notification signature")
)

// ChargeItem is one line shown on the payment page.
type ChargeItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// ChargeRequest asks the provider for a payment session.
type ChargeRequest struct {
	OrderCode     string       `json:"order_id"`
	Amount        int64        `json:"gross_amount"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email,omitempty"`
	CustomerPhone string       `json:"customer_phone,omitempty"`
	Items         []ChargeItem `json:"items"`
}

// Session is the provider's answer to a charge request.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// HTTPGateway posts charge requests as JSON behind a circuit breaker.
type HTTPGateway struct {
	baseURL   string
	serverKey string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*Session]
}

func NewHTTPGateway(baseURL, serverKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a refused charge is the provider answering, not the provider failing
			return err == nil || errors.Is(err, ErrGatewayRefused)
		},
	}
	return &HTTPGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		serverKey: serverKey,
		client:    &http.Client{Timeout: timeout},
		breaker:   gobreaker.NewCircuitBreaker[*Session](settings),
	}
}

func (g *HTTPGateway) CreateSession(ctx context.Context, req ChargeRequest) (*Session, error) {
	if g.baseURL == "" {
		return nil, ErrNotConfigured
	}
	return g.breaker.Execute(func() (*Session, error) {
		return g.post(ctx, req)
	})
}

func (g *HTTPGateway) post(ctx context.Context, req ChargeRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode charge request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(g.serverKey, "")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send charge request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read charge response: %w", err)
	}
	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("payment gateway status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", ErrGatewayRefused, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}
	if s.Token == "" && s.RedirectURL == "" {
		return nil, fmt.Errorf("%w: empty session", ErrGatewayRefused)
	}
	return &s, nil
}

// NoopGateway returns no session. Used when no provider is configured;
// reservations then stay pending until an admin confirms them.
type NoopGateway struct{}

func (NoopGateway) CreateSession(context.Context, ChargeRequest) (*Session, error) {
	return nil, nil
}
