package yoco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrChargeDeclined is returned when the gateway rejects a charge.
var ErrChargeDeclined = errors.New("charge declined")

// Client is a minimal HTTP client for the Yoco charges API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	debug      bool
}

// NewClient constructs a Yoco client with sane defaults.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		secretKey:  secretKey,
		debug:      os.Getenv("ENV") == "development",
	}
}

// ChargeRequest charges a client-obtained card token. AmountInCents is in
// minor currency units.
type ChargeRequest struct {
	Token         string `json:"token"`
	AmountInCents int64  `json:"amountInCents"`
	Currency      string `json:"currency"`
}

// ChargeResponse is the gateway's charge result.
type ChargeResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Successful reports whether the charge completed.
func (r *ChargeResponse) Successful() bool {
	return r.Status == "successful"
}

// Charge performs a card charge. A declined charge returns the decoded
// response together with ErrChargeDeclined so callers can surface the
// gateway's message.
func (c *Client) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Auth-Secret-Key", c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[YOCO] Incoming charge response")
	}

	var chargeResp ChargeResponse
	if err := json.Unmarshal(respBody, &chargeResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !chargeResp.Successful() {
		return &chargeResp, fmt.Errorf("%w: %s", ErrChargeDeclined, chargeResp.ErrorMessage)
	}
	return &chargeResp, nil
}
