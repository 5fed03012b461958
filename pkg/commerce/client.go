package commerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"context"
)

// Config holds connection parameters for the headless commerce backend.
type Config struct {
	// GraphQLURL is the catalog GraphQL endpoint.
	GraphQLURL string
	// RESTBaseURL is the base URL of the REST API used for order creation,
	// e.g. https://shop.example.com/wp-json/wc/v3
	RESTBaseURL string
	// ConsumerKey/ConsumerSecret authenticate REST calls via basic auth.
	ConsumerKey    string
	ConsumerSecret string
}

// Client talks to the commerce backend over GraphQL (catalog reads) and
// REST (order writes).
type Client struct {
	httpClient *http.Client
	cfg        Config
	debug      bool
}

// NewClient constructs a commerce client with sane defaults. The 15s timeout
// bounds every catalog fetch; a timeout surfaces as a transient fetch error.
func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cfg:        cfg,
		debug:      os.Getenv("ENV") == "development",
	}
}

// graphqlRequest is the standard GraphQL-over-HTTP request body.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is a single error entry in a GraphQL response.
type GraphQLError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// doGraphQL posts a GraphQL query and decodes the data payload into result.
// Backend-reported errors and non-2xx statuses are returned as errors.
func (c *Client) doGraphQL(ctx context.Context, query string, vars map[string]any, result any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", c.cfg.GraphQLURL).
			RawJSON("request", payload).
			Msg("[COMMERCE] Outgoing GraphQL request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[COMMERCE] Incoming GraphQL response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graphql endpoint returned status %d", resp.StatusCode)
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// doREST performs an authenticated REST call and decodes the JSON response.
func (c *Client) doREST(ctx context.Context, method, path string, body any, result any) error {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if c.debug && payload != nil {
		log.Debug().
			Str("endpoint", c.cfg.RESTBaseURL+path).
			RawJSON("request", payload).
			Msg("[COMMERCE] Outgoing REST request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.RESTBaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("path", path).
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[COMMERCE] Incoming REST response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rest endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
