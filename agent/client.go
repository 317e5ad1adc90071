// Package agent uploads snapshots to the control server and fetches
// governance policies from it. It is the fleet-side half of the ingest
// protocol.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/saworbit/spectra/queue"
	"github.com/saworbit/spectra/snapshot"
)

// Client talks to the spectra control server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a Client; a nil config loads from the environment.
func NewClient(config *Config) *Client {
	if config == nil {
		config = LoadConfigFromEnv()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Upload posts one snapshot to the ingest endpoint, retrying transport
// errors and 5xx responses with a linearly growing delay. 4xx responses
// are terminal: the payload will not get better by resending it.
func (c *Client) Upload(ctx context.Context, snap *snapshot.AgentSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	url := c.config.ServerURL + "/api/v1/ingest"

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create ingest request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		ack, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			slog.Debug("snapshot uploaded", "agent", snap.AgentID, "ack", strings.TrimSpace(string(ack)))
			return nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(ack)))
		default:
			return fmt.Errorf("upload rejected with %d: %s", resp.StatusCode, strings.TrimSpace(string(ack)))
		}
	}

	return fmt.Errorf("upload failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

// Publish sends the snapshot over AMQP instead of HTTP, for fleets that
// route ingest through the broker.
func (c *Client) Publish(snap *snapshot.AgentSnapshot) error {
	if c.config.BrokerURL == "" {
		return fmt.Errorf("no broker configured")
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return queue.Send(c.config.BrokerURL, queue.SnapshotQueue, string(body))
}
