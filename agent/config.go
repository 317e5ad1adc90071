package agent

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Config controls the uploader client.
type Config struct {
	ServerURL  string        // control server base URL
	AgentID    string        // stable identity; derived when empty
	Timeout    time.Duration // per-request timeout
	MaxRetries int           // additional attempts after the first
	RetryDelay time.Duration // base delay, grows linearly per attempt
	BrokerURL  string        // optional AMQP broker for queue delivery
}

// DefaultConfig returns the baseline uploader configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  "http://localhost:3000",
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// LoadConfigFromEnv loads uploader configuration from environment variables
func LoadConfigFromEnv() *Config {
	config := DefaultConfig()

	if serverURL := os.Getenv("SPECTRA_SERVER_URL"); serverURL != "" {
		config.ServerURL = serverURL
	}

	if agentID := os.Getenv("SPECTRA_AGENT_ID"); agentID != "" {
		config.AgentID = agentID
	}

	if timeout := os.Getenv("SPECTRA_UPLOAD_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Timeout = d
		}
	}

	if maxRetries := os.Getenv("SPECTRA_UPLOAD_MAX_RETRIES"); maxRetries != "" {
		if r, err := strconv.Atoi(maxRetries); err == nil {
			config.MaxRetries = r
		}
	}

	if retryDelay := os.Getenv("SPECTRA_UPLOAD_RETRY_DELAY"); retryDelay != "" {
		if d, err := time.ParseDuration(retryDelay); err == nil {
			config.RetryDelay = d
		}
	}

	if brokerURL := os.Getenv("SPECTRA_AMQP_URL"); brokerURL != "" {
		config.BrokerURL = brokerURL
	}

	return config
}

// ResolveAgentID returns the configured identity, falling back to the
// hostname, then to a generated one for hosts that cannot say who they
// are.
func (c *Config) ResolveAgentID() string {
	if c.AgentID != "" {
		return c.AgentID
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "agent-" + uuid.NewString()
}
