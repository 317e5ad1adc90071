package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/saworbit/spectra/governance"
)

// maxPolicyDocument bounds how much policy JSON the client will read.
const maxPolicyDocument = 1 << 20

// FetchPolicies retrieves the governance policy set from the control
// server. The document is parsed strictly; a server handing out malformed
// policies is an error, not something to enforce half of.
func (c *Client) FetchPolicies(ctx context.Context) ([]governance.Policy, error) {
	url := c.config.ServerURL + "/api/v1/policies"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching policies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("policy endpoint returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPolicyDocument))
	if err != nil {
		return nil, fmt.Errorf("reading policy response: %w", err)
	}
	return governance.ParsePolicies(data)
}
