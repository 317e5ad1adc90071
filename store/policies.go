package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/saworbit/spectra/governance"
)

const (
	// policyKeyPrefix is the Valkey key prefix for governance policies.
	policyKeyPrefix = "spectra:policy:"
)

// policyKey returns the Valkey key for a policy name.
func policyKey(name string) string {
	return policyKeyPrefix + name
}

// StorePolicy validates and persists a policy keyed by its name. Storing
// an existing name replaces the policy.
func StorePolicy(ctx context.Context, s KVStore, p governance.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}
	return s.SetValue(ctx, policyKey(p.Name), string(data))
}

// GetPolicy retrieves a single policy by name.
func GetPolicy(ctx context.Context, s KVStore, name string) (governance.Policy, error) {
	value, err := s.GetValue(ctx, policyKey(name))
	if err != nil {
		return governance.Policy{}, fmt.Errorf("no policy named %s: %w", name, err)
	}

	var p governance.Policy
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return governance.Policy{}, fmt.Errorf("failed to unmarshal policy: %w", err)
	}
	return p, nil
}

// ListPolicies returns every stored policy sorted by name.
func ListPolicies(ctx context.Context, s KVStore) ([]governance.Policy, error) {
	keys, err := s.ListKeys(ctx, policyKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	result := make([]governance.Policy, 0, len(keys))
	for _, k := range keys {
		value, err := s.GetValue(ctx, k)
		if err != nil {
			continue // key may have been deleted between list and get
		}
		var p governance.Policy
		if err := json.Unmarshal([]byte(value), &p); err != nil {
			continue
		}
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// DeletePolicy removes a policy by name.
func DeletePolicy(ctx context.Context, s KVStore, name string) error {
	if err := s.DeleteValue(ctx, policyKey(name)); err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return nil
}
