package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MockKVStore is a simple in-memory implementation of KVStore for testing
type MockKVStore struct {
	data map[string]string
}

func NewMockKVStore() *MockKVStore {
	return &MockKVStore{
		data: make(map[string]string),
	}
}

func (m *MockKVStore) SetValue(ctx context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *MockKVStore) SetValueWithTTL(ctx context.Context, key, value string, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *MockKVStore) GetValue(ctx context.Context, key string) (string, error) {
	value, exists := m.data[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

func (m *MockKVStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)
	prefix := strings.ReplaceAll(pattern, "*", "")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *MockKVStore) DeleteValue(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockKVStore) Close() error {
	return nil
}

// brokenKVStore fails every operation, standing in for an unreachable
// backend.
type brokenKVStore struct{}

var errBackendDown = errors.New("connection refused")

func (brokenKVStore) SetValue(ctx context.Context, key, value string) error { return errBackendDown }
func (brokenKVStore) SetValueWithTTL(ctx context.Context, key, value string, ttl int) error {
	return errBackendDown
}
func (brokenKVStore) GetValue(ctx context.Context, key string) (string, error) {
	return "", errBackendDown
}
func (brokenKVStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	return nil, errBackendDown
}
func (brokenKVStore) DeleteValue(ctx context.Context, key string) error { return errBackendDown }
func (brokenKVStore) Close() error                                      { return nil }
