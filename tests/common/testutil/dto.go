//go:build unit || e2e

// Package testutil turns DTOs into maps so tests can send payloads the
// typed structs cannot express: missing keys, wrong types, nested edits.
package testutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// DtoMap encodes v through its JSON tags and applies muts in order.
func DtoMap(t *testing.T, v any, muts ...func(map[string]any)) map[string]any {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	m := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, mut := range muts {
		mut(m)
	}
	return m
}

// Field sets key to value, or removes it when value is nil. Dotted keys walk
// into nested objects, creating them as needed.
func Field(key string, value any) func(map[string]any) {
	return func(m map[string]any) {
		path := strings.Split(key, ".")
		for _, part := range path[:len(path)-1] {
			next, ok := m[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				m[part] = next
			}
			m = next
		}
		last := path[len(path)-1]
		if value == nil {
			delete(m, last)
			return
		}
		m[last] = value
	}
}
