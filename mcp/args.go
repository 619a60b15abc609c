package mcp

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Args is an insertion-ordered tool argument map. Keys that were never set
// are absent from the encoded payload; nothing is ever encoded as null
// unless explicitly Set to nil.
type Args struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewArgs returns an empty argument map.
func NewArgs() *Args {
	return &Args{m: orderedmap.New[string, any]()}
}

// Set stores a value, keeping the position of an existing key.
func (a *Args) Set(key string, value any) *Args {
	a.m.Set(key, value)
	return a
}

// SetIfNotBlank stores value only when it has non-whitespace content.
func (a *Args) SetIfNotBlank(key, value string) *Args {
	if strings.TrimSpace(value) != "" {
		a.m.Set(key, value)
	}
	return a
}

// SetIfPresent stores *value when value is non-nil.
func SetIfPresent[T any](a *Args, key string, value *T) *Args {
	if value != nil {
		a.m.Set(key, *value)
	}
	return a
}

// Get returns the value stored under key.
func (a *Args) Get(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	return a.m.Get(key)
}

// Keys returns the keys in insertion order.
func (a *Args) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, 0, a.m.Len())
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of arguments.
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return a.m.Len()
}

// MarshalJSON encodes the arguments as a JSON object in insertion order.
func (a *Args) MarshalJSON() ([]byte, error) {
	if a == nil || a.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return a.m.MarshalJSON()
}
