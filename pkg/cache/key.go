package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// keyPayload is the canonical form hashed into a cache key. Named
// arguments are a map so json.Marshal emits them sorted by name,
// making the key independent of call-site argument order.
type keyPayload struct {
	Args  []any          `json:"args"`
	Named map[string]any `json:"named,omitempty"`
}

// Key derives a deterministic cache key from a function identity and its
// positional arguments.
func Key(fn string, args ...any) string {
	return NamedKey(fn, args, nil)
}

// NamedKey derives a deterministic cache key from a function identity,
// positional arguments, and named arguments. Named arguments are hashed
// sorted by name.
func NamedKey(fn string, args []any, named map[string]any) string {
	data, err := json.Marshal(keyPayload{Args: args, Named: named})
	if err != nil {
		// Unmarshalable arguments (channels, funcs) fall back to their
		// formatted representation so the key is still deterministic.
		data = []byte(fmt.Sprintf("%+v|%+v", args, named))
	}

	sum := sha256.Sum256(data)
	return fn + "_" + hex.EncodeToString(sum[:16])
}

// ContentKey derives a cache key for opaque binary content (e.g. an image
// submitted for analysis) under a namespace prefix.
func ContentKey(prefix string, content []byte) string {
	sum := sha256.Sum256(content)
	return prefix + hex.EncodeToString(sum[:])[:16]
}
