package plan

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spaolacci/murmur3"
)

/*
Plans are keyed by the content of their message. The message is re-encoded in
canonical form (object keys sorted, insignificant whitespace removed, number
literals kept verbatim) and hashed, so two submissions share a key exactly when
they describe the same relation tree with the same expressions.

The structural fingerprint is a separate, coarser hash over the translated
plan's shape. Plans that differ only in their expressions share a fingerprint.
*/

////////////////////////////////////////////////////////////////////////////////

// Canonicalize re-encodes a plan message in canonical form.
func Canonicalize(msg []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, MalformedPlanError{Err: err}
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return nil, MalformedPlanError{Err: err}
	}
	return canonical, nil
}

// Hash returns the content hash of a plan message. Messages that differ only
// in whitespace or object key order hash equally.
func Hash(msg []byte) (uint64, error) {
	canonical, err := Canonicalize(msg)
	if err != nil {
		return 0, err
	}
	return murmur3.Sum64(canonical), nil
}

// Fingerprint returns a structural hash of a plan. Plans with the same shape,
// operators and source names share a fingerprint regardless of expressions.
func Fingerprint(p Plan) uint64 {
	return murmur3.Sum64([]byte(Format(p)))
}

// FormatKey renders a hash as a fixed-width lower case hex key.
func FormatKey(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}

// ParseKey parses a key produced by FormatKey. Keys are case sensitive.
func ParseKey(key string) (uint64, error) {
	if len(key) != 16 {
		return 0, fmt.Errorf("invalid plan key %q: expected 16 hex characters", key)
	}
	if strings.ToLower(key) != key {
		return 0, fmt.Errorf("invalid plan key %q: keys are lower case", key)
	}
	hash, err := strconv.ParseUint(key, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid plan key %q: %w", key, err)
	}
	return hash, nil
}
