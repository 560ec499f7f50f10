package vrs

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"sort"
)

// digestLength is the number of leading SHA-512 bytes kept for a VRS
// identifier digest, giving a 32-character base64url-unpadded string.
const digestLength = 24

// digest computes the GA4GH VRS "truncated digest": SHA-512 of the
// canonical JSON encoding of attrs, truncated to digestLength bytes and
// base64url-encoded without padding. Two values with the same canonical
// encoding always produce the same digest (content-addressing invariant
// I-1 of the data model).
func digest(attrs map[string]any) string {
	sum := sha512.Sum512(canonicalJSON(attrs))
	return base64.RawURLEncoding.EncodeToString(sum[:digestLength])
}

// canonicalJSON produces a deterministic encoding of attrs: object keys
// sorted lexically at every nesting level, no insignificant whitespace.
// json.Marshal on a map[string]any already sorts keys; canonicalizeValue
// additionally normalizes nested maps so callers can build attrs with
// ordinary map literals instead of hand-sorting themselves.
func canonicalJSON(attrs map[string]any) []byte {
	b, err := json.Marshal(canonicalizeValue(attrs))
	if err != nil {
		// attrs is always built from primitives and strings by this
		// package's own callers; a marshal failure here is a programmer
		// error, not a runtime condition callers can recover from.
		panic("vrs: canonical encoding failed: " + err.Error())
	}
	return b
}

func canonicalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(orderedMap, 0, len(t))
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, kv{k, canonicalizeValue(t[k])})
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalizeValue(e)
		}
		return out
	default:
		return t
	}
}

// kv is a single canonicalized key/value pair, preserved in sorted order.
type kv struct {
	Key   string
	Value any
}

// orderedMap marshals as a JSON object whose keys appear in slice order
// (already sorted by canonicalizeValue), rather than Go's re-sorted
// map[string]any encoding, so nested objects stay canonical too.
type orderedMap []kv

func (m orderedMap) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, p := range m {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyJSON, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyJSON...)
		buf = append(buf, ':')
		valJSON, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, valJSON...)
	}
	buf = append(buf, '}')
	return buf, nil
}
