package vrs

import "encoding/json"

// Annotation attaches an opaque, typed value to an object identifier.
// An object may carry multiple annotations, and the same
// (ObjectID, Type) pair may repeat with different values: annotations are
// an append-only log, not a keyed map.
type Annotation struct {
	ObjectID string          `json:"object_id"`
	Type     string          `json:"annotation_type"`
	Value    json.RawMessage `json:"annotation_value"`
}
