// Package vrs implements the GA4GH Variation Representation Specification
// object model: a small set of content-addressed types (SequenceReference,
// SequenceLocation, Allele) plus the mapping and annotation tuples that
// attach to them by identifier.
package vrs

import "encoding/json"

// Type names as they appear in the "type" attribute of the VRS 2.x JSON
// schema and in the digest prefix of an identifier.
const (
	TypeSequenceReference = "SequenceReference"
	TypeSequenceLocation  = "SequenceLocation"
	TypeAllele            = "Allele"
)

// Object is any VRS value that carries a deterministic, content-derived
// identifier. Alleles, SequenceLocations and SequenceReferences all satisfy
// it; other VRS 2.x types (CopyNumberCount, CopyNumberChange, ...) can be
// stored as OpaqueObject without the engine needing to understand their
// internal shape.
type Object interface {
	VRSID() string
	VRSType() string
}

// OpaqueObject carries a VRS object this engine does not interpret beyond
// its identifier and raw JSON payload. It is stored and dereferenced like
// any other Object, but it never participates in overlap search: only
// Alleles are indexed by location (see internal/storage).
type OpaqueObject struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"-"`
}

func (o *OpaqueObject) VRSID() string   { return o.ID }
func (o *OpaqueObject) VRSType() string { return o.Type }

// MarshalJSON emits the original payload verbatim when present, so round
// tripping an OpaqueObject through storage never loses fields this
// engine doesn't model.
func (o *OpaqueObject) MarshalJSON() ([]byte, error) {
	if len(o.Payload) > 0 {
		return o.Payload, nil
	}
	return json.Marshal(struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}{o.ID, o.Type})
}

// UnmarshalJSON keeps the raw payload alongside the parsed id/type so a
// later MarshalJSON reproduces it exactly.
func (o *OpaqueObject) UnmarshalJSON(data []byte) error {
	var head struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	o.ID, o.Type = head.ID, head.Type
	o.Payload = append(json.RawMessage(nil), data...)
	return nil
}
