package storage

import (
	"encoding/json"
	"fmt"

	"github.com/ga4gh/anyvar/internal/vrs"
)

// EncodeObject renders obj as the (id, type, payload) triple the SQL
// backends persist. DecodeObject is its inverse, dispatching on the type
// column so callers (and the engine's GetObject) get back a concrete
// vrs.Object rather than a bag of bytes.
func EncodeObject(obj vrs.Object) (id, typ string, payload []byte, err error) {
	payload, err = json.Marshal(obj)
	if err != nil {
		return "", "", nil, fmt.Errorf("marshal %s: %w", obj.VRSType(), err)
	}
	return obj.VRSID(), obj.VRSType(), payload, nil
}

// DecodeObject reconstructs a vrs.Object from its stored type and payload.
func DecodeObject(typ string, payload []byte) (vrs.Object, error) {
	switch typ {
	case vrs.TypeSequenceReference:
		var r vrs.SequenceReference
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("unmarshal SequenceReference: %w", err)
		}
		return &r, nil
	case vrs.TypeSequenceLocation:
		var l vrs.SequenceLocation
		if err := json.Unmarshal(payload, &l); err != nil {
			return nil, fmt.Errorf("unmarshal SequenceLocation: %w", err)
		}
		return &l, nil
	case vrs.TypeAllele:
		var a vrs.Allele
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("unmarshal Allele: %w", err)
		}
		return &a, nil
	default:
		var o vrs.OpaqueObject
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, fmt.Errorf("unmarshal OpaqueObject: %w", err)
		}
		o.Type = typ
		return &o, nil
	}
}
