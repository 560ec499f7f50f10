package vrs

// MappingType distinguishes the kind of relationship a VariationMapping
// records between two object identifiers. The set is open: new mapping
// types can be introduced by callers without changing storage or the
// façade, since both treat mapping_type as an opaque string key.
type MappingType string

const (
	MappingLiftover      MappingType = "liftover"
	MappingTranscription MappingType = "transcription"
)

// Mapping is a directed (source -> dest) relationship between two VRS
// object identifiers. Direction is meaningful: no reverse lookup is
// implied or maintained. The triple (SourceID, DestID, Type) distinguishes
// duplicate mappings; repeating a triple is idempotent.
type Mapping struct {
	SourceID string      `json:"source_id"`
	DestID   string      `json:"dest_id"`
	Type     MappingType `json:"mapping_type"`
}
