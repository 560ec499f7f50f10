package vrs

// SequenceLocation is a half-open, zero-based interval [Start, End) on a
// sequence identified by SequenceReference. Its identifier is a digest of
// its attributes: two locations with equal SequenceReference/Start/End
// values always collide to the same identifier (invariant 1, data model).
type SequenceLocation struct {
	SequenceReference *SequenceReference `json:"sequenceReference"`
	Start             int64              `json:"start"`
	End               int64              `json:"end"`

	id string // memoized digest-derived identifier
}

// NewSequenceLocation builds a location and eagerly computes its identifier.
func NewSequenceLocation(ref *SequenceReference, start, end int64) *SequenceLocation {
	sl := &SequenceLocation{SequenceReference: ref, Start: start, End: end}
	sl.id = sl.computeID()
	return sl
}

func (l *SequenceLocation) computeID() string {
	return "ga4gh:SL." + digest(map[string]any{
		"type": TypeSequenceLocation,
		"sequenceReference": map[string]any{
			"type":            TypeSequenceReference,
			"refgetAccession": l.SequenceReference.RefgetAccession,
		},
		"start": l.Start,
		"end":   l.End,
	})
}

// VRSID returns the cached identifier, computing it if the location was
// constructed without NewSequenceLocation (e.g. decoded from storage).
func (l *SequenceLocation) VRSID() string {
	if l.id == "" {
		l.id = l.computeID()
	}
	return l.id
}

func (l *SequenceLocation) VRSType() string { return TypeSequenceLocation }

// Overlaps reports whether the half-open interval [start, end) intersects
// this location's interval, per the overlap-inclusion property:
// s < loc.End && e > loc.Start.
func (l *SequenceLocation) Overlaps(start, end int64) bool {
	return start < l.End && end > l.Start
}
