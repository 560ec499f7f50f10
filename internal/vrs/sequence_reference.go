package vrs

// SequenceReference identifies a biological sequence by its refget
// accession. It carries no digest of its own: the accession is already a
// content-derived identifier minted by the reference-sequence service
// (internal/dataproxy), so SequenceReference identity is the accession
// alone, per the data model's invariant that it is immutable once created.
type SequenceReference struct {
	RefgetAccession string `json:"refgetAccession"`
}

// NewSequenceReference wraps an already-resolved refget accession.
func NewSequenceReference(refgetAccession string) *SequenceReference {
	return &SequenceReference{RefgetAccession: refgetAccession}
}

// VRSID returns the "ga4gh:SQ.<accession>" form used on the wire.
func (r *SequenceReference) VRSID() string {
	return "ga4gh:SQ." + r.RefgetAccession
}

func (r *SequenceReference) VRSType() string { return TypeSequenceReference }
