package vrs

// LiteralSequenceExpression carries an explicit nucleotide or amino-acid
// string as the state of an Allele.
type LiteralSequenceExpression struct {
	Sequence string `json:"sequence"`
}

// Allele pairs a SequenceLocation with the literal sequence observed there.
// Its identifier digests the location's identifier and the state, so two
// alleles at the same location with the same state share one identity
// (invariant 1) and putting an Allele twice is a no-op (invariant 3).
type Allele struct {
	Location *SequenceLocation          `json:"location"`
	State    *LiteralSequenceExpression `json:"state"`

	id string
}

// NewAllele builds an allele and eagerly computes its identifier.
func NewAllele(location *SequenceLocation, sequence string) *Allele {
	a := &Allele{Location: location, State: &LiteralSequenceExpression{Sequence: sequence}}
	a.id = a.computeID()
	return a
}

func (a *Allele) computeID() string {
	return "ga4gh:VA." + digest(map[string]any{
		"type":     TypeAllele,
		"location": a.Location.VRSID(),
		"state": map[string]any{
			"type":     "LiteralSequenceExpression",
			"sequence": a.State.Sequence,
		},
	})
}

func (a *Allele) VRSID() string {
	if a.id == "" {
		a.id = a.computeID()
	}
	return a.id
}

func (a *Allele) VRSType() string { return TypeAllele }
