// Package dataproxy provides the DataProxy collaborator: resolving
// chromosome/accession aliases to refget accessions and fetching
// reference-sequence bytes. Concrete implementations (LocalProxy,
// HTTPProxy) are swappable behind the DataProxy interface; AnyVar only
// ever depends on the interface.
package dataproxy

import "context"

// DataProxy resolves sequence identity and fetches sequence bytes from an
// external reference-sequence service (SeqRepo-like).
type DataProxy interface {
	// TranslateSequenceIdentifier maps a GenBank/RefSeq/assembly-chromosome
	// alias (e.g. "chr7", "NC_000007.14") to its canonical refget accession.
	TranslateSequenceIdentifier(ctx context.Context, alias string) (string, error)

	// GetSequence returns the substring [start, end) of the sequence
	// identified by accession.
	GetSequence(ctx context.Context, accession string, start, end int64) ([]byte, error)
}
