package dataproxy

import (
	"context"
	"sync"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
)

// LocalProxy is an in-memory DataProxy backed by sequences and aliases
// loaded ahead of time, for local development and tests. It plays the
// role the teacher's in-process FASTA cache plays for transcript lookups:
// a read-only table built once at startup and queried without I/O.
type LocalProxy struct {
	mu        sync.RWMutex
	sequences map[string][]byte // refget accession -> full sequence bytes
	aliases   map[string]string // alias (chromosome name, RefSeq id, ...) -> refget accession
}

// NewLocalProxy creates an empty LocalProxy; use AddSequence and AddAlias
// to populate it before serving requests.
func NewLocalProxy() *LocalProxy {
	return &LocalProxy{
		sequences: make(map[string][]byte),
		aliases:   make(map[string]string),
	}
}

// AddSequence registers the full sequence bytes for a refget accession.
func (p *LocalProxy) AddSequence(accession string, seq []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sequences[accession] = seq
}

// AddAlias registers alias as resolving to accession. Both directions of a
// lookup (e.g. "chr7" and "NC_000007.14" for the same accession) should be
// added explicitly; no normalization beyond exact string match is applied.
func (p *LocalProxy) AddAlias(alias, accession string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aliases[alias] = accession
}

func (p *LocalProxy) TranslateSequenceIdentifier(_ context.Context, alias string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if accession, ok := p.aliases[alias]; ok {
		return accession, nil
	}
	// An alias that is already a known accession resolves to itself.
	if _, ok := p.sequences[alias]; ok {
		return alias, nil
	}
	return "", anyvarerr.ErrUnresolvedAccession
}

func (p *LocalProxy) GetSequence(_ context.Context, accession string, start, end int64) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seq, ok := p.sequences[accession]
	if !ok {
		return nil, anyvarerr.ErrUnknownAccession
	}
	if start < 0 || end < start || end > int64(len(seq)) {
		return nil, anyvarerr.ErrRangeOutOfBounds
	}
	out := make([]byte, end-start)
	copy(out, seq[start:end])
	return out, nil
}
