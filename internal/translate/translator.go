// Package translate implements the Translator collaborator: converting a
// definition string in one of several nomenclatures (HGVS, SPDI,
// gnomAD/VCF) into a normalized, digested vrs.Allele.
package translate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/dataproxy"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// Translator converts a variant definition string into a fully normalized
// Allele with canonical digests on both the Allele and its nested
// SequenceLocation.
type Translator interface {
	TranslateAllele(ctx context.Context, definition string) (*vrs.Allele, error)
}

// parsedDefinition is the common shape every format-specific parser
// reduces a definition string to before normalization and digesting.
type parsedDefinition struct {
	accessionAlias string
	pos0           int64 // 0-based start coordinate
	ref            string
	alt            string
}

// formatParser recognizes and parses one nomenclature. ok is false when
// the definition does not match this format at all (try the next parser);
// a non-nil error means the format matched but the content is invalid.
type formatParser interface {
	parse(definition string) (parsedDefinition, bool, error)
}

// NormalizingTranslator dispatches a definition string to the first
// matching format parser, resolves its accession through DataProxy,
// normalizes the resulting interval, and returns a digested Allele. It
// plays the role the teacher's detectInputFormat dispatch plays for
// VCF/MAF input: format detection followed by a format-specific parser.
type NormalizingTranslator struct {
	proxy   dataproxy.DataProxy
	parsers []formatParser
	logger  *zap.Logger
}

// NewNormalizingTranslator creates a Translator backed by proxy for
// accession resolution, trying SPDI, HGVS, then gnomAD/VCF parsers in
// that order (SPDI and gnomAD are unambiguous on colon vs. hyphen
// delimiters; HGVS is recognized by its "g." marker).
func NewNormalizingTranslator(proxy dataproxy.DataProxy) *NormalizingTranslator {
	return &NormalizingTranslator{
		proxy: proxy,
		parsers: []formatParser{
			spdiParser{},
			hgvsParser{},
			gnomADParser{},
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger used for translation diagnostics.
func (t *NormalizingTranslator) SetLogger(l *zap.Logger) {
	t.logger = l
}

func (t *NormalizingTranslator) TranslateAllele(ctx context.Context, definition string) (*vrs.Allele, error) {
	var parsed parsedDefinition
	matched := false
	for _, p := range t.parsers {
		pd, ok, err := p.parse(definition)
		if err != nil {
			return nil, &anyvarerr.TranslationError{Definition: definition, Reason: err.Error()}
		}
		if ok {
			parsed = pd
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: %q", anyvarerr.ErrUnknownNomenclature, definition)
	}

	accession, err := t.proxy.TranslateSequenceIdentifier(ctx, parsed.accessionAlias)
	if err != nil {
		return nil, fmt.Errorf("translate %q: %w", definition, err)
	}

	start, end, ref, alt := normalizeIndel(parsed.pos0, parsed.ref, parsed.alt)
	if ref == alt {
		return nil, &anyvarerr.TranslationError{
			Definition: definition,
			Reason:     "ref and alt are identical after normalization; no variation expressed",
		}
	}

	t.logger.Debug("translated allele",
		zap.String("definition", definition),
		zap.String("accession", accession),
		zap.Int64("start", start),
		zap.Int64("end", end),
	)

	loc := vrs.NewSequenceLocation(vrs.NewSequenceReference(accession), start, end)
	return vrs.NewAllele(loc, alt), nil
}
