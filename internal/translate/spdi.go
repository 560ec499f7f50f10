package translate

import (
	"fmt"
	"strconv"
	"strings"
)

// spdiParser recognizes SPDI notation: <accession>:<position>:<ref>:<alt>,
// e.g. "NC_000007.14:140753335:A:T". Position is already the 0-based
// start coordinate SPDI defines, so no conversion is needed.
type spdiParser struct{}

func (spdiParser) parse(definition string) (parsedDefinition, bool, error) {
	parts := strings.Split(definition, ":")
	if len(parts) != 4 {
		return parsedDefinition{}, false, nil
	}

	pos, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		// Looks like SPDI (four colon-separated fields) but the position
		// field isn't numeric — not actually SPDI, let other parsers try.
		return parsedDefinition{}, false, nil
	}
	if pos < 0 {
		return parsedDefinition{}, true, fmt.Errorf("negative SPDI position %d", pos)
	}

	ref, alt := parts[2], parts[3]
	if !isSequence(ref) || !isSequence(alt) {
		return parsedDefinition{}, true, fmt.Errorf("non-sequence ref/alt in SPDI definition %q", definition)
	}

	return parsedDefinition{
		accessionAlias: parts[0],
		pos0:           pos,
		ref:            ref,
		alt:            alt,
	}, true, nil
}

// isSequence reports whether s is empty or consists solely of the
// nucleotide characters A, C, G, T and N in either case (other IUPAC
// ambiguity codes are rejected), which SPDI/HGVS/gnomAD ref and alt fields are
// restricted to in this engine (amino-acid sequences are out of scope for
// the allele-from-nomenclature path).
func isSequence(s string) bool {
	for _, c := range s {
		switch c {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}
	return true
}
