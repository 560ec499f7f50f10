package translate

import (
	"fmt"
	"strconv"
	"strings"
)

// gnomADParser recognizes gnomAD/VCF-style notation: <chrom>-<pos>-<ref>-<alt>,
// e.g. "7-140753335-A-T". Position is 1-based, VCF convention; it is
// converted to the 0-based coordinate normalizeIndel expects.
type gnomADParser struct{}

func (gnomADParser) parse(definition string) (parsedDefinition, bool, error) {
	parts := strings.Split(definition, "-")
	if len(parts) != 4 {
		return parsedDefinition{}, false, nil
	}

	pos, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return parsedDefinition{}, false, nil
	}

	ref, alt := parts[2], parts[3]
	if !isSequence(ref) || !isSequence(alt) || ref == "" || alt == "" {
		return parsedDefinition{}, true, fmt.Errorf("non-sequence ref/alt in gnomAD definition %q", definition)
	}

	return parsedDefinition{
		accessionAlias: parts[0],
		pos0:           pos - 1,
		ref:            ref,
		alt:            alt,
	}, true, nil
}
