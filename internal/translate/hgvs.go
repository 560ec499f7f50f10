package translate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// hgvsParser recognizes a practical subset of HGVS genomic ("g.")
// notation: substitutions ("NC_000010.11:g.87894077C>T"), deletions
// ("NC_000010.11:g.87894077_87894078del"), and insertions
// ("NC_000010.11:g.87894077_87894078insACGT"). Full HGVS grammar
// (duplications, inversions, uncertain ranges, intronic offsets) is
// deliberately out of scope: those forms require reference-sequence
// context beyond a definition string, which this engine resolves through
// DataProxy only for accession aliasing, not for sequence-context-aware
// HGVS parsing.
type hgvsParser struct{}

var (
	hgvsSubRe = regexp.MustCompile(`^([^:]+):g\.(\d+)([ACGTNacgtn])>([ACGTNacgtn])$`)
	hgvsDelRe = regexp.MustCompile(`^([^:]+):g\.(\d+)(?:_(\d+))?del([ACGTNacgtn]*)$`)
	hgvsInsRe = regexp.MustCompile(`^([^:]+):g\.(\d+)_(\d+)ins([ACGTNacgtn]+)$`)
)

func (hgvsParser) parse(definition string) (parsedDefinition, bool, error) {
	if !strings.Contains(definition, ":g.") {
		return parsedDefinition{}, false, nil
	}

	if m := hgvsSubRe.FindStringSubmatch(definition); m != nil {
		pos, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return parsedDefinition{}, true, err
		}
		return parsedDefinition{accessionAlias: m[1], pos0: pos - 1, ref: m[3], alt: m[4]}, true, nil
	}

	if m := hgvsDelRe.FindStringSubmatch(definition); m != nil {
		start, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return parsedDefinition{}, true, err
		}
		end := start
		if m[3] != "" {
			end, err = strconv.ParseInt(m[3], 10, 64)
			if err != nil {
				return parsedDefinition{}, true, err
			}
		}
		if end < start {
			return parsedDefinition{}, true, fmt.Errorf("deletion range end %d before start %d", end, start)
		}
		ref := m[4]
		if ref == "" {
			// Deleted bases weren't spelled out in the definition; represent
			// the deleted span with an anonymous placeholder of the right
			// length so normalizeIndel can still compute the correct
			// interval width. With alt empty nothing is trimmed, so the
			// width is kept; the placeholder never appears in output
			// because only alt becomes the Allele's state.
			ref = strings.Repeat("N", int(end-start+1))
		}
		return parsedDefinition{accessionAlias: m[1], pos0: start - 1, ref: ref, alt: ""}, true, nil
	}

	if m := hgvsInsRe.FindStringSubmatch(definition); m != nil {
		start, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return parsedDefinition{}, true, err
		}
		end, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return parsedDefinition{}, true, err
		}
		if end != start+1 {
			return parsedDefinition{}, true, fmt.Errorf("insertion anchor positions %d_%d are not adjacent", start, end)
		}
		// Anchor the insertion at the zero-width interval immediately
		// after `start`; ref is empty so normalizeIndel leaves it untouched.
		return parsedDefinition{accessionAlias: m[1], pos0: start, ref: "", alt: m[4]}, true, nil
	}

	return parsedDefinition{}, true, fmt.Errorf("unrecognized HGVS genomic expression %q", definition)
}
