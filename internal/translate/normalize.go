package translate

// normalizeIndel applies VRS's fully-justified trimming to a (pos, ref, alt)
// triple: shared trailing bases are trimmed first, then shared leading
// bases, shrinking the interval to the minimal span actually affected by
// the variant (an insertion normalizes to a zero-width interval with a
// non-empty alt state; a deletion normalizes to alt="" ). This is the
// "no reference context needed" half of VRS normalization; true
// left-shuffling of a representation that admits multiple equivalent
// placements (e.g. a deletion inside a homopolymer run) additionally
// needs reference bases beyond the input strings and is not done here.
//
// pos0 is the 0-based offset of ref's first base. Returns the half-open
// interval [start, end) and the trimmed ref/alt.
func normalizeIndel(pos0 int64, ref, alt string) (start, end int64, trimmedRef, trimmedAlt string) {
	rEnd, aEnd := len(ref), len(alt)
	for rEnd > 0 && aEnd > 0 && ref[rEnd-1] == alt[aEnd-1] {
		rEnd--
		aEnd--
	}
	ref, alt = ref[:rEnd], alt[:aEnd]

	i := 0
	for i < len(ref) && i < len(alt) && ref[i] == alt[i] {
		i++
	}

	start = pos0 + int64(i)
	trimmedRef = ref[i:]
	trimmedAlt = alt[i:]
	end = start + int64(len(trimmedRef))
	return start, end, trimmedRef, trimmedAlt
}
