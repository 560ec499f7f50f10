// Package anyvarerr defines the error taxonomy shared by the translation,
// storage, batching and async-job layers, and the HTTP status codes each
// maps to. Components return these sentinels (wrapped with %w for
// context) rather than ad-hoc strings so callers can branch with
// errors.Is/errors.As.
package anyvarerr

import "errors"

var (
	// ErrUnknownNomenclature means a definition string matched none of the
	// Translator's supported formats.
	ErrUnknownNomenclature = errors.New("anyvar: unknown variant nomenclature")

	// ErrUnresolvedAccession means DataProxy could not map a chromosome or
	// accession alias to a refget accession.
	ErrUnresolvedAccession = errors.New("anyvar: unresolved sequence accession")

	// ErrUnknownAccession means DataProxy has no knowledge of the accession at all.
	ErrUnknownAccession = errors.New("anyvar: unknown accession")

	// ErrRangeOutOfBounds means a DataProxy.GetSequence request fell outside
	// the known length of the sequence.
	ErrRangeOutOfBounds = errors.New("anyvar: sequence range out of bounds")

	// ErrUnavailable is a transient DataProxy or Storage failure; callers
	// may retry with backoff.
	ErrUnavailable = errors.New("anyvar: upstream unavailable")

	// ErrNotFound means a dereference, mapping, or annotation lookup found
	// nothing for the given identifier.
	ErrNotFound = errors.New("anyvar: not found")

	// ErrStorageConflict is a duplicate-key condition on a backend that
	// enforces uniqueness; callers treat it as a no-op for idempotent puts.
	ErrStorageConflict = errors.New("anyvar: storage conflict")

	// ErrBatchAborted means a previous batch in this BatchContext failed;
	// the context fail-fasts on every subsequent put until it is closed.
	ErrBatchAborted = errors.New("anyvar: batch context aborted")

	// ErrBackpressureTimeout means a Put blocked on the pending-batches
	// queue past the configured deadline.
	ErrBackpressureTimeout = errors.New("anyvar: backpressure timeout")

	// ErrRunIDConflict means an async submission reused an active run_id.
	ErrRunIDConflict = errors.New("anyvar: run_id already in use")

	// ErrRunUnknown means a poll targeted a run_id that was never
	// submitted, or has passed its TTL and been purged.
	ErrRunUnknown = errors.New("anyvar: run unknown or expired")

	// ErrRunFailed means an async run reached the FAILED terminal state.
	ErrRunFailed = errors.New("anyvar: run failed")
)

// TranslationError reports why a variant definition could not be
// normalized into a VRS object. Reason is a human-readable explanation
// surfaced verbatim to API clients in the response's messages array.
type TranslationError struct {
	Definition string
	Reason     string
}

func (e *TranslationError) Error() string {
	return "anyvar: translation error for " + e.Definition + ": " + e.Reason
}

// Is allows errors.Is(err, ErrTranslation) style matching against the
// TranslationError family without pinning callers to a specific Reason.
func (e *TranslationError) Is(target error) bool {
	return target == ErrTranslation
}

// ErrTranslation is the sentinel TranslationError values compare equal to
// via errors.Is, for callers that only need to know "translation failed".
var ErrTranslation = errors.New("anyvar: translation error")
