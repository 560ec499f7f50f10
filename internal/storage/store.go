// Package storage defines the Storage contract AnyVar uses for object,
// annotation, mapping, and search operations, plus the backends that
// implement it: NoObjectStore (stateless), MemStore (in-process, for
// tests and dependency-free deployment), and the SQL-backed
// implementations in the duckdbstore and pgstore subpackages.
package storage

import (
	"context"

	"github.com/ga4gh/anyvar/internal/storage/batch"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// Store is the abstract contract every storage backend implements. A
// BatchContext (internal/storage/batch) wraps a Store to buffer and
// flush writes in bulk; outside a batch, PutVRS executes immediately
// ("transactional mode" in the design, §4.5).
type Store interface {
	PutVRS(ctx context.Context, obj vrs.Object) error
	GetVRS(ctx context.Context, id string) (vrs.Object, error)

	PutMapping(ctx context.Context, m vrs.Mapping) error
	GetMappings(ctx context.Context, objectID string, mappingType string) ([]vrs.Mapping, error)

	PutAnnotation(ctx context.Context, a vrs.Annotation) error
	GetAnnotations(ctx context.Context, objectID string, annotationType string) ([]vrs.Annotation, error)

	// Search returns every Allele whose location matches accession and
	// whose [start,end) interval intersects the query interval, ordered
	// by Allele identifier.
	Search(ctx context.Context, accession string, start, end int64) ([]*vrs.Allele, error)

	// BatchWriter returns the batch.Writer this store's BatchManager
	// drains batches through. Backends with no special batched write
	// path (NoObjectStore, MemStore) can return a writer that simply
	// calls PutVRS synchronously for each row.
	BatchWriter() batch.Writer

	Close() error
}
