package storage

import (
	"context"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/storage/batch"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// NoObjectStore is the stateless backend: PutVRS/PutMapping/PutAnnotation
// succeed and discard, every read reports ErrNotFound, and Search always
// returns an empty result. It exists for deployments that only need
// translation (identifier computation) without registration or lookup.
type NoObjectStore struct{}

// NewNoObjectStore returns a NoObjectStore.
func NewNoObjectStore() *NoObjectStore {
	return &NoObjectStore{}
}

func (s *NoObjectStore) PutVRS(ctx context.Context, obj vrs.Object) error { return nil }

func (s *NoObjectStore) GetVRS(ctx context.Context, id string) (vrs.Object, error) {
	return nil, anyvarerr.ErrNotFound
}

func (s *NoObjectStore) PutMapping(ctx context.Context, m vrs.Mapping) error { return nil }

func (s *NoObjectStore) GetMappings(ctx context.Context, objectID string, mappingType string) ([]vrs.Mapping, error) {
	return nil, nil
}

func (s *NoObjectStore) PutAnnotation(ctx context.Context, a vrs.Annotation) error { return nil }

func (s *NoObjectStore) GetAnnotations(ctx context.Context, objectID string, annotationType string) ([]vrs.Annotation, error) {
	return nil, nil
}

func (s *NoObjectStore) Search(ctx context.Context, accession string, start, end int64) ([]*vrs.Allele, error) {
	return nil, nil
}

func (s *NoObjectStore) BatchWriter() batch.Writer {
	return noObjectWriter{}
}

func (s *NoObjectStore) Close() error { return nil }

type noObjectWriter struct{}

func (noObjectWriter) ApplyBatch(ctx context.Context, objs []vrs.Object) error { return nil }
