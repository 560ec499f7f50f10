package storage

import (
	"context"
	"sync"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/storage/batch"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// MemStore is an in-process Store backed by plain maps and an
// intervalTree per accession. It has no durability and is meant for
// tests and for the dependency-free "no external database" deployment
// mode the design calls out in the DOMAIN STACK.
type MemStore struct {
	mu sync.RWMutex

	objects map[string]vrs.Object

	// mappings/annotations are keyed by objectID, then filtered by type on read.
	mappings    map[string][]vrs.Mapping
	annotations map[string][]vrs.Annotation

	trees map[string]*intervalTree // accession -> tree of allele intervals
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		objects:     make(map[string]vrs.Object),
		mappings:    make(map[string][]vrs.Mapping),
		annotations: make(map[string][]vrs.Annotation),
		trees:       make(map[string]*intervalTree),
	}
}

func (s *MemStore) PutVRS(ctx context.Context, obj vrs.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(obj)
	return nil
}

func (s *MemStore) putLocked(obj vrs.Object) {
	if _, exists := s.objects[obj.VRSID()]; exists {
		return
	}
	s.objects[obj.VRSID()] = obj

	a, ok := obj.(*vrs.Allele)
	if !ok || a.Location == nil || a.Location.SequenceReference == nil {
		return
	}
	accession := a.Location.SequenceReference.RefgetAccession
	tree, ok := s.trees[accession]
	if !ok {
		tree = newIntervalTree()
		s.trees[accession] = tree
	}
	tree.insert(a.Location.Start, a.Location.End, a.VRSID())
}

func (s *MemStore) GetVRS(ctx context.Context, id string) (vrs.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	if !ok {
		return nil, anyvarerr.ErrNotFound
	}
	return obj, nil
}

func (s *MemStore) PutMapping(ctx context.Context, m vrs.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[m.SourceID] = append(s.mappings[m.SourceID], m)
	return nil
}

func (s *MemStore) GetMappings(ctx context.Context, objectID string, mappingType string) ([]vrs.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []vrs.Mapping
	for _, m := range s.mappings[objectID] {
		if mappingType == "" || string(m.Type) == mappingType {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemStore) PutAnnotation(ctx context.Context, a vrs.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[a.ObjectID] = append(s.annotations[a.ObjectID], a)
	return nil
}

func (s *MemStore) GetAnnotations(ctx context.Context, objectID string, annotationType string) ([]vrs.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []vrs.Annotation
	for _, a := range s.annotations[objectID] {
		if annotationType == "" || a.Type == annotationType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemStore) Search(ctx context.Context, accession string, start, end int64) ([]*vrs.Allele, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.trees[accession]
	if !ok {
		return nil, nil
	}
	ids := tree.overlaps(start, end)

	out := make([]*vrs.Allele, 0, len(ids))
	for _, id := range ids {
		obj, ok := s.objects[id]
		if !ok {
			continue
		}
		a, ok := obj.(*vrs.Allele)
		if !ok {
			continue
		}
		out = append(out, a)
	}
	sortAllelesByID(out)
	return out, nil
}

func (s *MemStore) BatchWriter() batch.Writer {
	return memBatchWriter{store: s}
}

func (s *MemStore) Close() error { return nil }

type memBatchWriter struct {
	store *MemStore
}

func (w memBatchWriter) ApplyBatch(ctx context.Context, objs []vrs.Object) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	for _, obj := range objs {
		w.store.putLocked(obj)
	}
	return nil
}

func sortAllelesByID(alleles []*vrs.Allele) {
	for i := 1; i < len(alleles); i++ {
		for j := i; j > 0 && alleles[j-1].VRSID() > alleles[j].VRSID(); j-- {
			alleles[j-1], alleles[j] = alleles[j], alleles[j-1]
		}
	}
}
