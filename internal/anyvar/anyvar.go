// Package anyvar implements the AnyVar façade: the single entry point
// the HTTP API and the VCF ingest pipeline use to register, retrieve,
// annotate, map, and search variation. It wraps a translate.Translator,
// a dataproxy.DataProxy, and a storage.Store, and owns the decomposition
// of a nested Allele into its constituent put_vrs calls.
package anyvar

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ga4gh/anyvar/internal/dataproxy"
	"github.com/ga4gh/anyvar/internal/storage"
	"github.com/ga4gh/anyvar/internal/storage/batch"
	"github.com/ga4gh/anyvar/internal/translate"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// AnyVar is the façade over translation, sequence resolution, and storage.
type AnyVar struct {
	translator translate.Translator
	proxy      dataproxy.DataProxy
	store      storage.Store
	batches    *batch.Manager
	logger     *zap.Logger
}

// New wires a Translator and Store into an AnyVar façade.
func New(translator translate.Translator, proxy dataproxy.DataProxy, store storage.Store) *AnyVar {
	return &AnyVar{
		translator: translator,
		proxy:      proxy,
		store:      store,
		batches:    batch.NewManager(store.BatchWriter()),
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger used for façade-level diagnostics.
func (a *AnyVar) SetLogger(l *zap.Logger) {
	a.logger = l
	a.batches.SetLogger(l)
}

// TranslateAndPut translates definition into a VRS Allele and registers
// it, returning the registered Allele. This is the common path for
// the HTTP registration endpoint.
func (a *AnyVar) TranslateAndPut(ctx context.Context, definition string) (*vrs.Allele, error) {
	allele, err := a.translator.TranslateAllele(ctx, definition)
	if err != nil {
		return nil, err
	}
	if err := a.PutObject(ctx, allele); err != nil {
		return nil, err
	}
	return allele, nil
}

// PutObject decomposes obj into its constituent writes and persists them
// in reference-first order, so referential closure holds even if the
// engine crashes between puts: an Allele is never stored without its
// SequenceLocation and SequenceReference already being storable.
// Putting the same object twice is a no-op (VRS identifiers are
// content-derived, so the second put collides with the first).
func (a *AnyVar) PutObject(ctx context.Context, obj vrs.Object) error {
	for _, part := range decompose(obj) {
		if err := a.store.PutVRS(ctx, part); err != nil {
			return fmt.Errorf("put %s %s: %w", part.VRSType(), part.VRSID(), err)
		}
	}
	return nil
}

// decompose returns obj's constituent VRS objects in the order they must
// be written: nested references and locations before the object that
// points to them.
func decompose(obj vrs.Object) []vrs.Object {
	a, ok := obj.(*vrs.Allele)
	if !ok {
		return []vrs.Object{obj}
	}

	var parts []vrs.Object
	if a.Location != nil {
		if a.Location.SequenceReference != nil {
			parts = append(parts, a.Location.SequenceReference)
		}
		parts = append(parts, a.Location)
	}
	parts = append(parts, a)
	return parts
}

// GetObject dereferences id, reconstructing nested structures as stored.
func (a *AnyVar) GetObject(ctx context.Context, id string) (vrs.Object, error) {
	return a.store.GetVRS(ctx, id)
}

func (a *AnyVar) PutMapping(ctx context.Context, m vrs.Mapping) error {
	return a.store.PutMapping(ctx, m)
}

func (a *AnyVar) GetObjectMappings(ctx context.Context, objectID string, mappingType string) ([]vrs.Mapping, error) {
	return a.store.GetMappings(ctx, objectID, mappingType)
}

func (a *AnyVar) PutAnnotation(ctx context.Context, ann vrs.Annotation) error {
	return a.store.PutAnnotation(ctx, ann)
}

func (a *AnyVar) GetObjectAnnotations(ctx context.Context, objectID string, annotationType string) ([]vrs.Annotation, error) {
	return a.store.GetAnnotations(ctx, objectID, annotationType)
}

// SearchVariations returns every Allele on refgetAccession whose interval
// intersects [start, end).
func (a *AnyVar) SearchVariations(ctx context.Context, refgetAccession string, start, end int64) ([]*vrs.Allele, error) {
	return a.store.Search(ctx, refgetAccession, start, end)
}

// BatchContext starts a scoped batching session: writes issued through
// the returned BatchContext's Put are buffered and applied in bulk, with
// guaranteed writer release on every exit path via End.
func (a *AnyVar) BatchContext(ctx context.Context, opts batch.Options) *BatchContext {
	return &BatchContext{inner: a.batches.Begin(ctx, opts)}
}

// BatchContext wraps batch.Context to buffer whole vrs.Object puts
// (including decomposition) rather than raw rows, matching the
// façade-level contract PutObject exposes outside a batch.
type BatchContext struct {
	inner *batch.Context
}

// Put decomposes and buffers obj the same way PutObject does outside a
// batch, returning ErrBatchAborted if a prior batch in this context failed.
func (b *BatchContext) Put(ctx context.Context, obj vrs.Object) error {
	for _, part := range decompose(obj) {
		if err := b.inner.Put(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

// End releases the writer; see batch.Context.End for flush semantics.
func (b *BatchContext) End(flush bool) error {
	return b.inner.End(flush)
}
