package duckdbstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/vrs"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestAllele(accession string, start, end int64, seq string) *vrs.Allele {
	ref := vrs.NewSequenceReference(accession)
	loc := vrs.NewSequenceLocation(ref, start, end)
	return vrs.NewAllele(loc, seq)
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestPutGetVRS(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	a := newTestAllele("SQ.abc", 100, 101, "T")
	require.NoError(t, s.PutVRS(ctx, a))

	got, err := s.GetVRS(ctx, a.VRSID())
	require.NoError(t, err)
	assert.Equal(t, a.VRSID(), got.VRSID())
	assert.Equal(t, vrs.TypeAllele, got.VRSType())

	gotAllele, ok := got.(*vrs.Allele)
	require.True(t, ok)
	assert.Equal(t, "T", gotAllele.State.Sequence)
}

func TestPutVRS_Idempotent(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	a := newTestAllele("SQ.abc", 100, 101, "T")
	require.NoError(t, s.PutVRS(ctx, a))
	require.NoError(t, s.PutVRS(ctx, a))

	results, err := s.Search(ctx, "SQ.abc", 0, 1000)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGetVRS_NotFound(t *testing.T) {
	s := openInMemory(t)
	_, err := s.GetVRS(context.Background(), "ga4gh:VA.missing")
	assert.ErrorIs(t, err, anyvarerr.ErrNotFound)
}

func TestMappingsAndAnnotations(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	m := vrs.Mapping{SourceID: "ga4gh:VA.x", DestID: "ga4gh:VA.y", Type: vrs.MappingLiftover}
	require.NoError(t, s.PutMapping(ctx, m))

	got, err := s.GetMappings(ctx, "ga4gh:VA.x", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ga4gh:VA.y", got[0].DestID)

	a := vrs.Annotation{ObjectID: "ga4gh:VA.x", Type: "consequence", Value: []byte(`{"impact":"HIGH"}`)}
	require.NoError(t, s.PutAnnotation(ctx, a))

	annos, err := s.GetAnnotations(ctx, "ga4gh:VA.x", "consequence")
	require.NoError(t, err)
	require.Len(t, annos, 1)
	assert.JSONEq(t, `{"impact":"HIGH"}`, string(annos[0].Value))
}

func TestSearch(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	a1 := newTestAllele("SQ.abc", 100, 101, "T")
	a2 := newTestAllele("SQ.abc", 500, 501, "G")
	a3 := newTestAllele("SQ.other", 100, 101, "T")
	for _, a := range []*vrs.Allele{a1, a2, a3} {
		require.NoError(t, s.PutVRS(ctx, a))
	}

	got, err := s.Search(ctx, "SQ.abc", 90, 110)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a1.VRSID(), got[0].VRSID())

	got, err = s.Search(ctx, "SQ.abc", 0, 1000)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBatchWriter_ApplyBatch(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()
	w := s.BatchWriter()

	a1 := newTestAllele("SQ.abc", 10, 11, "A")
	a2 := newTestAllele("SQ.abc", 20, 21, "C")
	require.NoError(t, w.ApplyBatch(ctx, []vrs.Object{a1, a2, a1}))

	results, err := s.Search(ctx, "SQ.abc", 0, 1000)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
