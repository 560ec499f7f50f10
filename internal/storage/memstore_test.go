package storage

import (
	"context"
	"testing"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/vrs"
)

func newTestAllele(accession string, start, end int64, seq string) *vrs.Allele {
	ref := vrs.NewSequenceReference(accession)
	loc := vrs.NewSequenceLocation(ref, start, end)
	return vrs.NewAllele(loc, seq)
}

func TestMemStore_PutGetVRS(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	a := newTestAllele("SQ.abc", 100, 101, "T")
	if err := s.PutVRS(ctx, a); err != nil {
		t.Fatalf("PutVRS: %v", err)
	}

	got, err := s.GetVRS(ctx, a.VRSID())
	if err != nil {
		t.Fatalf("GetVRS: %v", err)
	}
	if got.VRSID() != a.VRSID() {
		t.Errorf("got id %q, want %q", got.VRSID(), a.VRSID())
	}
}

func TestMemStore_GetVRS_NotFound(t *testing.T) {
	s := NewMemStore()
	_, err := s.GetVRS(context.Background(), "ga4gh:VA.does-not-exist")
	if err != anyvarerr.ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMemStore_MappingsAndAnnotations(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	m := vrs.Mapping{SourceID: "ga4gh:VA.x", DestID: "ga4gh:VA.y", Type: vrs.MappingLiftover}
	if err := s.PutMapping(ctx, m); err != nil {
		t.Fatalf("PutMapping: %v", err)
	}
	got, err := s.GetMappings(ctx, "ga4gh:VA.x", "")
	if err != nil {
		t.Fatalf("GetMappings: %v", err)
	}
	if len(got) != 1 || got[0].DestID != "ga4gh:VA.y" {
		t.Errorf("got %+v", got)
	}
	if got, _ := s.GetMappings(ctx, "ga4gh:VA.x", string(vrs.MappingTranscription)); len(got) != 0 {
		t.Errorf("expected no mappings for mismatched type, got %+v", got)
	}

	a := vrs.Annotation{ObjectID: "ga4gh:VA.x", Type: "consequence", Value: []byte(`{"impact":"HIGH"}`)}
	if err := s.PutAnnotation(ctx, a); err != nil {
		t.Fatalf("PutAnnotation: %v", err)
	}
	annos, err := s.GetAnnotations(ctx, "ga4gh:VA.x", "consequence")
	if err != nil {
		t.Fatalf("GetAnnotations: %v", err)
	}
	if len(annos) != 1 {
		t.Errorf("got %d annotations, want 1", len(annos))
	}
}

func TestMemStore_Search(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	a1 := newTestAllele("SQ.abc", 100, 101, "T")
	a2 := newTestAllele("SQ.abc", 500, 501, "G")
	a3 := newTestAllele("SQ.other", 100, 101, "T")

	for _, a := range []*vrs.Allele{a1, a2, a3} {
		if err := s.PutVRS(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Search(ctx, "SQ.abc", 90, 110)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].VRSID() != a1.VRSID() {
		t.Errorf("got %+v, want only a1", got)
	}

	got, err = s.Search(ctx, "SQ.abc", 0, 1000)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}

	got, err = s.Search(ctx, "SQ.unknown", 0, 1000)
	if err != nil || len(got) != 0 {
		t.Errorf("expected no results for unknown accession, got %+v err=%v", got, err)
	}
}

func TestMemStore_BatchWriter(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	w := s.BatchWriter()

	a1 := newTestAllele("SQ.abc", 10, 11, "A")
	a2 := newTestAllele("SQ.abc", 20, 21, "C")
	if err := w.ApplyBatch(ctx, []vrs.Object{a1, a2}); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	if _, err := s.GetVRS(ctx, a1.VRSID()); err != nil {
		t.Errorf("GetVRS(a1): %v", err)
	}
	if _, err := s.GetVRS(ctx, a2.VRSID()); err != nil {
		t.Errorf("GetVRS(a2): %v", err)
	}
}
