package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/dataproxy"
)

func newTestProxy() *dataproxy.LocalProxy {
	p := dataproxy.NewLocalProxy()
	p.AddAlias("NC_000010.11", "SQ.ss8r_wB0-b9r44TQTMmVTI92884QvBiB")
	p.AddAlias("NC_000007.14", "SQ.F-LrLMe1SRpfUZHkQmvkVKFEGaoDeHul")
	p.AddAlias("7", "SQ.F-LrLMe1SRpfUZHkQmvkVKFEGaoDeHul")
	return p
}

func TestNormalizingTranslator_HGVSSubstitution(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())

	a, err := tr.TranslateAllele(context.Background(), "NC_000010.11:g.87894077C>T")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Location.Start != 87894076 || a.Location.End != 87894077 {
		t.Errorf("got [%d,%d), want [87894076,87894077)", a.Location.Start, a.Location.End)
	}
	if a.State.Sequence != "T" {
		t.Errorf("got state %q, want %q", a.State.Sequence, "T")
	}
	if a.Location.SequenceReference.RefgetAccession != "SQ.ss8r_wB0-b9r44TQTMmVTI92884QvBiB" {
		t.Errorf("unexpected accession %q", a.Location.SequenceReference.RefgetAccession)
	}
}

func TestNormalizingTranslator_SPDIAndGnomADAgree(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())
	ctx := context.Background()

	spdi, err := tr.TranslateAllele(ctx, "NC_000007.14:140753335:A:T")
	if err != nil {
		t.Fatalf("spdi: unexpected error: %v", err)
	}

	gnomad, err := tr.TranslateAllele(ctx, "7-140753336-A-T")
	if err != nil {
		t.Fatalf("gnomad: unexpected error: %v", err)
	}

	if spdi.VRSID() != gnomad.VRSID() {
		t.Errorf("expected identical ids for equivalent SPDI/gnomAD definitions, got %q vs %q", spdi.VRSID(), gnomad.VRSID())
	}
}

func TestNormalizingTranslator_DeterministicAcrossCalls(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())
	ctx := context.Background()

	a1, err := tr.TranslateAllele(ctx, "NC_000010.11:g.87894077C>T")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := tr.TranslateAllele(ctx, "NC_000010.11:g.87894077C>T")
	if err != nil {
		t.Fatal(err)
	}
	if a1.VRSID() != a2.VRSID() {
		t.Errorf("translation is not deterministic: %q vs %q", a1.VRSID(), a2.VRSID())
	}
}

func TestNormalizingTranslator_InsertionNormalizesToZeroWidth(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())
	a, err := tr.TranslateAllele(context.Background(), "NC_000007.14:g.140753335_140753336insACGT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Location.Start != a.Location.End {
		t.Errorf("expected zero-width insertion interval, got [%d,%d)", a.Location.Start, a.Location.End)
	}
	if a.State.Sequence != "ACGT" {
		t.Errorf("got state %q", a.State.Sequence)
	}
}

func TestNormalizingTranslator_DeletionNormalizesEmptyAlt(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())
	a, err := tr.TranslateAllele(context.Background(), "NC_000007.14:g.140753335_140753337del")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.State.Sequence != "" {
		t.Errorf("expected empty alt state for pure deletion, got %q", a.State.Sequence)
	}
	if width := a.Location.End - a.Location.Start; width != 3 {
		t.Errorf("expected 3-base deleted span, got width %d", width)
	}
}

func TestNormalizingTranslator_UnknownNomenclature(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())
	_, err := tr.TranslateAllele(context.Background(), "not a variant at all")
	if !errors.Is(err, anyvarerr.ErrUnknownNomenclature) {
		t.Errorf("expected ErrUnknownNomenclature, got %v", err)
	}
}

func TestNormalizingTranslator_UnresolvedAccession(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())
	_, err := tr.TranslateAllele(context.Background(), "NC_999999.1:g.1A>T")
	if !errors.Is(err, anyvarerr.ErrUnresolvedAccession) {
		t.Errorf("expected ErrUnresolvedAccession, got %v", err)
	}
}

func TestNormalizingTranslator_AmbiguousNoVariation(t *testing.T) {
	tr := NewNormalizingTranslator(newTestProxy())
	_, err := tr.TranslateAllele(context.Background(), "NC_000010.11:100:A:A")
	var te *anyvarerr.TranslationError
	if !errors.As(err, &te) {
		t.Errorf("expected TranslationError, got %v (%T)", err, err)
	}
}
