package vrs

import "testing"

func TestSequenceLocation_IdentifierDeterminism(t *testing.T) {
	ref := NewSequenceReference("SQ.8_liLu1aycC0tPQPFmUaGXJLDs5SbPZ5")

	a := NewSequenceLocation(ref, 2781631, 2781632)
	b := NewSequenceLocation(NewSequenceReference(ref.RefgetAccession), 2781631, 2781632)

	if a.VRSID() != b.VRSID() {
		t.Fatalf("expected equal attributes to produce equal digests, got %q vs %q", a.VRSID(), b.VRSID())
	}
	if a.VRSID()[:len("ga4gh:SL.")] != "ga4gh:SL." {
		t.Fatalf("expected ga4gh:SL. prefix, got %q", a.VRSID())
	}
}

func TestSequenceLocation_DifferentAttributesDiffer(t *testing.T) {
	ref := NewSequenceReference("SQ.8_liLu1aycC0tPQPFmUaGXJLDs5SbPZ5")

	a := NewSequenceLocation(ref, 100, 101)
	b := NewSequenceLocation(ref, 100, 102)

	if a.VRSID() == b.VRSID() {
		t.Fatalf("expected different end coordinates to produce different digests")
	}
}

func TestAllele_IdentifierDeterminism(t *testing.T) {
	ref := NewSequenceReference("SQ.F-LrLMe1SRpfUZHkQmvkVKFEGaoDeHul")
	loc := NewSequenceLocation(ref, 87894075, 87894076)

	a1 := NewAllele(loc, "T")
	a2 := NewAllele(NewSequenceLocation(NewSequenceReference(ref.RefgetAccession), 87894075, 87894076), "T")

	if a1.VRSID() != a2.VRSID() {
		t.Fatalf("expected deterministic allele id, got %q vs %q", a1.VRSID(), a2.VRSID())
	}
}

func TestAllele_DifferentStateDiffers(t *testing.T) {
	ref := NewSequenceReference("SQ.F-LrLMe1SRpfUZHkQmvkVKFEGaoDeHul")
	loc := NewSequenceLocation(ref, 87894075, 87894076)

	a1 := NewAllele(loc, "T")
	a2 := NewAllele(loc, "A")

	if a1.VRSID() == a2.VRSID() {
		t.Fatalf("expected different state to produce different allele id")
	}
}

func TestSequenceLocation_Overlaps(t *testing.T) {
	ref := NewSequenceReference("SQ.8_liLu1aycC0tPQPFmUaGXJLDs5SbPZ5")
	loc := NewSequenceLocation(ref, 2781631, 2781632)

	tests := []struct {
		name       string
		start, end int64
		want       bool
	}{
		{"exact match", 2781631, 2781632, true},
		{"containing range", 2781631, 2783993, true},
		{"touches start only (half-open, no overlap)", 2781632, 2781640, false},
		{"touches end only (half-open, no overlap)", 2781620, 2781631, false},
		{"disjoint before", 2781000, 2781100, false},
		{"disjoint after", 2782000, 2782100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loc.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}
