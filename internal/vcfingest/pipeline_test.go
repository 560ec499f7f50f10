package vcfingest

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ga4gh/anyvar/internal/anyvar"
	"github.com/ga4gh/anyvar/internal/dataproxy"
	"github.com/ga4gh/anyvar/internal/storage"
	"github.com/ga4gh/anyvar/internal/translate"
	"github.com/ga4gh/anyvar/internal/vcf"
)

func newTestPipeline() (*Pipeline, *anyvar.AnyVar) {
	proxy := dataproxy.NewLocalProxy()
	proxy.AddAlias("12", "SQ.chr12accession000000000000000")
	proxy.AddAlias("7", "SQ.chr7accession0000000000000000")
	tr := translate.NewNormalizingTranslator(proxy)
	store := storage.NewMemStore()
	av := anyvar.New(tr, proxy, store)
	return New(av, proxy, tr), av
}

const singleVariantVCF = "##fileformat=VCFv4.2\n" +
	"##INFO=<ID=GENE,Number=1,Type=String,Description=\"Gene symbol\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"12\t25245351\trs121913529\tC\tA\t99\tPASS\tGENE=KRAS\n"

func TestPipeline_Run_SingleVariant(t *testing.T) {
	p, _ := newTestPipeline()
	parser, err := vcf.NewParserFromReader(strings.NewReader(singleVariantVCF))
	if err != nil {
		t.Fatalf("NewParserFromReader: %v", err)
	}

	var out bytes.Buffer
	w := NewWriter(&out)

	if err := p.Run(context.Background(), parser, w, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "##INFO=<ID=VRS_Allele_IDs") {
		t.Errorf("missing VRS_Allele_IDs INFO declaration: %q", got)
	}

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	dataLine := lines[len(lines)-1]
	fields := strings.Split(dataLine, "\t")
	if len(fields) < 8 {
		t.Fatalf("malformed data line: %q", dataLine)
	}
	info := fields[7]
	if !strings.Contains(info, "GENE=KRAS") {
		t.Errorf("expected original INFO preserved, got %q", info)
	}
	if !strings.Contains(info, "VRS_Allele_IDs=ga4gh:VA.") {
		t.Errorf("expected VRS_Allele_IDs with two populated ids, got %q", info)
	}
	idsPart := info[strings.Index(info, "VRS_Allele_IDs=")+len("VRS_Allele_IDs="):]
	ids := strings.Split(idsPart, ",")
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids (ref + 1 alt), got %d: %v", len(ids), ids)
	}
	for i, id := range ids {
		if id == "" || !strings.HasPrefix(id, "ga4gh:VA.") {
			t.Errorf("id[%d] = %q, want non-empty ga4gh:VA. id", i, id)
		}
	}
}

const multiInfoKeyVCF = "##fileformat=VCFv4.2\n" +
	"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Depth\">\n" +
	"##INFO=<ID=AF,Number=1,Type=Float,Description=\"Allele frequency\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"12\t25245351\t.\tC\tA\t29.0\tPASS\tDP=10;AF=0.5\n"

// The output must carry the input record through unchanged except for
// the new header line and the appended VRS_Allele_IDs tag: INFO key
// order and QUAL's literal text must survive exactly.
func TestPipeline_Run_PreservesInfoOrderAndRawQual(t *testing.T) {
	p, _ := newTestPipeline()
	parser, err := vcf.NewParserFromReader(strings.NewReader(multiInfoKeyVCF))
	if err != nil {
		t.Fatalf("NewParserFromReader: %v", err)
	}

	var out bytes.Buffer
	w := NewWriter(&out)

	if err := p.Run(context.Background(), parser, w, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	dataLine := lines[len(lines)-1]
	fields := strings.Split(dataLine, "\t")
	if len(fields) < 8 {
		t.Fatalf("malformed data line: %q", dataLine)
	}
	if fields[5] != "29.0" {
		t.Errorf("expected raw QUAL text 29.0 preserved, got %q", fields[5])
	}
	info := fields[7]
	if !strings.HasPrefix(info, "DP=10;AF=0.5;VRS_Allele_IDs=") {
		t.Errorf("expected INFO key order preserved (DP before AF), got %q", info)
	}
}

const multiAllelicVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"12\t25245351\t.\tC\tA,T\t.\tPASS\t.\n"

func TestPipeline_Run_MultiAllelic(t *testing.T) {
	p, _ := newTestPipeline()
	parser, err := vcf.NewParserFromReader(strings.NewReader(multiAllelicVCF))
	if err != nil {
		t.Fatalf("NewParserFromReader: %v", err)
	}

	var out bytes.Buffer
	w := NewWriter(&out)

	if err := p.Run(context.Background(), parser, w, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	dataLine := lines[len(lines)-1]
	fields := strings.Split(dataLine, "\t")
	info := fields[7]
	idsPart := info[strings.Index(info, "VRS_Allele_IDs=")+len("VRS_Allele_IDs="):]
	ids := strings.Split(idsPart, ",")
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids (ref + 2 alts), got %d: %v", len(ids), ids)
	}
}

const unresolvableChromVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"99\t1\t.\tC\tA\t.\tPASS\t.\n"

// An unresolvable CHROM fails the whole row's accession lookup before any
// allele is built, so Run surfaces the error rather than writing a row
// with empty ids (only a per-ALT translation failure gets that treatment).
func TestPipeline_Run_UnresolvableChrom(t *testing.T) {
	p, _ := newTestPipeline()
	parser, err := vcf.NewParserFromReader(strings.NewReader(unresolvableChromVCF))
	if err != nil {
		t.Fatalf("NewParserFromReader: %v", err)
	}

	var out bytes.Buffer
	w := NewWriter(&out)

	if err := p.Run(context.Background(), parser, w, 1); err == nil {
		t.Fatal("expected error for unresolvable chromosome, got nil")
	}
}

const outOfOrderVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"12\t1\t.\tC\tA\t.\tPASS\t.\n" +
	"12\t2\t.\tG\tT\t.\tPASS\t.\n" +
	"12\t3\t.\tA\tC\t.\tPASS\t.\n" +
	"12\t4\t.\tT\tG\t.\tPASS\t.\n" +
	"12\t5\t.\tC\tG\t.\tPASS\t.\n"

// With multiple workers translating concurrently, output rows must still
// land in input order.
func TestPipeline_Run_PreservesOrderUnderParallelism(t *testing.T) {
	p, _ := newTestPipeline()
	parser, err := vcf.NewParserFromReader(strings.NewReader(outOfOrderVCF))
	if err != nil {
		t.Fatalf("NewParserFromReader: %v", err)
	}

	var out bytes.Buffer
	w := NewWriter(&out)

	if err := p.Run(context.Background(), parser, w, 4); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	var dataLines []string
	for _, l := range lines {
		if !strings.HasPrefix(l, "#") {
			dataLines = append(dataLines, l)
		}
	}
	if len(dataLines) != 5 {
		t.Fatalf("expected 5 data rows, got %d", len(dataLines))
	}
	for i, l := range dataLines {
		fields := strings.Split(l, "\t")
		wantPos := []string{"1", "2", "3", "4", "5"}[i]
		if fields[1] != wantPos {
			t.Errorf("row %d: got pos %q, want %q (output order not preserved)", i, fields[1], wantPos)
		}
	}
}
