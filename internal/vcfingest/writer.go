package vcfingest

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ga4gh/anyvar/internal/vcf"
)

// vrsInfoLine declares the new INFO field this pipeline adds to every
// output VCF: the reference allele's VRS id followed by each alternate
// allele's VRS id, in ALT-field order, comma-separated. An allele whose
// translation failed contributes an empty slot rather than dropping the
// row (spec §4.8.3).
const vrsInfoLine = `##INFO=<ID=VRS_Allele_IDs,Number=.,Type=String,Description="VRS Allele IDs for REF and each ALT, in that order">`

// Writer streams annotated rows to a VCF output, writing each row as
// soon as it arrives rather than buffering by variant (one input row
// maps to exactly one output row; the row itself carries multiple ALTs).
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a VCF output writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the original VCF header lines with VRS_Allele_IDs
// inserted as a new INFO declaration immediately before #CHROM.
func (vw *Writer) WriteHeader(headerLines []string) error {
	for _, line := range headerLines {
		if strings.HasPrefix(line, "#CHROM") {
			if _, err := vw.w.WriteString(vrsInfoLine + "\n"); err != nil {
				return err
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes v annotated with VRS_Allele_IDs. ids holds the
// reference allele's id first, then one id per comma-separated ALT.
// Every other column is carried through exactly as parsed, so the only
// difference between input and output is the new header line and the
// appended INFO tag.
func (vw *Writer) WriteRow(v *vcf.Variant, ids []string) error {
	var lb strings.Builder
	lb.Grow(256)

	lb.WriteString(v.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(v.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(nonEmpty(v.ID))
	lb.WriteByte('\t')
	lb.WriteString(v.Ref)
	lb.WriteByte('\t')
	lb.WriteString(v.Alt)
	lb.WriteByte('\t')
	lb.WriteString(nonEmpty(v.Qual))
	lb.WriteByte('\t')
	lb.WriteString(nonEmpty(v.Filter))
	lb.WriteByte('\t')

	if v.Info == "" || v.Info == "." {
		lb.WriteString("VRS_Allele_IDs=")
	} else {
		lb.WriteString(v.Info)
		lb.WriteString(";VRS_Allele_IDs=")
	}
	lb.WriteString(strings.Join(ids, ","))

	if v.SampleColumns != "" {
		lb.WriteByte('\t')
		lb.WriteString(v.SampleColumns)
	}

	lb.WriteByte('\n')
	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes the underlying buffer.
func (vw *Writer) Flush() error {
	return vw.w.Flush()
}

func nonEmpty(s string) string {
	if s == "" {
		return "."
	}
	return s
}
