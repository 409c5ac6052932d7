package netdiff

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runningvariance"
)

// ExpressionTable is an immutable genes x samples matrix. Gene identifiers are
// unique and the column order is fixed at load time.
type ExpressionTable struct {
	genes   []string
	samples []string // nil unless the source carried a header line
	values  [][]float64
	index   map[string]int

	stdev     []float64
	expressed []int
}

// NewExpressionTable builds a table from parallel gene and value slices.
// samples may be nil, in which case the canonical sample_1..sample_N names are
// used. The value rows are copied.
func NewExpressionTable(genes []string, samples []string, values [][]float64) (*ExpressionTable, error) {
	if len(genes) != len(values) {
		return nil, &InputFormatError{Reason: fmt.Sprintf("%d gene ids for %d value rows", len(genes), len(values))}
	}

	width := len(samples)
	if samples == nil && len(values) > 0 {
		width = len(values[0])
	}

	t := &ExpressionTable{
		genes:     make([]string, len(genes)),
		values:    make([][]float64, len(values)),
		index:     make(map[string]int, len(genes)),
		stdev:     make([]float64, len(values)),
		expressed: make([]int, len(values)),
	}
	if samples != nil {
		t.samples = append([]string(nil), samples...)
	}

	for i, gene := range genes {
		if _, exists := t.index[gene]; exists {
			return nil, &InputFormatError{Reason: fmt.Sprintf("duplicate gene id %q", gene)}
		}
		if len(values[i]) != width {
			return nil, &InputFormatError{Reason: fmt.Sprintf("gene %q has %d values, expected %d", gene, len(values[i]), width)}
		}

		t.genes[i] = gene
		t.index[gene] = i
		t.values[i] = append([]float64(nil), values[i]...)
		t.stdev[i], t.expressed[i] = describeRow(t.values[i])
	}

	return t, nil
}

// describeRow yields the sample standard deviation (NaN cells skipped) and the
// number of cells that are not exactly zero. NaN counts as expressed.
func describeRow(row []float64) (float64, int) {
	rs := runningvariance.NewRunningStat()
	n, expressed := 0, 0
	for _, v := range row {
		if v != 0 {
			expressed++
		}
		if math.IsNaN(v) {
			continue
		}
		rs.Push(v)
		n++
	}

	if n < 2 {
		return math.NaN(), expressed
	}

	return rs.StandardDeviation(), expressed
}

// Len is the number of genes.
func (t *ExpressionTable) Len() int { return len(t.genes) }

// NumSamples is the number of sample columns.
func (t *ExpressionTable) NumSamples() int {
	if t.samples != nil {
		return len(t.samples)
	}
	if len(t.values) > 0 {
		return len(t.values[0])
	}
	return 0
}

func (t *ExpressionTable) Gene(i int) string { return t.genes[i] }

// Genes returns a copy of the gene ids in row order.
func (t *ExpressionTable) Genes() []string { return append([]string(nil), t.genes...) }

// Row returns the values of row i. Callers must not modify it.
func (t *ExpressionTable) Row(i int) []float64 { return t.values[i] }

// Lookup returns the row index of gene.
func (t *ExpressionTable) Lookup(gene string) (int, bool) {
	i, ok := t.index[gene]
	return i, ok
}

func (t *ExpressionTable) Has(gene string) bool {
	_, ok := t.index[gene]
	return ok
}

// GeneSet returns the set of gene ids in the table.
func (t *ExpressionTable) GeneSet() GeneSet {
	out := make(GeneSet, len(t.genes))
	for _, g := range t.genes {
		out.Add(g)
	}
	return out
}

// StdDev is the sample (N-1) standard deviation of row i.
func (t *ExpressionTable) StdDev(i int) float64 { return t.stdev[i] }

// NumSamplesExpressed counts the columns of row i that are not exactly 0.
func (t *ExpressionTable) NumSamplesExpressed(i int) int { return t.expressed[i] }

// SampleNames returns the header names if the table was read with a header,
// otherwise the canonical names.
func (t *ExpressionTable) SampleNames() []string {
	if t.samples != nil {
		return append([]string(nil), t.samples...)
	}
	return CanonicalSampleHeaders(t.NumSamples())
}

// SampleIndex returns the column of a named sample.
func (t *ExpressionTable) SampleIndex(name string) (int, bool) {
	for i, s := range t.SampleNames() {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

// CanonicalSampleHeaders yields sample_1 .. sample_n.
func CanonicalSampleHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "sample_" + strconv.Itoa(i+1)
	}
	return out
}

// Subset returns a new table with the rows for which keep returns true, in
// their original order.
func (t *ExpressionTable) Subset(keep func(i int) bool) *ExpressionTable {
	out := &ExpressionTable{
		samples: t.samples,
		index:   make(map[string]int),
	}
	for i := range t.genes {
		if !keep(i) {
			continue
		}
		out.index[t.genes[i]] = len(out.genes)
		out.genes = append(out.genes, t.genes[i])
		out.values = append(out.values, t.values[i])
		out.stdev = append(out.stdev, t.stdev[i])
		out.expressed = append(out.expressed, t.expressed[i])
	}

	// Keep the sample width even if every row was dropped
	if out.samples == nil && len(out.values) == 0 && t.NumSamples() > 0 {
		out.samples = CanonicalSampleHeaders(t.NumSamples())
	}

	return out
}

// AddPseudocount returns a copy of the table with c added to every value. The
// receiver is left untouched.
func (t *ExpressionTable) AddPseudocount(c float64) *ExpressionTable {
	values := make([][]float64, len(t.values))
	for i, row := range t.values {
		shifted := make([]float64, len(row))
		for j, v := range row {
			shifted[j] = v + c
		}
		values[i] = shifted
	}

	out, err := NewExpressionTable(t.genes, t.samples, values)
	if err != nil {
		// Shape and uniqueness were already validated for t
		panic(pfx.Err(err))
	}
	return out
}

// LoadExpression reads a tab-delimited expression matrix without a header: the
// first column is the gene id and every other column is a numeric sample value.
func LoadExpression(path string) (*ExpressionTable, error) {
	f, err := os.Open(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	return ReadMatrix(f, path, false)
}

// ReadMatrix parses a tab-delimited numeric matrix keyed by its first column.
// When header is true the first line names the sample columns; its first cell
// labels the id column and is ignored. name is only used in error messages.
func ReadMatrix(r io.Reader, name string, header bool) (*ExpressionTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	var samples []string
	genes := make([]string, 0)
	values := make([][]float64, 0)
	seen := make(map[string]int)

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, csvFormatError(name, line, err)
		}

		if len(rec) < 2 {
			return nil, &InputFormatError{Path: name, Line: line, Reason: fmt.Sprintf("expected an id column and at least one value column, saw %d columns", len(rec))}
		}

		if header && samples == nil {
			samples = append([]string(nil), rec[1:]...)
			continue
		}

		if prior, exists := seen[rec[0]]; exists {
			return nil, &InputFormatError{Path: name, Line: line, Reason: fmt.Sprintf("gene id %q already seen on line %d", rec[0], prior)}
		}
		seen[rec[0]] = line

		row := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			v, err := parseValue(cell)
			if err != nil {
				return nil, &InputFormatError{Path: name, Line: line, Reason: fmt.Sprintf("column %d", j+2), Err: err}
			}
			row[j] = v
		}

		genes = append(genes, rec[0])
		values = append(values, row)
	}

	t, err := NewExpressionTable(genes, samples, values)
	if err != nil {
		var ife *InputFormatError
		if errors.As(err, &ife) {
			ife.Path = name
		}
		return nil, err
	}

	return t, nil
}

func parseValue(cell string) (float64, error) {
	switch cell {
	case "", "NA", "na", "NaN", "nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

func csvFormatError(name string, line int, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &InputFormatError{Path: name, Line: pe.Line, Err: pe.Err}
	}
	return &InputFormatError{Path: name, Line: line, Err: err}
}

// WriteExpression writes the table tab-delimited without a header: gene id
// first, then every sample value in column order.
func WriteExpression(w io.Writer, t *ExpressionTable) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	rec := make([]string, t.NumSamples()+1)
	for i, gene := range t.genes {
		rec[0] = gene
		for j, v := range t.values[i] {
			rec[j+1] = FormatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatValue renders v in its shortest round-trip form. Missing values (NaN)
// are written as an empty cell so they read back as missing.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
