package netdiff

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Edge is one row of a relational prior. For a motif prior Source is the TF
// and Target the regulated gene; for a PPI prior Source is the source protein
// and Target the interacting TF.
type Edge struct {
	Source string  `csv:"source"`
	Target string  `csv:"target"`
	Weight Weight  `csv:"weight"`
}

// Weight is an edge weight. An empty or NA cell is a missing weight and
// decodes to NaN, matching how expression cells are read.
type Weight float64

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (w *Weight) UnmarshalCSV(cell string) error {
	v, err := parseValue(cell)
	if err != nil {
		return fmt.Errorf("weight %q: %w", cell, err)
	}
	*w = Weight(v)
	return nil
}

// Prior is an ordered list of edges. Neither column is unique.
type Prior []Edge

// Sources is the set of distinct Source ids.
func (p Prior) Sources() GeneSet {
	out := make(GeneSet)
	for _, e := range p {
		out.Add(e.Source)
	}
	return out
}

// Targets is the set of distinct Target ids.
func (p Prior) Targets() GeneSet {
	out := make(GeneSet)
	for _, e := range p {
		out.Add(e.Target)
	}
	return out
}

// Genes is the union of Sources and Targets.
func (p Prior) Genes() GeneSet {
	out := p.Sources()
	for _, e := range p {
		out.Add(e.Target)
	}
	return out
}

// Restrict keeps the edges whose endpoints are both in keep, preserving order.
func (p Prior) Restrict(keep GeneSet) Prior {
	out := make(Prior, 0, len(p))
	for _, e := range p {
		if keep.Has(e.Source) && keep.Has(e.Target) {
			out = append(out, e)
		}
	}
	return out
}

// LoadPrior reads a headerless, tab-delimited, three column prior.
func LoadPrior(path string) (Prior, error) {
	fileBytes, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}

	return decodeHeaderless[Edge](fileBytes, path, '\t', 3)
}

// decodeHeaderless unmarshals a delimited file without a header line into a
// slice of T, mapping columns to struct fields by position. Every row must
// carry exactly width fields.
func decodeHeaderless[T any](fileBytes []byte, name string, comma rune, width int) ([]T, error) {
	records := []T{}
	if len(bytes.TrimSpace(fileBytes)) == 0 {
		return records, nil
	}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = comma
		r.LazyQuotes = true
		r.FieldsPerRecord = width
		return r
	})

	if err := gocsv.UnmarshalWithoutHeaders(bytes.NewReader(fileBytes), &records); err != nil {
		return nil, csvFormatError(name, 0, err)
	}

	return records, nil
}

// WritePrior writes the prior tab-delimited without a header.
func WritePrior(w io.Writer, p Prior) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	for _, e := range p {
		if err := cw.Write([]string{e.Source, e.Target, FormatValue(float64(e.Weight))}); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	return cw.Error()
}
