// Package report accumulates the per-stage counts of a filtering run and
// renders them as a fixed-format plain-text summary.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// StageCount records how many distinct items a stage saw, removed and kept.
type StageCount struct {
	Before  int
	Removed int
	Kept    int
}

// Count builds a StageCount from the before and after sizes.
func Count(before, kept int) StageCount {
	return StageCount{Before: before, Removed: before - kept, Kept: kept}
}

// Bin is one entry of the expression distribution: Genes genes were expressed
// in exactly Samples samples.
type Bin struct {
	Samples int
	Genes   int
}

// Statistics is everything the summary reports about one filtering run.
type Statistics struct {
	Distribution []Bin

	// Genes removed by the minimum-samples threshold
	Expression StageCount

	MotifTFs     StageCount
	MotifTargets StageCount
	MotifGenes   StageCount

	PPISources StageCount
	PPITargets StageCount
	PPIGenes   StageCount

	// Genes removed from the expression table because the motif prior never
	// mentions them
	MotifCrossFilter StageCount
}

// Distribution tallies how many genes were expressed in each observed number
// of samples. Bins are ordered by gene count, largest first, with ties broken
// by the number of samples ascending.
func Distribution(expressed []int) []Bin {
	tally := make(map[int]int)
	for _, n := range expressed {
		tally[n]++
	}

	out := make([]Bin, 0, len(tally))
	for samples, genes := range tally {
		out = append(out, Bin{Samples: samples, Genes: genes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Genes != out[j].Genes {
			return out[i].Genes > out[j].Genes
		}
		return out[i].Samples < out[j].Samples
	})

	return out
}

// Render produces the summary text. The output depends only on s.
func (s Statistics) Render() []byte {
	var b bytes.Buffer

	b.WriteString("\n\nNumber of samples with expression | Number of instances\n")
	width := len("Number of samples with expression")
	for _, bin := range s.Distribution {
		if w := len(strconv.Itoa(bin.Samples)); w > width {
			width = w
		}
	}
	for _, bin := range s.Distribution {
		fmt.Fprintf(&b, "%*d | %d\n", width, bin.Samples, bin.Genes)
	}

	b.WriteString("\nExp file filtering info based on low abundance genes:\n")
	fmt.Fprintf(&b, "%d out of %d genes were removed that did not pass the -n threshold. %d genes remain.\n",
		s.Expression.Removed, s.Expression.Before, s.Expression.Kept)

	b.WriteString("\nMotif file filtering info:\n")
	fmt.Fprintf(&b, "%d out of %d TFs were filtered out\n", s.MotifTFs.Removed, s.MotifTFs.Before)
	fmt.Fprintf(&b, "%d out of %d target genes were filtered out.\n", s.MotifTargets.Removed, s.MotifTargets.Before)
	fmt.Fprintf(&b, "%d unique genes remain in the motif.\n", s.MotifGenes.Kept)

	b.WriteString("\nPPI file filtering info:\n")
	fmt.Fprintf(&b, "%d out of %d source genes were filtered out and %d genes remain.\n",
		s.PPISources.Removed, s.PPISources.Before, s.PPISources.Kept)
	fmt.Fprintf(&b, "%d out of %d target genes were filtered out and %d genes remain.\n",
		s.PPITargets.Removed, s.PPITargets.Before, s.PPITargets.Kept)
	fmt.Fprintf(&b, "%d unique genes remain in the PPI file.\n\n", s.PPIGenes.Kept)

	b.WriteString("Exp file filtering info based on only genes remaining in the motif file after filtering out TFs and genes for low abundance genes:\n")
	fmt.Fprintf(&b, "%d genes were filtered in this step. %d genes remain in the filtered exp file.\n\n",
		s.MotifCrossFilter.Removed, s.MotifCrossFilter.Kept)

	return b.Bytes()
}
