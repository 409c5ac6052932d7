package filter

import (
	"github.com/carbocation/netdiff"
	"github.com/carbocation/netdiff/report"
)

// ByExpression keeps the genes expressed (non-zero) in at least minSamples
// samples. minSamples must lie in [0, NumSamples].
func ByExpression(exp *netdiff.ExpressionTable, minSamples int) (*netdiff.ExpressionTable, error) {
	if minSamples < 0 || minSamples > exp.NumSamples() {
		return nil, &ThresholdError{MinSamples: minSamples, Samples: exp.NumSamples()}
	}

	return exp.Subset(func(i int) bool {
		return exp.NumSamplesExpressed(i) >= minSamples
	}), nil
}

// expressionDistribution tallies NumSamplesExpressed over the unfiltered table.
func expressionDistribution(exp *netdiff.ExpressionTable) []report.Bin {
	counts := make([]int, exp.Len())
	for i := range counts {
		counts[i] = exp.NumSamplesExpressed(i)
	}
	return report.Distribution(counts)
}

// ByMotifUniverse keeps the genes that the motif prior names as a TF or a
// target. The motif passed here is the unfiltered prior, not the one restricted
// to expressed genes.
func ByMotifUniverse(exp *netdiff.ExpressionTable, motif netdiff.Prior) *netdiff.ExpressionTable {
	universe := motif.Genes()
	return exp.Subset(func(i int) bool {
		return universe.Has(exp.Gene(i))
	})
}
