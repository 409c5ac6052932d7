package filter

import (
	"github.com/carbocation/netdiff"
	"github.com/carbocation/netdiff/report"
)

// PriorCounts holds the distinct-id counts of a prior before and after
// restriction.
type PriorCounts struct {
	Sources report.StageCount
	Targets report.StageCount
	Genes   report.StageCount
}

// ByGenes restricts a prior to edges whose two endpoints are both in genes.
func ByGenes(prior netdiff.Prior, genes netdiff.GeneSet) (netdiff.Prior, PriorCounts) {
	kept := prior.Restrict(genes)

	return kept, PriorCounts{
		Sources: report.Count(prior.Sources().Len(), kept.Sources().Len()),
		Targets: report.Count(prior.Targets().Len(), kept.Targets().Len()),
		Genes:   report.Count(prior.Genes().Len(), kept.Genes().Len()),
	}
}
