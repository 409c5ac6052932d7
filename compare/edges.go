package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/carbocation/netdiff"
	"github.com/carbocation/netdiff/groups"
	"go.uber.org/zap"
)

// EdgeResult is the comparison of one network edge between the two groups.
type EdgeResult struct {
	Edge string
	Result
}

// Edges compares every row of an edge-weight matrix between the samples
// assigned to Type1 (group 1) and Type2 (group 2). The matrix must carry sample
// names, see netdiff.ReadMatrix. Assigned samples missing from the matrix are
// logged and ignored.
func Edges(matrix *netdiff.ExpressionTable, assignment groups.Assignment, kind TestKind, logger *zap.Logger) ([]EdgeResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cols1 := sampleColumns(matrix, assignment.Samples(assignment.Type1), logger)
	cols2 := sampleColumns(matrix, assignment.Samples(assignment.Type2), logger)
	logger.Debug("Resolved group columns",
		zap.String("type1", assignment.Type1), zap.Int("type1_samples", len(cols1)),
		zap.String("type2", assignment.Type2), zap.Int("type2_samples", len(cols2)))

	out := make([]EdgeResult, 0, matrix.Len())
	group1 := make([]float64, len(cols1))
	group2 := make([]float64, len(cols2))
	for i := 0; i < matrix.Len(); i++ {
		row := matrix.Row(i)
		for k, c := range cols1 {
			group1[k] = row[c]
		}
		for k, c := range cols2 {
			group2[k] = row[c]
		}

		res, err := Groups(group1, group2, kind)
		if err != nil {
			return nil, fmt.Errorf("Edges: %s: %w", matrix.Gene(i), err)
		}
		out = append(out, EdgeResult{Edge: matrix.Gene(i), Result: res})
	}

	return out, nil
}

func sampleColumns(matrix *netdiff.ExpressionTable, samples []string, logger *zap.Logger) []int {
	cols := make([]int, 0, len(samples))
	for _, s := range samples {
		c, ok := matrix.SampleIndex(s)
		if !ok {
			logger.Warn("Sample is not a column of the edge matrix", zap.String("sample", s))
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// WriteResults writes a tab-delimited table with a header line. Undefined
// p-values and fold-changes are written as NA.
func WriteResults(w io.Writer, results []EdgeResult) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{"edge", "p_value", "log2_fold_change"}); err != nil {
		return err
	}

	for _, r := range results {
		fc := "NA"
		if r.FoldChangeDefined {
			fc = netdiff.FormatValue(r.Log2FC)
		}
		if err := cw.Write([]string{r.Edge, formatNA(r.P), fc}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatNA(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return netdiff.FormatValue(v)
}
