package filter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/netdiff"
	"github.com/carbocation/netdiff/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixtureExpression = "g1\t1\t2\t3\t4\n" +
		"g2\t0\t0\t0\t5\n" +
		"g3\t0\t1\t1\t0\n" +
		"TF1\t2\t2\t2\t2\n" +
		"TF2\t0\t0\t1\t1\n" +
		"g4\t3\t0\t3\t0\n" +
		"g5\t0\t0\t0\t0\n" +
		"g6\t1\t1\t0\t0\n"

	fixtureMotif = "TF1\tg1\t1\n" +
		"TF1\tg2\t1\n" +
		"TF2\tg3\t0.5\n" +
		"TF3\tg1\t1\n" +
		"g1\tTF1\t0.2\n" +
		"TF3\tg6\t1\n"

	fixturePPI = "TF1\tTF2\t1\n" +
		"g4\tTF1\t1\n" +
		"g2\tTF2\t1\n" +
		"g5\tg1\t1\n"
)

func fixture(t *testing.T) (*netdiff.ExpressionTable, netdiff.Prior, netdiff.Prior) {
	t.Helper()

	exp, err := netdiff.ReadMatrix(strings.NewReader(fixtureExpression), "exp.txt", false)
	require.NoError(t, err)

	dir := t.TempDir()
	motifPath := filepath.Join(dir, "motif.txt")
	ppiPath := filepath.Join(dir, "ppi.txt")
	require.NoError(t, os.WriteFile(motifPath, []byte(fixtureMotif), 0o644))
	require.NoError(t, os.WriteFile(ppiPath, []byte(fixturePPI), 0o644))

	motif, err := netdiff.LoadPrior(motifPath)
	require.NoError(t, err)
	ppi, err := netdiff.LoadPrior(ppiPath)
	require.NoError(t, err)

	return exp, motif, ppi
}

func TestRunStages(t *testing.T) {
	exp, motif, ppi := fixture(t)

	res, err := Run(exp, motif, ppi, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"g1", "g3", "TF1", "TF2", "g4", "g6"}, res.ExpressionFiltered.Genes())
	assert.Equal(t, netdiff.Prior{
		{Source: "TF1", Target: "g1", Weight: 1},
		{Source: "TF2", Target: "g3", Weight: 0.5},
		{Source: "g1", Target: "TF1", Weight: 0.2},
	}, res.Motif)
	assert.Equal(t, netdiff.Prior{
		{Source: "TF1", Target: "TF2", Weight: 1},
		{Source: "g4", Target: "TF1", Weight: 1},
	}, res.PPI)

	// g6 is only reachable through an edge that was itself filtered out, but
	// membership is judged against the unfiltered motif prior.
	assert.Equal(t, []string{"g1", "g3", "TF1", "TF2", "g6"}, res.Expression.Genes())

	assert.Equal(t, report.Statistics{
		Distribution: []report.Bin{
			{Samples: 2, Genes: 4},
			{Samples: 4, Genes: 2},
			{Samples: 0, Genes: 1},
			{Samples: 1, Genes: 1},
		},
		Expression:       report.Count(8, 6),
		MotifTFs:         report.Count(4, 3),
		MotifTargets:     report.Count(5, 3),
		MotifGenes:       report.Count(7, 4),
		PPISources:       report.Count(4, 2),
		PPITargets:       report.Count(3, 2),
		PPIGenes:         report.Count(6, 3),
		MotifCrossFilter: report.Count(6, 5),
	}, res.Statistics)
}

func TestExpressionCountIsConserved(t *testing.T) {
	exp, motif, ppi := fixture(t)

	for m := 0; m <= exp.NumSamples(); m++ {
		res, err := Run(exp, motif, ppi, m, nil)
		require.NoError(t, err)

		stage := res.Statistics.Expression
		assert.Equal(t, exp.Len(), res.ExpressionFiltered.Len()+stage.Removed, "m=%d", m)
		assert.Equal(t, stage.Kept, res.ExpressionFiltered.Len(), "m=%d", m)
	}
}

func TestNoDanglingReferences(t *testing.T) {
	exp, motif, ppi := fixture(t)

	for m := 0; m <= exp.NumSamples(); m++ {
		res, err := Run(exp, motif, ppi, m, nil)
		require.NoError(t, err)

		for _, p := range []netdiff.Prior{res.Motif, res.PPI} {
			for _, e := range p {
				assert.True(t, res.ExpressionFiltered.Has(e.Source), "m=%d: %s", m, e.Source)
				assert.True(t, res.ExpressionFiltered.Has(e.Target), "m=%d: %s", m, e.Target)
			}
		}
	}
}

func TestFinalExpressionIsShiftedSubsetApplyingPseudocountOnce(t *testing.T) {
	exp, motif, ppi := fixture(t)

	first, err := Run(exp, motif, ppi, 1, nil)
	require.NoError(t, err)
	second, err := Run(exp, motif, ppi, 1, nil)
	require.NoError(t, err)

	for i := 0; i < first.Expression.Len(); i++ {
		gene := first.Expression.Gene(i)
		require.True(t, first.ExpressionFiltered.Has(gene), gene)

		orig, ok := exp.Lookup(gene)
		require.True(t, ok)
		for j, v := range first.Expression.Row(i) {
			assert.Equal(t, exp.Row(orig)[j]+Pseudocount, v, "%s column %d", gene, j)
		}
	}

	// Re-running on the same inputs does not stack pseudocounts
	assert.Equal(t, first.Expression, second.Expression)
	assert.Equal(t, first.Statistics, second.Statistics)
}

func TestThresholdErrors(t *testing.T) {
	exp, motif, ppi := fixture(t)

	for _, m := range []int{-1, exp.NumSamples() + 1} {
		_, err := Run(exp, motif, ppi, m, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrThreshold), "m=%d: %v", m, err)
	}
}

func writeInputs(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := Config{
		Expression: filepath.Join(dir, "exp.txt"),
		Motif:      filepath.Join(dir, "motif.txt"),
		PPI:        filepath.Join(dir, "ppi.txt"),
		MinSamples: 2,
	}
	require.NoError(t, os.WriteFile(cfg.Expression, []byte(fixtureExpression), 0o644))
	require.NoError(t, os.WriteFile(cfg.Motif, []byte(fixtureMotif), 0o644))
	require.NoError(t, os.WriteFile(cfg.PPI, []byte(fixturePPI), 0o644))

	return cfg
}

func TestExecuteWritesOutputs(t *testing.T) {
	cfg := writeInputs(t)

	var console bytes.Buffer
	_, err := Execute(cfg, &console, nil)
	require.NoError(t, err)

	out := cfg.Outputs()
	dir := filepath.Dir(cfg.Expression)
	assert.Equal(t, filepath.Join(dir, "exp_filtered.txt"), out.Expression)
	assert.Equal(t, filepath.Join(dir, "exp_filtering_statistics.txt"), out.Statistics)

	expOut, err := os.ReadFile(out.Expression)
	require.NoError(t, err)
	assert.Equal(t, "g1\t2\t3\t4\t5\n"+
		"g3\t1\t2\t2\t1\n"+
		"TF1\t3\t3\t3\t3\n"+
		"TF2\t1\t1\t2\t2\n"+
		"g6\t2\t2\t1\t1\n", string(expOut))

	motifOut, err := os.ReadFile(out.Motif)
	require.NoError(t, err)
	assert.Equal(t, "TF1\tg1\t1\nTF2\tg3\t0.5\ng1\tTF1\t0.2\n", string(motifOut))

	ppiOut, err := os.ReadFile(out.PPI)
	require.NoError(t, err)
	assert.Equal(t, "TF1\tTF2\t1\ng4\tTF1\t1\n", string(ppiOut))

	stats, err := os.ReadFile(out.Statistics)
	require.NoError(t, err)
	assert.Equal(t, console.Bytes(), stats)
	assert.Contains(t, string(stats), "2 out of 8 genes were removed that did not pass the -n threshold. 6 genes remain.")
}

func TestExecuteWritesNothingOnError(t *testing.T) {
	for name, mutate := range map[string]func(cfg *Config){
		"threshold": func(cfg *Config) { cfg.MinSamples = 5 },
		"bad ppi": func(cfg *Config) {
			require.NoError(t, os.WriteFile(cfg.PPI, []byte("a\tb\n"), 0o644))
		},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := writeInputs(t)
			mutate(&cfg)

			var console bytes.Buffer
			_, err := Execute(cfg, &console, nil)
			require.Error(t, err)
			assert.Zero(t, console.Len())

			out := cfg.Outputs()
			for _, path := range []string{out.Expression, out.Motif, out.PPI, out.Statistics} {
				_, err := os.Stat(path)
				assert.True(t, os.IsNotExist(err), path)
			}
		})
	}
}

func TestExecuteRemovesWrittenOutputsWhenALaterWriteFails(t *testing.T) {
	cfg := writeInputs(t)
	out := cfg.Outputs()

	// A directory in place of the statistics file makes the last write fail
	require.NoError(t, os.Mkdir(out.Statistics, 0o755))

	var console bytes.Buffer
	_, err := Execute(cfg, &console, nil)
	require.Error(t, err)
	assert.Zero(t, console.Len())

	for _, path := range []string{out.Expression, out.Motif, out.PPI} {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), path)
	}

	info, err := os.Stat(out.Statistics)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
