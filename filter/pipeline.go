// Package filter restricts an expression matrix and its motif and PPI priors
// to a consistent set of adequately expressed genes.
package filter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/netdiff"
	"github.com/carbocation/netdiff/report"
	"go.uber.org/zap"
)

// Pseudocount is added once to every value of the final expression table.
const Pseudocount = 1.0

// Result holds every table and count produced by one run.
type Result struct {
	// Genes passing the minimum-samples threshold, values untouched
	ExpressionFiltered *netdiff.ExpressionTable

	// ExpressionFiltered restricted to the motif universe, plus Pseudocount
	Expression *netdiff.ExpressionTable

	Motif netdiff.Prior
	PPI   netdiff.Prior

	Statistics report.Statistics
}

// Run applies the filtering stages in order. None of the inputs are modified.
func Run(exp *netdiff.ExpressionTable, motif, ppi netdiff.Prior, minSamples int, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	expressed, err := ByExpression(exp, minSamples)
	if err != nil {
		return nil, err
	}
	logger.Debug("Filtered expression by number of samples",
		zap.Int("min_samples", minSamples),
		zap.Int("genes_before", exp.Len()),
		zap.Int("genes_after", expressed.Len()))

	remaining := expressed.GeneSet()

	motifKept, motifCounts := ByGenes(motif, remaining)
	logger.Debug("Filtered motif prior", zap.Int("edges_before", len(motif)), zap.Int("edges_after", len(motifKept)))

	ppiKept, ppiCounts := ByGenes(ppi, remaining)
	logger.Debug("Filtered PPI prior", zap.Int("edges_before", len(ppi)), zap.Int("edges_after", len(ppiKept)))

	inMotif := ByMotifUniverse(expressed, motif)
	logger.Debug("Filtered expression by motif membership", zap.Int("genes_after", inMotif.Len()))

	return &Result{
		ExpressionFiltered: expressed,
		Expression:         inMotif.AddPseudocount(Pseudocount),
		Motif:              motifKept,
		PPI:                ppiKept,
		Statistics: report.Statistics{
			Distribution:     expressionDistribution(exp),
			Expression:       report.Count(exp.Len(), expressed.Len()),
			MotifTFs:         motifCounts.Sources,
			MotifTargets:     motifCounts.Targets,
			MotifGenes:       motifCounts.Genes,
			PPISources:       ppiCounts.Sources,
			PPITargets:       ppiCounts.Targets,
			PPIGenes:         ppiCounts.Genes,
			MotifCrossFilter: report.Count(expressed.Len(), inMotif.Len()),
		},
	}, nil
}

// Execute loads the inputs named by cfg, runs the pipeline and, only once
// everything has been computed and rendered, writes the three filtered tables
// and the statistics file. Either all four files are written or none are. The
// statistics are then emitted to console, byte for byte identical to the file.
func Execute(cfg Config, console io.Writer, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Loading expression", zap.String("path", cfg.Expression))
	exp, err := netdiff.LoadExpression(cfg.Expression)
	if err != nil {
		return nil, err
	}

	logger.Info("Loading motif prior", zap.String("path", cfg.Motif))
	motif, err := netdiff.LoadPrior(cfg.Motif)
	if err != nil {
		return nil, err
	}

	logger.Info("Loading PPI prior", zap.String("path", cfg.PPI))
	ppi, err := netdiff.LoadPrior(cfg.PPI)
	if err != nil {
		return nil, err
	}

	res, err := Run(exp, motif, ppi, cfg.MinSamples, logger)
	if err != nil {
		return nil, err
	}

	out := cfg.Outputs()

	// Everything is rendered in memory first so a failed render never leaves a
	// partial set of outputs behind.
	var motifBuf, ppiBuf, expBuf, statsBuf bytes.Buffer
	if err := netdiff.WritePrior(&motifBuf, res.Motif); err != nil {
		return nil, err
	}
	if err := netdiff.WritePrior(&ppiBuf, res.PPI); err != nil {
		return nil, err
	}
	if err := netdiff.WriteExpression(&expBuf, res.Expression); err != nil {
		return nil, err
	}
	if err := report.NewWriter(&statsBuf).Emit(res.Statistics); err != nil {
		return nil, err
	}

	if err := writeFiles([]renderedFile{
		{out.Motif, motifBuf.Bytes()},
		{out.PPI, ppiBuf.Bytes()},
		{out.Expression, expBuf.Bytes()},
		{out.Statistics, statsBuf.Bytes()},
	}); err != nil {
		return nil, err
	}

	if _, err := console.Write(statsBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("Execute: console: %w", err)
	}

	logger.Info("Wrote filtered outputs",
		zap.String("expression", out.Expression),
		zap.String("motif", out.Motif),
		zap.String("ppi", out.PPI),
		zap.String("statistics", out.Statistics))

	return res, nil
}

type renderedFile struct {
	path string
	data []byte
}

// writeFiles writes every file in order. If one fails, the files already
// written by this call are removed again.
func writeFiles(files []renderedFile) error {
	for i, rf := range files {
		if err := writeFile(rf.path, rf.data); err != nil {
			var cleanup []error
			for _, done := range files[:i] {
				cleanup = append(cleanup, os.Remove(done.path))
			}
			return errors.Join(append([]error{err}, cleanup...)...)
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writeFile: %w", err)
	}

	bw := bufio.NewWriter(f)
	if _, err := bw.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writeFile: %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writeFile: %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("writeFile: %s: %w", path, err)
	}
	return nil
}
