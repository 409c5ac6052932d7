// comparenetworks assigns samples to two groups by their declared type and
// tests every edge of a sample-specific network matrix for a difference
// between the groups.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/netdiff"
	"github.com/carbocation/netdiff/compare"
	"github.com/carbocation/netdiff/compileinfo"
	"github.com/carbocation/netdiff/groups"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	nodes   string
	edges   string
	type1   string
	type2   string
	test    string
	out     string
	verbose bool

	logger *zap.Logger
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comparenetworks",
		Short: "Compare network edge weights between two groups of samples",
		Long: `Reads a node type file (sample id, type label; comma separated, no header)
and assigns each sample to type1 if type1 matches anywhere in its label, or to
type2 if type2 matches at the start of its label. Each row of the edge matrix
(tab separated, header line of sample ids, edge id in the first column) is then
compared between the two groups with a t-test (tt) or Mann-Whitney test (mw),
and the p-value and log2 fold-change (type1 over type2) are reported.

Example:
  comparenetworks --nodes nodes.csv --type1 tumor --type2 normal --edges edges.txt --test mw`,
		Version:       compileinfo.Get().Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.logger != nil {
				return nil
			}

			config := zap.NewProductionConfig()
			if o.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			o.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.compareNetworks(cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.nodes, "nodes", "", "Node type file: sample id and type label, comma separated, no header")
	f.StringVar(&o.edges, "edges", "", "Edge matrix: header of sample ids, then one row per edge, tab separated")
	f.StringVar(&o.type1, "type1", "", "Pattern searched for anywhere in the type label of group 1 samples")
	f.StringVar(&o.type2, "type2", "", "Pattern matched at the start of the type label of group 2 samples")
	f.StringVar(&o.test, "test", string(compare.TTest), "Statistical test: tt (t-test) or mw (Mann-Whitney)")
	f.StringVar(&o.out, "out", "", "Output file. If empty, results go to stdout")
	f.BoolVar(&o.verbose, "verbose", false, "Enable debug logging")
	for _, required := range []string{"nodes", "edges", "type1", "type2"} {
		_ = cmd.MarkFlagRequired(required)
	}

	return cmd
}

func (o *options) compareNetworks(stdout io.Writer) error {
	o.logger.Debug("Build", compileinfo.Get().Fields()...)

	kind := compare.TestKind(o.test)
	if kind != compare.TTest && kind != compare.MannWhitney {
		return &compare.UnsupportedTestError{Kind: kind}
	}

	nodes, err := netdiff.LoadNodeTypes(o.nodes)
	if err != nil {
		return err
	}

	assignment, diag, err := groups.Assign(nodes, o.type1, o.type2, o.logger)
	if err != nil {
		return err
	}
	if diag.Skipped() > 0 {
		o.logger.Warn("Samples were not assigned to either group", zap.Int("skipped", diag.Skipped()))
	}

	f, err := os.Open(netdiff.ExpandHome(o.edges))
	if err != nil {
		return err
	}
	defer f.Close()

	matrix, err := netdiff.ReadMatrix(f, o.edges, true)
	if err != nil {
		return err
	}

	results, err := compare.Edges(matrix, assignment, kind, o.logger)
	if err != nil {
		return err
	}

	if o.out == "" {
		return compare.WriteResults(stdout, results)
	}

	out, err := os.Create(o.out)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	if err := compare.WriteResults(bw, results); err != nil {
		out.Close()
		return err
	}

	return errors.Join(bw.Flush(), out.Close())
}

func run(args []string, stdout io.Writer, o *options) error {
	cmd := newRootCmd(o)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.Execute()
}

func main() {
	if err := run(os.Args[1:], os.Stdout, &options{}); err != nil {
		fmt.Fprintln(os.Stderr, "comparenetworks:", err)
		os.Exit(1)
	}
}
