// filterexp filters an expression matrix to genes expressed in at least n
// samples, restricts the motif and PPI priors to those genes, and then keeps
// only the expressed genes the motif prior mentions. A pseudocount of 1 is
// added to the final expression values.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/netdiff/compileinfo"
	"github.com/carbocation/netdiff/filter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	config  string
	verbose bool
	flags   filter.Config

	logger *zap.Logger
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filterexp",
		Short: "Filter expression, motif and PPI inputs to adequately expressed genes",
		Long: `Filters expression data for genes that are expressed (non-zero) in at least n
samples, then filters the motif and PPI priors to edges between remaining
genes, and finally keeps only the remaining genes that appear in the motif
prior. Writes <input>_filtered.txt next to each input and
<exp>_filtering_statistics.txt next to the expression file.

Example:
  filterexp -e expression.txt -m motif.txt -p ppi.txt -n 5`,
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
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}

			o.logger.Debug("Build", compileinfo.Get().Fields()...)
			o.logger.Info("Now filtering, please wait as this can take some time depending on the size of the input dataset")

			_, err = filter.Execute(cfg, cmd.OutOrStdout(), o.logger)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.flags.Expression, "exp", "e", "", "Path to the gene expression file. Row names are genes, there is no header, and cells are tab separated")
	f.StringVarP(&o.flags.Motif, "motif", "m", "", "Path to the motif prior (TF, target, weight), filtered to genes passing the threshold")
	f.StringVarP(&o.flags.PPI, "ppi", "p", "", "Path to the PPI prior (source, targetTF, weight), filtered to genes passing the threshold")
	f.IntVarP(&o.flags.MinSamples, "number", "n", 0, "Minimum number of samples a gene must be expressed in")
	f.StringVar(&o.config, "config", "", "Optional YAML file with exp, motif, ppi and number keys; explicit flags override it")
	f.BoolVar(&o.verbose, "verbose", false, "Enable debug logging")

	return cmd
}

// resolve merges the optional YAML config with the flags that were set.
func (o *options) resolve(cmd *cobra.Command) (filter.Config, error) {
	var cfg filter.Config
	if o.config != "" {
		var err error
		if cfg, err = filter.LoadConfig(o.config); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("exp") {
		cfg.Expression = o.flags.Expression
	}
	if f.Changed("motif") {
		cfg.Motif = o.flags.Motif
	}
	if f.Changed("ppi") {
		cfg.PPI = o.flags.PPI
	}
	if f.Changed("number") {
		cfg.MinSamples = o.flags.MinSamples
	}

	err := cfg.Validate()
	if o.config == "" && !f.Changed("number") {
		err = errors.Join(err, errors.New("minimum number of samples (-n/--number) is required"))
	}

	return cfg, err
}

func run(args []string, stdout io.Writer, o *options) error {
	cmd := newRootCmd(o)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.Execute()
}

func main() {
	if err := run(os.Args[1:], os.Stdout, &options{}); err != nil {
		fmt.Fprintln(os.Stderr, "filterexp:", err)
		os.Exit(1)
	}
}
