package filter

import (
	"errors"
	"fmt"
	"os"

	"github.com/carbocation/netdiff"
	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v3"
)

// Config names the inputs of one filtering run.
type Config struct {
	Expression string `yaml:"exp"`
	Motif      string `yaml:"motif"`
	PPI        string `yaml:"ppi"`
	MinSamples int    `yaml:"number"`
}

// LoadConfig reads a YAML file with the keys exp, motif, ppi and number.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(netdiff.ExpandHome(path))
	if err != nil {
		return cfg, pfx.Err(err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("LoadConfig: %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every input path is set. The threshold can only be
// checked against the expression table, so Run does that.
func (c Config) Validate() error {
	var errs []error
	if c.Expression == "" {
		errs = append(errs, errors.New("expression file (-e/--exp) is required"))
	}
	if c.Motif == "" {
		errs = append(errs, errors.New("motif file (-m/--motif) is required"))
	}
	if c.PPI == "" {
		errs = append(errs, errors.New("PPI file (-p/--ppi) is required"))
	}

	return errors.Join(errs...)
}

// Outputs lists the files a run with this Config writes.
type Outputs struct {
	Expression string
	Motif      string
	PPI        string
	Statistics string
}

func (c Config) Outputs() Outputs {
	return Outputs{
		Expression: netdiff.SiblingPath(c.Expression, "_filtered.txt"),
		Motif:      netdiff.SiblingPath(c.Motif, "_filtered.txt"),
		PPI:        netdiff.SiblingPath(c.PPI, "_filtered.txt"),
		Statistics: netdiff.SiblingPath(c.Expression, "_filtering_statistics.txt"),
	}
}
