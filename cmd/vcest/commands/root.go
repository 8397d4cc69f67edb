// SPDX-License-Identifier: MIT

// Package commands holds the cobra command tree of vcest.
package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/katalvlaran/varcomp/config"
	"github.com/katalvlaran/varcomp/estimate"
	"github.com/katalvlaran/varcomp/logging"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	cfgFile   string
	verbosity int
	v         *viper.Viper
	cfg       *config.Config
	log       *zap.Logger
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "vcest",
		Short: "Maximum-likelihood random-effects covariance estimation",
		Long: `vcest estimates the covariance V shared by N noisy effect vectors under
θᵢ ~ Normal(0, V + Sᵢ), where each Sᵢ is a known sampling covariance.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (VCEST_* prefix, e.g. VCEST_SOLVE_MAX_ITERATIONS)
3. Config file (--config, TOML/YAML/JSON)
4. Default values

Examples:
  vcest simulate --v "1,0;0,1" --n 2000 --seed 7 --output data.yaml
  vcest fit --input data.yaml
  vcest jackknife --input data.yaml --block-size 10 --table`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (TOML, YAML or JSON)")
	pf.CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
	pf.String("log-level", "", "explicit log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "emit JSON logs")

	root.AddCommand(newFitCmd(a), newJackknifeCmd(a), newSimulateCmd(a))

	return root
}

// load loads configuration, binds the flags of cmd and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	binds := map[string]string{
		"log.level":                "log-level",
		"log.json":                 "log-json",
		"solve.max_iterations":     "max-iter",
		"solve.memory":             "memory",
		"solve.gradient_tolerance": "pgtol",
		"solve.factr":              "factr",
		"solve.max_line_search":    "max-ls",
		"solve.verbose":            "summary",
		"jackknife.block_size":     "block-size",
		"jackknife.workers":        "workers",
		"simulate.seed":            "seed",
		"simulate.n":               "n",
		"simulate.noise":           "noise",
	}
	for key, name := range binds {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err = v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "bind --%s", name)
			}
		}
	}

	if a.cfg, err = config.Load(v); err != nil {
		return err
	}
	a.v = v

	a.log, err = logging.New(logging.Config{
		Level:     a.cfg.Log.Level,
		Verbosity: a.verbosity,
		JSON:      a.cfg.Log.JSON,
	})
	if err != nil {
		return err
	}
	a.log.Debug("configuration loaded", zap.String("config_file", v.ConfigFileUsed()))

	return nil
}

// addSolveFlags registers the optimiser flags shared by fit and jackknife.
func addSolveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("max-iter", estimate.DefaultMaxIterations, "maximum optimiser iterations")
	f.Int("memory", estimate.DefaultMemory, "L-BFGS history length")
	f.Float64("pgtol", estimate.DefaultGradientTolerance, "projected-gradient tolerance")
	f.Float64("factr", estimate.DefaultFactr, "relative-reduction factor (multiplies machine epsilon)")
	f.Int("max-ls", estimate.DefaultMaxLineSearch, "maximum line-search steps per iteration")
	f.Bool("summary", estimate.DefaultVerbose, "log the fit summary at info level")
}
