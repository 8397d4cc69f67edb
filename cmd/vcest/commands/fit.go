// SPDX-License-Identifier: MIT

package commands

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/varcomp/estimate"
)

// fitReport is the encoded outcome of `vcest fit`.
type fitReport struct {
	Estimate             [][]float64 `yaml:"estimate" json:"estimate" toml:"estimate"`
	Success              bool        `yaml:"success" json:"success" toml:"success"`
	Status               string      `yaml:"status" json:"status" toml:"status"`
	Message              string      `yaml:"message" json:"message" toml:"message"`
	Iterations           int         `yaml:"iterations" json:"iterations" toml:"iterations"`
	Evaluations          int         `yaml:"evaluations" json:"evaluations" toml:"evaluations"`
	NegLogLik            float64     `yaml:"neg_log_lik" json:"neg_log_lik" toml:"neg_log_lik"`
	Gradient             []float64   `yaml:"gradient" json:"gradient" toml:"gradient"`
	InitialGuessReplaced bool        `yaml:"initial_guess_replaced" json:"initial_guess_replaced" toml:"initial_guess_replaced"`
}

func newFitReport(r *estimate.Result) fitReport {
	return fitReport{
		Estimate:             rowsOf(r.Estimate),
		Success:              r.Success,
		Status:               r.Status.String(),
		Message:              r.Message,
		Iterations:           r.Stats.MajorIterations,
		Evaluations:          r.Stats.FuncEvaluations,
		NegLogLik:            r.NegLogLik,
		Gradient:             r.Gradient,
		InitialGuessReplaced: r.InitialGuessReplaced,
	}
}

type outputFlags struct {
	output string
	format string
	table  bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&o.format, "format", formatYAML, "report format: yaml, json, toml")
	cmd.Flags().BoolVar(&o.table, "table", false, "print matrices as tables instead of an encoded report")
}

func newFitCmd(a *app) *cobra.Command {
	var (
		input string
		initLit string
		out   outputFlags
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit V by maximum likelihood",
		Long: `Fit the shared covariance V by bounded quasi-Newton maximum likelihood.

The input file holds the effect vectors and noise covariances:
  theta: [[θ₀₀, θ₀₁], ...]
  s:     [[[S₀₀₀, S₀₀₁], [S₀₁₀, S₀₁₁]], ...]

A non-converged fit is reported (success: false), not treated as an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs, err := readDataset(input)
			if err != nil {
				return err
			}
			opts := a.cfg.SolveOptions(a.log.Named("fit"))
			if initLit != "" {
				guess, err := parseMatrix(initLit)
				if err != nil {
					return err
				}
				opts = append(opts, estimate.WithInitialGuess(guess))
			}

			res, err := estimate.Solve(obs, opts...)
			if err != nil {
				return err
			}
			if out.table {
				return renderTable(cmd.OutOrStdout(), "estimate ("+res.Message+")", res.Estimate)
			}

			return writeOutput(cmd.OutOrStdout(), out.output, out.format, newFitReport(res))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "observation file (YAML, JSON or TOML)")
	cmd.Flags().StringVar(&initLit, "init", "", `initial guess, e.g. "0.5,0;0,0.5"`)
	out.register(cmd)
	addSolveFlags(cmd)

	return cmd
}

