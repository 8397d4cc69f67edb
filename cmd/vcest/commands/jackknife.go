// SPDX-License-Identifier: MIT

package commands

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/varcomp/estimate"
	"github.com/katalvlaran/varcomp/jackknife"
)

// jackknifeReport is the encoded outcome of `vcest jackknife`.
type jackknifeReport struct {
	Estimate      [][]float64 `yaml:"estimate" json:"estimate" toml:"estimate"`
	Success       bool        `yaml:"success" json:"success" toml:"success"`
	StandardError [][]float64 `yaml:"standard_error" json:"standard_error" toml:"standard_error"`
	Replicates    int         `yaml:"replicates" json:"replicates" toml:"replicates"`
	BlockSize     int         `yaml:"block_size" json:"block_size" toml:"block_size"`
	Correction    float64     `yaml:"correction" json:"correction" toml:"correction"`
	Unconverged   int         `yaml:"unconverged" json:"unconverged" toml:"unconverged"`
}

func newJackknifeCmd(a *app) *cobra.Command {
	var (
		input string
		out   outputFlags
	)
	cmd := &cobra.Command{
		Use:   "jackknife",
		Short: "Fit V and its jackknife standard errors",
		Long: `Fit V on the full data, then re-fit once per start index s with the
window [s, s+block-size) removed and report the jackknife standard errors.
There are always N replicates, whatever the block size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs, err := readDataset(input)
			if err != nil {
				return err
			}
			full, err := estimate.Solve(obs, a.cfg.SolveOptions(a.log.Named("fit"))...)
			if err != nil {
				return err
			}
			jk, err := jackknife.Run(cmd.Context(), obs, a.cfg.JackknifeOptions(a.log.Named("jackknife"))...)
			if err != nil {
				return err
			}

			if out.table {
				if err = renderTable(cmd.OutOrStdout(), "estimate", full.Estimate); err != nil {
					return err
				}
				return renderTable(cmd.OutOrStdout(), "standard error", jk.StandardError)
			}

			return writeOutput(cmd.OutOrStdout(), out.output, out.format, jackknifeReport{
				Estimate:      rowsOf(full.Estimate),
				Success:       full.Success,
				StandardError: rowsOf(jk.StandardError),
				Replicates:    len(jk.Replicates),
				BlockSize:     jk.BlockSize,
				Correction:    jk.Correction,
				Unconverged:   jk.Unconverged,
			})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "observation file (YAML, JSON or TOML)")
	cmd.Flags().Int("block-size", jackknife.DefaultBlockSize, "deletion window size b (1 = leave-one-out)")
	cmd.Flags().Int("workers", 0, "concurrent replicate fits (0 = GOMAXPROCS)")
	out.register(cmd)
	addSolveFlags(cmd)

	return cmd
}
