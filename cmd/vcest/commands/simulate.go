// SPDX-License-Identifier: MIT

package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/varcomp/matrix"
	"github.com/katalvlaran/varcomp/simulate"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		vLit   string
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Draw a synthetic observation file",
		Long: `Draw θ̂ᵢ = θᵢ + εᵢ with θᵢ ~ N(0, V) and εᵢ ~ N(0, noise·I) for n
observations, and write them in the format read by fit and jackknife.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if vLit == "" {
				return errors.New("--v is required")
			}
			vm, err := parseMatrix(vLit)
			if err != nil {
				return err
			}
			if err = matrix.ValidateSymmetric(vm, 1e-12); err != nil {
				return errors.Wrap(err, "--v")
			}
			v, err := matrix.SymCopy(vm)
			if err != nil {
				return errors.Wrap(err, "--v")
			}

			sc := a.cfg.Simulate
			noise := simulate.ScaledNoise(sc.N, v.SymmetricDim(), sc.Noise)
			theta, err := simulate.Effects(v, noise, simulate.WithSeed(sc.Seed))
			if err != nil {
				return err
			}
			a.log.Info("simulated observations",
				zap.Int("n", sc.N), zap.Int("dim", v.SymmetricDim()), zap.Uint64("seed", sc.Seed))

			df := dataFile{Theta: rowsOf(theta), S: make([][][]float64, len(noise))}
			for i, s := range noise {
				df.S[i] = rowsOf(s)
			}
			if format == "" {
				format = formatFromPath(output)
			}

			return writeOutput(cmd.OutOrStdout(), output, format, df)
		},
	}
	cmd.Flags().StringVar(&vLit, "v", "", `true covariance V, e.g. "1,0;0,1"`)
	cmd.Flags().Int("n", 1000, "number of observations")
	cmd.Flags().Float64("noise", 1, "noise covariance scale c (Sᵢ = c·I)")
	cmd.Flags().Uint64("seed", 0, "random seed (0 = fixed default)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format from extension; stdout when empty)")
	cmd.Flags().StringVar(&format, "format", "", "output format: yaml, json, toml (default from --output extension)")

	return cmd
}
