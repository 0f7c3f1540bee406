package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meenmo/bondamm/batch"
	"github.com/meenmo/bondamm/cfmm"
	"github.com/meenmo/bondamm/config"
	"github.com/meenmo/bondamm/internal/app"
	"github.com/meenmo/bondamm/metrics"
	"github.com/meenmo/bondamm/wad"
)

const (
	formatABI  = "abi"
	formatJSON = "json"
)

type options struct {
	input  string
	format string

	cfg     config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	runner  *batch.Runner
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:          "cfmmoracle",
		Short:        "Evaluate CFMM swap, anchor-rate and solvency test vectors",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return o.teardown()
		},
	}
	root.PersistentFlags().StringVar(&o.input, "input", "", "JSON input path (reads the first argument or stdin if omitted)")
	root.PersistentFlags().StringVar(&o.format, "format", formatABI, "output format: abi or json")

	root.AddCommand(
		&cobra.Command{
			Use:   "swap [hex]",
			Short: "Single-reserve swaps; outputs (uint256 XNew, uint256 yNew)[]",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vectors, err := readVectors[batch.SwapVector](cmd, o.input, args)
				if err != nil {
					return err
				}
				pairs, err := o.runner.Swaps(cmd.Context(), vectors)
				if err != nil {
					return err
				}
				return o.writePairs(cmd.OutOrStdout(), pairs, false)
			},
		},
		&cobra.Command{
			Use:   "dual [hex]",
			Short: "Dual-reserve swaps; outputs (uint256 XNew, int256 cashAmountSigned)[]",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vectors, err := readVectors[batch.DualVector](cmd, o.input, args)
				if err != nil {
					return err
				}
				pairs, err := o.runner.Duals(cmd.Context(), vectors)
				if err != nil {
					return err
				}
				return o.writePairs(cmd.OutOrStdout(), pairs, true)
			},
		},
		&cobra.Command{
			Use:   "rate [hex]",
			Short: "Nelson-Siegel anchor rates; outputs int256[] in fixed point",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vectors, err := readVectors[batch.RateVector](cmd, o.input, args)
				if err != nil {
					return err
				}
				words, err := o.runner.Rates(cmd.Context(), vectors)
				if err != nil {
					return err
				}
				if o.format == formatJSON {
					rows := make([]string, len(words))
					for i := range words {
						rows[i] = wad.SignedBig(&words[i]).String()
					}
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), wad.Hex(wad.EncodeWords(words)))
				return err
			},
		},
		&cobra.Command{
			Use:   "solvency [json]",
			Short: "Weighted net exposures and base equity; outputs JSON",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vectors, err := readVectors[batch.SolvencyVector](cmd, o.input, args)
				if err != nil {
					return err
				}
				out, err := o.runner.Solvency(vectors)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out)
			},
		},
	)
	return root
}

func (o *options) setup() error {
	switch o.format {
	case formatABI, formatJSON:
	default:
		return errors.Errorf("unknown format %q", o.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	o.cfg = cfg

	o.log, err = app.Logger(cfg.App.LogLevel)
	if err != nil {
		return errors.Wrap(err, "logger")
	}

	sc, err := cfg.Solver()
	if err != nil {
		return err
	}
	solver, err := cfmm.NewSolver(sc)
	if err != nil {
		return err
	}
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}

	if cfg.App.MetricsFile != "" {
		if o.metrics, err = metrics.New(); err != nil {
			return err
		}
	}

	o.runner = batch.NewRunner(solver,
		batch.WithLogger(o.log),
		batch.WithMetrics(o.metrics),
		batch.WithWorkers(cfg.App.Workers),
		batch.WithCodec(codec))
	o.log.Debug("solver configured",
		zap.Float64("kappa", sc.Kappa),
		zap.Float64("beta0", sc.Curve.Beta0),
		zap.Float64("beta1", sc.Curve.Beta1),
		zap.Float64("beta2", sc.Curve.Beta2),
		zap.Float64("lambda", sc.Curve.Lambda),
		zap.Int("decimals", codec.Decimals))
	return nil
}

func (o *options) teardown() error {
	if o.log != nil {
		defer o.log.Sync() //nolint:errcheck
	}
	if o.cfg.App.MetricsFile == "" {
		return nil
	}
	return o.metrics.WriteTextfile(o.cfg.App.MetricsFile)
}

func (o *options) writePairs(w io.Writer, pairs []wad.Pair, signedSecond bool) error {
	if o.format == formatJSON {
		rows, err := batch.RenderPairs(pairs, signedSecond)
		if err != nil {
			return err
		}
		return writeJSON(w, rows)
	}
	// Match the oracle scripts: no trailing newline.
	_, err := fmt.Fprint(w, wad.Hex(wad.EncodePairs(pairs)))
	return err
}

func readVectors[T any](cmd *cobra.Command, path string, args []string) ([]T, error) {
	raw, err := readInput(cmd, path, args)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	vectors, err := batch.DecodeVectors[T](raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode input")
	}
	return vectors, nil
}

func readInput(cmd *cobra.Command, path string, args []string) ([]byte, error) {
	path = strings.TrimSpace(path)
	switch {
	case path != "" && len(args) > 0:
		return nil, errors.New("pass either an argument or --input, not both")
	case path != "":
		return os.ReadFile(path)
	case len(args) > 0:
		return []byte(args[0]), nil
	}
	return io.ReadAll(cmd.InOrStdin())
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
