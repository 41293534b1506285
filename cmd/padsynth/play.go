package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/padsynth/audiograph"
	"github.com/cwbudde/padsynth/internal/config"
	"github.com/cwbudde/padsynth/internal/observability"
	"github.com/cwbudde/padsynth/reconcile"
	"github.com/cwbudde/padsynth/state"
)

type playOptions struct {
	configPath string
	trace      bool
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play [script.yaml]",
		Short: "Run a script of pad actions and print render statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := LoadScript(args[0])
			if err != nil {
				return err
			}

			return runPlay(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, script)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML session file (defaults are used when empty)")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "log every audio graph call")

	return cmd
}

func newEffectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "effects",
		Short: "List the effect types available to the pad axes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range audiograph.DefaultRegistry().Names() {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func runPlay(stdout, stderr io.Writer, opts playOptions, script *Script) error {
	cfg := config.Default()

	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	level := cfg.LogLevel
	if opts.trace {
		level = "debug"
	}

	logger, err := observability.NewLogger("padsynth", level, stderr)
	if err != nil {
		return err
	}

	engine, err := audiograph.NewEngine(
		audiograph.WithSampleRate(cfg.SampleRate),
		audiograph.WithBlockSize(cfg.BlockSize),
		audiograph.WithMasterGain(cfg.MasterGain),
		audiograph.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var manager reconcile.AudioGraphManager = engine
	if opts.trace {
		manager = reconcile.LogCalls(engine, logger)
	}

	store := state.NewStore(cfg.Initial)
	if err := reconcile.Build(manager, store.CurrentSnapshot()); err != nil {
		return fmt.Errorf("build audio graph: %w", err)
	}

	reg := prometheus.NewRegistry()

	metrics, err := reconcile.NewMetrics(reg)
	if err != nil {
		return err
	}

	var passErr error

	ctrl := reconcile.New(manager,
		reconcile.WithLogger(logger),
		reconcile.WithMetrics(metrics),
		reconcile.WithErrorHandler(func(err error) {
			if passErr == nil {
				passErr = err
			}
		}),
	)
	ctrl.Start(store)
	defer ctrl.Stop()

	if err := ctrl.OnSnapshot(store.CurrentSnapshot()); err != nil {
		return err
	}

	logger.Info().Str("session", ctrl.Session()).Int("steps", len(script.Steps)).Msg("playing script")

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Step\tAction\tVoices\tX\tY\tPeak\tRMS\tPitch [Hz]\n"); err != nil {
		return err
	}

	for i, step := range script.Steps {
		if action := step.Action(); action != nil {
			store.Dispatch(action)

			if passErr != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), passErr)
			}

			continue
		}

		if err := writeRender(tw, engine, i+1, step); err != nil {
			return err
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	return writeMetrics(stdout, reg)
}

func writeRender(w io.Writer, engine *audiograph.Engine, n int, step Step) error {
	out := make([]float64, int(step.Render*engine.SampleRate()))
	engine.Render(out)

	peak, rms := audiograph.Levels(out)

	pitch := "-"
	if hz, err := audiograph.DominantFrequency(out, engine.SampleRate()); err == nil && hz > 0 {
		pitch = fmt.Sprintf("%.1f", hz)
	}

	stats := engine.Stats()

	_, err := fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%.4f\t%.4f\t%s\n",
		n, step.Label(), stats.Voices, orDash(stats.Effects[0]), orDash(stats.Effects[1]), peak, rms, pitch)

	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

// writeMetrics prints the non-zero reconcile counters.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil || m.GetCounter().GetValue() == 0 {
				continue
			}

			label := ""
			for _, lp := range m.GetLabel() {
				label = lp.GetValue()
			}

			lines = append(lines, fmt.Sprintf("%s{%s}\t%.0f", mf.GetName(), label, m.GetCounter().GetValue()))
		}
	}

	sort.Strings(lines)

	out := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	return out.Flush()
}
