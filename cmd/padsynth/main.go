// Command padsynth replays scripted pad sessions through the reconciler and
// reports what the audio graph renders.
//
// Usage:
//
//	padsynth play [--config session.toml] [--trace] script.yaml
//	padsynth effects
//
// Examples:
//
//	padsynth play chord.yaml
//	padsynth play --config session.toml --trace sweep.yaml
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "padsynth",
		Short:         "Replay XY-pad synth sessions against an offline audio graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newPlayCmd(), newEffectsCmd())

	return root
}
