package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/brianmathews/PPTcrunch/internal/config"
)

const (
	ExitOK          = 0
	ExitCLIError    = 1
	ExitMissingDep  = 2
	ExitEncodeError = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pptcrunch [files...]",
		Short:         "Shrink videos, including the ones buried inside PowerPoint decks",
		Long:          "pptcrunch re-encodes video files with ffmpeg to make them smaller, using GPU acceleration when the machine has it and falling back to software encoding when it does not. Point it at .mp4/.mov/.wmv files or at .pptx decks; embedded videos are re-encoded in place and the deck is repacked. Originals are never modified, and a re-encode that does not shrink the file is discarded.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare `pptcrunch <files>` behaves like `pptcrunch run`.
			return runExecute(cmd, args, runMode{DryRunOnly: false})
		},
	}

	// Persistent flags available to all subcommands
	root.PersistentFlags().StringP("out-dir", "o", "", "Output directory (default: next to each input)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Show full subprocess commands/output")
	root.PersistentFlags().String("ffmpeg-binary", "", "Path to ffmpeg (default: search PATH)")
	root.PersistentFlags().Int("max-width", 1920, "Maximum output width in pixels (never upscales)")

	// Also bind run flags on root so `pptcrunch <files>` works.
	bindRunFlags(root.Flags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.IntP("quality", "q", 2, "Quality tier: 1=smallest, 2=balanced, 3=highest")
	fs.StringP("codec", "c", "h264", "Video codec: h264, hevc")
	fs.String("hwaccel", "auto", "Hardware acceleration: auto, on, off")
	fs.Bool("keep-audio", true, "Copy the audio stream (false strips audio)")
	fs.Bool("keep-temp", false, "Keep intermediate files for inspection")
	fs.Bool("no-prompt", false, "Skip the interactive wizard; use flag values")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	_ = config.Init(root)
	return root.ExecuteContext(ctx)
}

func ensureDir(path string) error {
	if path == "" {
		path = "."
	}
	return os.MkdirAll(filepath.Clean(path), 0o755)
}
