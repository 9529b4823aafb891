package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/pipeline"
	"github.com/brianmathews/PPTcrunch/internal/probe"
	"github.com/brianmathews/PPTcrunch/internal/ui"
	"github.com/brianmathews/PPTcrunch/internal/util/deps"
	"github.com/brianmathews/PPTcrunch/internal/util/media"
)

type runMode struct {
	DryRunOnly bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run [files...]",
		Short:         "Compress videos and presentation decks",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{DryRunOnly: false})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

// assembleRequest resolves flags (with viper supplying config/env values for
// the persistent ones) into a validated Request.
func assembleRequest(cmd *cobra.Command) (model.Request, error) {
	quality, _ := cmd.Flags().GetInt("quality")
	codec, _ := cmd.Flags().GetString("codec")
	hwaccel, _ := cmd.Flags().GetString("hwaccel")
	keepAudio, _ := cmd.Flags().GetBool("keep-audio")
	keepTemp, _ := cmd.Flags().GetBool("keep-temp")
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")

	if quality < 1 || quality > 3 {
		return model.Request{}, fmt.Errorf("invalid --quality: %d (valid: 1|2|3)", quality)
	}

	var c model.Codec
	switch strings.ToLower(codec) {
	case "h264":
		c = model.CodecH264
	case "hevc", "h265":
		c = model.CodecHEVC
	default:
		return model.Request{}, fmt.Errorf("invalid --codec: %q (valid: h264|hevc)", codec)
	}

	var hw model.HWPreference
	switch strings.ToLower(hwaccel) {
	case "auto":
		hw = model.HWAuto
	case "on":
		hw = model.HWOn
	case "off":
		hw = model.HWOff
	default:
		return model.Request{}, fmt.Errorf("invalid --hwaccel: %q (valid: auto|on|off)", hwaccel)
	}

	maxWidth := viper.GetInt("max_width")
	if maxWidth < 2 {
		return model.Request{}, fmt.Errorf("invalid --max-width: %d", maxWidth)
	}

	return model.Request{
		Tier:      model.QualityTier(quality),
		Codec:     c,
		Hardware:  hw,
		MaxWidth:  maxWidth,
		KeepAudio: keepAudio,
		OutDir:    viper.GetString("out_dir"),
		KeepTemp:  keepTemp,
		Verbose:   viper.GetBool("verbose"),
		NoPrompt:  noPrompt,
	}, nil
}

// expandInputs resolves each argument through the shell-less glob so quoted
// patterns work on Windows, deduplicates, and rejects unsupported types.
func expandInputs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var inputs []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// Not a pattern match; accept a literal existing file.
			if _, serr := os.Stat(arg); serr != nil {
				return nil, fmt.Errorf("no input matches %q", arg)
			}
			matches = []string{arg}
		}
		for _, m := range matches {
			if !media.IsVideo(m) && !media.IsPresentation(m) {
				continue
			}
			if !seen[m] {
				seen[m] = true
				inputs = append(inputs, m)
			}
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no video or .pptx inputs found")
	}
	sort.Strings(inputs)
	return inputs, nil
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	req, err := assembleRequest(cmd)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	inputs, err := expandInputs(args)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	ffmpegPath, ferr := deps.FindFFmpeg(viper.GetString("ffmpeg_binary"))
	if ferr != nil {
		return &ExitError{Code: ExitMissingDep, Err: ferr}
	}
	ffprobePath, perr := deps.FindFFprobe()
	if perr != nil {
		return &ExitError{Code: ExitMissingDep, Err: perr}
	}

	if req.OutDir != "" {
		if err := ensureDir(req.OutDir); err != nil {
			return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %v", err)}
		}
	}

	interactive := ui.IsInteractive()
	if !mode.DryRunOnly && !req.NoPrompt && interactive {
		// Explicitly-set flags stand; the wizard only asks about the rest.
		skip := map[string]bool{}
		for _, f := range []string{"hwaccel", "codec", "quality", "max-width"} {
			if cmd.Flags().Changed(f) {
				skip[f] = true
			}
		}
		req, err = ui.RunWizard(cmd.Context(), req, skip)
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
	}

	reporter := ui.NewConsoleReporter(cmd.OutOrStdout(), interactive, req.Verbose)

	prober := &probe.CapabilityProber{
		FFmpegPath:    ffmpegPath,
		NvidiaSMIPath: deps.FindNvidiaSMI(),
		Verbose:       req.Verbose,
	}
	report := prober.Probe(cmd.Context())

	svc := pipeline.NewService(
		pipeline.WithFFmpegPath(ffmpegPath),
		pipeline.WithFFprobePath(ffprobePath),
		pipeline.WithRequest(req),
		pipeline.WithCapabilities(report),
		pipeline.WithReporter(reporter),
	)

	if mode.DryRunOnly {
		return printPlans(cmd, svc, inputs, report)
	}

	var compressed, kept, failed int
	for i, input := range inputs {
		reporter.FileHeader(i+1, len(inputs), filepath.Base(input))
		out, err := svc.RunJob(cmd.Context(), input)
		switch {
		case err != nil:
			failed++
			if cmd.Context().Err() != nil {
				// Interrupted; stop the batch rather than failing every
				// remaining file the same way.
				reporter.Summary(compressed, kept, failed)
				return &ExitError{Code: ExitCLIError, Err: cmd.Context().Err()}
			}
		case out.SizeReduced:
			compressed++
		default:
			kept++
		}
	}
	reporter.Summary(compressed, kept, failed)

	// Partial success still exits 0; only a batch with nothing but failures
	// reports the encode error code.
	if failed == len(inputs) {
		return &ExitError{Code: ExitEncodeError, Err: fmt.Errorf("all %d file(s) failed", failed)}
	}
	return nil
}
