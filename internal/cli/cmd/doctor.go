package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brianmathews/PPTcrunch/internal/probe"
	"github.com/brianmathews/PPTcrunch/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, ffprobe, nvidia-smi)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			ff, ferr := deps.FindFFmpeg(viper.GetString("ffmpeg_binary"))
			if ferr != nil {
				return &ExitError{Code: ExitMissingDep, Err: ferr}
			}
			fp, perr := deps.FindFFprobe()
			if perr != nil {
				return &ExitError{Code: ExitMissingDep, Err: perr}
			}
			fmt.Fprintf(w, "FFmpeg:     %s\n", ff)
			fmt.Fprintf(w, "FFprobe:    %s\n", fp)

			smi := deps.FindNvidiaSMI()
			if smi == "" {
				fmt.Fprintln(w, "nvidia-smi: not found (software encoding only)")
			} else {
				fmt.Fprintf(w, "nvidia-smi: %s\n", smi)
			}

			prober := &probe.CapabilityProber{FFmpegPath: ff, NvidiaSMIPath: smi}
			report := prober.Probe(cmd.Context())
			fmt.Fprintf(w, "Hardware encoding: %v\n", report.HardwareAvailable)
			if report.HardwareAvailable {
				fmt.Fprintf(w, "  GPU:            %s (driver %s)\n", report.GPUName, report.DriverVersion)
				fmt.Fprintf(w, "  h264_nvenc:     %v\n", report.SupportsH264)
				fmt.Fprintf(w, "  hevc_nvenc:     %v\n", report.SupportsHEVC)
				fmt.Fprintf(w, "  advanced NVENC: %v\n", report.DriverAdvancedFeatures)
			}
			return nil
		},
	}
}
