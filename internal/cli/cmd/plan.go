package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/pipeline"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan [files...]",
		Short:         "Show what would happen without encoding anything",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{DryRunOnly: true})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

func printPlans(cmd *cobra.Command, svc *pipeline.Service, inputs []string, report model.CapabilityReport) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Hardware encoding: %v", report.HardwareAvailable)
	if report.HardwareAvailable {
		fmt.Fprintf(w, " (%s, driver %s)", report.GPUName, report.DriverVersion)
	}
	fmt.Fprintln(w)

	for _, input := range inputs {
		pl := svc.BuildPlan(input)
		fmt.Fprintf(w, "\n%s\n", pl.InputPath)
		if pl.IsArchive {
			fmt.Fprintf(w, "  archive: embedded videos under ppt/media/ will be re-encoded\n")
		}
		fmt.Fprintf(w, "  output:  %s\n", pl.OutputPath)
		fmt.Fprintf(w, "  width:   capped at %d px\n", pl.MaxWidth)
		for i, a := range pl.Attempts {
			fmt.Fprintf(w, "  attempt %d: %s (%s, quality %d, preset %s)\n",
				i+1, a.EncoderName(), a.Mode, a.QualityValue, a.Preset)
		}
	}
	return nil
}
