// Package probe inspects the runtime environment: GPU presence via
// nvidia-smi, encoder availability via ffmpeg's compiled-in encoder list,
// and source video metadata via ffprobe.
package probe

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/util"
)

// probeTimeout bounds each diagnostic subprocess. Probes are cheap; a hung
// tool must not stall the whole run.
const probeTimeout = 10 * time.Second

// Prober produces a capability report for the current environment.
type Prober interface {
	Probe(ctx context.Context) model.CapabilityReport
}

// CapabilityProber shells out to nvidia-smi and ffmpeg. Any failure along
// the way degrades to the conservative report; it never returns an error.
type CapabilityProber struct {
	FFmpegPath    string
	NvidiaSMIPath string // empty = no NVIDIA tooling installed
	Runner        util.CmdRunner
	Verbose       bool
}

// Probe queries the hardware and the encoder tool once. Absence of the
// diagnostic tool, non-zero exit, or unparseable output all yield the
// conservative report: callers treat missing capability as denial.
func (p *CapabilityProber) Probe(ctx context.Context) model.CapabilityReport {
	runner := p.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	var report model.CapabilityReport
	if p.NvidiaSMIPath == "" {
		return report
	}

	res, err := runner.Run(ctx, util.CmdSpec{
		Path:          p.NvidiaSMIPath,
		Args:          []string{"--query-gpu=name,driver_version", "--format=csv,noheader"},
		Timeout:       probeTimeout,
		Verbose:       p.Verbose,
		CaptureStdout: true,
	})
	if err != nil {
		return report
	}

	name, driver, ok := ParseNvidiaSMILine(string(res.Stdout))
	if !ok {
		return report
	}
	report.HardwareAvailable = true
	report.GPUName = name
	report.DriverVersion = driver
	report.DriverAdvancedFeatures = ClassifyGPU(name).AdvancedFeatures

	encoders := p.listEncoders(ctx, runner)
	report.SupportsH264 = encoders["h264_nvenc"]
	report.SupportsHEVC = encoders["hevc_nvenc"]
	if !report.SupportsH264 && !report.SupportsHEVC {
		// GPU present but ffmpeg has no NVENC build: no hardware path.
		report.HardwareAvailable = false
		report.DriverAdvancedFeatures = false
	}
	return report
}

func (p *CapabilityProber) listEncoders(ctx context.Context, runner util.CmdRunner) map[string]bool {
	res, err := runner.Run(ctx, util.CmdSpec{
		Path:          p.FFmpegPath,
		Args:          []string{"-hide_banner", "-encoders"},
		Timeout:       probeTimeout,
		Verbose:       p.Verbose,
		CaptureStdout: true,
	})
	if err != nil {
		return nil
	}
	return ParseEncoderList(string(res.Stdout))
}

// ParseNvidiaSMILine parses a "name, driver_version" CSV line as printed by
// nvidia-smi --query-gpu. Only the first GPU line is considered.
func ParseNvidiaSMILine(out string) (name, driver string, ok bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			return "", "", false
		}
		name = strings.TrimSpace(parts[0])
		driver = strings.TrimSpace(parts[1])
		if name == "" {
			return "", "", false
		}
		return name, driver, true
	}
	return "", "", false
}

// ParseEncoderList extracts encoder names from `ffmpeg -hide_banner -encoders`
// output. Lines look like " V....D h264_nvenc  NVIDIA NVENC H.264 encoder".
func ParseEncoderList(out string) map[string]bool {
	encoders := make(map[string]bool)
	seenHeader := false
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "-----") {
			seenHeader = true
			continue
		}
		if !seenHeader {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// fields[0] is the capability flag column (e.g. "V....D").
		encoders[fields[1]] = true
	}
	return encoders
}

// GPUClass is the coarse capability class inferred from a GPU model name.
type GPUClass struct {
	Family           string // "rtx", "gtx", "quadro", "tesla", "unknown"
	AdvancedFeatures bool   // extended ref frames, B-frames, multipass
}

var (
	rtxModernRe = regexp.MustCompile(`(?i)\bRTX\s*([2-9]\d{3})`)
	gtxRe       = regexp.MustCompile(`(?i)\bGTX\s*\d{3,4}`)
	quadroRe    = regexp.MustCompile(`(?i)\bquadro\b`)
	teslaRe     = regexp.MustCompile(`(?i)\btesla\b`)
)

// ClassifyGPU maps a detected GPU model string to a coarse capability class.
// Turing and newer consumer cards (RTX 20xx+) get the advanced NVENC feature
// set; unrecognized models fall back to the minimal default.
func ClassifyGPU(name string) GPUClass {
	if m := rtxModernRe.FindStringSubmatch(name); m != nil {
		if gen, err := strconv.Atoi(m[1]); err == nil && gen >= 2000 {
			return GPUClass{Family: "rtx", AdvancedFeatures: true}
		}
		return GPUClass{Family: "rtx"}
	}
	if gtxRe.MatchString(name) {
		return GPUClass{Family: "gtx"}
	}
	if quadroRe.MatchString(name) {
		return GPUClass{Family: "quadro"}
	}
	if teslaRe.MatchString(name) {
		return GPUClass{Family: "tesla"}
	}
	return GPUClass{Family: "unknown"}
}
