package probe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianmathews/PPTcrunch/internal/util"
)

func TestParseNvidiaSMILine(t *testing.T) {
	tests := []struct {
		name       string
		out        string
		wantName   string
		wantDriver string
		wantOK     bool
	}{
		{
			name:       "typical output",
			out:        "NVIDIA GeForce RTX 3080, 535.129.03\n",
			wantName:   "NVIDIA GeForce RTX 3080",
			wantDriver: "535.129.03",
			wantOK:     true,
		},
		{
			name:       "extra whitespace",
			out:        "  NVIDIA GeForce GTX 1660 ,  471.96  \n",
			wantName:   "NVIDIA GeForce GTX 1660",
			wantDriver: "471.96",
			wantOK:     true,
		},
		{
			name:       "multi-gpu uses first line",
			out:        "NVIDIA RTX 4090, 550.54\nNVIDIA RTX 4090, 550.54\n",
			wantName:   "NVIDIA RTX 4090",
			wantDriver: "550.54",
			wantOK:     true,
		},
		{name: "empty output", out: "", wantOK: false},
		{name: "missing comma", out: "garbage without separator\n", wantOK: false},
		{name: "blank lines only", out: "\n\n", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, driver, ok := ParseNvidiaSMILine(tt.out)
			if ok != tt.wantOK {
				t.Fatalf("ParseNvidiaSMILine() ok = %v, want %v", ok, tt.wantOK)
			}
			if name != tt.wantName || driver != tt.wantDriver {
				t.Errorf("ParseNvidiaSMILine() = (%q, %q), want (%q, %q)", name, driver, tt.wantName, tt.wantDriver)
			}
		})
	}
}

const encodersSample = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libx265              libx265 H.265 / HEVC (codec hevc)
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder (codec h264)
 V....D hevc_nvenc           NVIDIA NVENC hevc encoder (codec hevc)
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestParseEncoderList(t *testing.T) {
	encoders := ParseEncoderList(encodersSample)

	for _, want := range []string{"libx264", "libx265", "h264_nvenc", "hevc_nvenc", "aac"} {
		if !encoders[want] {
			t.Errorf("ParseEncoderList() missing %q", want)
		}
	}
	if encoders["Video"] || encoders["="] {
		t.Error("ParseEncoderList() picked up header lines")
	}
}

func TestParseEncoderListNoNVENC(t *testing.T) {
	out := strings.ReplaceAll(encodersSample, "nvenc", "qsv")
	encoders := ParseEncoderList(out)
	if encoders["h264_nvenc"] || encoders["hevc_nvenc"] {
		t.Error("ParseEncoderList() reported nvenc encoders not in the list")
	}
}

func TestClassifyGPU(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		wantFamily   string
		wantAdvanced bool
	}{
		{name: "rtx 40 series", model: "NVIDIA GeForce RTX 4090", wantFamily: "rtx", wantAdvanced: true},
		{name: "rtx 30 series", model: "NVIDIA GeForce RTX 3060 Ti", wantFamily: "rtx", wantAdvanced: true},
		{name: "rtx 20 series", model: "GeForce RTX 2070 SUPER", wantFamily: "rtx", wantAdvanced: true},
		{name: "gtx 16 series", model: "NVIDIA GeForce GTX 1660", wantFamily: "gtx", wantAdvanced: false},
		{name: "gtx 10 series", model: "GeForce GTX 1080", wantFamily: "gtx", wantAdvanced: false},
		{name: "quadro", model: "Quadro P4000", wantFamily: "quadro", wantAdvanced: false},
		{name: "tesla", model: "Tesla T4", wantFamily: "tesla", wantAdvanced: false},
		{name: "unrecognized model falls back to minimal", model: "Mystery Accelerator 9000", wantFamily: "unknown", wantAdvanced: false},
		{name: "empty", model: "", wantFamily: "unknown", wantAdvanced: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyGPU(tt.model)
			if got.Family != tt.wantFamily {
				t.Errorf("ClassifyGPU(%q) family = %q, want %q", tt.model, got.Family, tt.wantFamily)
			}
			if got.AdvancedFeatures != tt.wantAdvanced {
				t.Errorf("ClassifyGPU(%q) advanced = %v, want %v", tt.model, got.AdvancedFeatures, tt.wantAdvanced)
			}
		})
	}
}

// fakeRunner returns canned results keyed by binary path.
type fakeRunner struct {
	results map[string]util.CmdResult
	errs    map[string]error
}

func (f *fakeRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	if err, ok := f.errs[spec.Path]; ok {
		return util.CmdResult{Code: 1, Err: err}, err
	}
	return f.results[spec.Path], nil
}

func TestCapabilityProbe(t *testing.T) {
	smiOut := "NVIDIA GeForce RTX 3080, 535.129.03\n"

	tests := []struct {
		name         string
		smiPath      string
		smiOut       string
		smiErr       error
		encodersOut  string
		wantHardware bool
		wantHEVC     bool
		wantAdvanced bool
	}{
		{
			name:         "full nvenc support",
			smiPath:      "/usr/bin/nvidia-smi",
			smiOut:       smiOut,
			encodersOut:  encodersSample,
			wantHardware: true,
			wantHEVC:     true,
			wantAdvanced: true,
		},
		{
			name:    "no nvidia-smi installed",
			smiPath: "",
		},
		{
			name:    "nvidia-smi fails",
			smiPath: "/usr/bin/nvidia-smi",
			smiErr:  errors.New("exit status 9"),
		},
		{
			name:        "gpu present but ffmpeg has no nvenc",
			smiPath:     "/usr/bin/nvidia-smi",
			smiOut:      smiOut,
			encodersOut: strings.ReplaceAll(encodersSample, "nvenc", "qsv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{
				results: map[string]util.CmdResult{
					"/usr/bin/nvidia-smi": {Stdout: []byte(tt.smiOut)},
					"/usr/bin/ffmpeg":     {Stdout: []byte(tt.encodersOut)},
				},
				errs: map[string]error{},
			}
			if tt.smiErr != nil {
				runner.errs["/usr/bin/nvidia-smi"] = tt.smiErr
			}

			p := &CapabilityProber{
				FFmpegPath:    "/usr/bin/ffmpeg",
				NvidiaSMIPath: tt.smiPath,
				Runner:        runner,
			}
			report := p.Probe(context.Background())

			if report.HardwareAvailable != tt.wantHardware {
				t.Errorf("HardwareAvailable = %v, want %v", report.HardwareAvailable, tt.wantHardware)
			}
			if report.SupportsHEVC != tt.wantHEVC {
				t.Errorf("SupportsHEVC = %v, want %v", report.SupportsHEVC, tt.wantHEVC)
			}
			if report.DriverAdvancedFeatures != tt.wantAdvanced {
				t.Errorf("DriverAdvancedFeatures = %v, want %v", report.DriverAdvancedFeatures, tt.wantAdvanced)
			}
		})
	}
}
