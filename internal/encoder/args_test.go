package encoder

import (
	"strings"
	"testing"

	"github.com/brianmathews/PPTcrunch/internal/model"
)

func TestBuildArgs(t *testing.T) {
	sv := model.SourceVideo{Path: "/tmp/input.mp4", Width: 3840, Height: 2160, DurationSec: 60}

	tests := []struct {
		name            string
		p               model.EncodingParams
		maxWidth        int
		keepAudio       bool
		includeProgress bool
		wantContains    []string
		wantNotContains []string
	}{
		{
			name: "software h264 crf",
			p: model.EncodingParams{
				Codec: model.CodecH264, Mode: model.ModeSoftware,
				QualityValue: 24, Preset: "medium", RateControl: "crf", Profile: "high",
			},
			maxWidth:  1920,
			keepAudio: true,
			wantContains: []string{
				"-c:v libx264", "-crf 24", "-preset medium", "-profile:v high",
				"-vf scale=1920:1080", "-c:a copy", "-movflags +faststart",
			},
			wantNotContains: []string{"-rc", "-cq", "-tag:v", "-an", "-progress"},
		},
		{
			name: "hardware hevc with advanced fields",
			p: model.EncodingParams{
				Codec: model.CodecHEVC, Mode: model.ModeHardware,
				QualityValue: 28, Preset: "p5", RateControl: "vbr", Tune: "hq",
				Multipass: 2, Profile: "main", BFrames: 3, RefFrames: 4, CodecTag: "hvc1",
			},
			maxWidth:  1920,
			keepAudio: true,
			wantContains: []string{
				"-c:v hevc_nvenc", "-rc vbr", "-cq 28", "-b:v 0", "-tune hq",
				"-multipass 2", "-bf 3", "-refs 4", "-tag:v hvc1", "-preset p5",
			},
			wantNotContains: []string{"-crf"},
		},
		{
			name: "hardware with advanced fields stripped",
			p: model.EncodingParams{
				Codec: model.CodecH264, Mode: model.ModeHardware,
				QualityValue: 27, Preset: "p5", RateControl: "vbr", Profile: "high",
			},
			maxWidth:        1920,
			keepAudio:       false,
			includeProgress: true,
			wantContains:    []string{"-c:v h264_nvenc", "-cq 27", "-an", "-progress pipe:1", "-nostats"},
			wantNotContains: []string{"-tune", "-multipass", "-bf", "-refs", "-c:a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildArgs(sv, tt.p, tt.maxWidth, tt.keepAudio, "/tmp/out.mp4", tt.includeProgress)
			argsStr := strings.Join(args, " ")

			for _, want := range tt.wantContains {
				if !strings.Contains(argsStr, want) {
					t.Errorf("BuildArgs() missing %q, got: %v", want, argsStr)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(argsStr, notWant+" ") {
					t.Errorf("BuildArgs() should not contain %q, got: %v", notWant, argsStr)
				}
			}

			if args[len(args)-1] != "/tmp/out.mp4" {
				t.Errorf("BuildArgs() last arg = %v, want output path", args[len(args)-1])
			}
			if args[0] != "-y" {
				t.Errorf("BuildArgs() must lead with -y overwrite flag, got %v", args[0])
			}
		})
	}
}

func TestBuildArgsScaleNeverUpscales(t *testing.T) {
	sv := model.SourceVideo{Path: "in.mp4", Width: 1280, Height: 720}
	p := model.EncodingParams{Codec: model.CodecH264, Mode: model.ModeSoftware, QualityValue: 24, Preset: "medium", RateControl: "crf", Profile: "high"}

	args := BuildArgs(sv, p, 1920, true, "out.mp4", false)
	argsStr := strings.Join(args, " ")
	if !strings.Contains(argsStr, "scale=1280:720") {
		t.Errorf("BuildArgs() should keep source dims, got: %v", argsStr)
	}
}
