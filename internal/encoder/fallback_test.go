package encoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/util"
)

func baseRequest() model.Request {
	return model.Request{
		Tier:      model.TierBalanced,
		Codec:     model.CodecH264,
		Hardware:  model.HWAuto,
		MaxWidth:  1920,
		KeepAudio: true,
	}
}

func fullReport() model.CapabilityReport {
	return model.CapabilityReport{
		HardwareAvailable:      true,
		SupportsH264:           true,
		SupportsHEVC:           true,
		DriverAdvancedFeatures: true,
	}
}

func TestAttempts(t *testing.T) {
	tests := []struct {
		name       string
		req        model.Request
		report     model.CapabilityReport
		wantModes  []model.ExecutionMode
		wantCodecs []model.Codec
	}{
		{
			name:       "hardware first then software",
			req:        baseRequest(),
			report:     fullReport(),
			wantModes:  []model.ExecutionMode{model.ModeHardware, model.ModeSoftware},
			wantCodecs: []model.Codec{model.CodecH264, model.CodecH264},
		},
		{
			name: "hardware unavailable skips straight to software",
			req:  baseRequest(),
			report: model.CapabilityReport{
				HardwareAvailable: false,
			},
			wantModes:  []model.ExecutionMode{model.ModeSoftware},
			wantCodecs: []model.Codec{model.CodecH264},
		},
		{
			name: "hardware declined by user",
			req: func() model.Request {
				r := baseRequest()
				r.Hardware = model.HWOff
				return r
			}(),
			report:     fullReport(),
			wantModes:  []model.ExecutionMode{model.ModeSoftware},
			wantCodecs: []model.Codec{model.CodecH264},
		},
		{
			name: "codec substituted for hardware attempt only",
			req: func() model.Request {
				r := baseRequest()
				r.Codec = model.CodecHEVC
				return r
			}(),
			report: model.CapabilityReport{
				HardwareAvailable: true,
				SupportsH264:      true,
				SupportsHEVC:      false,
			},
			wantModes:  []model.ExecutionMode{model.ModeHardware, model.ModeSoftware},
			wantCodecs: []model.Codec{model.CodecH264, model.CodecHEVC},
		},
		{
			name: "no hardware codec at all",
			req:  baseRequest(),
			report: model.CapabilityReport{
				HardwareAvailable: true,
			},
			wantModes:  []model.ExecutionMode{model.ModeSoftware},
			wantCodecs: []model.Codec{model.CodecH264},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := Orchestrator{Report: tt.report}.Attempts(tt.req)
			if len(attempts) != len(tt.wantModes) {
				t.Fatalf("Attempts() returned %d attempts, want %d: %+v", len(attempts), len(tt.wantModes), attempts)
			}
			for i, a := range attempts {
				if a.Mode != tt.wantModes[i] {
					t.Errorf("attempt %d mode = %s, want %s", i, a.Mode, tt.wantModes[i])
				}
				if a.Codec != tt.wantCodecs[i] {
					t.Errorf("attempt %d codec = %s, want %s", i, a.Codec, tt.wantCodecs[i])
				}
			}
		})
	}
}

func TestAttemptsStripAdvancedFields(t *testing.T) {
	report := fullReport()
	report.DriverAdvancedFeatures = false

	attempts := Orchestrator{Report: report}.Attempts(baseRequest())
	hw := attempts[0]
	if hw.Mode != model.ModeHardware {
		t.Fatalf("first attempt mode = %s, want hardware", hw.Mode)
	}
	if hw.Tune != "" || hw.Multipass != 0 || hw.BFrames != 0 || hw.RefFrames != 0 {
		t.Errorf("advanced fields not stripped: %+v", hw)
	}
}

// scriptedRunner fails the first n invocations, then succeeds and creates
// the output file (the last argument) so the pipeline can stat it.
type scriptedRunner struct {
	failures int
	calls    []util.CmdSpec
	payload  []byte
}

func (s *scriptedRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	s.calls = append(s.calls, spec)
	if len(s.calls) <= s.failures {
		err := errors.New("exit status 1")
		return util.CmdResult{Code: 1, Err: err}, err
	}
	out := spec.Args[len(spec.Args)-1]
	if err := os.WriteFile(out, s.payload, 0o644); err != nil {
		return util.CmdResult{Code: -1, Err: err}, err
	}
	return util.CmdResult{}, nil
}

func TestOrchestratorEncodeFallsBack(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp4")
	runner := &scriptedRunner{failures: 1, payload: []byte("video")}

	sv := model.SourceVideo{Path: "in.mp4", Width: 1920, Height: 1080, DurationSec: 10}
	p, err := Orchestrator{Report: fullReport()}.Encode(context.Background(), sv, baseRequest(), Options{
		FFmpegPath: "/usr/bin/ffmpeg",
		OutputPath: out,
		Runner:     runner,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if p.Mode != model.ModeSoftware {
		t.Errorf("winning attempt mode = %s, want software after hardware failure", p.Mode)
	}
	if len(runner.calls) != 2 {
		t.Errorf("runner invoked %d times, want 2", len(runner.calls))
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestOrchestratorEncodeAllFail(t *testing.T) {
	dir := t.TempDir()
	runner := &scriptedRunner{failures: 99}

	sv := model.SourceVideo{Path: "in.mp4", Width: 1280, Height: 720}
	_, err := Orchestrator{Report: fullReport()}.Encode(context.Background(), sv, baseRequest(), Options{
		FFmpegPath: "/usr/bin/ffmpeg",
		OutputPath: filepath.Join(dir, "out.mp4"),
		Runner:     runner,
	})
	if !errors.Is(err, ErrAllAttemptsFailed) {
		t.Fatalf("Encode() error = %v, want ErrAllAttemptsFailed", err)
	}
}

func TestOrchestratorSkipsHardwareWhenUnavailable(t *testing.T) {
	// Hardware requested but probe reports unavailable: the first (and only)
	// ffmpeg invocation must already be the software encoder.
	dir := t.TempDir()
	runner := &scriptedRunner{payload: []byte("x")}

	sv := model.SourceVideo{Path: "in.mp4", Width: 1920, Height: 1080}
	_, err := Orchestrator{Report: model.CapabilityReport{}}.Encode(context.Background(), sv, baseRequest(), Options{
		FFmpegPath: "/usr/bin/ffmpeg",
		OutputPath: filepath.Join(dir, "out.mp4"),
		Runner:     runner,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("runner invoked %d times, want 1", len(runner.calls))
	}
	for _, a := range runner.calls[0].Args {
		if a == "h264_nvenc" || a == "hevc_nvenc" {
			t.Errorf("hardware encoder used despite unavailable report: %v", runner.calls[0].Args)
		}
	}
}

func TestSmaller(t *testing.T) {
	tests := []struct {
		name     string
		original int64
		encoded  int64
		want     bool
	}{
		{name: "smaller kept", original: 100, encoded: 60, want: true},
		{name: "equal discarded", original: 100, encoded: 100, want: false},
		{name: "larger discarded", original: 100, encoded: 140, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Smaller(tt.original, tt.encoded); got != tt.want {
				t.Errorf("Smaller(%d, %d) = %v, want %v", tt.original, tt.encoded, got, tt.want)
			}
			// The decision is pure: repeating it must not change the answer.
			if again := Smaller(tt.original, tt.encoded); again != tt.want {
				t.Errorf("Smaller() not idempotent")
			}
		})
	}
}
