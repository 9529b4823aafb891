package params

import (
	"testing"

	"github.com/brianmathews/PPTcrunch/internal/model"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		tier        model.QualityTier
		codec       model.Codec
		mode        model.ExecutionMode
		wantQuality int
		wantPreset  string
		wantRC      string
		wantProfile string
		wantTag     string
	}{
		{
			name:        "balanced h264 software",
			tier:        model.TierBalanced,
			codec:       model.CodecH264,
			mode:        model.ModeSoftware,
			wantQuality: 24,
			wantPreset:  "medium",
			wantRC:      "crf",
			wantProfile: "high",
		},
		{
			name:        "smallest h264 hardware",
			tier:        model.TierSmallest,
			codec:       model.CodecH264,
			mode:        model.ModeHardware,
			wantQuality: 32,
			wantPreset:  "p5",
			wantRC:      "vbr",
			wantProfile: "high",
		},
		{
			name:        "highest hevc software carries hvc1 tag",
			tier:        model.TierHighest,
			codec:       model.CodecHEVC,
			mode:        model.ModeSoftware,
			wantQuality: 22,
			wantPreset:  "slow",
			wantRC:      "crf",
			wantProfile: "main",
			wantTag:     "hvc1",
		},
		{
			name:        "hevc hardware",
			tier:        model.TierBalanced,
			codec:       model.CodecHEVC,
			mode:        model.ModeHardware,
			wantQuality: 28,
			wantPreset:  "p5",
			wantRC:      "vbr",
			wantProfile: "main",
			wantTag:     "hvc1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.tier, tt.codec, tt.mode)
			if got.QualityValue != tt.wantQuality {
				t.Errorf("Resolve() quality = %d, want %d", got.QualityValue, tt.wantQuality)
			}
			if got.Preset != tt.wantPreset {
				t.Errorf("Resolve() preset = %q, want %q", got.Preset, tt.wantPreset)
			}
			if got.RateControl != tt.wantRC {
				t.Errorf("Resolve() rate control = %q, want %q", got.RateControl, tt.wantRC)
			}
			if got.Profile != tt.wantProfile {
				t.Errorf("Resolve() profile = %q, want %q", got.Profile, tt.wantProfile)
			}
			if got.CodecTag != tt.wantTag {
				t.Errorf("Resolve() codec tag = %q, want %q", got.CodecTag, tt.wantTag)
			}
			if got.Codec != tt.codec || got.Mode != tt.mode {
				t.Errorf("Resolve() codec/mode = %v/%v, want %v/%v", got.Codec, got.Mode, tt.codec, tt.mode)
			}
		})
	}
}

func TestResolveUnknownTierFallsBackToBalanced(t *testing.T) {
	tests := []struct {
		name string
		tier model.QualityTier
	}{
		{name: "zero", tier: 0},
		{name: "negative", tier: -3},
		{name: "four", tier: 4},
		{name: "large", tier: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, codec := range []model.Codec{model.CodecH264, model.CodecHEVC} {
				for _, mode := range []model.ExecutionMode{model.ModeHardware, model.ModeSoftware} {
					got := Resolve(tt.tier, codec, mode)
					want := Resolve(model.TierBalanced, codec, mode)
					if got != want {
						t.Errorf("Resolve(%d, %s, %s) = %+v, want balanced %+v", tt.tier, codec, mode, got, want)
					}
				}
			}
		})
	}
}

func TestResolveAlwaysComplete(t *testing.T) {
	// Required fields must never be empty for any valid combination.
	for tier := model.QualityTier(1); tier <= 3; tier++ {
		for _, codec := range []model.Codec{model.CodecH264, model.CodecHEVC} {
			for _, mode := range []model.ExecutionMode{model.ModeHardware, model.ModeSoftware} {
				p := Resolve(tier, codec, mode)
				if p.QualityValue <= 0 || p.Preset == "" || p.RateControl == "" || p.Profile == "" {
					t.Errorf("Resolve(%d, %s, %s) incomplete: %+v", tier, codec, mode, p)
				}
			}
		}
	}
}
