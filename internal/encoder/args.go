package encoder

import (
	"fmt"
	"strconv"

	"github.com/brianmathews/PPTcrunch/internal/model"
)

// BuildArgs constructs the ffmpeg argument list for one encode attempt.
// The params must be fully resolved; optional fields are emitted only when
// present (the orchestrator strips them when the driver cannot handle them).
func BuildArgs(sv model.SourceVideo, p model.EncodingParams, maxWidth int, keepAudio bool, outputPath string, includeProgress bool) []string {
	w, h := FitWidth(sv.Width, sv.Height, maxWidth)

	args := []string{
		"-y",
		"-i", sv.Path,
		"-vf", fmt.Sprintf("scale=%d:%d", w, h),
		"-c:v", p.EncoderName(),
		"-preset", p.Preset,
	}

	if p.Mode == model.ModeHardware {
		// NVENC constant-quality VBR; -b:v 0 hands rate allocation to CQ.
		args = append(args, "-rc", p.RateControl, "-cq", strconv.Itoa(p.QualityValue), "-b:v", "0")
		if p.Tune != "" {
			args = append(args, "-tune", p.Tune)
		}
		if p.Multipass > 0 {
			args = append(args, "-multipass", strconv.Itoa(p.Multipass))
		}
		if p.BFrames > 0 {
			args = append(args, "-bf", strconv.Itoa(p.BFrames))
		}
		if p.RefFrames > 0 {
			args = append(args, "-refs", strconv.Itoa(p.RefFrames))
		}
	} else {
		args = append(args, "-crf", strconv.Itoa(p.QualityValue))
	}

	args = append(args, "-profile:v", p.Profile, "-pix_fmt", "yuv420p")

	if p.CodecTag != "" {
		args = append(args, "-tag:v", p.CodecTag)
	}

	if keepAudio {
		args = append(args, "-c:a", "copy")
	} else {
		args = append(args, "-an")
	}

	args = append(args, "-movflags", "+faststart")

	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}

	args = append(args, outputPath)
	return args
}
