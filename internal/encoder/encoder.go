// Package encoder runs ffmpeg encode attempts with hardware-to-software
// fallback and applies the scale and size-comparison policies.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/progress"
	"github.com/brianmathews/PPTcrunch/internal/util"
)

// EncodeTimeout bounds a single encode attempt. On expiry the subprocess is
// forcibly terminated and the attempt counts as failed.
const EncodeTimeout = 30 * time.Minute

// ErrAllAttemptsFailed is returned when every attempt in the fallback chain
// failed for a file.
var ErrAllAttemptsFailed = errors.New("all encode attempts failed")

// Options control ffmpeg execution for one file.
type Options struct {
	FFmpegPath string
	OutputPath string
	Verbose    bool
	Runner     util.CmdRunner
	Reporter   progress.Reporter
	JobID      string
}

// runAttempt executes one ffmpeg invocation. Non-zero exit, start failure,
// and timeout are indistinguishable to callers: the attempt failed.
func runAttempt(ctx context.Context, sv model.SourceVideo, p model.EncodingParams, req model.Request, opts Options) error {
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	if err := util.EnsureDir(filepath.Dir(opts.OutputPath)); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}

	includeProgress := opts.Reporter != nil
	args := BuildArgs(sv, p, req.MaxWidth, req.KeepAudio, opts.OutputPath, includeProgress)

	var ps ProgressState
	spec := util.CmdSpec{
		Path:    opts.FFmpegPath,
		Args:    args,
		Verbose: opts.Verbose,
		Timeout: EncodeTimeout,
	}
	if includeProgress {
		spec.CaptureStdout = false
		spec.StdoutLine = func(line string) {
			if u, ok := ps.UpdateFromLine(line, opts.JobID, sv.DurationSec); ok {
				opts.Reporter.Update(u)
			}
		}
	}

	if _, err := runner.Run(ctx, spec); err != nil {
		// Delete the incomplete artifact so a later attempt starts clean.
		_ = util.RemoveIfExists(opts.OutputPath)
		return fmt.Errorf("ffmpeg (%s/%s) failed: %w", p.EncoderName(), p.Preset, err)
	}
	return nil
}

// Smaller is the size-comparison decision: the encoded file replaces the
// original only when it is strictly smaller.
func Smaller(originalBytes, encodedBytes int64) bool {
	return encodedBytes < originalBytes
}
