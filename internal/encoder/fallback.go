package encoder

import (
	"context"
	"fmt"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/params"
	"github.com/brianmathews/PPTcrunch/internal/progress"
)

// Orchestrator walks the fallback chain for one file: a hardware attempt
// first (when requested and available), then a software attempt. The
// hardware attempt substitutes the alternate codec one-shot when the
// requested codec has no hardware encoder; the software attempt always uses
// the originally requested codec.
type Orchestrator struct {
	Report model.CapabilityReport
}

// Attempts returns the ordered parameter sets to try. Optional NVENC fields
// are stripped when the driver lacks the advanced feature set, so every
// parameter set handed to the encoder is safe to emit verbatim.
func (o Orchestrator) Attempts(req model.Request) []model.EncodingParams {
	var attempts []model.EncodingParams

	if req.Hardware != model.HWOff && o.Report.HardwareAvailable {
		hwCodec := req.Codec
		if !o.Report.SupportsCodec(hwCodec) {
			hwCodec = hwCodec.Other()
		}
		if o.Report.SupportsCodec(hwCodec) {
			p := params.Resolve(req.Tier, hwCodec, model.ModeHardware)
			if !o.Report.DriverAdvancedFeatures {
				p.Tune = ""
				p.Multipass = 0
				p.BFrames = 0
				p.RefFrames = 0
			}
			attempts = append(attempts, p)
		}
	}

	attempts = append(attempts, params.Resolve(req.Tier, req.Codec, model.ModeSoftware))
	return attempts
}

// Encode runs the fallback chain until one attempt succeeds. It returns the
// parameters of the winning attempt; ErrAllAttemptsFailed wraps the last
// failure when nothing succeeded.
func (o Orchestrator) Encode(ctx context.Context, sv model.SourceVideo, req model.Request, opts Options) (model.EncodingParams, error) {
	attempts := o.Attempts(req)

	var lastErr error
	for i, p := range attempts {
		if opts.Reporter != nil {
			opts.Reporter.Update(progress.Update{
				JobID:   opts.JobID,
				Stage:   progress.StageEncoding,
				Percent: -1,
				Message: fmt.Sprintf("Encoding attempt %d/%d (%s, %s)", i+1, len(attempts), p.EncoderName(), p.Mode),
			})
		}
		if err := runAttempt(ctx, sv, p, req, opts); err != nil {
			lastErr = err
			if opts.Reporter != nil {
				opts.Reporter.Log(progress.Log{
					JobID:  opts.JobID,
					Stream: progress.StreamStderr,
					Line:   fmt.Sprintf("attempt %d/%d failed: %v", i+1, len(attempts), err),
				})
			}
			if ctx.Err() != nil {
				// The run itself was cancelled; further attempts are pointless.
				break
			}
			continue
		}
		return p, nil
	}
	return model.EncodingParams{}, fmt.Errorf("%w: %v", ErrAllAttemptsFailed, lastErr)
}
