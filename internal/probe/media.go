package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/util"
)

// MediaProber reads source video metadata through ffprobe.
type MediaProber struct {
	FFprobePath string
	Runner      util.CmdRunner
	Verbose     bool
}

// Probe returns width, height, and duration for the first video stream.
// Unlike the capability probe, a failure here is an error: a file we cannot
// read is a per-file failure for the caller to record.
func (p *MediaProber) Probe(ctx context.Context, path string) (model.SourceVideo, error) {
	runner := p.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	res, err := runner.Run(ctx, util.CmdSpec{
		Path: p.FFprobePath,
		Args: []string{
			"-v", "error",
			"-select_streams", "v:0",
			"-show_entries", "stream=width,height:format=duration",
			"-of", "csv=p=0",
			path,
		},
		Timeout:       probeTimeout,
		Verbose:       p.Verbose,
		CaptureStdout: true,
	})
	if err != nil {
		return model.SourceVideo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	sv, err := ParseFFprobeCSV(string(res.Stdout))
	if err != nil {
		return model.SourceVideo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	sv.Path = path
	return sv, nil
}

// ParseFFprobeCSV parses the two CSV lines produced by the stream/format
// query: "width,height" then "duration". The duration line may be missing
// or "N/A" for some containers; that is tolerated.
func ParseFFprobeCSV(out string) (model.SourceVideo, error) {
	var sv model.SourceVideo
	lines := []string{}
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return sv, fmt.Errorf("no video stream found")
	}

	dims := strings.Split(lines[0], ",")
	if len(dims) < 2 {
		return sv, fmt.Errorf("unexpected stream line %q", lines[0])
	}
	w, werr := strconv.Atoi(strings.TrimSpace(dims[0]))
	h, herr := strconv.Atoi(strings.TrimSpace(dims[1]))
	if werr != nil || herr != nil || w < 1 || h < 1 {
		return sv, fmt.Errorf("invalid dimensions %q", lines[0])
	}
	sv.Width = w
	sv.Height = h

	if len(lines) > 1 {
		if d, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64); err == nil && d > 0 {
			sv.DurationSec = d
		}
	}
	return sv, nil
}
