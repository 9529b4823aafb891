package pipeline

import (
	"path/filepath"

	"github.com/brianmathews/PPTcrunch/internal/encoder"
	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/util/media"
)

// Plan describes what RunJob would do for one input, for dry-run output.
type Plan struct {
	InputPath  string
	IsArchive  bool
	OutputPath string
	Attempts   []model.EncodingParams

	FFmpegPath  string
	FFprobePath string
	MaxWidth    int
}

// BuildPlan computes the attempt chain and output path for an input without
// touching it. The output name for a standalone video is derived from the
// first attempt; the actual run renames to the winning attempt's parameters.
func (s *Service) BuildPlan(inputPath string) Plan {
	pl := Plan{
		InputPath:   inputPath,
		IsArchive:   media.IsPresentation(inputPath),
		Attempts:    encoder.Orchestrator{Report: s.report}.Attempts(s.req),
		FFmpegPath:  s.ffmpegPath,
		FFprobePath: s.ffprobePath,
		MaxWidth:    s.req.MaxWidth,
	}

	var name string
	if pl.IsArchive {
		name = media.ArchiveOutputName(inputPath)
	} else {
		name = media.VideoOutputName(inputPath, pl.Attempts[0])
	}
	pl.OutputPath = filepath.Join(s.outputDir(inputPath), name)
	return pl
}

// outputDir resolves where outputs for inputPath land: --out-dir when set,
// otherwise next to the input.
func (s *Service) outputDir(inputPath string) string {
	if s.req.OutDir != "" {
		return s.req.OutDir
	}
	return filepath.Dir(inputPath)
}
