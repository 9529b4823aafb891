// Package pipeline orchestrates the probe → encode → compare → finalize
// workflow for standalone videos and presentation archives.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brianmathews/PPTcrunch/internal/archive"
	"github.com/brianmathews/PPTcrunch/internal/encoder"
	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/probe"
	"github.com/brianmathews/PPTcrunch/internal/progress"
	"github.com/brianmathews/PPTcrunch/internal/util"
	"github.com/brianmathews/PPTcrunch/internal/util/format"
	"github.com/brianmathews/PPTcrunch/internal/util/media"
)

// MediaProber yields source video metadata for a file on disk.
type MediaProber interface {
	Probe(ctx context.Context, path string) (model.SourceVideo, error)
}

// Service processes one input file at a time. Inputs are independent: a
// failure in one never aborts the rest of the batch.
type Service struct {
	ffmpegPath  string
	ffprobePath string
	req         model.Request
	report      model.CapabilityReport
	prober      MediaProber
	runner      util.CmdRunner
	reporter    progress.Reporter
}

// Option configures a Service.
type Option func(*Service)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithFFprobePath sets the ffprobe binary path.
func WithFFprobePath(p string) Option {
	return func(s *Service) {
		s.ffprobePath = p
	}
}

// WithRequest sets the per-run user selections.
func WithRequest(req model.Request) Option {
	return func(s *Service) {
		s.req = req
	}
}

// WithCapabilities sets the capability report produced at startup.
func WithCapabilities(r model.CapabilityReport) Option {
	return func(s *Service) {
		s.report = r
	}
}

// WithMediaProber injects a metadata prober (useful for testing).
func WithMediaProber(p MediaProber) Option {
	return func(s *Service) {
		s.prober = p
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches a progress reporter.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// NewService constructs a Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	return s
}

// RunJob processes a single input path to exactly one terminal outcome.
// It never prints; when a Reporter is present it emits progress and a final
// Result.
func (s *Service) RunJob(ctx context.Context, inputPath string) (model.CompressionOutcome, error) {
	jobID := filepath.Base(inputPath)

	if s.ffmpegPath == "" {
		return model.CompressionOutcome{InputPath: inputPath}, fmt.Errorf("ffmpeg path is required")
	}

	workdir, err := util.MakeTempWorkdir(jobID)
	if err != nil {
		return model.CompressionOutcome{InputPath: inputPath}, fmt.Errorf("temp workdir: %w", err)
	}
	defer func() {
		if s.req.KeepTemp {
			s.logf(jobID, "keeping temp dir: %s", workdir)
			return
		}
		if rerr := os.RemoveAll(workdir); rerr != nil {
			s.logf(jobID, "warning: failed to remove temp dir %s: %v", workdir, rerr)
		}
	}()

	var out model.CompressionOutcome
	switch {
	case media.IsPresentation(inputPath):
		out, err = s.runArchiveJob(ctx, jobID, inputPath, workdir)
	case media.IsVideo(inputPath):
		out, err = s.runVideoJob(ctx, jobID, inputPath, workdir)
	default:
		err = fmt.Errorf("unsupported input type: %s", filepath.Ext(inputPath))
		out = model.CompressionOutcome{InputPath: inputPath}
	}

	s.emitResult(jobID, out, err)
	if err != nil {
		return out, err
	}
	return out, nil
}

// runVideoJob compresses one standalone video. The encode lands in the temp
// workdir first; only a strictly smaller result is promoted next to the
// input (or into --out-dir) under the winning parameters' name.
func (s *Service) runVideoJob(ctx context.Context, jobID, inputPath, workdir string) (model.CompressionOutcome, error) {
	out := model.CompressionOutcome{InputPath: inputPath}

	origSize, err := util.FileSize(inputPath)
	if err != nil {
		return out, fmt.Errorf("stat input: %w", err)
	}
	out.OriginalBytes = origSize
	out.FinalBytes = origSize

	s.emitStage(jobID, progress.StageProbing, "Probing source video")
	sv, err := s.probeSource(ctx, inputPath)
	if err != nil {
		return out, fmt.Errorf("probe: %w", err)
	}

	tempOut := filepath.Join(workdir, "encode.mp4")
	winner, err := s.encodeOne(ctx, jobID, sv, tempOut)
	if err != nil {
		return out, err
	}
	out.UsedHardware = winner.Mode == model.ModeHardware

	encSize, err := util.FileSize(tempOut)
	if err != nil {
		return out, fmt.Errorf("stat encoded output: %w", err)
	}

	if !encoder.Smaller(origSize, encSize) {
		out.SizeReduced = false
		out.Reason = "encoded file not smaller; original kept"
		return out, nil
	}

	finalPath := filepath.Join(s.outputDir(inputPath), media.VideoOutputName(inputPath, winner))
	if err := util.EnsureDir(filepath.Dir(finalPath)); err != nil {
		return out, fmt.Errorf("ensure output dir: %w", err)
	}
	if err := util.CopyFile(tempOut, finalPath); err != nil {
		return out, fmt.Errorf("place output: %w", err)
	}

	out.OutputPath = finalPath
	out.FinalBytes = encSize
	out.SizeReduced = true
	out.Reason = fmt.Sprintf("compressed %s", format.Reduction(origSize, encSize))
	return out, nil
}

// runArchiveJob extracts a presentation archive, re-encodes each embedded
// video that comes out smaller, rewrites markup references for renamed
// media, and repacks to <name>-crunched next to the original. A per-video
// failure is a warning; the archive is still repacked when at least one
// video was replaced.
func (s *Service) runArchiveJob(ctx context.Context, jobID, inputPath, workdir string) (model.CompressionOutcome, error) {
	out := model.CompressionOutcome{InputPath: inputPath}

	origSize, err := util.FileSize(inputPath)
	if err != nil {
		return out, fmt.Errorf("stat input: %w", err)
	}
	out.OriginalBytes = origSize
	out.FinalBytes = origSize

	s.emitStage(jobID, progress.StageExtracting, "Extracting archive")
	extractDir := filepath.Join(workdir, "extracted")
	ex, err := archive.Extract(inputPath, extractDir)
	if err != nil {
		return out, fmt.Errorf("extract: %w", err)
	}

	videos := ex.Videos()
	if len(videos) == 0 {
		out.Reason = "no embedded videos found; original kept"
		return out, nil
	}

	replaced := 0
	for i, entry := range videos {
		s.logf(jobID, "embedded video %d/%d: %s", i+1, len(videos), filepath.Base(entry))
		swapped, usedHW, err := s.replaceEmbeddedVideo(ctx, jobID, ex, entry, workdir)
		if err != nil {
			s.logf(jobID, "warning: %s: %v", filepath.Base(entry), err)
			continue
		}
		if swapped {
			replaced++
			out.UsedHardware = out.UsedHardware || usedHW
		}
	}

	if replaced == 0 {
		out.Reason = "no embedded video came out smaller; original kept"
		return out, nil
	}

	if added, err := archive.EnsureMP4ContentType(ex); err != nil {
		s.logf(jobID, "warning: content types: %v", err)
	} else if added {
		s.logf(jobID, "registered video/mp4 content type")
	}

	s.emitStage(jobID, progress.StageRepacking, "Repacking archive")
	finalPath := filepath.Join(s.outputDir(inputPath), media.ArchiveOutputName(inputPath))
	if err := util.EnsureDir(filepath.Dir(finalPath)); err != nil {
		return out, fmt.Errorf("ensure output dir: %w", err)
	}
	if err := archive.Repack(ex, finalPath); err != nil {
		return out, fmt.Errorf("repack: %w", err)
	}

	finalSize, err := util.FileSize(finalPath)
	if err != nil {
		return out, fmt.Errorf("stat repacked archive: %w", err)
	}

	out.OutputPath = finalPath
	out.FinalBytes = finalSize
	out.SizeReduced = finalSize < origSize
	out.Reason = fmt.Sprintf("replaced %d of %d embedded videos (%s)",
		replaced, len(videos), format.Reduction(origSize, finalSize))
	return out, nil
}

// replaceEmbeddedVideo encodes one archive entry and, when the result is
// strictly smaller, swaps it in on disk as <name>.mp4 and rewrites every
// markup reference to it.
func (s *Service) replaceEmbeddedVideo(ctx context.Context, jobID string, ex *archive.Extracted, entry, workdir string) (swapped, usedHW bool, err error) {
	src := ex.AbsPath(entry)
	origSize, err := util.FileSize(src)
	if err != nil {
		return false, false, fmt.Errorf("stat: %w", err)
	}

	sv, err := s.probeSource(ctx, src)
	if err != nil {
		return false, false, fmt.Errorf("probe: %w", err)
	}

	tempOut := filepath.Join(workdir, filepath.Base(entry)+".encode.mp4")
	winner, err := s.encodeOne(ctx, jobID, sv, tempOut)
	if err != nil {
		return false, false, err
	}

	encSize, err := util.FileSize(tempOut)
	if err != nil {
		return false, false, fmt.Errorf("stat encoded output: %w", err)
	}
	if !encoder.Smaller(origSize, encSize) {
		s.logf(jobID, "%s: encoded file not smaller, keeping original", filepath.Base(entry))
		return false, false, nil
	}

	ext := filepath.Ext(entry)
	newEntry := entry[:len(entry)-len(ext)] + ".mp4"
	if err := util.CopyFile(tempOut, ex.AbsPath(newEntry)); err != nil {
		return false, false, fmt.Errorf("place encoded video: %w", err)
	}
	if newEntry != entry {
		if err := os.Remove(src); err != nil {
			return false, false, fmt.Errorf("remove original entry: %w", err)
		}
		ex.ReplaceEntry(entry, newEntry)
		_, warnings := archive.RewriteReferences(ex, entry, newEntry)
		for _, w := range warnings {
			s.logf(jobID, "warning: %v", w)
		}
	}
	return true, winner.Mode == model.ModeHardware, nil
}

func (s *Service) encodeOne(ctx context.Context, jobID string, sv model.SourceVideo, outputPath string) (model.EncodingParams, error) {
	orch := encoder.Orchestrator{Report: s.report}
	return orch.Encode(ctx, sv, s.req, encoder.Options{
		FFmpegPath: s.ffmpegPath,
		OutputPath: outputPath,
		Verbose:    s.req.Verbose,
		Runner:     s.runner,
		Reporter:   s.reporter,
		JobID:      jobID,
	})
}

func (s *Service) probeSource(ctx context.Context, path string) (model.SourceVideo, error) {
	if s.prober != nil {
		return s.prober.Probe(ctx, path)
	}
	mp := &probe.MediaProber{FFprobePath: s.ffprobePath, Runner: s.runner, Verbose: s.req.Verbose}
	return mp.Probe(ctx, path)
}

func (s *Service) emitStage(jobID string, stage progress.Stage, msg string) {
	if s.reporter == nil {
		return
	}
	s.reporter.Update(progress.Update{JobID: jobID, Stage: stage, Percent: -1, Message: msg})
}

func (s *Service) logf(jobID, f string, args ...any) {
	if s.reporter == nil {
		return
	}
	s.reporter.Log(progress.Log{
		JobID:  jobID,
		Stream: progress.StreamStderr,
		Line:   fmt.Sprintf(f, args...),
	})
}

func (s *Service) emitResult(jobID string, out model.CompressionOutcome, err error) {
	if s.reporter == nil {
		return
	}
	if err != nil {
		s.reporter.Update(progress.Update{
			JobID:   jobID,
			Stage:   progress.StageError,
			Percent: -1,
			Message: err.Error(),
		})
		s.reporter.Result(progress.Result{JobID: jobID, Err: err})
		return
	}
	msg := out.Reason
	if out.SizeReduced && out.OutputPath != "" {
		msg = fmt.Sprintf("Saved: %s (%s, %s)",
			filepath.Base(out.OutputPath), format.HumanizeBytes(out.FinalBytes), format.Reduction(out.OriginalBytes, out.FinalBytes))
	}
	s.reporter.Update(progress.Update{
		JobID:   jobID,
		Stage:   progress.StageCompleted,
		Percent: 100,
		Message: msg,
	})
	s.reporter.Result(progress.Result{
		JobID:      jobID,
		OutputPath: out.OutputPath,
		Bytes:      out.FinalBytes,
	})
}
