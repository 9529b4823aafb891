// Package params resolves encoder parameters from the static quality table.
package params

import "github.com/brianmathews/PPTcrunch/internal/model"

type tableKey struct {
	Tier  model.QualityTier
	Codec model.Codec
	Mode  model.ExecutionMode
}

// table maps (tier, codec, mode) to the canonical encoder knobs. Hardware
// rows carry the advanced NVENC refinements (tune/multipass/refs/B-frames);
// the arg builder drops them when the driver cannot handle them.
var table = map[tableKey]model.EncodingParams{
	// h264, hardware (h264_nvenc)
	{model.TierSmallest, model.CodecH264, model.ModeHardware}: {QualityValue: 32, Preset: "p5", RateControl: "vbr", Tune: "hq", Multipass: 2, Profile: "high", BFrames: 3, RefFrames: 4},
	{model.TierBalanced, model.CodecH264, model.ModeHardware}: {QualityValue: 27, Preset: "p5", RateControl: "vbr", Tune: "hq", Multipass: 2, Profile: "high", BFrames: 3, RefFrames: 4},
	{model.TierHighest, model.CodecH264, model.ModeHardware}:  {QualityValue: 23, Preset: "p6", RateControl: "vbr", Tune: "hq", Multipass: 2, Profile: "high", BFrames: 3, RefFrames: 4},

	// h264, software (libx264)
	{model.TierSmallest, model.CodecH264, model.ModeSoftware}: {QualityValue: 30, Preset: "medium", RateControl: "crf", Profile: "high"},
	{model.TierBalanced, model.CodecH264, model.ModeSoftware}: {QualityValue: 24, Preset: "medium", RateControl: "crf", Profile: "high"},
	{model.TierHighest, model.CodecH264, model.ModeSoftware}:  {QualityValue: 20, Preset: "slow", RateControl: "crf", Profile: "high"},

	// hevc, hardware (hevc_nvenc); hvc1 tag for QuickTime/PowerPoint playback
	{model.TierSmallest, model.CodecHEVC, model.ModeHardware}: {QualityValue: 33, Preset: "p5", RateControl: "vbr", Tune: "hq", Multipass: 2, Profile: "main", BFrames: 3, RefFrames: 4, CodecTag: "hvc1"},
	{model.TierBalanced, model.CodecHEVC, model.ModeHardware}: {QualityValue: 28, Preset: "p5", RateControl: "vbr", Tune: "hq", Multipass: 2, Profile: "main", BFrames: 3, RefFrames: 4, CodecTag: "hvc1"},
	{model.TierHighest, model.CodecHEVC, model.ModeHardware}:  {QualityValue: 24, Preset: "p6", RateControl: "vbr", Tune: "hq", Multipass: 2, Profile: "main", BFrames: 3, RefFrames: 4, CodecTag: "hvc1"},

	// hevc, software (libx265)
	{model.TierSmallest, model.CodecHEVC, model.ModeSoftware}: {QualityValue: 32, Preset: "medium", RateControl: "crf", Profile: "main", CodecTag: "hvc1"},
	{model.TierBalanced, model.CodecHEVC, model.ModeSoftware}: {QualityValue: 26, Preset: "medium", RateControl: "crf", Profile: "main", CodecTag: "hvc1"},
	{model.TierHighest, model.CodecHEVC, model.ModeSoftware}:  {QualityValue: 22, Preset: "slow", RateControl: "crf", Profile: "main", CodecTag: "hvc1"},
}

// Resolve returns the encoder parameters for the given tier, codec, and
// execution mode. Tiers outside {1,2,3} fall back to the balanced tier
// rather than failing.
func Resolve(tier model.QualityTier, codec model.Codec, mode model.ExecutionMode) model.EncodingParams {
	p, ok := table[tableKey{tier, codec, mode}]
	if !ok {
		p = table[tableKey{model.TierBalanced, codec, mode}]
	}
	p.Codec = codec
	p.Mode = mode
	return p
}
