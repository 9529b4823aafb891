package model

import "strconv"

// QualityTier is the user-selected compression level.
type QualityTier int

const (
	TierSmallest QualityTier = 1
	TierBalanced QualityTier = 2
	TierHighest  QualityTier = 3
)

// Name returns the human-readable preset name for the tier.
func (t QualityTier) Name() string {
	switch t {
	case TierSmallest:
		return "smallest"
	case TierHighest:
		return "highest"
	default:
		return "balanced"
	}
}

func (t QualityTier) String() string {
	return strconv.Itoa(int(t))
}

// Codec identifies the target video codec.
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecHEVC Codec = "hevc"
)

// Other returns the alternate codec, used for one-shot hardware substitution.
func (c Codec) Other() Codec {
	if c == CodecH264 {
		return CodecHEVC
	}
	return CodecH264
}

// ExecutionMode selects between GPU and CPU encoding.
type ExecutionMode int

const (
	ModeHardware ExecutionMode = iota
	ModeSoftware
)

func (m ExecutionMode) String() string {
	if m == ModeHardware {
		return "hardware"
	}
	return "software"
}

// HWPreference is the user's hardware-acceleration choice.
type HWPreference string

const (
	HWAuto HWPreference = "auto"
	HWOn   HWPreference = "on"
	HWOff  HWPreference = "off"
)

// EncodingParams holds the fully-resolved encoder knobs for one attempt.
// Required fields are always populated by the resolver; optional fields
// (Tune, Multipass, BFrames, RefFrames, CodecTag) are only emitted when the
// capability report allows them.
type EncodingParams struct {
	Codec        Codec
	Mode         ExecutionMode
	QualityValue int    // CRF (software) or CQ (NVENC)
	Preset       string // e.g. "medium", "p5"
	RateControl  string // "crf" or "vbr"
	Tune         string // optional, NVENC "hq"
	Multipass    int    // optional, NVENC multipass level (0 = off)
	Profile      string // e.g. "high", "main"
	BFrames      int    // optional
	RefFrames    int    // optional
	CodecTag     string // optional, e.g. "hvc1"
}

// EncoderName returns the ffmpeg encoder for the params' codec and mode.
func (p EncodingParams) EncoderName() string {
	switch {
	case p.Mode == ModeHardware && p.Codec == CodecHEVC:
		return "hevc_nvenc"
	case p.Mode == ModeHardware:
		return "h264_nvenc"
	case p.Codec == CodecHEVC:
		return "libx265"
	default:
		return "libx264"
	}
}

// CapabilityReport is a snapshot of what the environment supports,
// produced once per run and read-only afterward.
type CapabilityReport struct {
	HardwareAvailable      bool
	SupportsH264           bool // h264_nvenc compiled in and GPU present
	SupportsHEVC           bool // hevc_nvenc compiled in and GPU present
	DriverAdvancedFeatures bool // extended refs/B-frames/multipass usable
	GPUName                string
	DriverVersion          string
}

// SupportsCodec reports whether the hardware path can encode the codec.
func (r CapabilityReport) SupportsCodec(c Codec) bool {
	if c == CodecHEVC {
		return r.SupportsHEVC
	}
	return r.SupportsH264
}

// SourceVideo is the probed metadata for one input video.
type SourceVideo struct {
	Path        string
	Width       int
	Height      int
	DurationSec float64
}

// CompressionOutcome records the terminal result for one processed file.
type CompressionOutcome struct {
	InputPath     string
	OutputPath    string
	OriginalBytes int64
	FinalBytes    int64
	UsedHardware  bool
	SizeReduced   bool
	Reason        string
}

// Request holds the per-run user selections, parsed from flags or the
// interactive wizard.
type Request struct {
	Tier      QualityTier
	Codec     Codec
	Hardware  HWPreference
	MaxWidth  int
	KeepAudio bool
	OutDir    string // empty = next to the input
	KeepTemp  bool
	Verbose   bool
	NoPrompt  bool
}
