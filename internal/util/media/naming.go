package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brianmathews/PPTcrunch/internal/model"
)

// VideoExtensions lists recognized video file extensions (lowercase, with dot).
var VideoExtensions = []string{".mp4", ".m4v", ".mov", ".avi", ".wmv", ".mpg", ".mpeg"}

// IsVideo reports whether the path has a recognized video extension.
func IsVideo(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// IsPresentation reports whether the path looks like a presentation archive.
func IsPresentation(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pptx")
}

// VideoOutputName builds the output filename for a standalone video: the
// input base plus a suffix encoding the resolved quality value and codec.
// Output is always .mp4 regardless of the input container.
func VideoOutputName(inputPath string, p model.EncodingParams) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return fmt.Sprintf("%s-q%d-%s.mp4", base, p.QualityValue, p.Codec)
}

// ArchiveOutputName builds the output filename for a presentation archive:
// a fixed suffix before the extension, original untouched.
func ArchiveOutputName(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	return base + "-crunched" + ext
}
