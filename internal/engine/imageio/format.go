package imageio

import (
	"errors"
	"path/filepath"
	"strings"
)

// Supported format tags.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
)

// DefaultFormat is used when a path carries no recognizable extension.
const DefaultFormat = FormatPNG

// Errors returned by the codec boundary.
var (
	// ErrUnsupportedFormat indicates a format that cannot be encoded.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrNoImage indicates a nil image was given to an encoder.
	ErrNoImage = errors.New("no image")
)

var extensions = map[string]string{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".jpe":  FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".dib":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWebP,
}

// FormatFromPath infers a format tag from the file extension. It returns
// "" if the extension is unknown.
func FormatFromPath(path string) string {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// NormalizeFormat maps aliases ("jpg", "tif", ".png", "PNG") to a format tag.
// It returns "" for unknown formats.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return ""
	}
	if !strings.HasPrefix(f, ".") {
		f = "." + f
	}
	return extensions[f]
}

// CanEncode reports whether Save supports the format.
func CanEncode(format string) bool {
	switch NormalizeFormat(format) {
	case FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF:
		return true
	default:
		return false
	}
}
