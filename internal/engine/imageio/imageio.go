package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dshills/paintstorm/internal/engine/document"
)

// DefaultJPEGQuality is the JPEG quality used when Options leaves it unset.
const DefaultJPEGQuality = 90

// Result is a decoded image file.
type Result struct {
	// Image is the decoded pixel buffer anchored at (0,0).
	Image *image.NRGBA

	// Format is the detected format tag.
	Format string

	// Meta holds metadata read from the file (PNG only).
	Meta document.Meta
}

// Options configures encoding.
type Options struct {
	// JPEGQuality is 1-100; 0 means DefaultJPEGQuality.
	JPEGQuality int
}

func (o Options) jpegQuality() int {
	switch {
	case o.JPEGQuality <= 0:
		return DefaultJPEGQuality
	case o.JPEGQuality > 100:
		return 100
	default:
		return o.JPEGQuality
	}
}

// Load reads and decodes the image file at path.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := decodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return res, nil
}

// Decode reads an encoded image from r. The format is detected from the
// stream contents.
func Decode(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeBytes(data)
}

func decodeBytes(data []byte) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	res := &Result{
		Image:  document.ToNRGBA(img),
		Format: format,
	}
	if format == FormatPNG {
		// Metadata is best effort; the pixels already decoded.
		res.Meta, _ = readPNGMeta(data)
	}
	return res, nil
}

// Encode writes img to w in the given format. Metadata is embedded for PNG
// and ignored by the other encoders.
func Encode(w io.Writer, img *image.NRGBA, format string, meta document.Meta, opts Options) error {
	if img == nil {
		return ErrNoImage
	}
	switch NormalizeFormat(format) {
	case FormatPNG:
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return err
		}
		data, err := writePNGMeta(buf.Bytes(), meta)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: opts.jpegQuality()})
	case FormatGIF:
		return gif.Encode(w, img, &gif.Options{NumColors: 256})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Save encodes img and atomically replaces the file at path. An empty
// format is inferred from the path, falling back to DefaultFormat.
func Save(path string, img *image.NRGBA, format string, meta document.Meta, opts Options) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if format == "" {
		format = DefaultFormat
	}
	if !CanEncode(format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format, meta, opts); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if info, statErr := os.Stat(path); statErr == nil {
		// Keep the permissions of the file being replaced.
		_ = os.Chmod(tmpName, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpName, 0o644)
	}
	return os.Rename(tmpName, path)
}
