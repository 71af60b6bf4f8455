// Package coverimg turns cover image bytes into an output file: a PNG when
// the bytes decode, otherwise the original bytes under a best-effort
// extension.
package coverimg

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// PNGExt is the extension of decoded covers.
	PNGExt = ".png"

	fallbackExt      = ".img"
	defaultMaxPixels = 100 * 1000 * 1000 // 100 megapixels
)

// Result holds a materialized cover. Exactly one of Image and Raw is set.
type Result struct {
	Image image.Image
	Raw   []byte
	Ext   string
	// Warning explains why the raw path was taken.
	Warning string
}

// IsRaw reports whether the result carries undecoded bytes.
func (r Result) IsRaw() bool {
	return r.Image == nil
}

// Materialize decodes data as an image and normalizes its color model. When
// decoding fails, the result keeps data as-is with an extension inferred from
// name, mediaType and the content.
func Materialize(data []byte, name, mediaType string) Result {
	img, err := decode(data)
	if err != nil {
		return Result{
			Raw:     data,
			Ext:     InferExt(name, mediaType, data),
			Warning: err.Error(),
		}
	}
	return Result{Image: Normalize(img), Ext: PNGExt}
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) Result {
	return Result{Image: Normalize(img), Ext: PNGExt}
}

func decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	pixels := uint64(cfg.Width) * uint64(cfg.Height)
	if pixels > defaultMaxPixels {
		return nil, fmt.Errorf("image too large to decode: %dx%d (%d pixels)", cfg.Width, cfg.Height, pixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	return img, nil
}

// Normalize converts paletted, gray, YCbCr and other color models to NRGBA.
// RGBA and NRGBA images are returned unchanged.
func Normalize(img image.Image) image.Image {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		return img
	}
	return imaging.Clone(img)
}

// InferExt picks the extension for raw cover bytes: the name's extension,
// then the media type's, then the one sniffed from data, then ".img".
func InferExt(name, mediaType string, data []byte) string {
	if ext := path.Ext(strings.ReplaceAll(name, "\\", "/")); ext != "" {
		return strings.ToLower(ext)
	}
	if mediaType != "" {
		if mt := mimetype.Lookup(strings.ToLower(strings.TrimSpace(mediaType))); mt != nil && mt.Extension() != "" {
			return mt.Extension()
		}
	}
	if len(data) > 0 {
		if ext := mimetype.Detect(data).Extension(); ext != "" {
			return ext
		}
	}
	return fallbackExt
}

// OutputPath returns inputPath with its extension replaced by ext.
func OutputPath(inputPath, ext string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ext
}

// Write stores r next to inputPath and returns the written path.
func Write(r Result, inputPath string) (string, error) {
	out := OutputPath(inputPath, r.Ext)
	if r.IsRaw() {
		if err := os.WriteFile(out, r.Raw, 0o644); err != nil {
			return "", fmt.Errorf("failed to write cover: %w", err)
		}
		return out, nil
	}
	if err := SavePNG(r.Image, out); err != nil {
		return "", err
	}
	return out, nil
}

// SavePNG encodes img as PNG into path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := imaging.Encode(f, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("png encode failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
