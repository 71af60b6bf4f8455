// Package pdfcover renders the first page of a PDF as a cover image.
package pdfcover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrNoPages is returned for documents without pages.
	ErrNoPages = errors.New("pdf has no pages")
	// ErrRasterizerUnavailable is returned when no rasterizer can run.
	ErrRasterizerUnavailable = errors.New("pdf rasterizer not available")
)

func init() {
	api.DisableConfigDir()
}

// Rasterizer renders a single-page PDF into encoded image bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]byte, error)
}

// FirstPage returns a PDF document holding only the first page of rs.
func FirstPage(rs io.ReadSeeker) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	if n == 0 {
		return nil, ErrNoPages
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := api.Trim(rs, &buf, []string{"1"}, conf); err != nil {
		return nil, fmt.Errorf("failed to extract first page: %w", err)
	}
	return buf.Bytes(), nil
}

// Extract renders page 1 of the PDF at path.
func Extract(ctx context.Context, path string, r Rasterizer) (image.Image, error) {
	if r == nil {
		return nil, ErrRasterizerUnavailable
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	page, err := FirstPage(f)
	if err != nil {
		return nil, err
	}

	data, err := r.Rasterize(ctx, page)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page: %w", err)
	}
	return img, nil
}
