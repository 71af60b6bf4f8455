// Package extractor runs cover extraction over a list of input files.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/yuanying/coverextract/internal/coverimg"
	"github.com/yuanying/coverextract/internal/pdfcover"
	"github.com/yuanying/coverextract/internal/textcover"
)

// Options holds per-run settings.
type Options struct {
	// TypeHint decides the kind of inputs with an unrecognized extension.
	TypeHint string
	Text     textcover.Options
}

// Pipeline extracts covers file by file. Progress goes to Out, diagnostics
// to Logger.
type Pipeline struct {
	Options    Options
	Out        io.Writer
	Logger     *slog.Logger
	Rasterizer pdfcover.Rasterizer
}

// NewPipeline creates a pipeline writing progress to out.
func NewPipeline(opts Options, out io.Writer, logger *slog.Logger, r pdfcover.Rasterizer) *Pipeline {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{Options: opts, Out: out, Logger: logger, Rasterizer: r}
}

// Run processes paths in order. A failure on one file never stops the
// others; the returned *BatchError lists every file that failed.
func (p *Pipeline) Run(ctx context.Context, paths []string) error {
	var failures []*FileError
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted before %s: %w", path, err)
		}
		if ferr := p.Process(ctx, path); ferr != nil {
			failures = append(failures, ferr)
		}
	}
	if len(failures) > 0 {
		return &BatchError{Failures: failures}
	}
	return nil
}

// Process handles a single input and returns its fatal error, if any.
// Non-fatal outcomes are reported on Out and yield nil.
func (p *Pipeline) Process(ctx context.Context, path string) *FileError {
	kind, err := Classify(path, p.Options.TypeHint)
	if err != nil {
		p.printf("Unsupported file type for %s; supported: .pdf, .epub, .txt", path)
		p.Logger.Debug("skipping input", "file", path, "error", err)
		return nil
	}
	p.Logger.Debug("processing input", "file", path, "kind", kind)

	switch kind {
	case KindPDF:
		err = p.extractPDF(ctx, path)
	case KindEPUB:
		err = p.extractEPUB(path)
	case KindTXT:
		err = p.createTextCover(path)
	}
	if err == nil {
		return nil
	}

	if kind == KindTXT {
		p.printf("Error creating %s cover from %s: %v", kind.Label(), path, err)
	} else {
		p.printf("Error extracting %s cover from %s: %v", kind.Label(), path, err)
	}
	p.Logger.Error("cover extraction failed", "file", path, "kind", kind, "error", err)
	return &FileError{Path: path, Kind: kind, Err: err}
}

func (p *Pipeline) extractPDF(ctx context.Context, path string) error {
	p.printf("Extracting cover photo from %s...", path)

	img, err := pdfcover.Extract(ctx, path, p.Rasterizer)
	if err != nil {
		return err
	}
	out, err := coverimg.Write(coverimg.FromImage(img), path)
	if err != nil {
		return err
	}

	p.printf("%s", out)
	p.printf("Done, your cover photo has been saved as %s", out)
	return nil
}

func (p *Pipeline) createTextCover(path string) error {
	p.printf("Creating text cover image from %s...", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open text file: %w", err)
	}
	defer f.Close()

	img, layout, err := textcover.Build(f, p.Options.Text)
	if errors.Is(err, textcover.ErrEmptyText) {
		p.printf("TXT file is empty; no cover created.")
		return nil
	}
	if err != nil {
		return err
	}
	p.Logger.Debug("text cover layout",
		"file", path,
		"lines", len(layout.Lines),
		"chars_per_line", layout.CharsPerLine,
		"line_height", layout.LineHeight,
		"width", layout.Width,
		"height", layout.Height,
	)

	out, err := coverimg.Write(coverimg.FromImage(img), path)
	if err != nil {
		return err
	}
	p.printf("Done, your text cover has been saved as %s", out)
	return nil
}

// writeCover writes an EPUB cover and reports it.
func (p *Pipeline) writeCover(res coverimg.Result, path string) error {
	if res.IsRaw() {
		p.Logger.Warn("cover image could not be decoded, keeping raw bytes", "file", path, "reason", res.Warning)
	}
	out, err := coverimg.Write(res, path)
	if err != nil {
		return err
	}
	if res.IsRaw() {
		p.printf("Done, your cover photo has been saved as %s (raw bytes)", out)
	} else {
		p.printf("Done, your cover photo has been saved as %s", out)
	}
	return nil
}

func (p *Pipeline) printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}
