package pdfcover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBinary = "pdftoppm"
	DefaultDPI    = 200
)

// Poppler rasterizes with the pdftoppm command line tool.
type Poppler struct {
	Binary  string
	DPI     int
	Timeout time.Duration
}

func (p Poppler) binary() string {
	if p.Binary == "" {
		return DefaultBinary
	}
	return p.Binary
}

func (p Poppler) dpi() int {
	if p.DPI <= 0 {
		return DefaultDPI
	}
	return p.DPI
}

// Enabled reports whether the pdftoppm binary can be found.
func (p Poppler) Enabled() bool {
	_, err := exec.LookPath(p.binary())
	return err == nil
}

// Args returns the pdftoppm arguments rendering in into outRoot.png.
func (p Poppler) Args(in, outRoot string) []string {
	return []string{"-png", "-singlefile", "-r", strconv.Itoa(p.dpi()), in, outRoot}
}

// Rasterize writes pdf to a temp directory, renders it and returns the PNG.
func (p Poppler) Rasterize(ctx context.Context, pdf []byte) ([]byte, error) {
	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRasterizerUnavailable, p.binary(), err)
	}

	tmp, err := os.MkdirTemp("", "coverextract-pdf-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	in := filepath.Join(tmp, "page.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp pdf: %w", err)
	}
	outRoot := filepath.Join(tmp, "cover")

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, p.Args(in, outRoot)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", filepath.Base(bin), err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(outRoot + ".png")
	if err != nil {
		return nil, fmt.Errorf("rendered page not found: %w", err)
	}
	return data, nil
}
