// Package textcover renders the opening of a plain-text file onto a white PNG
// canvas.
package textcover

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	DefaultMaxLines = 20
	DefaultMaxChars = 2000
	DefaultWidth    = 1200
	DefaultMargin   = 40

	minCharsPerLine = 40
	fallbackCharW   = 7
	lineSpacing     = 6
	ellipsis        = "..."
	referenceGlyph  = 'A'
)

// ErrEmptyText is returned when the input has no lines.
var ErrEmptyText = errors.New("text is empty")

// Options controls how much text is read and the canvas geometry.
type Options struct {
	MaxLines int
	MaxChars int
	Width    int
	Margin   int
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		MaxLines: DefaultMaxLines,
		MaxChars: DefaultMaxChars,
		Width:    DefaultWidth,
		Margin:   DefaultMargin,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxLines <= 0 {
		o.MaxLines = d.MaxLines
	}
	if o.MaxChars <= 0 {
		o.MaxChars = d.MaxChars
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	return o
}

// Layout is the computed text placement of a cover.
type Layout struct {
	CharWidth    int
	CharHeight   int
	CharsPerLine int
	LineHeight   int
	Width        int
	Height       int
	Margin       int
	Lines        []string
}

// Build reads r and renders the cover image.
func Build(r io.Reader, opts Options) (*image.NRGBA, Layout, error) {
	opts = opts.withDefaults()

	lines, err := ReadLines(r, opts.MaxLines, opts.MaxChars)
	if err != nil {
		return nil, Layout{}, err
	}
	if len(lines) == 0 {
		return nil, Layout{}, ErrEmptyText
	}

	text := Truncate(strings.Join(lines, "\n"), opts.MaxChars)
	l := NewLayout(text, opts)
	return Render(l), l, nil
}

// ReadLines reads at most maxLines lines from r. A leading byte order mark
// selects UTF-8 or UTF-16; invalid UTF-8 sequences are dropped. Lines longer
// than needed to exceed maxChars runes are cut.
func ReadLines(r io.Reader, maxLines, maxChars int) ([]string, error) {
	br := bufio.NewReader(transform.NewReader(r, textunicode.BOMOverride(transform.Nop)))
	limit := (maxChars + 2) * utf8.UTFMax

	var lines []string
	for len(lines) < maxLines {
		line, err := readLine(br, limit)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read text: %w", err)
		}
		lines = append(lines, strings.ToValidUTF8(line, ""))
	}
	return lines, nil
}

// readLine returns the next line without its terminator, keeping at most
// limit bytes of it.
func readLine(br *bufio.Reader, limit int) (string, error) {
	var buf []byte
	read := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && read {
				return string(buf), nil
			}
			return "", err
		}
		read = true
		if room := limit - len(buf); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			buf = append(buf, chunk...)
		}
		if !isPrefix {
			return string(buf), nil
		}
	}
}

// Truncate keeps the first maxChars runes of text, trims trailing whitespace
// and appends "..." when text is longer than maxChars.
func Truncate(text string, maxChars int) string {
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return strings.TrimRightFunc(string(runes[:maxChars]), unicode.IsSpace) + ellipsis
}

// NewLayout measures the font and wraps text for the canvas width.
func NewLayout(text string, opts Options) Layout {
	opts = opts.withDefaults()
	face := basicfont.Face7x13

	charW := fallbackCharW
	if adv, ok := face.GlyphAdvance(referenceGlyph); ok && adv.Round() > 0 {
		charW = adv.Round()
	}
	charH := face.Metrics().Height.Ceil()
	if bounds, _, ok := face.GlyphBounds(referenceGlyph); ok {
		if h := (bounds.Max.Y - bounds.Min.Y).Ceil(); h > 0 {
			charH = h
		}
	}

	perLine := max(minCharsPerLine, (opts.Width-2*opts.Margin)/charW)
	lines := Wrap(text, perLine)
	lineH := charH + lineSpacing

	return Layout{
		CharWidth:    charW,
		CharHeight:   charH,
		CharsPerLine: perLine,
		LineHeight:   lineH,
		Width:        opts.Width,
		Height:       2*opts.Margin + lineH*max(1, len(lines)),
		Margin:       opts.Margin,
		Lines:        lines,
	}
}

// Wrap fills text into lines of at most width runes, breaking at whitespace.
// Line breaks in text count as plain spaces; words longer than width are
// split.
func Wrap(text string, width int) []string {
	flat := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
	flat = strings.TrimSpace(flat)

	var out []string
	for _, line := range strings.Split(wordwrap.WrapString(flat, uint(width)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, hardSplit(line, width)...)
	}
	return out
}

func hardSplit(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}
	var parts []string
	for len(runes) > width {
		parts = append(parts, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

// Render draws the layout in black on a white canvas.
func Render(l Layout) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, line := range l.Lines {
		top := l.Margin + i*l.LineHeight
		d.Dot = fixed.P(l.Margin, top+ascent)
		d.DrawString(line)
	}
	return img
}
