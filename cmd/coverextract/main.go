package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuanying/coverextract/internal/config"
	"github.com/yuanying/coverextract/internal/extractor"
	"github.com/yuanying/coverextract/internal/pdfcover"
	"github.com/yuanying/coverextract/internal/textcover"
)

type cliOptions struct {
	Paths    []string
	TypeHint string
	Config   *config.Config
	Logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverextract [flags] <file>...",
		Short: "Extract cover images from PDF, EPUB and TXT files",
		Long: `coverextract writes a cover image next to each input file.

PDF files are rendered from their first page, EPUB files yield the cover
image declared in their package document, and TXT files are turned into a
PNG showing their first lines.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.String("type", "", "Input type for files with an unrecognized extension (pdf, epub, txt)")
	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.Int("max-lines", textcover.DefaultMaxLines, "Maximum lines read from TXT files")
	flags.Int("max-chars", textcover.DefaultMaxChars, "Maximum characters rendered on TXT covers")
	flags.Int("dpi", pdfcover.DefaultDPI, "Resolution used to render PDF pages")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides --log-level)")

	return cmd
}

func readCLIOptions(cmd *cobra.Command, args []string) (cliOptions, error) {
	flags := cmd.Flags()

	typeHint, _ := flags.GetString("type")
	if typeHint != "" {
		if _, err := extractor.ParseKind(typeHint); err != nil {
			return cliOptions{}, fmt.Errorf("invalid --type %q: must be pdf, epub, or txt", typeHint)
		}
	}

	logLevel, _ := flags.GetString("log-level")
	if _, ok := parseLogLevel(logLevel); !ok {
		return cliOptions{}, fmt.Errorf("invalid --log-level %q: must be debug, info, warn, or error", logLevel)
	}
	logFormat, _ := flags.GetString("log-format")
	if f := strings.ToLower(logFormat); f != "text" && f != "json" {
		return cliOptions{}, fmt.Errorf("invalid --log-format %q: must be text or json", logFormat)
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		logLevel = "debug"
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return cliOptions{}, err
	}

	if flags.Changed("max-lines") {
		v, _ := flags.GetInt("max-lines")
		if v <= 0 {
			return cliOptions{}, fmt.Errorf("invalid --max-lines %d: must be positive", v)
		}
		cfg.Text.MaxLines = v
	}
	if flags.Changed("max-chars") {
		v, _ := flags.GetInt("max-chars")
		if v <= 0 {
			return cliOptions{}, fmt.Errorf("invalid --max-chars %d: must be positive", v)
		}
		cfg.Text.MaxChars = v
	}
	if flags.Changed("dpi") {
		v, _ := flags.GetInt("dpi")
		if v <= 0 {
			return cliOptions{}, fmt.Errorf("invalid --dpi %d: must be positive", v)
		}
		cfg.PDF.DPI = v
	}

	return cliOptions{
		Paths:    args,
		TypeHint: typeHint,
		Config:   cfg,
		Logger:   buildLogger(cmd.ErrOrStderr(), logLevel, logFormat),
	}, nil
}

func run(ctx context.Context, out io.Writer, opts cliOptions) error {
	cfg := opts.Config
	poppler := pdfcover.Poppler{
		Binary:  cfg.PDF.Pdftoppm,
		DPI:     cfg.PDF.DPI,
		Timeout: cfg.PDF.Timeout,
	}
	if needsRasterizer(opts.Paths, opts.TypeHint) && !poppler.Enabled() {
		opts.Logger.Warn("pdf rasterizer not found; PDF inputs will fail", "binary", cfg.PDF.Pdftoppm)
	}

	p := extractor.NewPipeline(extractor.Options{
		TypeHint: opts.TypeHint,
		Text: textcover.Options{
			MaxLines: cfg.Text.MaxLines,
			MaxChars: cfg.Text.MaxChars,
			Width:    cfg.Text.Width,
			Margin:   cfg.Text.Margin,
		},
	}, out, opts.Logger, poppler)

	return p.Run(ctx, opts.Paths)
}

func needsRasterizer(paths []string, hint string) bool {
	for _, path := range paths {
		if k, err := extractor.Classify(path, hint); err == nil && k == extractor.KindPDF {
			return true
		}
	}
	return false
}

func parseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func buildLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, _ := parseLogLevel(level)
	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
