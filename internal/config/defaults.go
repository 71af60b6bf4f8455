package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Text.MaxLines == 0 {
		cfg.Text.MaxLines = 20
	}
	if cfg.Text.MaxChars == 0 {
		cfg.Text.MaxChars = 2000
	}
	if cfg.Text.Width == 0 {
		cfg.Text.Width = 1200
	}
	if cfg.Text.Margin == 0 {
		cfg.Text.Margin = 40
	}
	if cfg.PDF.DPI == 0 {
		cfg.PDF.DPI = 200
	}
	if cfg.PDF.Pdftoppm == "" {
		cfg.PDF.Pdftoppm = "pdftoppm"
	}
}
