package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. An empty path yields the
// validated defaults.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults.
func Validate(cfg *Config) error {
	if err := validateSeries(&cfg.Force); err != nil {
		return fmt.Errorf("force: %w", err)
	}

	if err := validateSeries(&cfg.Joints); err != nil {
		return fmt.Errorf("joints: %w", err)
	}

	if err := validatePose(&cfg.Pose); err != nil {
		return fmt.Errorf("pose: %w", err)
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateSeries(s *SeriesConfig) error {
	if s.File == "" {
		return errors.New("file is required")
	}

	if err := validateLayout(&s.Layout); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	if s.Limits != nil {
		if s.Layout.HeaderRows < 1 {
			return errors.New("limits require header_rows >= 1 (row 0 holds the limit constants)")
		}
		if err := validateColor(s.Limits.MaxColor); err != nil {
			return fmt.Errorf("limits.max_color: %w", err)
		}
		if err := validateColor(s.Limits.MinColor); err != nil {
			return fmt.Errorf("limits.min_color: %w", err)
		}
		if s.Limits.Width <= 0 {
			s.Limits.Width = DefaultSignalWidth
		}
	}

	format, err := resolveFormat(s.Format, s.Output)
	if err != nil {
		return err
	}
	s.Format = format

	if s.Width <= 0 {
		s.Width = DefaultSeriesWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultSeriesHeight
	}

	return nil
}

func validateLayout(l *Layout) error {
	if l.Columns < 1 {
		return errors.New("columns must be >= 1")
	}
	if l.HeaderRows < 0 {
		return errors.New("header_rows must be >= 0")
	}
	if l.TrailerRows < 0 {
		return errors.New("trailer_rows must be >= 0")
	}
	if len(l.Signals) != l.Columns {
		return fmt.Errorf("signals has %d entries, but columns is %d", len(l.Signals), l.Columns)
	}

	for i := range l.Signals {
		sig := &l.Signals[i]
		if sig.Label == "" {
			return fmt.Errorf("signals[%d]: label is required", i)
		}
		if err := validateColor(sig.Color); err != nil {
			return fmt.Errorf("signals[%d] (%s): %w", i, sig.Label, err)
		}
		if sig.Width <= 0 {
			sig.Width = DefaultSignalWidth
		}
	}

	return nil
}

func validatePose(p *PoseConfig) error {
	if p.MeasuredFile == "" {
		return errors.New("measured_file is required")
	}
	if p.PredictedFile == "" {
		return errors.New("predicted_file is required")
	}
	if p.TwistFile == "" {
		return errors.New("twist_file is required")
	}

	if len(p.WatchFiles) == 0 {
		p.WatchFiles = []string{p.PredictedFile}
	}

	format, err := resolveFormat(p.Format, p.Output)
	if err != nil {
		return err
	}
	p.Format = format

	if p.Size <= 0 {
		p.Size = DefaultPoseSize
	}
	if p.AxisLength <= 0 {
		p.AxisLength = DefaultAxisLength
	}

	return nil
}

func validateWatch(w *WatchConfig) error {
	if w.Debounce < 0 {
		return errors.New("debounce must be >= 0")
	}

	switch w.Restart {
	case "":
		w.Restart = RestartReload
	case RestartReload, RestartExec:
		// Valid
	default:
		return fmt.Errorf("invalid restart %q (must be reload or exec)", w.Restart)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnError, WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be on_error, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnError
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// validateColor accepts any CSS color name.
func validateColor(name string) error {
	if name == "" {
		return errors.New("color is required")
	}
	if _, ok := colornames.Map[strings.ToLower(name)]; !ok {
		return fmt.Errorf("unknown color %q", name)
	}
	return nil
}

// resolveFormat returns the explicit format, or the one implied by the
// output file extension, defaulting to PDF.
func resolveFormat(f Format, output string) (Format, error) {
	if f == "" {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if ext == "" {
			return FormatPDF, nil
		}
		f = Format(ext)
	}

	switch f {
	case FormatPDF, FormatSVG, FormatEPS, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use pdf, svg, eps or png)", f)
	}
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}

func joinDir(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
