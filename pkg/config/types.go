// Package config provides configuration loading and validation for ctrlviz.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Force    SeriesConfig    `yaml:"force"`
	Joints   SeriesConfig    `yaml:"joints"`
	Pose     PoseConfig      `yaml:"pose"`
	Watch    WatchConfig     `yaml:"watch"`
	Viewer   ViewerConfig    `yaml:"viewer"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// Format is the document type a figure is saved as.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatEPS Format = "eps"
	FormatPNG Format = "png"
)

// SeriesConfig describes one time-series visualization: where the log
// lives, how its rows are laid out, and where the figure goes.
type SeriesConfig struct {
	// File is the controller log to read.
	File string `yaml:"file"`

	// Output is the document the figure is saved to. Empty disables saving.
	Output string `yaml:"output,omitempty"`

	// Format overrides the document type. Defaults to the Output extension.
	Format Format `yaml:"format,omitempty"`

	// Title is drawn above the panels.
	Title string `yaml:"title,omitempty"`

	// Width and Height are the document size in inches.
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`

	Layout Layout `yaml:"layout"`

	// Limits adds +limit/-limit reference lines taken from the header row.
	// Only meaningful when Layout.HeaderRows >= 1.
	Limits *LimitConfig `yaml:"limits,omitempty"`
}

// Layout is the row/column schema of a log file.
type Layout struct {
	// Columns is the number of signal columns read from every sample row.
	Columns int `yaml:"columns"`

	// HeaderRows are skipped at the top of the file. Row 0 holds limit
	// constants when limits are configured.
	HeaderRows int `yaml:"header_rows"`

	// TrailerRows are excluded at the bottom of the file.
	TrailerRows int `yaml:"trailer_rows"`

	// Units annotates the y axis.
	Units string `yaml:"units,omitempty"`

	// Signals describes each column in order. len(Signals) == Columns.
	Signals []SignalConfig `yaml:"signals"`
}

// SignalConfig is the presentation of one column.
type SignalConfig struct {
	Label string  `yaml:"label"`
	Color string  `yaml:"color"`
	Width float64 `yaml:"width,omitempty"`
}

// LimitConfig is the presentation of the limit reference lines.
type LimitConfig struct {
	MaxLabel string  `yaml:"max_label"`
	MaxColor string  `yaml:"max_color"`
	MinLabel string  `yaml:"min_label"`
	MinColor string  `yaml:"min_color"`
	Width    float64 `yaml:"width,omitempty"`
}

// PoseConfig describes the 3D pose/twist visualization.
type PoseConfig struct {
	MeasuredFile  string `yaml:"measured_file"`
	PredictedFile string `yaml:"predicted_file"`
	TwistFile     string `yaml:"twist_file"`

	// WatchFiles are the inputs whose changes trigger a refresh.
	// Defaults to the predicted pose file.
	WatchFiles []string `yaml:"watch_files,omitempty"`

	// Output is optional; the pose figure is only saved when set.
	Output string  `yaml:"output,omitempty"`
	Format Format  `yaml:"format,omitempty"`
	Size   float64 `yaml:"size,omitempty"` // inches, square

	AxisLength float64 `yaml:"axis_length,omitempty"`
	Elevation  float64 `yaml:"elevation,omitempty"` // degrees
	Azimuth    float64 `yaml:"azimuth,omitempty"`   // degrees
}

// RestartMode selects how a change is applied.
type RestartMode string

const (
	// RestartReload re-reads and re-renders inside the running process.
	RestartReload RestartMode = "reload"
	// RestartExec replaces the process image with a fresh invocation.
	RestartExec RestartMode = "exec"
)

// WatchConfig controls the change watcher.
type WatchConfig struct {
	// Debounce is the quiet period after the last write before a refresh.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	Restart RestartMode `yaml:"restart,omitempty"`
}

// ViewerConfig controls the interactive HTML view.
type ViewerConfig struct {
	// Addr serves the latest figure over HTTP when set (e.g. ":8080").
	Addr string `yaml:"addr,omitempty"`

	// HTML writes the interactive page next to the saved document.
	HTML bool `yaml:"html,omitempty"`

	// AssetsHost overrides where the echarts javascript is loaded from.
	AssetsHost string `yaml:"assets_host,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnError fires only when a refresh fails (default).
	WebhookTriggerOnError WebhookTrigger = "on_error"
	// WebhookTriggerAlways fires after every refresh.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that receives refresh summaries.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_error" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
