package pdfannotate

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TextDefaults are applied to text annotations that leave a field unset.
type TextDefaults struct {
	// FontSize in page-space points (default: 12)
	FontSize float64 `yaml:"font_size"`

	// FontFamily (default: Arial)
	FontFamily string `yaml:"font_family"`

	// Color of new text (default: #000000)
	Color Color `yaml:"color"`
}

func (d TextDefaults) fontSize(a Annotation) float64 {
	if a.FontSize > 0 {
		return a.FontSize
	}
	return d.FontSize
}

func (d TextDefaults) fontFamily(a Annotation) string {
	if a.FontFamily != "" {
		return a.FontFamily
	}
	return d.FontFamily
}

// ShapeDefaults control how strokes, shapes and highlights are drawn.
type ShapeDefaults struct {
	// Color of new strokes, shapes and highlights (default: #000000)
	Color Color `yaml:"color"`

	// HighlightFallback is used for highlights without a colour
	// (default: #FFFF00)
	HighlightFallback Color `yaml:"highlight_fallback"`

	// HighlightAlpha is the fill opacity of highlights (default: 0x40)
	HighlightAlpha uint8 `yaml:"highlight_alpha"`

	// StrokeWidth in pixels for strokes and shape outlines (default: 2)
	StrokeWidth float64 `yaml:"stroke_width"`
}

// InsertConfig controls the placement of inserted images and signatures.
// All values are pixels at the scale in effect when inserting.
type InsertConfig struct {
	// Offset of the top-left corner from the page origin (default: 60)
	Offset float64 `yaml:"offset"`

	// ImageMaxWidth and ImageMaxHeight bound inserted images
	// (default: 240x160)
	ImageMaxWidth  float64 `yaml:"image_max_width"`
	ImageMaxHeight float64 `yaml:"image_max_height"`

	// SignatureMaxWidth and SignatureMaxHeight bound inserted signatures
	// (default: 240x80)
	SignatureMaxWidth  float64 `yaml:"signature_max_width"`
	SignatureMaxHeight float64 `yaml:"signature_max_height"`

	// MinResize is the smallest width or height, in pixels, a resize
	// gesture may produce (default: 8)
	MinResize float64 `yaml:"min_resize"`
}

// ExportConfig configures the remote export service client.
type ExportConfig struct {
	// BaseURL of the export service (default: http://localhost:3000)
	BaseURL string `yaml:"base_url"`

	// Timeout for a single export request (default: 2m)
	Timeout time.Duration `yaml:"timeout"`

	// BreakerThreshold is the number of consecutive failures that opens
	// the circuit (default: 5)
	BreakerThreshold int `yaml:"breaker_threshold"`

	// BreakerCooldown is how long the circuit stays open (default: 30s)
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// Config controls editor behaviour.
type Config struct {
	Zoom      ZoomConfig      `yaml:"zoom"`
	HitTest   HitTestConfig   `yaml:"hit_test"`
	TextIndex TextIndexConfig `yaml:"text_index"`
	Text      TextDefaults    `yaml:"text"`
	Shapes    ShapeDefaults   `yaml:"shapes"`
	Insert    InsertConfig    `yaml:"insert"`
	Export    ExportConfig    `yaml:"export"`
	Log       LogConfig       `yaml:"log"`

	// HistoryLimit caps the number of undo entries; 0 keeps all
	// (default: 0)
	HistoryLimit int `yaml:"history_limit"`
}

// DefaultConfig returns the default editor configuration.
func DefaultConfig() Config {
	return Config{
		Zoom:      DefaultZoomConfig(),
		HitTest:   DefaultHitTestConfig(),
		TextIndex: DefaultTextIndexConfig(),
		Text: TextDefaults{
			FontSize:   12,
			FontFamily: "Arial",
			Color:      ColorBlack,
		},
		Shapes: ShapeDefaults{
			Color:             ColorBlack,
			HighlightFallback: ColorYellow,
			HighlightAlpha:    0x40,
			StrokeWidth:       2,
		},
		Insert: InsertConfig{
			Offset:             60,
			ImageMaxWidth:      240,
			ImageMaxHeight:     160,
			SignatureMaxWidth:  240,
			SignatureMaxHeight: 80,
			MinResize:          8,
		},
		Export: ExportConfig{
			BaseURL:          "http://localhost:3000",
			Timeout:          2 * time.Minute,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Log: DefaultLogConfig(),
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if _, err := ParseColor(string(config.Text.Color)); err != nil {
		return config, errors.Wrap(err, "text.color")
	}
	if _, err := ParseColor(string(config.Shapes.Color)); err != nil {
		return config, errors.Wrap(err, "shapes.color")
	}
	if err := config.Zoom.Validate(); err != nil {
		return config, errors.Wrap(err, "zoom")
	}
	return config, nil
}
