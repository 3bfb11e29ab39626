package pdfannotate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
zoom:
  default: 2
  max: 4
text:
  font_size: 14
  color: "#333"
export:
  base_url: http://export.internal:8080
  timeout: 30s
history_limit: 50
log:
  level: debug
  format: json
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2.0, config.Zoom.Default)
	assert.Equal(t, 4.0, config.Zoom.Max)
	assert.Equal(t, 0.5, config.Zoom.Min)
	assert.Equal(t, 0.25, config.Zoom.Step)
	assert.Equal(t, 14.0, config.Text.FontSize)
	assert.Equal(t, "Arial", config.Text.FontFamily)
	assert.Equal(t, "http://export.internal:8080", config.Export.BaseURL)
	assert.Equal(t, 30*time.Second, config.Export.Timeout)
	assert.Equal(t, 5, config.Export.BreakerThreshold)
	assert.Equal(t, 50, config.HistoryLimit)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, 10.0, config.HitTest.StrokeRadius)
	assert.Equal(t, 240.0, config.Insert.ImageMaxWidth)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "zoom: [1, 2"},
		{"bad colour", "shapes:\n  color: purple\n"},
		{"inverted zoom", "zoom:\n  min: 3\n  max: 1\n"},
		{"zero default zoom", "zoom:\n  default: 0\n"},
		{"default zoom above max", "zoom:\n  default: 4\n"},
		{"zero zoom step", "zoom:\n  step: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Str("page", "1").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), `"page"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("bogus"))
	assert.NotEqual(t, parseLevel("debug"), parseLevel("error"))
}

func TestNewEditor_ClampsDefaultZoom(t *testing.T) {
	config := DefaultConfig()
	config.Zoom.Default = 0

	e, err := NewEditor(config, fixedMeasurer{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, e.Scale())

	require.NoError(t, e.Load(context.Background(), newFakeDocument(1)))
	e.SetScale(context.Background(), -1)
	assert.Equal(t, 0.5, e.Scale())

	e.SetTool(ToolRectangle)
	drag(e, Point{X: 10, Y: 10}, Point{X: 30, Y: 20})
	require.Equal(t, 1, e.Store().Len())
	a := e.Annotations()[0]
	assert.Equal(t, Rect{X0: 20, Y0: 20, X1: 60, Y1: 40}, a.Box())

	_, err = MarshalAnnotations(e.Annotations())
	assert.NoError(t, err)
}
