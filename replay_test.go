package pdfannotate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript_YAMLAndJSON(t *testing.T) {
	yamlScript, err := ParseScript([]byte(`
page: 2
scale: 1
steps:
  - action: tool
    tool: rectangle
  - {action: down, x: 10, y: 10}
  - {action: up, x: 50, y: 30}
`))
	require.NoError(t, err)

	jsonScript, err := ParseScript([]byte(`{"page": 2, "scale": 1, "steps": [
		{"action": "tool", "tool": "rectangle"},
		{"action": "down", "x": 10, "y": 10},
		{"action": "up", "x": 50, "y": 30}
	]}`))
	require.NoError(t, err)

	assert.Equal(t, yamlScript, jsonScript)
	assert.Len(t, yamlScript.Steps, 3)
}

func TestScript_Run(t *testing.T) {
	e := newTestEditor(t, nil)
	fonts, err := NewFontBook()
	require.NoError(t, err)

	imagePath := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(imagePath, testPNG(t, 20, 10), 0o644))

	script := Script{
		Page:  1,
		Scale: 1,
		Steps: []Step{
			{Action: StepDrawColor, Color: "#ff0000"},
			{Action: StepTool, Tool: "rectangle"},
			{Action: StepDown, X: 10, Y: 10},
			{Action: StepMove, X: 30, Y: 30},
			{Action: StepUp, X: 50, Y: 30},
			{Action: StepTool, Tool: "text"},
			{Action: StepDown, X: 100, Y: 100},
			{Action: StepType, Text: "Signed"},
			{Action: StepCommit},
			{Action: StepPage, Page: 2},
			{Action: StepImage, Path: imagePath},
			{Action: StepSignature, Text: "Jane"},
			{Action: StepUndo},
			{Action: StepRedo},
		},
	}
	require.NoError(t, script.Run(context.Background(), e, NewSignatureComposer(fonts)))

	page1 := e.Store().List(1)
	require.Len(t, page1, 2)
	assert.Equal(t, KindRectangle, page1[0].Type)
	assert.Equal(t, Color("#ff0000"), page1[0].Color)
	assert.Equal(t, "Signed", page1[1].Text)

	page2 := e.Store().List(2)
	require.Len(t, page2, 2)
	assert.Equal(t, KindImage, page2[0].Type)
	assert.Equal(t, KindSignature, page2[1].Type)
}

func TestScript_RunErrors(t *testing.T) {
	e := newTestEditor(t, nil)

	err := Script{Steps: []Step{{Action: "jump"}}}.Run(context.Background(), e, nil)
	assert.ErrorContains(t, err, "step 1")

	err = Script{Steps: []Step{{Action: StepType, Text: "x"}}}.Run(context.Background(), e, nil)
	assert.Error(t, err)

	err = Script{Steps: []Step{{Action: StepSignature, Text: "x"}}}.Run(context.Background(), e, nil)
	assert.Error(t, err)

	unloaded, err := NewEditor(DefaultConfig(), fixedMeasurer{}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, Script{}.Run(context.Background(), unloaded, nil), ErrNoDocument)
}
