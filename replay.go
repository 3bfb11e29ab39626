package pdfannotate

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Step actions understood by Script.Run.
const (
	StepTool       = "tool"
	StepDown       = "down"
	StepMove       = "move"
	StepUp         = "up"
	StepCancel     = "cancel"
	StepType       = "type"
	StepCommit     = "commit"
	StepEscape     = "escape"
	StepUndo       = "undo"
	StepRedo       = "redo"
	StepClear      = "clear"
	StepPage       = "page"
	StepScale      = "scale"
	StepZoomIn     = "zoom_in"
	StepZoomOut    = "zoom_out"
	StepTextColor  = "text_color"
	StepDrawColor  = "draw_color"
	StepImage      = "image"
	StepSignature  = "signature"
	StepDeselect   = "deselect"
	StepSelectByID = "select"
)

// Step is one recorded user action. Pointer coordinates are in pixels
// relative to the rendered page.
type Step struct {
	Action string  `yaml:"action"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	Tool   string  `yaml:"tool,omitempty"`
	Text   string  `yaml:"text,omitempty"`
	Page   int     `yaml:"page,omitempty"`
	Scale  float64 `yaml:"scale,omitempty"`
	Color  string  `yaml:"color,omitempty"`
	ID     string  `yaml:"id,omitempty"`

	// Path of an image file for image steps.
	Path string `yaml:"path,omitempty"`

	// Strokes of a drawn signature; Text is used for typed ones.
	Strokes [][]Point `yaml:"strokes,omitempty"`
}

// Script is a sequence of steps replayed against an editor. JSON scripts
// are accepted since they are valid YAML.
type Script struct {
	Page  int     `yaml:"page"`
	Scale float64 `yaml:"scale"`
	Steps []Step  `yaml:"steps"`
}

// LoadScript reads a script file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, errors.Wrapf(err, "failed to read script %s", path)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML or JSON script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, errors.Wrap(err, "failed to parse script")
	}
	return s, nil
}

// Run replays the script. The editor must have a document loaded.
// Signature steps need a composer; it may be nil otherwise.
func (s Script) Run(ctx context.Context, e *Editor, composer *SignatureComposer) error {
	if !e.Loaded() {
		return ErrNoDocument
	}
	if s.Page > 0 {
		if _, err := e.SetPage(ctx, s.Page); err != nil {
			return err
		}
	}
	if s.Scale > 0 {
		e.SetScale(ctx, s.Scale)
	}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.apply(ctx, e, composer); err != nil {
			return errors.Wrapf(err, "step %d (%s)", i+1, step.Action)
		}
	}
	return nil
}

func (st Step) apply(ctx context.Context, e *Editor, composer *SignatureComposer) error {
	pt := Point{X: st.X, Y: st.Y}
	switch st.Action {
	case StepTool:
		t, err := ParseTool(st.Tool)
		if err != nil {
			return err
		}
		e.SetTool(t)
	case StepDown:
		e.PointerDown(pt)
	case StepMove:
		e.PointerMove(pt)
	case StepUp:
		e.PointerUp(pt)
	case StepCancel:
		e.PointerCancel()
	case StepType:
		if !e.EditText(st.Text) {
			return errors.New("no text edit in progress")
		}
	case StepCommit:
		e.CommitEdit()
	case StepEscape:
		e.CancelEdit()
	case StepUndo:
		e.Undo()
	case StepRedo:
		e.Redo()
	case StepClear:
		e.ClearAll()
	case StepPage:
		_, err := e.SetPage(ctx, st.Page)
		return err
	case StepScale:
		e.SetScale(ctx, st.Scale)
	case StepZoomIn:
		e.ZoomIn(ctx)
	case StepZoomOut:
		e.ZoomOut(ctx)
	case StepTextColor:
		return e.SetTextColor(Color(st.Color))
	case StepDrawColor:
		return e.SetDrawColor(Color(st.Color))
	case StepSelectByID:
		_, err := e.Select(st.ID)
		return err
	case StepDeselect:
		e.ClearSelection()
	case StepImage:
		data, err := os.ReadFile(st.Path)
		if err != nil {
			return errors.Wrapf(err, "failed to read image %s", st.Path)
		}
		_, _, err = e.InsertImage(data)
		return err
	case StepSignature:
		if composer == nil {
			return errors.New("signature step needs a composer")
		}
		var url string
		var err error
		source := SignatureTyped
		if len(st.Strokes) > 0 {
			source = SignatureDrawn
			url, err = composer.Drawn(st.Strokes)
		} else {
			url, err = composer.Typed(st.Text, "")
		}
		if err != nil {
			return err
		}
		_, _, err = e.InsertSignature(url, source)
		return err
	default:
		return errors.Errorf("unknown action %q", st.Action)
	}
	return nil
}
