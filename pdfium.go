package pdfannotate

import (
	"context"
	"image"
	"image/draw"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// PDFDocument is a source document opened with pdfium. It implements
// Document and Rasterizer. Calls are serialized because a pdfium instance
// is not safe for concurrent use.
type PDFDocument struct {
	instance pdfium.Pdfium

	mu        sync.Mutex
	doc       references.FPDF_DOCUMENT
	pageCount int
	sizes     map[int][2]float64
}

// OpenDocument loads PDF bytes. Any load failure is reported as
// ErrInvalidDocument.
func OpenDocument(instance pdfium.Pdfium, pdfBytes []byte) (*PDFDocument, error) {
	doc, err := instance.OpenDocument(&requests.OpenDocument{
		File: &pdfBytes,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDocument, "failed to open PDF document: %v", err)
	}

	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil || pageCount.PageCount < 1 {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
			Document: doc.Document,
		})
		return nil, errors.Wrap(ErrInvalidDocument, "document has no pages")
	}

	return &PDFDocument{
		instance:  instance,
		doc:       doc.Document,
		pageCount: pageCount.PageCount,
		sizes:     make(map[int][2]float64),
	}, nil
}

// OpenFile reads and loads a PDF file.
func OpenFile(instance pdfium.Pdfium, path string) (*PDFDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return OpenDocument(instance, data)
}

// Close releases the document.
func (d *PDFDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: d.doc,
	})
	return errors.Wrap(err, "failed to close PDF document")
}

// PageCount returns the number of pages.
func (d *PDFDocument) PageCount() int {
	return d.pageCount
}

// withPage loads a 1-based page for the duration of fn. d.mu must be held.
func (d *PDFDocument) withPage(page int, fn func(references.FPDF_PAGE) error) error {
	if page < 1 || page > d.pageCount {
		return errors.Wrapf(ErrPageOutOfRange, "page %d of %d", page, d.pageCount)
	}
	pageResp, err := d.instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: d.doc,
		Index:    page - 1,
	})
	if err != nil {
		return errors.Wrap(err, "failed to load page")
	}
	defer d.instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})
	return fn(pageResp.Page)
}

// PageSize returns the page dimensions in PDF points.
func (d *PDFDocument) PageSize(page int) (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if size, ok := d.sizes[page]; ok {
		return size[0], size[1], nil
	}

	var width, height float64
	err := d.withPage(page, func(p references.FPDF_PAGE) error {
		w, h, err := d.pageSize(p)
		width, height = w, h
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	d.sizes[page] = [2]float64{width, height}
	return width, height, nil
}

func (d *PDFDocument) pageSize(page references.FPDF_PAGE) (float64, float64, error) {
	pageWidth, err := d.instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to get page width")
	}
	pageHeight, err := d.instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to get page height")
	}
	return float64(pageWidth.PageWidth), float64(pageHeight.PageHeight), nil
}

// RasterizePage renders a page at 72*scale DPI onto an opaque white
// background.
func (d *PDFDocument) RasterizePage(ctx context.Context, page int, scale float64) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var out *image.RGBA
	err := d.withPage(page, func(p references.FPDF_PAGE) error {
		rendered, err := d.instance.RenderPageInDPI(&requests.RenderPageInDPI{
			DPI: int(math.Round(72 * scale)),
			Page: requests.Page{
				ByReference: &p,
			},
		})
		if err != nil {
			return errors.Wrap(err, "failed to render page")
		}
		defer rendered.Cleanup()

		src := rendered.Result.Image
		out = image.NewRGBA(src.Bounds())
		draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Over)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to rasterize page %d", page)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// pageChar is one character of the native text layer in PDF space
// (origin bottom-left).
type pageChar struct {
	text     rune
	left     float64
	right    float64
	bottom   float64
	top      float64
	fontSize float64
	angle    float32
}

// TextRuns extracts the native text of a page grouped into runs: chars
// on the same line with the same font size and no wide gap.
func (d *PDFDocument) TextRuns(ctx context.Context, page int) ([]TextRun, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var runs []TextRun
	err := d.withPage(page, func(p references.FPDF_PAGE) error {
		chars, err := d.extractChars(ctx, p)
		if err != nil {
			return err
		}
		runs = groupCharsIntoRuns(chars)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to extract text of page %d", page)
	}
	return runs, nil
}

func (d *PDFDocument) extractChars(ctx context.Context, page references.FPDF_PAGE) ([]pageChar, error) {
	textPage, err := d.instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer d.instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := d.instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	chars := make([]pageChar, 0, charCount.Count)
	for i := range charCount.Count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		unicodeRes, err := d.instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := d.instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		fontSize := 12.0
		if fs, err := d.instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{
			TextPage: textPage.TextPage,
			Index:    i,
		}); err == nil && fs.FontSize > 0 {
			fontSize = fs.FontSize
		}

		var angle float32
		if a, err := d.instance.FPDFText_GetCharAngle(&requests.FPDFText_GetCharAngle{
			TextPage: textPage.TextPage,
			Index:    i,
		}); err == nil {
			angle = a.CharAngle
		}

		chars = append(chars, pageChar{
			text:     rune(unicodeRes.Unicode),
			left:     charBox.Left,
			right:    charBox.Right,
			bottom:   charBox.Bottom,
			top:      charBox.Top,
			fontSize: fontSize,
			angle:    angle,
		})
	}
	return chars, nil
}

// groupCharsIntoRuns splits the char stream at line breaks, font size
// changes and horizontal gaps wider than 1.5em.
func groupCharsIntoRuns(chars []pageChar) []TextRun {
	var runs []TextRun
	var current []pageChar

	flush := func() {
		if run, ok := buildRun(current); ok {
			runs = append(runs, run)
		}
		current = nil
	}

	for _, c := range chars {
		if c.text == '\n' || c.text == '\r' {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			sameLine := math.Abs(c.bottom-prev.bottom) <= prev.fontSize*0.5 || c.text == ' ' || prev.text == ' '
			sameSize := math.Abs(c.fontSize-prev.fontSize) <= 0.5
			gap := c.left - prev.right
			if !sameLine || !sameSize || gap > prev.fontSize*1.5 || gap < -prev.fontSize {
				flush()
			}
		}
		current = append(current, c)
	}
	flush()
	return runs
}

// buildRun turns a group of chars into a TextRun whose transform encodes
// the font size, rotation and baseline origin.
func buildRun(chars []pageChar) (TextRun, bool) {
	var b strings.Builder
	left, right, bottom := math.Inf(1), math.Inf(-1), math.Inf(1)
	var first *pageChar
	for i := range chars {
		c := &chars[i]
		b.WriteString(expandLigature(c.text))
		if c.text == ' ' {
			continue
		}
		if first == nil {
			first = c
		}
		left = math.Min(left, c.left)
		right = math.Max(right, c.right)
		bottom = math.Min(bottom, c.bottom)
	}
	text := strings.TrimSpace(b.String())
	if text == "" || first == nil {
		return TextRun{}, false
	}

	// Glyph boxes are tight, so the lowest bottom sits on descenders;
	// the baseline is about 0.15em above it.
	size := first.fontSize
	baseline := bottom + size*0.15
	if isRotatedText(first.angle) {
		baseline = bottom
	}
	sin, cos := math.Sincos(float64(first.angle))
	return TextRun{
		Text:      text,
		Transform: [6]float64{cos * size, sin * size, -sin * size, cos * size, left, baseline},
		Width:     right - left,
	}, true
}

// isRotatedText checks if a character is rotated (not horizontal)
// angle is in radians (0 = horizontal, π/2 ≈ 1.57 = 90°, π ≈ 3.14 = 180°, 3π/2 ≈ 4.71 = 270°)
func isRotatedText(angle float32) bool {
	degrees := normalizeAngle(float64(angle) * 180.0 / math.Pi)

	// Allow 10 degree tolerance
	tolerance := 10.0
	return !(degrees < tolerance || degrees > 360-tolerance || (degrees > 180-tolerance && degrees < 180+tolerance))
}

// normalizeAngle normalizes an angle to [0, 360) range
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// ligatureMap maps ligature unicode codepoints to their expanded forms
var ligatureMap = map[rune]string{
	0xFB00: "ff",
	0xFB01: "fi",
	0xFB02: "fl",
	0xFB03: "ffi",
	0xFB04: "ffl",
	0xFB05: "ft",
	0xFB06: "st",
}

// expandLigature expands a ligature character into its component letters
func expandLigature(r rune) string {
	if expansion, ok := ligatureMap[r]; ok {
		return expansion
	}
	return string(r)
}
