package pdfannotate

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// EncodeDataURL wraps raw bytes in a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its media type and bytes.
func DecodeDataURL(url string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, errors.Wrap(ErrUnsupportedImage, "not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.Wrap(ErrUnsupportedImage, "data URL has no payload")
	}
	mime, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return "", nil, errors.Wrapf(ErrUnsupportedImage, "data URL encoding %q", encoding)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to decode data URL payload")
	}
	return mime, data, nil
}

// imageSize reads the pixel dimensions and format of an encoded image.
func imageSize(data []byte) (w, h int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", errors.Wrap(ErrUnsupportedImage, err.Error())
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, "", errors.Wrap(ErrUnsupportedImage, "image has no pixels")
	}
	return cfg.Width, cfg.Height, format, nil
}

// decodeImagePayload decodes the data URL of an image or signature.
func decodeImagePayload(url string) (image.Image, error) {
	_, data, err := DecodeDataURL(url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrUnsupportedImage, err.Error())
	}
	return img, nil
}

// InsertImage adds an image annotation from encoded image bytes. It is
// placed near the top-left of the current page, fitted within the
// configured box, selected, and the select tool is activated.
func (e *Editor) InsertImage(data []byte) (Annotation, Effect, error) {
	if e.doc == nil {
		return Annotation{}, 0, ErrNoDocument
	}
	w, h, format, err := imageSize(data)
	if err != nil {
		return Annotation{}, 0, err
	}
	a, err := e.insertRaster(KindImage, EncodeDataURL("image/"+format, data), w, h,
		e.config.Insert.ImageMaxWidth, e.config.Insert.ImageMaxHeight)
	if err != nil {
		return Annotation{}, 0, err
	}
	e.selected = a.ID
	e.tool = ToolSelect
	return a, EffectRedraw, nil
}

// InsertSignature adds a signature annotation from a data URL produced
// by the signature composer. Typed signatures keep their canvas size;
// drawn ones are fitted within the configured signature box.
func (e *Editor) InsertSignature(dataURL string, source SignatureSource) (Annotation, Effect, error) {
	if e.doc == nil {
		return Annotation{}, 0, ErrNoDocument
	}
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return Annotation{}, 0, err
	}
	w, h, _, err := imageSize(data)
	if err != nil {
		return Annotation{}, 0, err
	}
	maxW, maxH := e.config.Insert.SignatureMaxWidth, e.config.Insert.SignatureMaxHeight
	if source == SignatureTyped {
		maxW, maxH = float64(w), float64(h)
	}
	a, err := e.insertRaster(KindSignature, dataURL, w, h, maxW, maxH)
	if err != nil {
		return Annotation{}, 0, err
	}
	return a, EffectRedraw, nil
}

// insertRaster fits a w x h pixel raster within maxW x maxH pixels at the
// current scale and stores it in page space.
func (e *Editor) insertRaster(kind Kind, dataURL string, w, h int, maxW, maxH float64) (Annotation, error) {
	e.CommitEdit()
	e.cancelGesture()

	fw, fh := fitWithin(float64(w), float64(h), maxW, maxH)
	vp := e.Viewport()
	offset := vp.ToPage(e.config.Insert.Offset)
	a := Annotation{
		ID:        NewID(),
		Type:      kind,
		Page:      e.page,
		X:         offset,
		Y:         offset,
		Width:     vp.ToPage(fw),
		Height:    vp.ToPage(fh),
		ImageData: dataURL,
	}
	if err := e.store.Add(a); err != nil {
		return Annotation{}, errors.Wrapf(err, "failed to insert %s", kind)
	}
	e.commit()
	e.logger.Info().Str("id", a.ID).Str("type", string(kind)).Int("width", w).Int("height", h).Msg("raster inserted")
	return a, nil
}
