package pdfannotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/pkg/errors"
)

// ApplyAnnotationsPath is the export service endpoint.
const ApplyAnnotationsPath = "/api/pdfbox/apply-annotations"

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 1024

// ExportError is returned when the export service answers with a
// non-2xx status.
type ExportError struct {
	StatusCode int
	Body       string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export service returned status %d: %s", e.StatusCode, e.Body)
}

// ExportRequest is the payload sent to the export service.
type ExportRequest struct {
	// File is the original PDF.
	File []byte
	// FileName is reported as the multipart file name.
	FileName string
	// Annotations of every page.
	Annotations []Annotation
	// Pages is the page count of the original document.
	Pages int
}

// MarshalAnnotations encodes annotations as the JSON array the export
// service expects. A nil slice encodes as [].
func MarshalAnnotations(annotations []Annotation) ([]byte, error) {
	if annotations == nil {
		annotations = []Annotation{}
	}
	data, err := json.Marshal(annotations)
	return data, errors.Wrap(err, "failed to encode annotations")
}

// UnmarshalAnnotations decodes a JSON array of annotations.
func UnmarshalAnnotations(data []byte) ([]Annotation, error) {
	var annotations []Annotation
	if err := json.Unmarshal(data, &annotations); err != nil {
		return nil, errors.Wrap(err, "failed to decode annotations")
	}
	return annotations, nil
}

// ExportClient sends documents to the export service. Requests pass
// through a circuit breaker and are never retried.
type ExportClient struct {
	config  ExportConfig
	client  *http.Client
	logger  *bolt.Logger
	breaker circuitbreaker.CircuitBreaker[[]byte]
}

// NewExportClient creates an export client. A nil httpClient gets one
// with the configured timeout.
func NewExportClient(config ExportConfig, httpClient *http.Client, logger *bolt.Logger) *ExportClient {
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	if config.BreakerThreshold <= 0 {
		config.BreakerThreshold = 5
	}
	if config.BreakerCooldown <= 0 {
		config.BreakerCooldown = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = discardLogger()
	}

	threshold := config.BreakerThreshold
	return &ExportClient{
		config: config,
		client: httpClient,
		logger: logger,
		breaker: circuitbreaker.New[[]byte](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    config.BreakerCooldown,
			Timeout:     config.BreakerCooldown,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- threshold is positive
			},
		}),
	}
}

// Export uploads the request and returns the produced PDF bytes.
func (c *ExportClient) Export(ctx context.Context, req ExportRequest) ([]byte, error) {
	if len(req.File) == 0 {
		return nil, ErrNoDocument
	}

	body, contentType, err := encodeExportForm(req)
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(c.config.BaseURL, "/") + ApplyAnnotationsPath

	start := time.Now()
	out, err := c.breaker.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create request")
		}
		httpReq.Header.Set("Content-Type", contentType)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return nil, errors.Wrap(err, "export service unavailable")
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &ExportError{StatusCode: resp.StatusCode, Body: string(msg)}
		}

		data, err := io.ReadAll(resp.Body)
		return data, errors.Wrap(err, "failed to read export response")
	})
	if err != nil {
		c.logger.Error().
			Str("url", url).
			Str("breaker", c.BreakerState()).
			Err(err).
			Msg("export failed")
		return nil, err
	}

	c.logger.Info().
		Int("annotations", len(req.Annotations)).
		Int("bytes", len(out)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("export complete")
	return out, nil
}

// BreakerState reports the circuit breaker state.
func (c *ExportClient) BreakerState() string {
	return c.breaker.State().String()
}

func encodeExportForm(req ExportRequest) ([]byte, string, error) {
	annotations, err := MarshalAnnotations(req.Annotations)
	if err != nil {
		return nil, "", err
	}

	name := req.FileName
	if name == "" {
		name = "document.pdf"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to create file part")
	}
	if _, err := part.Write(req.File); err != nil {
		return nil, "", errors.Wrap(err, "failed to write file part")
	}
	if err := w.WriteField("annotations", string(annotations)); err != nil {
		return nil, "", errors.Wrap(err, "failed to write annotations field")
	}
	if err := w.WriteField("pages", strconv.Itoa(req.Pages)); err != nil {
		return nil, "", errors.Wrap(err, "failed to write pages field")
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to finish form")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Export commits any pending text edit and sends the original file with
// every annotation to the export service. The store is not modified.
func (e *Editor) Export(ctx context.Context, client *ExportClient, file []byte, name string) ([]byte, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	e.CommitEdit()
	return client.Export(ctx, ExportRequest{
		File:        file,
		FileName:    name,
		Annotations: e.store.All(),
		Pages:       e.doc.PageCount(),
	})
}
