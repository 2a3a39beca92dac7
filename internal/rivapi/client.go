package rivapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the set of remote operations the viewer depends on.
// It is implemented by *Client and can be faked in tests.
type Service interface {
	UploadStudy(ctx context.Context, name string, r io.Reader) (*UploadResponse, error)
	UploadE2E(ctx context.Context, name string, r io.Reader, scanType string) (*UploadResponse, error)
	FetchFrame(ctx context.Context, handle string, frame int) (*Frame, error)
	ConvertE2E(ctx context.Context, name string, r io.Reader) ([]byte, error)
	ExtractMetadata(ctx context.Context, files []FilePart) ([]byte, error)
	Probe(ctx context.Context) (*ProbeResponse, error)
	Health(ctx context.Context) (*HealthResponse, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the processing service over HTTP.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	userAgent    string
	logger       *slog.Logger
	newRequestID func() string
}

const (
	defaultAPIBind   = "127.0.0.1:8000"
	defaultUserAgent = "riv/0.1"
	defaultTimeout   = 120 * time.Second
	maxErrorBody     = 64 << 10
)

// Option adjusts a Client built by NewClient.
type Option func(*Client)

// WithTimeout bounds every request, uploads included. Non-positive values keep
// the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger requests are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:      base,
		http:         &http.Client{Timeout: defaultTimeout},
		userAgent:    defaultUserAgent,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL reports the service address requests are sent to.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// UploadStudy sends a DICOM (or FDS/FDA) file for decoding.
func (c *Client) UploadStudy(ctx context.Context, name string, r io.Reader) (*UploadResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return c.upload(ctx, "upload_image", "/api/upload_image", []FilePart{{Name: name, Reader: r}}, nil)
}

// UploadE2E sends an E2E container to be decoded as the given scan type.
func (c *Client) UploadE2E(ctx context.Context, name string, r io.Reader, scanType string) (*UploadResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	scanType = strings.ToUpper(strings.TrimSpace(scanType))
	if scanType != ScanTypeSLO && scanType != ScanTypeOCT {
		return nil, fmt.Errorf("scan type %q not supported", scanType)
	}
	fields := map[string]string{"type": scanType}
	return c.upload(ctx, "upload_e2e", "/api/upload_e2e", []FilePart{{Name: name, Reader: r}}, fields)
}

// FetchFrame retrieves one rendered frame of an uploaded study.
func (c *Client) FetchFrame(ctx context.Context, handle string, frame int) (*Frame, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(handle) == "" {
		return nil, fmt.Errorf("study handle required")
	}
	if frame < 0 {
		return nil, fmt.Errorf("frame %d out of range", frame)
	}
	values := url.Values{}
	values.Set("frame", strconv.Itoa(frame))
	values.Set("dicom_file_path", handle)
	rel := &url.URL{Path: "/api/view_dicom_png", RawQuery: values.Encode()}

	resp, err := c.send(ctx, "view_dicom_png", http.MethodGet, rel, nil, "", "image/*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "view_dicom_png", Err: fmt.Errorf("read frame: %w", err)}
	}
	return &Frame{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// ConvertE2E converts an E2E container to a zip of DICOM files.
func (c *Client) ConvertE2E(ctx context.Context, name string, r io.Reader) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return c.archive(ctx, "convert", "/api/convert", []FilePart{{Name: name, Reader: r}})
}

// ExtractMetadata sends one or more DICOM files and returns a zip of their
// metadata and pixel arrays.
func (c *Client) ExtractMetadata(ctx context.Context, files []FilePart) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one file required")
	}
	return c.archive(ctx, "dicom_to_mat_npy_zip", "/api/dicom_to_mat_npy_zip", files)
}

// Probe checks that the service answers.
func (c *Client) Probe(ctx context.Context) (*ProbeResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ProbeResponse
	if err := c.getJSON(ctx, "test", "/api/test", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Health retrieves the service health status.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload HealthResponse
	if err := c.getJSON(ctx, "health", "/health", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) upload(ctx context.Context, op, path string, parts []FilePart, fields map[string]string) (*UploadResponse, error) {
	body, contentType := multipartBody(parts, fields)
	resp, err := c.send(ctx, op, http.MethodPost, &url.URL{Path: path}, body, contentType, "application/json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Detail: payload.Error}
	}
	return &payload, nil
}

func (c *Client) archive(ctx context.Context, op, path string, parts []FilePart) ([]byte, error) {
	body, contentType := multipartBody(parts, nil)
	resp, err := c.send(ctx, op, http.MethodPost, &url.URL{Path: path}, body, contentType, "application/zip")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read archive: %w", err)}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, dest any) error {
	resp, err := c.send(ctx, op, http.MethodGet, &url.URL{Path: path}, nil, "", "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs one request. Any status of 400 or above is turned into an
// *APIError and the body is closed; otherwise the caller owns resp.Body.
func (c *Client) send(ctx context.Context, op, method string, rel *url.URL, body io.Reader, contentType, accept string) (*http.Response, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		if closer, ok := body.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := c.newRequestID()
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "request_id", requestID, "duration", time.Since(start), "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	c.logger.Debug("request complete", "op", op, "request_id", requestID, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Op: op, Status: resp.StatusCode, Detail: parseDetail(resp.StatusCode, raw)}
	}
	return resp, nil
}

// multipartBody streams parts through a pipe so large studies are never held
// in memory twice.
func multipartBody(parts []FilePart, fields map[string]string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeParts(mw, parts, fields)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, parts []FilePart, fields map[string]string) error {
	for _, part := range parts {
		w, err := mw.CreateFormFile("file", part.Name)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(w, part.Reader); err != nil {
			return fmt.Errorf("copy %s: %w", part.Name, err)
		}
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
