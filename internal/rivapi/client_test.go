package rivapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type received struct {
	mu        sync.Mutex
	files     map[string]string // part file name -> contents
	fields    map[string]string
	query     map[string]string
	requestID string
	userAgent string
}

type capture struct {
	files, fields, query map[string]string
	requestID, userAgent string
}

func (r *received) snapshot() capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return capture{files: r.files, fields: r.fields, query: r.query, requestID: r.requestID, userAgent: r.userAgent}
}

// fakeService mimics the processing service routes the client uses.
func fakeService(t *testing.T, got *received) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			got.mu.Lock()
			got.requestID = req.Header.Get("X-Request-ID")
			got.userAgent = req.Header.Get("User-Agent")
			got.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})

	readForm := func(w http.ResponseWriter, req *http.Request) bool {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return false
		}
		got.mu.Lock()
		defer got.mu.Unlock()
		got.files = map[string]string{}
		for _, fh := range req.MultipartForm.File["file"] {
			f, err := fh.Open()
			if err != nil {
				t.Errorf("open part: %v", err)
				continue
			}
			data, _ := io.ReadAll(f)
			_ = f.Close()
			got.files[fh.Filename] = string(data)
		}
		got.fields = map[string]string{}
		for k, v := range req.MultipartForm.Value {
			got.fields[k] = v[0]
		}
		return true
	}
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/api/test", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Backend connection successful!"})
	})
	r.Post("/api/upload_image", func(w http.ResponseWriter, req *http.Request) {
		if !readForm(w, req) {
			return
		}
		for name := range got.snapshot().files {
			if strings.HasSuffix(name, ".fds") {
				writeJSON(w, http.StatusOK, map[string]any{"error": "FDS/FDA not supported.", "number_of_frames": 0, "dicom_file_path": "k"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "File uploaded successfully.", "number_of_frames": 50, "dicom_file_path": "h1"})
	})
	r.Post("/api/upload_e2e", func(w http.ResponseWriter, req *http.Request) {
		if !readForm(w, req) {
			return
		}
		if got.snapshot().fields["type"] == ScanTypeSLO {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": map[string]string{"message": "no SLO data in file"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"number_of_frames": 97, "dicom_file_path": "e2e-key"})
	})
	r.Get("/api/view_dicom_png", func(w http.ResponseWriter, req *http.Request) {
		got.mu.Lock()
		got.query = map[string]string{
			"frame":           req.URL.Query().Get("frame"),
			"dicom_file_path": req.URL.Query().Get("dicom_file_path"),
		}
		got.mu.Unlock()
		if req.URL.Query().Get("frame") == "99" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Frame not found."})
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	})
	r.Post("/api/convert", func(w http.ResponseWriter, req *http.Request) {
		if !readForm(w, req) {
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK-convert"))
	})
	r.Post("/api/dicom_to_mat_npy_zip", func(w http.ResponseWriter, req *http.Request) {
		if !readForm(w, req) {
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK-extract"))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(srv.URL, WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.newRequestID = func() string { return "req-1" }
	return c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != defaultAPIBind {
		t.Fatalf("parseBaseURL(\"\") = %q, want http://%s", u.String(), defaultAPIBind)
	}

	u, err = parseBaseURL("https://viewer.local:9000/api?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "https://viewer.local:9000" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_UploadStudy(t *testing.T) {
	var got received
	c := newTestClient(t, fakeService(t, &got))

	resp, err := c.UploadStudy(testContext(t), "scan1.dcm", strings.NewReader("DICM"))
	if err != nil {
		t.Fatalf("UploadStudy returned error: %v", err)
	}
	if resp.NumberOfFrames != 50 || resp.DicomFilePath != "h1" {
		t.Fatalf("UploadStudy = %+v, want 50 frames at h1", resp)
	}
	seen := got.snapshot()
	if seen.files["scan1.dcm"] != "DICM" {
		t.Fatalf("uploaded parts = %v, want scan1.dcm=DICM", seen.files)
	}
	if seen.requestID != "req-1" {
		t.Fatalf("X-Request-ID = %q, want req-1", seen.requestID)
	}
	if seen.userAgent != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", seen.userAgent, defaultUserAgent)
	}
}

func TestClient_UploadStudyErrorField(t *testing.T) {
	var got received
	c := newTestClient(t, fakeService(t, &got))

	_, err := c.UploadStudy(testContext(t), "eye.fds", strings.NewReader("FDS"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("UploadStudy error = %v, want *APIError", err)
	}
	if apiErr.Detail != "FDS/FDA not supported." {
		t.Fatalf("Detail = %q", apiErr.Detail)
	}
}

func TestClient_UploadE2E(t *testing.T) {
	var got received
	c := newTestClient(t, fakeService(t, &got))

	resp, err := c.UploadE2E(testContext(t), "scan.e2e", strings.NewReader("E2E"), "oct")
	if err != nil {
		t.Fatalf("UploadE2E returned error: %v", err)
	}
	if resp.NumberOfFrames != 97 || resp.DicomFilePath != "e2e-key" {
		t.Fatalf("UploadE2E = %+v", resp)
	}
	if typ := got.snapshot().fields["type"]; typ != ScanTypeOCT {
		t.Fatalf("type field = %q, want OCT", typ)
	}

	_, err = c.UploadE2E(testContext(t), "scan.e2e", strings.NewReader("E2E"), "SLO")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("UploadE2E(SLO) error = %v, want 500 APIError", err)
	}
	if Message(err) != "no SLO data in file" {
		t.Fatalf("Message = %q, want detail message", Message(err))
	}

	if _, err := c.UploadE2E(testContext(t), "scan.e2e", strings.NewReader(""), "fundus"); err == nil {
		t.Fatalf("UploadE2E accepted unknown scan type")
	}
}

func TestClient_FetchFrame(t *testing.T) {
	var got received
	c := newTestClient(t, fakeService(t, &got))

	frame, err := c.FetchFrame(testContext(t), "dir/scan 1.dcm", 7)
	if err != nil {
		t.Fatalf("FetchFrame returned error: %v", err)
	}
	if string(frame.Data) != "jpeg-bytes" || frame.ContentType != "image/jpeg" {
		t.Fatalf("FetchFrame = %q (%s)", frame.Data, frame.ContentType)
	}
	if q := got.snapshot().query; q["frame"] != "7" || q["dicom_file_path"] != "dir/scan 1.dcm" {
		t.Fatalf("query = %v", q)
	}

	_, err = c.FetchFrame(testContext(t), "h1", 99)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Detail != "Frame not found." {
		t.Fatalf("FetchFrame(99) error = %#v", err)
	}

	if _, err := c.FetchFrame(testContext(t), "", 0); err == nil {
		t.Fatalf("FetchFrame accepted empty handle")
	}
}

func TestClient_Archives(t *testing.T) {
	var got received
	c := newTestClient(t, fakeService(t, &got))

	data, err := c.ConvertE2E(testContext(t), "scan.e2e", strings.NewReader("E2E"))
	if err != nil || string(data) != "PK-convert" {
		t.Fatalf("ConvertE2E = %q, %v", data, err)
	}

	data, err = c.ExtractMetadata(testContext(t), []FilePart{
		{Name: "a.dcm", Reader: strings.NewReader("A")},
		{Name: "b.dcm", Reader: strings.NewReader("B")},
	})
	if err != nil || string(data) != "PK-extract" {
		t.Fatalf("ExtractMetadata = %q, %v", data, err)
	}
	if files := got.snapshot().files; len(files) != 2 || files["b.dcm"] != "B" {
		t.Fatalf("extract parts = %v", files)
	}

	if _, err := c.ExtractMetadata(testContext(t), nil); err == nil {
		t.Fatalf("ExtractMetadata accepted no files")
	}
}

func TestClient_ProbeAndHealth(t *testing.T) {
	var got received
	c := newTestClient(t, fakeService(t, &got))

	probe, err := c.Probe(testContext(t))
	if err != nil || probe.Message != "Backend connection successful!" {
		t.Fatalf("Probe = %+v, %v", probe, err)
	}
	health, err := c.Health(testContext(t))
	if err != nil || !health.Healthy() {
		t.Fatalf("Health = %+v, %v", health, err)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := NewClient(addr, WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Probe(testContext(t))
	var tErr *TransportError
	if !errors.As(err, &tErr) || !tErr.Transport() {
		t.Fatalf("Probe error = %v, want *TransportError", err)
	}
	if !strings.HasPrefix(Message(err), "processing service unreachable") {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	if _, err := c.Probe(context.Background()); err == nil || err.Error() != "client is nil" {
		t.Fatalf("Probe on nil client = %v", err)
	}
	if c.BaseURL() != "" {
		t.Fatalf("BaseURL on nil client = %q", c.BaseURL())
	}
}
