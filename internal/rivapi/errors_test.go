package rivapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", 500, `{"detail":"Error processing DICOM file: bad header"}`, "Error processing DICOM file: bad header"},
		{"object detail", 500, `{"detail":{"message":"no OCT data","code":3}}`, "no OCT data"},
		{"validation list", 422, `{"detail":[{"loc":["query","frame"],"msg":"field required"},{"msg":"value is not a valid integer"}]}`, "field required; value is not a valid integer"},
		{"error field", 400, `{"error":"FDS/FDA not supported."}`, "FDS/FDA not supported."},
		{"plain text", 502, "upstream timed out\n", "upstream timed out"},
		{"html page", 502, "<html><body>Bad Gateway</body></html>", http.StatusText(502)},
		{"empty", 404, "", http.StatusText(404)},
		{"null detail", 500, `{"detail":null}`, http.StatusText(500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseDetail(tt.status, []byte(tt.body)); got != tt.want {
				t.Fatalf("parseDetail = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	apiErr := &APIError{Op: "convert", Status: 500, Detail: "conversion failed"}
	if got := Message(fmt.Errorf("convert: %w", apiErr)); got != "conversion failed" {
		t.Fatalf("Message(api) = %q", got)
	}
	if got := Message(&APIError{Op: "test", Status: 503}); got != "api test returned status 503" {
		t.Fatalf("Message(api no detail) = %q", got)
	}
	if got := Message(errors.New("decode response: EOF")); got != "decode response: EOF" {
		t.Fatalf("Message(plain) = %q", got)
	}
	if Message(nil) != "" {
		t.Fatalf("Message(nil) not empty")
	}
}
