package viewer

import (
	"errors"
	"testing"
)

type serviceDetail struct{ detail string }

func (e serviceDetail) Error() string       { return "api upload_image returned status 400: " + e.detail }
func (e serviceDetail) UserMessage() string { return e.detail }

func TestFailure(t *testing.T) {
	plain := errors.New("boom")
	tests := []struct {
		name     string
		kind     Kind
		cause    error
		wantKind Kind
		wantMsg  string
	}{
		{name: "nil cause", kind: KindUploadFailed, wantKind: KindUploadFailed, wantMsg: "upload failed"},
		{name: "plain", kind: KindRenderFailed, cause: plain, wantKind: KindRenderFailed, wantMsg: "boom"},
		{name: "transport", kind: KindUploadFailed, cause: connRefused{}, wantKind: KindTransportError, wantMsg: connRefused{}.Error()},
		{name: "service detail", kind: KindClassificationFailed, cause: serviceDetail{"Unsupported file format"}, wantKind: KindClassificationFailed, wantMsg: "Unsupported file format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Failure(tt.kind, ViewportTwo, tt.cause)
			if err.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", err.Kind, tt.wantKind)
			}
			if err.Message != tt.wantMsg {
				t.Fatalf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Viewport != ViewportTwo {
				t.Fatalf("Viewport = %d, want %d", err.Viewport, ViewportTwo)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Fatalf("errors.Is(err, cause) = false")
			}
		})
	}
}

func TestFailureKeepsExistingError(t *testing.T) {
	orig := &Error{Kind: KindUnsupportedFileType, Message: "nope"}
	if got := Failure(KindUploadFailed, ViewportOne, orig); got != orig {
		t.Fatalf("Failure rewrapped an *Error: %v", got)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindRenderFailed, Viewport: ViewportOne, Message: "frame 3 missing"}
	if got, want := err.Error(), "render failed (viewport 1): frame 3 missing"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	bare := &Error{Kind: KindUnsupportedFileType}
	if got, want := bare.Error(), "unsupported file type"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("x")) != 0 {
		t.Fatalf("KindOf(plain) != 0")
	}
	wrapped := errors.Join(errors.New("ctx"), &Error{Kind: KindTransportError})
	if got := KindOf(wrapped); got != KindTransportError {
		t.Fatalf("KindOf(wrapped) = %v, want %v", got, KindTransportError)
	}
}
