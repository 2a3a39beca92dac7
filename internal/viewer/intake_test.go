package viewer

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Route
	}{
		{"scan1.dcm", RouteDirectDicom},
		{"SCAN1.DCM", RouteDirectDicom},
		{"a.e2e", RouteE2EPending},
		{"a.E2E", RouteE2EPending},
		{"/studies/2024/eye.E2e", RouteE2EPending},
		{"fundus.fds", RouteDirectDicom},
		{"fundus.FDA", RouteDirectDicom},
		{"archive.e2e.dcm", RouteDirectDicom},
		{" padded.dcm ", RouteDirectDicom},
	}
	for _, tt := range tests {
		got, err := Classify(tt.name)
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	upper, _ := Classify("a.E2E")
	lower, _ := Classify("a.e2e")
	if upper != lower || upper != RouteE2EPending {
		t.Fatalf("Classify(a.E2E) = %v, Classify(a.e2e) = %v, want both %v", upper, lower, RouteE2EPending)
	}
}

func TestClassifyUnsupported(t *testing.T) {
	tests := []struct {
		name    string
		wantMsg string
	}{
		{name: "notes.txt", wantMsg: `"notes.txt" is not a DICOM or E2E file`},
		{name: "scan.dmc", wantMsg: `"scan.dmc" is not a DICOM or E2E file (did you mean .dcm?)`},
		{name: "scan.e2", wantMsg: `"scan.e2" is not a DICOM or E2E file (did you mean .e2e?)`},
		{name: "README", wantMsg: `"README" has no file extension`},
	}
	for _, tt := range tests {
		route, err := Classify(tt.name)
		if err == nil {
			t.Fatalf("Classify(%q) = %v, want error", tt.name, route)
		}
		var ve *Error
		if !errors.As(err, &ve) {
			t.Fatalf("Classify(%q) error type = %T, want *Error", tt.name, err)
		}
		if ve.Kind != KindUnsupportedFileType {
			t.Fatalf("Classify(%q) kind = %v, want %v", tt.name, ve.Kind, KindUnsupportedFileType)
		}
		if ve.Message != tt.wantMsg {
			t.Fatalf("Classify(%q) message = %q, want %q", tt.name, ve.Message, tt.wantMsg)
		}
	}
}

func TestRouteString(t *testing.T) {
	if RouteDirectDicom.String() != "direct" || RouteE2EPending.String() != "e2e" || Route(0).String() != "none" {
		t.Fatalf("unexpected route names: %s %s %s", RouteDirectDicom, RouteE2EPending, Route(0))
	}
}
