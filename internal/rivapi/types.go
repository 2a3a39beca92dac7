package rivapi

import "io"

// UploadResponse is returned by the upload endpoints once the service has
// decoded a study and cached its frames.
type UploadResponse struct {
	Message        string `json:"message"`
	NumberOfFrames int    `json:"number_of_frames"`
	DicomFilePath  string `json:"dicom_file_path"`
	CacheSource    string `json:"cache_source,omitempty"`
	// Error is set on a 200 response when the service accepted the file but
	// could not decode it (FDS/FDA on some builds).
	Error string `json:"error,omitempty"`
}

// ProbeResponse is the body of GET /api/test.
type ProbeResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Healthy reports whether the service described itself as healthy.
func (h HealthResponse) Healthy() bool {
	return h.Status == "healthy" || h.Status == "ok"
}

// Frame is one rendered frame as served by the service.
type Frame struct {
	Data        []byte
	ContentType string
}

// FilePart is one file in a multipart upload.
type FilePart struct {
	Name   string
	Reader io.Reader
}

// Scan types accepted by the E2E upload endpoint.
const (
	ScanTypeSLO = "SLO"
	ScanTypeOCT = "OCT"
)
