// Package rivapi provides an HTTP client for the retinal image processing service.
//
// # Overview
//
// The processing service decodes DICOM and E2E studies, caches their frames,
// and serves them one at a time. This package is the only place that knows the
// service's wire format; the rest of riv works with the types defined here.
//
// # Client Usage
//
//	client, err := rivapi.NewClient("127.0.0.1:8000", rivapi.WithTimeout(2*time.Minute))
//	if err != nil {
//		return err
//	}
//
//	f, _ := os.Open("scan1.dcm")
//	study, err := client.UploadStudy(ctx, "scan1.dcm", f)
//	// study.NumberOfFrames, study.DicomFilePath
//
//	frame, err := client.FetchFrame(ctx, study.DicomFilePath, 0)
//
// # API Endpoints
//
//   - POST /api/upload_image: multipart "file"; returns frame count and handle
//   - POST /api/upload_e2e: multipart "file" and "type" (SLO or OCT)
//   - GET  /api/view_dicom_png?frame=N&dicom_file_path=H: one frame as an image
//   - POST /api/convert: E2E in, zip of DICOM files out
//   - POST /api/dicom_to_mat_npy_zip: one or more "file" parts in, zip out
//   - GET  /api/test: connectivity probe, {"message": ...}
//   - GET  /health: {"status": "healthy"}
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Carry User-Agent: riv/0.1 and a fresh X-Request-ID (UUID)
//   - Share one timeout, two minutes by default since uploads can be large
//   - Stream multipart bodies through an io.Pipe instead of buffering them
//
// # Error Handling
//
// Two error types cover every failed request:
//
//   - *APIError: the service answered with status 400 or above. Detail holds
//     the service's message, taken from {"detail": ...} when present.
//   - *TransportError: no response arrived (refused, reset, timed out).
//
// An upload answered with 200 but carrying an "error" field is also reported
// as an *APIError. Message(err) returns the text to show a user for either.
//
// # Thread Safety
//
// The Client is safe for concurrent use; several uploads and frame fetches may
// be in flight at once.
package rivapi
