// Package viewer holds the client-side state of a riv session: the two
// viewports, the file intake rules, and the frame navigation logic.
//
// # Overview
//
// Nothing in this package performs I/O. A Session is a plain value and every
// transition is a method that returns the next Session together with the
// remote requests the caller should issue. The UI owns the only live Session
// and feeds results back in as they arrive:
//
//	sess, req, err := sess.BeginRender(viewer.ViewportOne, 10)
//	// ... fetch req.Frame of req.Source ...
//	img, err := pool.Acquire(body)
//	sess, ok := sess.CommitRender(viewer.RenderResult{Request: req, Image: img})
//
// # Intake
//
// Classify routes a file by suffix alone (case-insensitive):
//
//	.dcm .fds .fda  → RouteDirectDicom  (BeginUpload / LoadStudy)
//	.e2e            → RouteE2EPending   (BeginE2E / SelectType / E2EUploaded)
//
// Anything else is a KindUnsupportedFileType error and nothing is uploaded.
// The error names the nearest accepted suffix when the typo is small.
//
// # E2E Workflow
//
// An E2E file cannot be rendered until the user picks SLO or OCT:
//
//	NoPendingFile ──BeginE2E──→ AwaitingType ──SelectType──→ TypeSelected
//	                                 ↑                            │
//	                                 └────────E2EFailed───────────┤
//	                                                              ↓
//	                                            E2EUploaded: viewport loaded at frame 0
//
// The workflow is keyed by its target viewport, so both viewports can wait
// on a type at the same time. A viewport never has a pending E2E file and a
// loaded study at once; BeginE2E unloads the target.
//
// # Ordering
//
// Each viewport carries two counters, one for renders and one for uploads.
// Every request is tagged with the next value and a result is applied only
// if it carries the latest value issued. Results that lose are dropped:
// CommitRender releases their image, LoadStudy and E2EUploaded return
// ErrSuperseded, FailRender and E2EFailed return a nil error.
//
// Issue order decides, not arrival order. If R1 and R2 are issued in that
// order, the session shows R2 whichever response lands last.
//
// # Images
//
// Images come from an ImagePool which counts the ones still alive. A
// viewport owns at most one. It is released when a newer frame commits,
// when the viewport is reset or handed to an E2E workflow, and when the
// session is closed. Release is idempotent. ImagePool.Close releases whatever
// is left, such as a frame decoded for a render that was never delivered.
//
// # Binding
//
// Navigate always renders the source viewport. When binding is enabled and
// both viewports hold studies with the same frame count, it also returns a
// render for the partner at the same frame. The partner request goes
// straight to BeginRender, so one navigation yields at most two requests.
//
// # Errors
//
// User-facing failures are *Error values with a Kind. Transport failures
// from the API client are reported as KindTransportError whatever the
// action was. Unknown viewport ids are programming errors and panic.
package viewer
