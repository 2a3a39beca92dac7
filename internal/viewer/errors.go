package viewer

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure surfaced to the user.
type Kind int

const (
	KindUnsupportedFileType Kind = iota + 1
	KindUploadFailed
	KindRenderFailed
	KindClassificationFailed
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFileType:
		return "unsupported file type"
	case KindUploadFailed:
		return "upload failed"
	case KindRenderFailed:
		return "render failed"
	case KindClassificationFailed:
		return "classification failed"
	case KindTransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

var (
	// ErrNotLoaded is returned when a frame is requested for a viewport without a study.
	ErrNotLoaded = errors.New("viewport has no study loaded")

	// ErrFrameOutOfRange is returned when a frame index falls outside [0, TotalFrames).
	ErrFrameOutOfRange = errors.New("frame index out of range")

	// ErrAwaitingClassification is returned when frames are requested for a viewport
	// whose E2E file still needs a scan type.
	ErrAwaitingClassification = errors.New("viewport is awaiting a scan type")

	// ErrNoPendingFile is returned by SelectType when no E2E file waits on the viewport.
	ErrNoPendingFile = errors.New("no E2E file is pending for viewport")

	// ErrTypeAlreadySelected is returned by SelectType while a typed upload is in flight.
	ErrTypeAlreadySelected = errors.New("scan type already selected")
)

// Error is a user-facing failure tied to the action that triggered it.
type Error struct {
	Kind     Kind
	Viewport ViewportID // zero when the action had no viewport
	Message  string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Viewport != 0 {
		fmt.Fprintf(&b, " (viewport %d)", e.Viewport)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the message without the kind prefix.
func (e *Error) UserMessage() string { return e.Message }

// transportFailure is implemented by errors that describe a request which never
// received a response.
type transportFailure interface {
	Transport() bool
}

// userMessenger is implemented by errors that carry a message meant for display.
type userMessenger interface {
	UserMessage() string
}

// Failure wraps cause as an *Error of the given kind. Causes reporting a transport
// failure are reclassified as KindTransportError; both resolve to a message.
func Failure(kind Kind, id ViewportID, cause error) *Error {
	if cause == nil {
		return &Error{Kind: kind, Viewport: id, Message: kind.String()}
	}
	var existing *Error
	if errors.As(cause, &existing) {
		return existing
	}
	var tf transportFailure
	if errors.As(cause, &tf) && tf.Transport() {
		kind = KindTransportError
	}
	return &Error{Kind: kind, Viewport: id, Message: messageOf(cause), Err: cause}
}

// KindOf reports the Kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func messageOf(err error) string {
	var um userMessenger
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return err.Error()
}
