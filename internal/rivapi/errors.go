package rivapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a response the service answered with a failure status.
type APIError struct {
	Op     string // endpoint name, e.g. "upload_image"
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api %s returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Op, e.Status, e.Detail)
}

// UserMessage returns the service's own explanation.
func (e *APIError) UserMessage() string { return e.Detail }

// TransportError is a request that never got a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("execute request %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport marks the error as a network-level failure.
func (e *TransportError) Transport() bool { return true }

// UserMessage describes the failure without the request plumbing.
func (e *TransportError) UserMessage() string {
	return fmt.Sprintf("processing service unreachable (%v)", e.Err)
}

// Message extracts the text to show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.UserMessage()
	}
	return err.Error()
}

// parseDetail pulls a message out of an error body. The service answers with
// {"detail": ...} where detail is a string, an object with a message, or a
// list of validation errors.
func parseDetail(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := detailText(envelope.Detail); msg != "" {
			return msg
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	} else if trimmed != "" && !strings.HasPrefix(trimmed, "<") {
		return trimmed
	}
	return http.StatusText(status)
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"message", "error", "msg"} {
			if v, ok := obj[key].(string); ok && v != "" {
				return v
			}
		}
		return strings.TrimSpace(string(raw))
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
