package viewer

import (
	"fmt"
	"strings"
)

// ScanType is the modality an E2E container is processed as.
type ScanType string

const (
	ScanSLO ScanType = "SLO"
	ScanOCT ScanType = "OCT"
)

// ParseScanType accepts "slo" or "oct" in any case.
func ParseScanType(s string) (ScanType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ScanSLO):
		return ScanSLO, nil
	case string(ScanOCT):
		return ScanOCT, nil
	default:
		return "", fmt.Errorf("unknown scan type %q (want SLO or OCT)", s)
	}
}

// WorkflowState is the stage of an E2E intake.
type WorkflowState int

const (
	NoPendingFile WorkflowState = iota
	AwaitingType
	TypeSelected
)

func (w WorkflowState) String() string {
	switch w {
	case AwaitingType:
		return "awaiting type"
	case TypeSelected:
		return "type selected"
	default:
		return "no pending file"
	}
}

// Workflow gates one E2E file behind a scan type choice. Each viewport has at
// most one, and workflows for different viewports are independent.
type Workflow struct {
	Target   ViewportID
	File     RawFile
	State    WorkflowState
	Selected ScanType     // set in TypeSelected
	Ticket   UploadTicket // set in TypeSelected
}

// E2EUpload is the type-qualified upload to send once a scan type is chosen.
type E2EUpload struct {
	Ticket UploadTicket
	File   RawFile
	Type   ScanType
}

// BeginE2E parks file on id until a scan type is chosen. The viewport is
// unloaded, its image released, and anything in flight for it becomes stale.
func (s Session) BeginE2E(id ViewportID, file RawFile) Session {
	s.Viewport(id).Image.Release()
	s = s.withTrack(id, func(tr track) track {
		return track{renderSeq: tr.renderSeq + 1, uploadSeq: tr.uploadSeq + 1}
	})
	s = s.UpdateViewport(id, Viewport.unloaded)
	return s.withPending(Workflow{Target: id, File: file, State: AwaitingType})
}

// Workflow returns the E2E workflow for id. A viewport with nothing pending
// reports NoPendingFile.
func (s Session) Workflow(id ViewportID) Workflow {
	s.indexOf(id)
	if wf, ok := s.pending[id]; ok {
		return wf
	}
	return Workflow{Target: id, State: NoPendingFile}
}

// SelectType chooses the scan type for the file waiting on id and returns the
// upload to issue. It is only valid while the workflow awaits a type.
func (s Session) SelectType(id ViewportID, t ScanType) (Session, E2EUpload, error) {
	if _, err := ParseScanType(string(t)); err != nil {
		return s, E2EUpload{}, err
	}
	wf := s.Workflow(id)
	switch wf.State {
	case NoPendingFile:
		return s, E2EUpload{}, fmt.Errorf("select %s for viewport %d: %w", t, id, ErrNoPendingFile)
	case TypeSelected:
		return s, E2EUpload{}, fmt.Errorf("select %s for viewport %d: %w", t, id, ErrTypeAlreadySelected)
	}

	s = s.withTrack(id, func(tr track) track {
		tr.uploadSeq++
		wf.Ticket = UploadTicket{Viewport: id, Seq: tr.uploadSeq}
		return tr
	})
	wf.State = TypeSelected
	wf.Selected = t
	s = s.withPending(wf)
	return s, E2EUpload{Ticket: wf.Ticket, File: wf.File, Type: t}, nil
}

// E2EUploaded hands a processed E2E file over to the viewport: the workflow is
// discarded and the study loads at frame 0 exactly like a direct upload.
func (s Session) E2EUploaded(up E2EUpload, info StudyInfo) (Session, RenderRequest, error) {
	if !s.awaitingUpload(up) {
		return s, RenderRequest{}, ErrSuperseded
	}
	next, req, err := s.withoutPending(up.Ticket.Viewport).load(up.Ticket.Viewport, up.File, info)
	if err != nil {
		// keep the file so another type can be tried
		return s.reopen(up), RenderRequest{}, &Error{
			Kind:     KindClassificationFailed,
			Viewport: up.Ticket.Viewport,
			Message:  messageOf(err),
			Err:      err,
		}
	}
	return next, req, nil
}

// E2EFailed returns the workflow to AwaitingType so the user can choose again.
// Stale failures return a nil error.
func (s Session) E2EFailed(up E2EUpload, cause error) (Session, error) {
	if !s.awaitingUpload(up) {
		return s, nil
	}
	return s.reopen(up), Failure(KindClassificationFailed, up.Ticket.Viewport, cause)
}

func (s Session) awaitingUpload(up E2EUpload) bool {
	wf, ok := s.pending[up.Ticket.Viewport]
	return ok && wf.State == TypeSelected && wf.Ticket == up.Ticket
}

func (s Session) reopen(up E2EUpload) Session {
	wf := s.pending[up.Ticket.Viewport]
	wf.State = AwaitingType
	wf.Selected = ""
	wf.Ticket = UploadTicket{}
	return s.withPending(wf)
}
