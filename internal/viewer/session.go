package viewer

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrSuperseded is returned when a completed request was overtaken by a newer one
// for the same viewport. Callers drop the result.
var ErrSuperseded = errors.New("request superseded")

// track holds the per-viewport sequence counters that order overlapping requests.
type track struct {
	renderSeq uint64 // latest render issued
	frame     int    // frame of the latest render while inFlight
	inFlight  bool
	uploadSeq uint64 // latest upload issued
	uploading bool
}

// Session is the whole client state for one browsing session. It is a value:
// every transition returns a new Session and leaves the receiver usable as the
// prior state. Only the images it references are shared.
type Session struct {
	viewports []Viewport
	binding   bool
	pending   map[ViewportID]Workflow
	tracks    map[ViewportID]track
}

// NewSession returns a session with both viewports unloaded and binding off.
func NewSession() Session {
	return Session{
		viewports: []Viewport{
			{ID: ViewportOne, Title: "Viewport 1"},
			{ID: ViewportTwo, Title: "Viewport 2"},
		},
		pending: map[ViewportID]Workflow{},
		tracks:  map[ViewportID]track{},
	}
}

// Viewports returns the viewports in display order.
func (s Session) Viewports() []Viewport {
	return slices.Clone(s.viewports)
}

// Viewport returns the record for id. Unknown ids panic.
func (s Session) Viewport(id ViewportID) Viewport {
	return s.viewports[s.indexOf(id)]
}

// UpdateViewport replaces the record for id with patch applied to it. Every other
// record is carried over as is. Unknown ids panic.
func (s Session) UpdateViewport(id ViewportID, patch func(Viewport) Viewport) Session {
	idx := s.indexOf(id)
	next := patch(s.viewports[idx])
	next.ID = id

	vps := slices.Clone(s.viewports)
	vps[idx] = next
	s.viewports = vps
	return s
}

// Uploading reports whether an upload for id is outstanding.
func (s Session) Uploading(id ViewportID) bool {
	s.indexOf(id)
	if wf, ok := s.pending[id]; ok && wf.State == TypeSelected {
		return true
	}
	return s.tracks[id].uploading
}

// TargetFrame is the frame the viewport is heading to: the latest issued render
// while one is in flight, otherwise the displayed frame.
func (s Session) TargetFrame(id ViewportID) int {
	vp := s.Viewport(id)
	if tr := s.tracks[id]; tr.inFlight {
		return tr.frame
	}
	return vp.CurrentFrame
}

// UploadTicket orders uploads to one viewport. Only the latest ticket may load.
type UploadTicket struct {
	Viewport ViewportID
	Seq      uint64
}

// BeginUpload records a direct upload of file to id. The displayed study stays
// until the upload succeeds. Any E2E file waiting on id is dropped.
func (s Session) BeginUpload(id ViewportID, file RawFile) (Session, UploadTicket) {
	s.indexOf(id)
	s = s.withoutPending(id)
	var ticket UploadTicket
	s = s.withTrack(id, func(tr track) track {
		tr.uploadSeq++
		tr.uploading = true
		ticket = UploadTicket{Viewport: id, Seq: tr.uploadSeq}
		return tr
	})
	return s, ticket
}

// LoadStudy applies a successful direct upload. The viewport switches to the new
// study at frame 0 and the returned request fetches that frame. A ticket that is
// no longer the latest yields ErrSuperseded.
func (s Session) LoadStudy(ticket UploadTicket, file RawFile, info StudyInfo) (Session, RenderRequest, error) {
	tr := s.tracks[ticket.Viewport]
	s.indexOf(ticket.Viewport)
	if ticket.Seq != tr.uploadSeq || !tr.uploading {
		return s, RenderRequest{}, ErrSuperseded
	}
	s = s.withTrack(ticket.Viewport, func(tr track) track {
		tr.uploading = false
		return tr
	})
	return s.load(ticket.Viewport, file, info)
}

// FailUpload records a failed direct upload. The viewport keeps whatever it showed.
func (s Session) FailUpload(ticket UploadTicket, cause error) (Session, error) {
	tr := s.tracks[ticket.Viewport]
	s.indexOf(ticket.Viewport)
	if ticket.Seq != tr.uploadSeq || !tr.uploading {
		return s, nil
	}
	s = s.withTrack(ticket.Viewport, func(tr track) track {
		tr.uploading = false
		return tr
	})
	return s, Failure(KindUploadFailed, ticket.Viewport, cause)
}

func (s Session) load(id ViewportID, file RawFile, info StudyInfo) (Session, RenderRequest, error) {
	if info.Frames <= 0 || info.Source == "" {
		msg := fmt.Sprintf("service reported %d frames for %s", info.Frames, file.Name)
		if info.Source == "" {
			msg = fmt.Sprintf("service returned no study handle for %s", file.Name)
		}
		return s, RenderRequest{}, &Error{Kind: KindUploadFailed, Viewport: id, Message: msg}
	}

	s.Viewport(id).Image.Release()
	s = s.UpdateViewport(id, func(v Viewport) Viewport {
		v = v.unloaded()
		v.FileName = file.Name
		v.Source = info.Source
		v.TotalFrames = info.Frames
		return v
	})
	return s.BeginRender(id, 0)
}

// Reset returns id to the unloaded state. Its image is released and every
// outstanding request for it becomes stale.
func (s Session) Reset(id ViewportID) Session {
	s.Viewport(id).Image.Release()
	s = s.withoutPending(id)
	s = s.withTrack(id, func(tr track) track {
		return track{renderSeq: tr.renderSeq + 1, uploadSeq: tr.uploadSeq + 1}
	})
	return s.UpdateViewport(id, Viewport.unloaded)
}

// Close releases every image the session holds. The session must not be used
// afterwards.
func (s Session) Close() {
	for _, vp := range s.viewports {
		vp.Image.Release()
	}
}

func (s Session) indexOf(id ViewportID) int {
	for i, vp := range s.viewports {
		if vp.ID == id {
			return i
		}
	}
	panic(fmt.Sprintf("viewer: unknown viewport id %d", id))
}

func (s Session) withTrack(id ViewportID, fn func(track) track) Session {
	tracks := maps.Clone(s.tracks)
	if tracks == nil {
		tracks = map[ViewportID]track{}
	}
	tracks[id] = fn(tracks[id])
	s.tracks = tracks
	return s
}

func (s Session) withPending(wf Workflow) Session {
	pending := maps.Clone(s.pending)
	if pending == nil {
		pending = map[ViewportID]Workflow{}
	}
	pending[wf.Target] = wf
	s.pending = pending
	return s
}

func (s Session) withoutPending(id ViewportID) Session {
	if _, ok := s.pending[id]; !ok {
		return s
	}
	pending := maps.Clone(s.pending)
	delete(pending, id)
	s.pending = pending
	return s
}
