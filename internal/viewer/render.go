package viewer

import "fmt"

// RenderRequest asks the service for one frame of a viewport's study. Seq orders
// requests issued for the same viewport.
type RenderRequest struct {
	Viewport ViewportID
	Frame    int
	Source   SourceHandle
	Seq      uint64
}

// RenderResult pairs a completed request with the image it produced.
type RenderResult struct {
	Request RenderRequest
	Image   *Image
}

// BeginRender issues a request for frame of id. The frame must lie inside the
// loaded study and the viewport must not be waiting on a scan type.
func (s Session) BeginRender(id ViewportID, frame int) (Session, RenderRequest, error) {
	vp := s.Viewport(id)
	if _, ok := s.pending[id]; ok {
		return s, RenderRequest{}, fmt.Errorf("render viewport %d: %w", id, ErrAwaitingClassification)
	}
	if !vp.Loaded() {
		return s, RenderRequest{}, fmt.Errorf("render viewport %d: %w", id, ErrNotLoaded)
	}
	if frame < 0 || frame >= vp.TotalFrames {
		return s, RenderRequest{}, fmt.Errorf("render viewport %d frame %d of %d: %w", id, frame, vp.TotalFrames, ErrFrameOutOfRange)
	}

	var req RenderRequest
	s = s.withTrack(id, func(tr track) track {
		tr.renderSeq++
		tr.frame = frame
		tr.inFlight = true
		req = RenderRequest{Viewport: id, Frame: frame, Source: vp.Source, Seq: tr.renderSeq}
		return tr
	})
	return s, req, nil
}

// CommitRender applies res if it answers the latest request issued for its
// viewport against the study still loaded there. The frame index and image change
// together and the previous image is released. Stale results have their image
// released and leave the session untouched; ok reports which case applied.
func (s Session) CommitRender(res RenderResult) (next Session, ok bool) {
	req := res.Request
	vp := s.Viewport(req.Viewport)
	if !s.current(req) || req.Frame >= vp.TotalFrames {
		res.Image.Release()
		return s, false
	}

	prev := vp.Image
	s = s.UpdateViewport(req.Viewport, func(v Viewport) Viewport {
		v.CurrentFrame = req.Frame
		v.Image = res.Image
		return v
	})
	s = s.withTrack(req.Viewport, func(tr track) track {
		tr.inFlight = false
		return tr
	})
	if prev != res.Image {
		prev.Release()
	}
	return s, true
}

// FailRender records that req failed. The viewport keeps its frame and image.
// A stale failure returns a nil error; anything else returns a KindRenderFailed
// (or KindTransportError) error for the user.
func (s Session) FailRender(req RenderRequest, cause error) (Session, error) {
	if !s.current(req) {
		return s, nil
	}
	s = s.withTrack(req.Viewport, func(tr track) track {
		tr.inFlight = false
		return tr
	})
	return s, Failure(KindRenderFailed, req.Viewport, cause)
}

func (s Session) current(req RenderRequest) bool {
	vp := s.Viewport(req.Viewport)
	tr := s.tracks[req.Viewport]
	return tr.inFlight && req.Seq == tr.renderSeq && req.Source == vp.Source && vp.Loaded()
}
