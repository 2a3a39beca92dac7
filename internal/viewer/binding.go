package viewer

// SetBinding turns linked navigation on or off. The flag is remembered even while
// the viewports are incompatible; Navigate checks compatibility each time.
func (s Session) SetBinding(on bool) Session {
	s.binding = on
	return s
}

// BindingEnabled reports the user's linked-navigation setting.
func (s Session) BindingEnabled() bool {
	return s.binding
}

// BindingAvailable reports whether every viewport has a study, which is when the
// binding toggle is offered.
func (s Session) BindingAvailable() bool {
	for _, vp := range s.viewports {
		if !vp.Loaded() {
			return false
		}
	}
	return len(s.viewports) > 1
}

// BindingActive reports whether navigating id would also move its partner.
func (s Session) BindingActive(id ViewportID) bool {
	if !s.binding {
		return false
	}
	src := s.Viewport(id)
	partner := s.Viewport(s.Partner(id))
	if _, waiting := s.pending[partner.ID]; waiting {
		return false
	}
	return src.Loaded() && partner.Loaded() && src.TotalFrames == partner.TotalFrames
}

// Partner returns the other viewport of the pair.
func (s Session) Partner(id ViewportID) ViewportID {
	s.indexOf(id)
	for _, vp := range s.viewports {
		if vp.ID != id {
			return vp.ID
		}
	}
	return id
}

// Navigate moves id to frame. The returned requests always start with the one for
// id; when binding is active a second request moves the partner to the same
// frame. The partner request is final and never navigates further.
func (s Session) Navigate(id ViewportID, frame int) (Session, []RenderRequest, error) {
	active := s.BindingActive(id)

	next, req, err := s.BeginRender(id, frame)
	if err != nil {
		return s, nil, err
	}
	reqs := []RenderRequest{req}
	if !active {
		return next, reqs, nil
	}

	next, partnerReq, err := next.BeginRender(s.Partner(id), frame)
	if err != nil {
		// partner cannot show this frame; the source still moves
		return next, reqs, nil
	}
	return next, append(reqs, partnerReq), nil
}
