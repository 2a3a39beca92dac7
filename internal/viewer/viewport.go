package viewer

import "fmt"

// ViewportID identifies one of the fixed display slots.
type ViewportID int

// The two display slots of a session.
const (
	ViewportOne ViewportID = 1
	ViewportTwo ViewportID = 2
)

// SourceHandle is the service's reference to an uploaded study.
type SourceHandle string

// Viewport is one display slot and its navigation state.
type Viewport struct {
	ID           ViewportID
	Title        string
	FileName     string
	Source       SourceHandle
	TotalFrames  int
	CurrentFrame int
	Image        *Image
}

// Loaded reports whether the viewport has a study with at least one frame.
func (v Viewport) Loaded() bool {
	return v.TotalFrames > 0 && v.Source != ""
}

// FrameLabel renders the 1-based position shown to users.
func (v Viewport) FrameLabel() string {
	if !v.Loaded() {
		return "no study"
	}
	return fmt.Sprintf("frame %d of %d", v.CurrentFrame+1, v.TotalFrames)
}

// ClampFrame pins frame into the viewport's valid range.
func (v Viewport) ClampFrame(frame int) int {
	if frame < 0 || v.TotalFrames == 0 {
		return 0
	}
	if frame >= v.TotalFrames {
		return v.TotalFrames - 1
	}
	return frame
}

func (v Viewport) unloaded() Viewport {
	return Viewport{ID: v.ID, Title: v.Title}
}

// RawFile is a file picked by the user but not yet uploaded.
type RawFile struct {
	Name string // base name, used for routing and display
	Path string
}

// StudyInfo is what the service reports after accepting an upload.
type StudyInfo struct {
	Frames int
	Source SourceHandle
}
