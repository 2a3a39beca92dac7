package viewer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // frames are served as JPEG
	_ "image/png"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("image pool closed")

// ImagePool hands out displayable frame images and tracks the ones still alive.
// The zero value is ready to use and safe for concurrent use.
type ImagePool struct {
	nextID atomic.Uint64

	mu     sync.Mutex
	live   map[uint64]*Image
	closed bool
}

// Live reports how many acquired images have not been released.
func (p *ImagePool) Live() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(len(p.live))
}

// Acquire decodes data into an Image owned by the caller until Release.
func (p *ImagePool) Acquire(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode frame: empty body")
	}
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	img := &Image{
		pool:    p,
		id:      p.nextID.Add(1),
		format:  format,
		size:    len(data),
		bounds:  decoded.Bounds(),
		decoded: decoded,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("decode frame: %w", ErrPoolClosed)
	}
	if p.live == nil {
		p.live = make(map[uint64]*Image)
	}
	p.live[img.id] = img
	return img, nil
}

// Close releases every image still alive, including ones acquired for a
// render whose result was never delivered, and refuses further Acquire calls.
// It returns how many images it released.
func (p *ImagePool) Close() int {
	p.mu.Lock()
	p.closed = true
	pending := make([]*Image, 0, len(p.live))
	for _, img := range p.live {
		pending = append(pending, img)
	}
	p.mu.Unlock()

	for _, img := range pending {
		img.Release()
	}
	return len(pending)
}

func (p *ImagePool) forget(id uint64) {
	p.mu.Lock()
	delete(p.live, id)
	p.mu.Unlock()
}

// Image is one rendered frame. A viewport holds at most one and releases it when
// the frame is superseded or the viewport is reset.
type Image struct {
	pool     *ImagePool
	id       uint64
	format   string
	size     int
	bounds   image.Rectangle
	decoded  image.Image
	released atomic.Bool
}

// ID is unique within the pool that produced the image.
func (img *Image) ID() uint64 { return img.id }

// Format is the decoder name ("jpeg", "png").
func (img *Image) Format() string { return img.format }

// Size is the encoded byte length.
func (img *Image) Size() int { return img.size }

// Bounds reports the pixel dimensions, kept after release for display.
func (img *Image) Bounds() image.Rectangle { return img.bounds }

// Pixels returns the decoded image, or nil once released.
func (img *Image) Pixels() image.Image {
	if img == nil || img.released.Load() {
		return nil
	}
	return img.decoded
}

// Released reports whether Release has been called.
func (img *Image) Released() bool {
	return img != nil && img.released.Load()
}

// Release returns the image to its pool. Extra calls are no-ops, as is calling it
// on a nil image.
func (img *Image) Release() {
	if img == nil || !img.released.CompareAndSwap(false, true) {
		return
	}
	img.decoded = nil
	if img.pool != nil {
		img.pool.forget(img.id)
	}
}
