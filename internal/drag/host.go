package drag

import "sync"

// Host is the tool that owns a handler. It redraws the editing surface and
// supplies the width of the change-width control.
type Host interface {
	// UpdateTextView requests a cheap redraw of the live editing surface.
	UpdateTextView()
	// UpdateShapeFrame requests a full layout and frame recompute.
	UpdateShapeFrame()
	ChangeWidthControlWidth() float64
}

// HostRef is a non-owning reference to a Host. The host's owner may Release
// it at any time; afterwards every call through the ref is a no-op. A nil
// *HostRef behaves like a released one.
type HostRef struct {
	mu   sync.RWMutex
	host Host
}

func NewHostRef(h Host) *HostRef {
	return &HostRef{host: h}
}

// Get returns the host, or false once released.
func (r *HostRef) Get() (Host, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host, r.host != nil
}

func (r *HostRef) Release() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.host = nil
}

func (r *HostRef) UpdateTextView() {
	if h, ok := r.Get(); ok {
		h.UpdateTextView()
	}
}

func (r *HostRef) UpdateShapeFrame() {
	if h, ok := r.Get(); ok {
		h.UpdateShapeFrame()
	}
}
