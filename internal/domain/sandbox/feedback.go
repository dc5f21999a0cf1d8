package sandbox

import (
	"sync"
	"time"
)

// flash is a boolean that reverts to false a fixed window after being armed.
// Re-arming restarts the window; a superseded timer never clears a newer one.
type flash struct {
	mu       sync.Mutex
	window   time.Duration
	active   bool
	gen      uint64
	timer    *time.Timer
	onRevert func()
}

func newFlash(window time.Duration, onRevert func()) *flash {
	return &flash{window: window, onRevert: onRevert}
}

// Arm sets the flag and (re)starts the revert timer.
func (f *flash) Arm() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	gen := f.gen
	f.active = true
	f.timer = time.AfterFunc(f.window, func() { f.revert(gen) })
}

func (f *flash) revert(gen uint64) {
	f.mu.Lock()
	if gen != f.gen || !f.active {
		f.mu.Unlock()
		return
	}
	f.active = false
	f.timer = nil
	f.mu.Unlock()

	if f.onRevert != nil {
		f.onRevert()
	}
}

// Active reports whether the flag is currently set.
func (f *flash) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Stop clears the flag without firing the revert callback.
func (f *flash) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
	f.active = false
}
