package browser

import (
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
)

const lifecycleNetworkIdle = "networkIdle"

// idleTracker follows one tab's lifecycle and network events. A frame is
// idle once Chrome reported networkIdle for the document it currently shows
// and no request has been in flight since for the idle window.
type idleTracker struct {
	mu           sync.Mutex
	frames       map[cdp.FrameID]*frameLifecycle
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	now          func() time.Time
}

type frameLifecycle struct {
	loader cdp.LoaderID
	idle   bool
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		frames:       make(map[cdp.FrameID]*frameLifecycle),
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
		now:          time.Now,
	}
}

func (t *idleTracker) handle(ev interface{}) {
	switch e := ev.(type) {
	case *page.EventLifecycleEvent:
		t.lifecycle(e.FrameID, e.LoaderID, e.Name)
	case *network.EventRequestWillBeSent:
		t.started(e.RequestID)
	case *network.EventLoadingFinished:
		t.finished(e.RequestID)
	case *network.EventLoadingFailed:
		t.finished(e.RequestID)
	}
}

// lifecycle records a lifecycle event. "init" starts a new document; events
// of any other loader than the current one are stale.
func (t *idleTracker) lifecycle(frame cdp.FrameID, loader cdp.LoaderID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.frames[frame]
	if !ok {
		f = &frameLifecycle{loader: loader}
		t.frames[frame] = f
	}
	switch {
	case name == "init":
		f.loader, f.idle = loader, false
	case loader != f.loader:
		return
	case name == lifecycleNetworkIdle:
		f.idle = true
	}
}

func (t *idleTracker) started(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// redirects reuse the request id
	t.inflight[id] = struct{}{}
	t.lastActivity = t.now()
}

func (t *idleTracker) finished(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inflight[id]; !ok {
		return
	}
	delete(t.inflight, id)
	t.lastActivity = t.now()
}

func (t *idleTracker) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// documentIdle reports whether Chrome saw networkIdle for frame's current
// document.
func (t *idleTracker) documentIdle(frame cdp.FrameID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.frames[frame]
	return ok && f.idle
}

// quiet reports whether nothing is in flight and nothing happened for window.
func (t *idleTracker) quiet(window time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && t.now().Sub(t.lastActivity) >= window
}
