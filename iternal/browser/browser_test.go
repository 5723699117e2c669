package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Software Developer", want: "'Software Developer'"},
		{name: "apostrophe", in: "Devs' Corner", want: `"Devs' Corner"`},
		{name: "both quotes", in: `it's "ok"`, want: `concat('it', "'", 's "ok"')`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, xpathLiteral(tc.in))
		})
	}
}

func TestLocatorComposition(t *testing.T) {
	p := &Page{cfg: DefaultConfig()}

	job := p.Heading(2).Filter("Software Developer").First()
	assert.Equal(t,
		"((//h2 | //*[@role='heading' and @aria-level='2'])[contains(normalize-space(.), 'Software Developer')])[1]",
		job.XPath())
	assert.Equal(t, `heading level 2 containing "Software Developer" #1`, job.String())

	link := job.EnclosingLink()
	assert.Contains(t, link.XPath(), ")[1]/ancestor::a[1]")
	assert.Equal(t, "(("+job.XPath()+")[1]/ancestor::a[1])[1]", link.first())

	box := p.TextBox("Search by job title")
	assert.Contains(t, box.XPath(), "contains(@aria-label, 'Search by job title')")
	assert.Contains(t, box.XPath(), "contains(@placeholder, 'Search by job title')")
}

func TestAssertionError(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := error(&AssertionError{Expectation: "title to match Lowongan", Last: "Not Found", Timeout: 5 * time.Second, Err: cause})

	assert.Equal(t, `expected title to match Lowongan within 5s, last seen "Not Found": context deadline exceeded`, err.Error())
	assert.True(t, IsAssertion(err))
	assert.True(t, IsAssertion(errors.Join(errors.New("step"), err)))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsAssertion(cause))
}

func TestEventually(t *testing.T) {
	t.Run("succeeds once the condition holds", func(t *testing.T) {
		calls := 0
		err := eventually(context.Background(), time.Second, "three calls", func(context.Context) (bool, string, error) {
			calls++
			return calls == 3, "", nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("reports the last observation on timeout", func(t *testing.T) {
		err := eventually(context.Background(), 250*time.Millisecond, "url to match x", func(context.Context) (bool, string, error) {
			return false, "https://example.com/", nil
		})
		var ae *AssertionError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "https://example.com/", ae.Last)
		assert.Equal(t, 250*time.Millisecond, ae.Timeout)
	})

	t.Run("stops when the caller cancels", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := eventually(ctx, time.Minute, "never", func(context.Context) (bool, string, error) {
			return false, "", nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIdleTracker(t *testing.T) {
	now := time.Unix(1000, 0)
	tr := newIdleTracker()
	tr.now = func() time.Time { return now }
	tr.lastActivity = now

	window := 500 * time.Millisecond
	assert.False(t, tr.quiet(window), "window has not elapsed yet")

	now = now.Add(window)
	assert.True(t, tr.quiet(window))

	tr.handle(&network.EventRequestWillBeSent{RequestID: "1"})
	tr.handle(&network.EventRequestWillBeSent{RequestID: "1"})
	tr.handle(&network.EventRequestWillBeSent{RequestID: "2"})
	assert.Equal(t, 2, tr.pending())

	now = now.Add(time.Second)
	assert.False(t, tr.quiet(window), "requests still in flight")

	tr.handle(&network.EventLoadingFinished{RequestID: "1"})
	tr.handle(&network.EventLoadingFailed{RequestID: "2"})
	tr.handle(&network.EventLoadingFinished{RequestID: "unknown"})
	assert.Equal(t, 0, tr.pending())
	assert.False(t, tr.quiet(window), "activity just happened")

	now = now.Add(window)
	assert.True(t, tr.quiet(window))
}

func TestIdleTrackerLifecycle(t *testing.T) {
	tr := newIdleTracker()
	const frame = cdp.FrameID("main")

	assert.False(t, tr.documentIdle(frame), "nothing seen yet")

	// blank document reported while attaching
	tr.handle(&page.EventLifecycleEvent{FrameID: frame, LoaderID: "blank", Name: "load"})
	tr.handle(&page.EventLifecycleEvent{FrameID: frame, LoaderID: "blank", Name: "networkIdle"})
	assert.True(t, tr.documentIdle(frame))

	// the listing's navigation commits
	tr.handle(&page.EventLifecycleEvent{FrameID: frame, LoaderID: "job", Name: "init"})
	assert.False(t, tr.documentIdle(frame), "new document resets idle")

	tr.handle(&page.EventLifecycleEvent{FrameID: frame, LoaderID: "blank", Name: "networkIdle"})
	assert.False(t, tr.documentIdle(frame), "stale loader is ignored")

	tr.handle(&page.EventLifecycleEvent{FrameID: "child", LoaderID: "ad", Name: "networkIdle"})
	assert.False(t, tr.documentIdle(frame), "other frames do not count")

	tr.handle(&page.EventLifecycleEvent{FrameID: frame, LoaderID: "job", Name: "DOMContentLoaded"})
	tr.handle(&page.EventLifecycleEvent{FrameID: frame, LoaderID: "job", Name: "networkIdle"})
	assert.True(t, tr.documentIdle(frame))
}

func TestPopupWaitErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NavigationTimeout = 50 * time.Millisecond
	opener := &Page{cfg: cfg}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := &Popup{opener: opener, ch: make(chan target.ID), cancel: func() {}}

		_, err := w.Wait(ctx)
		var ae *AssertionError
		require.ErrorAs(t, err, &ae)
		assert.Zero(t, ae.Timeout)
		assert.Equal(t, "expected popup to open: context canceled", err.Error())
	})

	t.Run("timed out", func(t *testing.T) {
		w := &Popup{opener: opener, ch: make(chan target.ID), cancel: func() {}}

		_, err := w.Wait(context.Background())
		var ae *AssertionError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, 50*time.Millisecond, ae.Timeout)
		assert.Equal(t, "expected popup to open within 50ms", err.Error())
	})
}

func TestAllocatorOptionsFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flags = []string{"--lang=id-ID", "disable-extensions"}
	base := len(allocatorOptions(DefaultConfig()))
	assert.Len(t, allocatorOptions(cfg), base+2)
}

// newTestPage starts Chrome or skips the test when that is not possible.
func newTestPage(t *testing.T) *Page {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	cfg := DefaultConfig()
	cfg.NoSandbox = true
	cfg.NavigationTimeout = 10 * time.Second

	s, err := NewSession(context.Background(), cfg, zerolog.New(zerolog.NewTestWriter(t)))
	if err != nil {
		t.Skipf("Skipping browser test - Chrome may not be available: %v", err)
	}
	t.Cleanup(s.Close)

	p, err := s.NewPage(context.Background())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

const popupHTML = `<!doctype html>
<html><head><title>Opener page</title></head>
<body>
<h1>Opener</h1>
<a id="job" href="/target" target="_blank"><div><h2>Software Developer</h2></div></a>
<a id="same" href="/target"><h2>Same tab</h2></a>
</body></html>`

func testServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(popupHTML))
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!doctype html><html><head><title>Target</title></head><body><h3>Done</h3></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPagePopupAndIdle(t *testing.T) {
	p := newTestPage(t)
	srv := testServer(t)
	ctx := context.Background()

	require.NoError(t, p.Goto(ctx, srv.URL+"/"))
	require.NoError(t, p.WaitForNetworkIdle(ctx))
	require.NoError(t, p.ExpectTitle(ctx, regexp.MustCompile(`Opener`)))
	require.NoError(t, p.Heading(1).First().ExpectContainsText(ctx, "Opener"))

	heading := p.Heading(2).Filter("Software Developer").First()
	require.NoError(t, heading.WaitVisible(ctx))
	href, ok, err := heading.EnclosingLink().Attribute(ctx, "href")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/target", href)

	popup := p.ExpectPopup()
	require.NoError(t, heading.Click(ctx))
	tab, err := popup.Wait(ctx)
	require.NoError(t, err)
	defer tab.Close()

	require.NoError(t, tab.WaitForNetworkIdle(ctx))
	url, err := tab.URL(ctx)
	require.NoError(t, err)
	assert.Contains(t, url, href)
	assert.NoError(t, tab.Heading(3).Filter("Done").WaitVisible(ctx))
}

func TestPopupTimesOutOnSameTabNavigation(t *testing.T) {
	p := newTestPage(t)
	p.cfg.NavigationTimeout = 2 * time.Second
	srv := testServer(t)
	ctx := context.Background()

	require.NoError(t, p.Goto(ctx, srv.URL+"/"))
	popup := p.ExpectPopup()
	require.NoError(t, p.Query("//a[@id='same']").Click(ctx))

	_, err := popup.Wait(ctx)
	assert.True(t, IsAssertion(err), "got %v", err)
}

func TestLocatorCountAndMissing(t *testing.T) {
	p := newTestPage(t)
	srv := testServer(t)
	ctx := context.Background()

	require.NoError(t, p.Goto(ctx, srv.URL+"/"))
	n, err := p.Heading(2).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = p.Heading(3).First().WaitVisibleWithin(ctx, 500*time.Millisecond)
	assert.True(t, IsAssertion(err))
}
