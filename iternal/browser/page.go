package browser

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Page is a handle to one browser tab. Page objects hold it without owning
// it; whoever opened the tab closes it.
type Page struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      Config
	idle     *idleTracker
	targetID target.ID
	base     zerolog.Logger
	log      zerolog.Logger
}

func (p *Page) TargetID() target.ID {
	return p.targetID
}

// runContext derives a chromedp context for this tab bounded by timeout and
// by the caller's ctx.
func (p *Page) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := p.runContext(ctx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Goto navigates the tab and waits for the load event.
func (p *Page) Goto(ctx context.Context, url string) error {
	start := time.Now()
	if err := p.run(ctx, p.cfg.NavigationTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	p.log.Debug().Str("url", url).Dur("took", time.Since(start)).Msg("navigated")
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var url string
	if err := p.run(ctx, p.cfg.ExpectTimeout, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, p.cfg.ExpectTimeout, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

// WaitForNetworkIdle blocks until Chrome reports the tab's current document
// network idle and no request has been in flight for the idle window.
func (p *Page) WaitForNetworkIdle(ctx context.Context) error {
	expectation := fmt.Sprintf("network idle for %s", p.cfg.IdleWindow)
	frame := cdp.FrameID(p.targetID)
	return eventually(ctx, p.cfg.NavigationTimeout, expectation, func(ctx context.Context) (bool, string, error) {
		if !p.idle.documentIdle(frame) {
			return false, "document still loading", nil
		}
		if !p.idle.quiet(p.cfg.IdleWindow) {
			return false, fmt.Sprintf("%d requests in flight", p.idle.pending()), nil
		}
		return true, "", nil
	})
}

// ExpectTitle waits until the document title matches re.
func (p *Page) ExpectTitle(ctx context.Context, re *regexp.Regexp) error {
	return eventually(ctx, p.cfg.ExpectTimeout, "title to match "+re.String(), func(ctx context.Context) (bool, string, error) {
		title, err := p.Title(ctx)
		if err != nil {
			return false, "", err
		}
		return re.MatchString(title), title, nil
	})
}

// ExpectURL waits until the tab's location matches re.
func (p *Page) ExpectURL(ctx context.Context, re *regexp.Regexp) error {
	return eventually(ctx, p.cfg.ExpectTimeout, "url to match "+re.String(), func(ctx context.Context) (bool, string, error) {
		url, err := p.URL(ctx)
		if err != nil {
			return false, "", err
		}
		return re.MatchString(url), url, nil
	})
}

func (p *Page) OuterHTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, p.cfg.ExpectTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return html, nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, p.cfg.NavigationTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// Close closes the tab. Safe to call more than once.
func (p *Page) Close() {
	p.cancel()
}

// Query returns a locator for an arbitrary XPath expression.
func (p *Page) Query(xpath string) Locator {
	return Locator{page: p, xpath: xpath, desc: xpath}
}

// Heading matches h1-h6 of the given level, or any heading for level 0.
func (p *Page) Heading(level int) Locator {
	if level <= 0 {
		return Locator{page: p, xpath: anyHeadingXPath, desc: "heading"}
	}
	return Locator{
		page:  p,
		xpath: fmt.Sprintf("//h%d | //*[@role='heading' and @aria-level='%d']", level, level),
		desc:  fmt.Sprintf("heading level %d", level),
	}
}

// TextBox matches text inputs whose accessible name contains name.
func (p *Page) TextBox(name string) Locator {
	lit := xpathLiteral(name)
	cond := fmt.Sprintf("contains(@aria-label, %[1]s) or contains(@placeholder, %[1]s) or contains(@title, %[1]s)", lit)
	return Locator{
		page: p,
		xpath: fmt.Sprintf("//input[(not(@type) or @type='text' or @type='search') and (%s)] | //textarea[%s] | //*[@role='textbox' and (%s)]",
			cond, cond, cond),
		desc: fmt.Sprintf("textbox named %q", name),
	}
}

func (p *Page) Button() Locator {
	return Locator{
		page:  p,
		xpath: "//button | //*[@role='button'] | //input[@type='submit' or @type='button']",
		desc:  "button",
	}
}

// ExpectPopup starts listening for a tab opened by this page. Call it
// before the action that opens the tab.
func (p *Page) ExpectPopup() *Popup {
	listenCtx, cancel := context.WithCancel(p.ctx)
	opener := p.targetID
	// the tab is reported first while still blank; wait until it has a URL
	ch := chromedp.WaitNewTarget(listenCtx, func(info *target.Info) bool {
		return info.Type == "page" && info.OpenerID == opener &&
			info.URL != "" && info.URL != "about:blank"
	})
	return &Popup{opener: p, ch: ch, cancel: cancel}
}
