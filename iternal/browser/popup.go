package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// Popup is a pending "new tab opened by page" event.
type Popup struct {
	opener *Page
	ch     <-chan target.ID
	cancel context.CancelFunc
}

// Wait blocks until the tab opens and returns a Page attached to it. If the
// opener navigates in place instead, Wait fails after the navigation timeout.
func (w *Popup) Wait(ctx context.Context) (*Page, error) {
	defer w.cancel()

	timeout := w.opener.cfg.NavigationTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var id target.ID
	select {
	case id = <-w.ch:
	case <-ctx.Done():
		return nil, &AssertionError{Expectation: "popup to open", Err: ctx.Err()}
	case <-timer.C:
		return nil, &AssertionError{Expectation: "popup to open", Timeout: timeout}
	}

	tabCtx, cancel := chromedp.NewContext(w.opener.ctx, chromedp.WithTargetID(id))
	p, err := attachPage(tabCtx, cancel, w.opener.cfg, w.opener.base)
	if err != nil {
		return nil, fmt.Errorf("attach popup %s: %w", id, err)
	}
	p.log.Debug().Str("opener", string(w.opener.targetID)).Msg("popup attached")
	return p, nil
}

// Cancel stops listening without waiting.
func (w *Popup) Cancel() {
	w.cancel()
}
