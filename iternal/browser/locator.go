package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const anyHeadingXPath = "//h1 | //h2 | //h3 | //h4 | //h5 | //h6 | //*[@role='heading']"

// Locator is a lazily evaluated XPath query bound to a page. Every method
// resolves it again; it never holds on to a DOM node.
type Locator struct {
	page  *Page
	xpath string
	desc  string
}

func (l Locator) XPath() string {
	return l.xpath
}

func (l Locator) String() string {
	return l.desc
}

// Filter keeps matches whose normalized text contains text.
func (l Locator) Filter(text string) Locator {
	return Locator{
		page:  l.page,
		xpath: fmt.Sprintf("(%s)[contains(normalize-space(.), %s)]", l.xpath, xpathLiteral(text)),
		desc:  fmt.Sprintf("%s containing %q", l.desc, text),
	}
}

func (l Locator) First() Locator {
	return l.Nth(0)
}

func (l Locator) Nth(i int) Locator {
	return Locator{
		page:  l.page,
		xpath: fmt.Sprintf("(%s)[%d]", l.xpath, i+1),
		desc:  fmt.Sprintf("%s #%d", l.desc, i+1),
	}
}

// EnclosingLink resolves the nearest <a> ancestor of the first match.
func (l Locator) EnclosingLink() Locator {
	return Locator{
		page:  l.page,
		xpath: fmt.Sprintf("(%s)[1]/ancestor::a[1]", l.xpath),
		desc:  fmt.Sprintf("link around %s", l.desc),
	}
}

// WaitVisible waits up to the page's expectation timeout.
func (l Locator) WaitVisible(ctx context.Context) error {
	return l.WaitVisibleWithin(ctx, l.page.cfg.ExpectTimeout)
}

func (l Locator) WaitVisibleWithin(ctx context.Context, timeout time.Duration) error {
	err := l.page.run(ctx, timeout, chromedp.WaitVisible(l.first(), chromedp.BySearch))
	if err != nil {
		return &AssertionError{Expectation: l.desc + " to be visible", Timeout: timeout, Err: err}
	}
	return nil
}

// ExpectContainsText waits until the first match's text contains text.
func (l Locator) ExpectContainsText(ctx context.Context, text string) error {
	timeout := l.page.cfg.ExpectTimeout
	expectation := fmt.Sprintf("%s to contain %q", l.desc, text)
	return eventually(ctx, timeout, expectation, func(ctx context.Context) (bool, string, error) {
		got, err := l.Text(ctx)
		if err != nil {
			return false, "", err
		}
		return strings.Contains(got, text), got, nil
	})
}

func (l Locator) Text(ctx context.Context) (string, error) {
	var text string
	if err := l.page.run(ctx, l.page.cfg.ExpectTimeout, chromedp.Text(l.first(), &text, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("read text of %s: %w", l.desc, err)
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// Attribute returns the raw attribute value of the first match.
func (l Locator) Attribute(ctx context.Context, name string) (string, bool, error) {
	var value string
	var ok bool
	err := l.page.run(ctx, l.page.cfg.ExpectTimeout, chromedp.AttributeValue(l.first(), name, &value, &ok, chromedp.BySearch))
	if err != nil {
		return "", false, fmt.Errorf("read %s of %s: %w", name, l.desc, err)
	}
	return value, ok, nil
}

// Count returns the current number of matches without waiting.
func (l Locator) Count(ctx context.Context) (int, error) {
	var nodes []*cdp.Node
	err := l.page.run(ctx, l.page.cfg.ExpectTimeout, chromedp.Nodes(l.xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", l.desc, err)
	}
	return len(nodes), nil
}

// Fill replaces the value of the first match.
func (l Locator) Fill(ctx context.Context, value string) error {
	sel := l.first()
	err := l.page.run(ctx, l.page.cfg.ExpectTimeout,
		chromedp.Clear(sel, chromedp.BySearch),
		chromedp.SendKeys(sel, value, chromedp.BySearch),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", l.desc, err)
	}
	return nil
}

// Press sends one key, e.g. kb.Enter, to the first match.
func (l Locator) Press(ctx context.Context, key string) error {
	if err := l.page.run(ctx, l.page.cfg.ExpectTimeout, chromedp.SendKeys(l.first(), key, chromedp.BySearch)); err != nil {
		return fmt.Errorf("press %q on %s: %w", key, l.desc, err)
	}
	return nil
}

func (l Locator) PressEnter(ctx context.Context) error {
	return l.Press(ctx, kb.Enter)
}

func (l Locator) Click(ctx context.Context) error {
	if err := l.page.run(ctx, l.page.cfg.ExpectTimeout, chromedp.Click(l.first(), chromedp.BySearch)); err != nil {
		return fmt.Errorf("click %s: %w", l.desc, err)
	}
	return nil
}

// first narrows actions to one node; chromedp acts on every match otherwise.
func (l Locator) first() string {
	return fmt.Sprintf("(%s)[1]", l.xpath)
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts)-1)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+part+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
