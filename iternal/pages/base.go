// Package pages models the job board as page objects on top of the browser
// package. Page objects keep locators and assertions; tests and scenarios
// only call named operations.
package pages

import (
	"context"

	"github.com/pfczx/dealls-e2e/iternal/browser"
	"github.com/pfczx/dealls-e2e/iternal/config"
)

// BasePage holds what every page object shares.
type BasePage struct {
	Page *browser.Page
	Site config.Site
}

func NewBasePage(page *browser.Page, site config.Site) BasePage {
	return BasePage{Page: page, Site: site}
}

func (b *BasePage) Goto(ctx context.Context, url string) error {
	return b.Page.Goto(ctx, url)
}

// WaitForPageLoad blocks until the tab is network idle.
func (b *BasePage) WaitForPageLoad(ctx context.Context) error {
	return b.Page.WaitForNetworkIdle(ctx)
}
