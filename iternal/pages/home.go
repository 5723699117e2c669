package pages

import (
	"context"
	"fmt"

	"github.com/pfczx/dealls-e2e/iternal/browser"
	"github.com/pfczx/dealls-e2e/iternal/config"
)

type HomePage struct {
	BasePage
	Heading   browser.Locator
	SearchBox browser.Locator
}

func NewHomePage(page *browser.Page, site config.Site) *HomePage {
	return &HomePage{
		BasePage:  NewBasePage(page, site),
		Heading:   page.Heading(1).First(),
		SearchBox: page.TextBox(site.SearchBoxName).First(),
	}
}

// Goto opens the landing page.
func (h *HomePage) Goto(ctx context.Context) error {
	return h.BasePage.Goto(ctx, h.Site.BaseURL)
}

func (h *HomePage) VerifyPageLoaded(ctx context.Context) error {
	if err := h.Page.ExpectTitle(ctx, h.Site.TitleRegexp()); err != nil {
		return fmt.Errorf("home page title: %w", err)
	}
	if err := h.Heading.ExpectContainsText(ctx, h.Site.Heading); err != nil {
		return fmt.Errorf("home page heading: %w", err)
	}
	return nil
}

// SearchJobs types keyword into the search box and submits it with Enter.
// It does not wait for the results page.
func (h *HomePage) SearchJobs(ctx context.Context, keyword string) error {
	if err := h.SearchBox.WaitVisible(ctx); err != nil {
		return err
	}
	if err := h.SearchBox.Fill(ctx, keyword); err != nil {
		return err
	}
	return h.SearchBox.PressEnter(ctx)
}
