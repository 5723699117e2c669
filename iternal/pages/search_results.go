package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfczx/dealls-e2e/iternal"
	"github.com/pfczx/dealls-e2e/iternal/browser"
	"github.com/pfczx/dealls-e2e/iternal/config"
)

const defaultListingsTimeout = 10 * time.Second

const listingSelector = "h2"

type SearchResultsPage struct {
	BasePage
	// ListingsTimeout bounds the wait for the first listing to render.
	ListingsTimeout time.Duration
}

// Listing is one result card as rendered on the page.
type Listing struct {
	Title string
	Href  string
	URL   string
}

// OpenedJob is the tab a listing opened and the link it was opened from.
type OpenedJob struct {
	Page *browser.Page
	URL  string
}

func NewSearchResultsPage(page *browser.Page, site config.Site, listingsTimeout time.Duration) *SearchResultsPage {
	if listingsTimeout <= 0 {
		listingsTimeout = defaultListingsTimeout
	}
	return &SearchResultsPage{
		BasePage:        NewBasePage(page, site),
		ListingsTimeout: listingsTimeout,
	}
}

// VerifySearchResults checks that the URL carries keyword and that at least
// one listing shows up.
func (s *SearchResultsPage) VerifySearchResults(ctx context.Context, keyword string) error {
	if err := s.Page.ExpectURL(ctx, iternal.SearchQueryPattern(s.Site.SearchParam, keyword)); err != nil {
		return fmt.Errorf("search url: %w", err)
	}
	if err := s.Page.Heading(2).First().WaitVisibleWithin(ctx, s.ListingsTimeout); err != nil {
		return fmt.Errorf("search listings: %w", err)
	}
	return nil
}

// GetJobByTitle returns a locator for the first listing whose title contains
// title. Nothing is resolved until the locator is used.
func (s *SearchResultsPage) GetJobByTitle(title string) browser.Locator {
	return s.Page.Heading(2).Filter(title).First()
}

// ClickOnJob opens the listing titled jobTitle. Listings open in a new tab;
// the returned OpenedJob carries that tab and the listing's href as written
// in the DOM, or "" when the title is not inside a link.
func (s *SearchResultsPage) ClickOnJob(ctx context.Context, jobTitle string) (OpenedJob, error) {
	heading := s.GetJobByTitle(jobTitle)
	if err := heading.WaitVisible(ctx); err != nil {
		return OpenedJob{}, err
	}

	// a card without a link still opens its tab from script; href stays empty
	var href string
	link := heading.EnclosingLink()
	n, err := link.Count(ctx)
	if err != nil {
		return OpenedJob{}, err
	}
	if n > 0 {
		if href, _, err = link.Attribute(ctx, "href"); err != nil {
			return OpenedJob{}, err
		}
	}

	popup := s.Page.ExpectPopup()
	if err := heading.Click(ctx); err != nil {
		popup.Cancel()
		return OpenedJob{}, err
	}

	tab, err := popup.Wait(ctx)
	if err != nil {
		return OpenedJob{}, fmt.Errorf("open %q: %w", jobTitle, err)
	}
	return OpenedJob{Page: tab, URL: href}, nil
}

// Listings snapshots the current results.
func (s *SearchResultsPage) Listings(ctx context.Context) ([]Listing, error) {
	html, err := s.Page.OuterHTML(ctx)
	if err != nil {
		return nil, err
	}
	pageURL, err := s.Page.URL(ctx)
	if err != nil {
		return nil, err
	}
	return parseListings(html, pageURL)
}

func parseListings(html string, pageURL string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var listings []Listing
	doc.Find(listingSelector).Each(func(_ int, h *goquery.Selection) {
		title := strings.Join(strings.Fields(h.Text()), " ")
		if title == "" {
			return
		}
		href, ok := h.Closest("a").Attr("href")
		if !ok {
			return
		}
		listings = append(listings, Listing{
			Title: title,
			Href:  href,
			URL:   iternal.NormalizeURL(pageURL, href),
		})
	})
	return listings, nil
}
