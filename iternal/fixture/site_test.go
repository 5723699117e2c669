package fixture_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfczx/dealls-e2e/iternal/config"
	"github.com/pfczx/dealls-e2e/iternal/fixture"
)

func newServer(t *testing.T, opts fixture.Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(fixture.New(opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func fetchDoc(t *testing.T, rawURL string) *goquery.Document {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func TestHomePageContract(t *testing.T) {
	site := config.DefaultSite()
	srv := newServer(t, fixture.Options{})

	doc := fetchDoc(t, srv.URL+"/")
	assert.Contains(t, doc.Find("title").Text(), site.TitlePattern)
	assert.Contains(t, doc.Find("h1").First().Text(), site.Heading)
	assert.Zero(t, doc.Find("h2").Length())

	input := doc.Find("form input[type=search]")
	require.Equal(t, 1, input.Length())
	label, _ := input.Attr("aria-label")
	assert.Contains(t, label, site.SearchBoxName)
	name, _ := input.Attr("name")
	assert.Equal(t, site.SearchParam, name)
}

func TestSearchMatchesEveryWord(t *testing.T) {
	s := fixture.New(fixture.Options{})

	var titles []string
	for _, j := range s.Search("software DEVELOPER") {
		titles = append(titles, j.Title)
	}
	assert.Equal(t, []string{"Software Developer", "Senior Software Developer", "Software Developer Intern"}, titles)
	assert.Empty(t, s.Search("   "))
	assert.Empty(t, s.Search("pilot"))
}

func TestResultCardsAreFourLevelsBelowTheLink(t *testing.T) {
	srv := newServer(t, fixture.Options{})

	doc := fetchDoc(t, srv.URL+"/loker?searchJob="+url.QueryEscape("software developer"))
	headings := doc.Find("h2")
	require.Equal(t, 3, headings.Length())

	headings.Each(func(_ int, h *goquery.Selection) {
		card := h.Parent().Parent().Parent().Parent()
		assert.True(t, card.Is("a"), "expected an anchor four levels up from %q", h.Text())
		target, _ := card.Attr("target")
		assert.Equal(t, "_blank", target)
		href, _ := card.Attr("href")
		assert.True(t, strings.HasPrefix(href, "/loker/"), href)
	})
}

func TestSameTabAndDelayedListings(t *testing.T) {
	srv := newServer(t, fixture.Options{SameTab: true, ListingDelay: 300 * time.Millisecond})

	doc := fetchDoc(t, srv.URL+"/loker?searchJob=backend")
	assert.Zero(t, doc.Find("#results h2").Length(), "cards are inserted by script")
	assert.Equal(t, 1, doc.Find("div#pending[hidden]").Length())
	assert.Contains(t, doc.Find("script").Text(), "300")

	html, err := doc.Find("div#pending").Html()
	require.NoError(t, err)
	assert.NotContains(t, html, `target="_blank"`)
	assert.Contains(t, html, "Backend Engineer")
}

func TestUnknownJobIsNotFound(t *testing.T) {
	srv := newServer(t, fixture.Options{})

	resp, err := http.Get(srv.URL + "/loker/does-not-exist")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// crawl follows every listing of a search the way a visitor would and
// collects the headings of each detail page.
func crawl(t *testing.T, srv *httptest.Server, keyword string) map[string][]string {
	t.Helper()
	c := colly.NewCollector()

	var mu sync.Mutex
	sections := make(map[string][]string)

	c.OnHTML("a.job-card", func(e *colly.HTMLElement) {
		if err := e.Request.Visit(e.Attr("href")); err != nil {
			t.Errorf("visit %s: %v", e.Attr("href"), err)
		}
	})
	c.OnHTML("main", func(e *colly.HTMLElement) {
		if !strings.HasPrefix(e.Request.URL.Path, "/loker/") {
			return
		}
		var found []string
		e.ForEach("h2, h3, button", func(_ int, el *colly.HTMLElement) {
			found = append(found, strings.TrimSpace(el.Text))
		})
		mu.Lock()
		sections[e.ChildText("h1")] = found
		mu.Unlock()
	})

	require.NoError(t, c.Visit(srv.URL+"/loker?searchJob="+url.QueryEscape(keyword)))
	c.Wait()
	return sections
}

func TestDetailPagesExposeAllSections(t *testing.T) {
	srv := newServer(t, fixture.Options{})

	sections := crawl(t, srv, "software developer")
	require.Len(t, sections, 3)
	for title, found := range sections {
		assert.Equal(t, []string{"Lamar Sekarang", "Deskripsi Pekerjaan", "Kualifikasi", "Benefit Perusahaan"}, found, title)
	}
}

func TestOmittedSections(t *testing.T) {
	srv := newServer(t, fixture.Options{
		OmitSections: []fixture.Section{fixture.SectionBenefits, fixture.SectionApply},
	})

	sections := crawl(t, srv, "data analyst")
	require.Contains(t, sections, "Data Analyst")
	assert.Equal(t, []string{"Deskripsi Pekerjaan", "Kualifikasi"}, sections["Data Analyst"])

	srv = newServer(t, fixture.Options{OmitSections: []fixture.Section{fixture.SectionDescription}})
	sections = crawl(t, srv, "data analyst")
	assert.Equal(t, []string{"Lamar Sekarang", "Kualifikasi", "Benefit Perusahaan"}, sections["Data Analyst"])
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, fixture.Options{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestJobDelay(t *testing.T) {
	srv := newServer(t, fixture.Options{JobDelay: 700 * time.Millisecond})

	start := time.Now()
	doc := fetchDoc(t, srv.URL+"/loker/backend-engineer-pasar-online")
	assert.GreaterOrEqual(t, time.Since(start), 700*time.Millisecond)
	assert.Equal(t, "Backend Engineer", doc.Find("h1").Text())
}
