package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/pfczx/dealls-e2e/iternal/browser"
	"github.com/pfczx/dealls-e2e/iternal/config"
	"github.com/pfczx/dealls-e2e/iternal/fixture"
	"github.com/pfczx/dealls-e2e/iternal/pages"
	"github.com/pfczx/dealls-e2e/iternal/report"
	"github.com/pfczx/dealls-e2e/iternal/scenario"
)

type CLI struct {
	Verbose bool `help:"Enable debug logging." env:"DEALLS_E2E_VERBOSE"`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Run      RunCmd      `cmd:"" help:"Run the job search scenarios."`
	Listings ListingsCmd `cmd:"" help:"Search and print the listed jobs."`
	Fixture  FixtureCmd  `cmd:"" help:"Serve the local fixture job board."`
}

type Context struct {
	Ctx    context.Context
	Out    io.Writer
	Logger zerolog.Logger
}

// BrowserOptions are shared by commands that drive Chrome.
type BrowserOptions struct {
	Config      string `help:"Path to a YAML config file." type:"path"`
	BaseURL     string `name:"base-url" help:"Site under test."`
	Fixture     bool   `help:"Start the local fixture site and test against it."`
	Headful     bool   `help:"Show the browser window."`
	Screenshots string `help:"Directory for failure screenshots."`
}

type RunCmd struct {
	BrowserOptions
	Keyword  string `help:"Search keyword; replaces the configured scenarios."`
	Title    string `help:"Job title to open (with --keyword)."`
	Parallel bool   `help:"Run scenarios in parallel tabs."`
	Report   string `help:"Write a JSON report to this file."`
	URLs     string `name:"urls" help:"Write the visited job URLs to this file."`
}

type ListingsCmd struct {
	BrowserOptions
	Keyword string `arg:"" help:"Search keyword."`
}

type FixtureCmd struct {
	Addr  string        `help:"Listen address." default:"127.0.0.1:8080"`
	Delay time.Duration `help:"Delay before result cards appear."`
}

func (o BrowserOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return cfg, err
	}
	if o.BaseURL != "" {
		cfg.Site.BaseURL = o.BaseURL
	}
	if o.Headful {
		cfg.Browser.Headless = false
	}
	if o.Screenshots != "" {
		cfg.ScreenshotDir = o.Screenshots
	}
	return cfg, nil
}

// prepare loads the config, starts the fixture site when asked and opens
// the browser. The returned cleanup releases both.
func (o BrowserOptions) prepare(rc *Context, mutate func(*config.Config)) (config.Config, *browser.Session, func(), error) {
	cfg, err := o.load()
	if err != nil {
		return cfg, nil, nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}

	var srv *http.Server
	if o.Fixture {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return cfg, nil, nil, fmt.Errorf("fixture listener: %w", err)
		}
		srv = &http.Server{Handler: fixture.New(fixture.Options{Log: rc.Logger}).Handler()}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rc.Logger.Error().Err(err).Msg("fixture server stopped")
			}
		}()
		cfg.Site.BaseURL = "http://" + ln.Addr().String() + "/"
		if err := checkHealth(rc.Ctx, cfg.Site.BaseURL+"healthz"); err != nil {
			_ = srv.Close()
			return cfg, nil, nil, err
		}
		rc.Logger.Info().Str("url", cfg.Site.BaseURL).Msg("fixture site started")
	}
	stopFixture := func() {
		if srv != nil {
			_ = srv.Close()
		}
	}

	if err := cfg.Validate(); err != nil {
		stopFixture()
		return cfg, nil, nil, err
	}

	session, err := browser.NewSession(rc.Ctx, cfg.BrowserConfig(), rc.Logger)
	if err != nil {
		stopFixture()
		return cfg, nil, nil, err
	}
	return cfg, session, func() {
		session.Close()
		stopFixture()
	}, nil
}

func checkHealth(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fixture health check: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("fixture health check: status %d", resp.StatusCode)
	}
	return nil
}

func (r *RunCmd) Run(rc *Context) error {
	if (r.Keyword == "") != (r.Title == "") {
		return errors.New("--keyword and --title go together")
	}
	cfg, session, cleanup, err := r.prepare(rc, func(c *config.Config) {
		if r.Keyword != "" {
			c.Scenarios = []config.Scenario{{Keyword: r.Keyword, JobTitle: r.Title}}
		}
	})
	if err != nil {
		return err
	}
	defer cleanup()

	var results []scenario.Result
	failed := 0
	for res := range scenario.RunScenarios(rc.Ctx, scenario.FromConfig(session, cfg, rc.Logger), r.Parallel, rc.Logger) {
		results = append(results, res)
		status := "PASS"
		if !res.Passed() {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(rc.Out, "%s\t%s\t%s\t%s\n", status, res.Scenario, res.State, res.Duration.Round(time.Millisecond))
	}

	if r.Report != "" {
		if err := report.Save(r.Report, results); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if r.URLs != "" {
		if err := report.SaveURLs(r.URLs, report.JobURLs(results)); err != nil {
			return fmt.Errorf("write urls: %w", err)
		}
	}

	if err := rc.Ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}

func (l *ListingsCmd) Run(rc *Context) error {
	cfg, session, cleanup, err := l.prepare(rc, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := session.NewPage(rc.Ctx)
	if err != nil {
		return err
	}
	defer page.Close()

	home := pages.NewHomePage(page, cfg.Site)
	if err := home.Goto(rc.Ctx); err != nil {
		return err
	}
	if err := home.SearchJobs(rc.Ctx, l.Keyword); err != nil {
		return err
	}
	results := pages.NewSearchResultsPage(page, cfg.Site, cfg.Timeouts.Listings)
	if err := results.VerifySearchResults(rc.Ctx, l.Keyword); err != nil {
		return err
	}

	listings, err := results.Listings(rc.Ctx)
	if err != nil {
		return err
	}
	for _, li := range listings {
		fmt.Fprintf(rc.Out, "%s\t%s\n", li.Title, li.URL)
	}
	rc.Logger.Info().Int("count", len(listings)).Str("keyword", l.Keyword).Msg("listings collected")
	return nil
}

func (f *FixtureCmd) Run(rc *Context) error {
	srv := &http.Server{
		Addr:    f.Addr,
		Handler: fixture.New(fixture.Options{ListingDelay: f.Delay, Log: rc.Logger}).Handler(),
	}
	go func() {
		<-rc.Ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	rc.Logger.Info().Str("addr", f.Addr).Msg("serving fixture site")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
