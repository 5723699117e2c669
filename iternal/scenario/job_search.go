package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pfczx/dealls-e2e/iternal/browser"
	"github.com/pfczx/dealls-e2e/iternal/config"
	"github.com/pfczx/dealls-e2e/iternal/pages"
)

// PageOpener hands out fresh tabs; *browser.Session is one.
type PageOpener interface {
	NewPage(ctx context.Context) (*browser.Page, error)
}

// JobSearch is the homepage → search → results → job details journey for
// one keyword and job title.
type JobSearch struct {
	name          string
	Keyword       string
	JobTitle      string
	Site          config.Site
	Timeouts      config.Timeouts
	ScreenshotDir string

	opener PageOpener
	log    zerolog.Logger
}

func NewJobSearch(opener PageOpener, cfg config.Config, sc config.Scenario, log zerolog.Logger) *JobSearch {
	name := sc.Name
	if name == "" {
		name = fmt.Sprintf("search %q open %q", sc.Keyword, sc.JobTitle)
	}
	return &JobSearch{
		name:          name,
		Keyword:       sc.Keyword,
		JobTitle:      sc.JobTitle,
		Site:          cfg.Site,
		Timeouts:      cfg.Timeouts,
		ScreenshotDir: cfg.ScreenshotDir,
		opener:        opener,
		log:           log,
	}
}

// FromConfig builds one JobSearch per configured scenario.
func FromConfig(opener PageOpener, cfg config.Config, log zerolog.Logger) []Scenario {
	out := make([]Scenario, 0, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		out = append(out, NewJobSearch(opener, cfg, sc, log))
	}
	return out
}

func (j *JobSearch) Name() string {
	return j.name
}

type step struct {
	name    string
	reaches State
	run     func(ctx context.Context) error
}

func (j *JobSearch) Run(ctx context.Context) Result {
	res := Result{
		ID:        uuid.NewString(),
		Scenario:  j.name,
		Keyword:   j.Keyword,
		JobTitle:  j.JobTitle,
		State:     Initial,
		StartedAt: time.Now(),
	}
	log := j.log.With().Str("scenario", j.name).Str("run_id", res.ID).Logger()

	page, err := j.opener.NewPage(ctx)
	if err != nil {
		res.Err = &StepError{Step: "open tab", State: Initial, Err: err}
		res.Duration = time.Since(res.StartedAt)
		return res
	}
	defer page.Close()

	home := pages.NewHomePage(page, j.Site)
	results := pages.NewSearchResultsPage(page, j.Site, j.Timeouts.Listings)
	current := page
	var opened pages.OpenedJob

	steps := []step{
		{"navigate to homepage", HomeLoaded, func(ctx context.Context) error {
			if err := home.Goto(ctx); err != nil {
				return err
			}
			return home.VerifyPageLoaded(ctx)
		}},
		{"search for jobs", SearchSubmitted, func(ctx context.Context) error {
			return home.SearchJobs(ctx, j.Keyword)
		}},
		{"verify search results", ResultsVerified, func(ctx context.Context) error {
			return results.VerifySearchResults(ctx, j.Keyword)
		}},
		{"open job listing", JobTabOpened, func(ctx context.Context) error {
			var err error
			opened, err = results.ClickOnJob(ctx, j.JobTitle)
			if err != nil {
				return err
			}
			current = opened.Page
			res.JobURL = opened.URL
			return nil
		}},
		{"verify job details", DetailsVerified, func(ctx context.Context) error {
			return pages.NewJobDetailsPage(opened.Page, j.Site).VerifyJobDetailsPage(ctx, opened.URL)
		}},
	}
	defer func() {
		if opened.Page != nil {
			opened.Page.Close()
		}
	}()

	for _, st := range steps {
		start := time.Now()
		log.Debug().Str("step", st.name).Msg("step started")
		if err := st.run(ctx); err != nil {
			res.Err = &StepError{Step: st.name, State: res.State, Err: err}
			res.Screenshot = j.capture(ctx, current, res, log)
			break
		}
		res.State = st.reaches
		log.Info().Str("step", st.name).Stringer("state", res.State).Dur("took", time.Since(start)).Msg("step passed")
	}

	res.Duration = time.Since(res.StartedAt)
	return res
}

// capture saves a screenshot of page for a failed run. It returns the file
// path, or "" when screenshots are off or could not be taken.
func (j *JobSearch) capture(ctx context.Context, page *browser.Page, res Result, log zerolog.Logger) string {
	if j.ScreenshotDir == "" {
		return ""
	}
	buf, err := page.Screenshot(context.WithoutCancel(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("screenshot failed")
		return ""
	}
	if err := os.MkdirAll(j.ScreenshotDir, 0o755); err != nil {
		log.Warn().Err(err).Msg("screenshot dir")
		return ""
	}
	path := filepath.Join(j.ScreenshotDir, fmt.Sprintf("%s-%s.png", res.ID, res.State))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("screenshot write failed")
		return ""
	}
	return path
}
