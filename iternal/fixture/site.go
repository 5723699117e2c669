// Package fixture serves a small job board that honours the same page
// contract as dealls.com, so the suite can run without the live site.
package fixture

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pfczx/dealls-e2e/iternal/config"
	"github.com/rs/zerolog"
)

type Section string

const (
	SectionDescription    Section = "description"
	SectionQualifications Section = "qualifications"
	SectionApply          Section = "apply"
	SectionBenefits       Section = "benefits"
)

type Options struct {
	Site config.Site
	Jobs []Job
	// OmitSections are left out of every job detail page.
	OmitSections []Section
	// SameTab renders listing links without target=_blank.
	SameTab bool
	// ListingDelay inserts the result cards by script after the delay.
	ListingDelay time.Duration
	// JobDelay holds back every job detail response.
	JobDelay time.Duration
	Log      zerolog.Logger
}

type Site struct {
	opts   Options
	router *chi.Mux
	omit   map[string]bool
}

func New(opts Options) *Site {
	if opts.Site == (config.Site{}) {
		opts.Site = config.DefaultSite()
	}
	if opts.Jobs == nil {
		opts.Jobs = DefaultJobs()
	}
	s := &Site{
		opts:   opts,
		router: chi.NewRouter(),
		omit:   make(map[string]bool),
	}
	for _, sec := range opts.OmitSections {
		s.omit[string(sec)] = true
	}
	s.setupRoutes()
	return s
}

func (s *Site) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/", s.handleHome)
	s.router.Get("/loker", s.handleSearch)
	s.router.Get("/loker/{slug}", s.handleJob)
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Site) Handler() http.Handler {
	return s.router
}

// Search returns the jobs a results page lists for keyword.
func (s *Site) Search(keyword string) []Job {
	var out []Job
	for _, j := range s.opts.Jobs {
		if j.matches(keyword) {
			out = append(out, j)
		}
	}
	return out
}

func (s *Site) job(slug string) (Job, bool) {
	for _, j := range s.opts.Jobs {
		if j.Slug == slug {
			return j, true
		}
	}
	return Job{}, false
}

func (s *Site) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.opts.Log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.RequestURI()).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("fixture request")
	})
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, homeTmpl, map[string]any{
		"Site": s.opts.Site,
	})
}

func (s *Site) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get(s.opts.Site.SearchParam))
	s.render(w, http.StatusOK, resultsTmpl, map[string]any{
		"Site":    s.opts.Site,
		"Keyword": keyword,
		"Jobs":    s.Search(keyword),
		"SameTab": s.opts.SameTab,
		"DelayMS": s.opts.ListingDelay.Milliseconds(),
	})
}

func (s *Site) handleJob(w http.ResponseWriter, r *http.Request) {
	if s.opts.JobDelay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.opts.JobDelay):
		}
	}
	j, ok := s.job(chi.URLParam(r, "slug"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, jobTmpl, map[string]any{
		"Site": s.opts.Site,
		"Job":  j,
		"Omit": s.omit,
	})
}

func (s *Site) render(w http.ResponseWriter, status int, t *template.Template, data any) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		s.opts.Log.Error().Err(err).Str("template", t.Name()).Msg("render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(sb.String()))
}
