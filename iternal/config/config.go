package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfczx/dealls-e2e/iternal/browser"
	"gopkg.in/yaml.v3"
)

const (
	EnvBaseURL       = "DEALLS_E2E_BASE_URL"
	EnvHeadless      = "DEALLS_E2E_HEADLESS"
	EnvChrome        = "DEALLS_E2E_CHROME"
	EnvScreenshotDir = "DEALLS_E2E_SCREENSHOT_DIR"
)

type Config struct {
	Browser       browser.Config `yaml:"browser"`
	Site          Site           `yaml:"site"`
	Timeouts      Timeouts       `yaml:"timeouts"`
	Scenarios     []Scenario     `yaml:"scenarios"`
	ScreenshotDir string         `yaml:"screenshot_dir,omitempty"`
}

// Site is what the suite expects the job board to expose. Defaults are the
// labels of the live dealls.com pages.
type Site struct {
	BaseURL               string `yaml:"base_url"`
	TitlePattern          string `yaml:"title_pattern"`
	Heading               string `yaml:"heading"`
	SearchBoxName         string `yaml:"search_box_name"`
	SearchParam           string `yaml:"search_param"`
	DescriptionHeading    string `yaml:"description_heading"`
	QualificationsHeading string `yaml:"qualifications_heading"`
	ApplyText             string `yaml:"apply_text"`
	BenefitsHeading       string `yaml:"benefits_heading"`
}

type Timeouts struct {
	Expect     time.Duration `yaml:"expect"`
	Listings   time.Duration `yaml:"listings"`
	Navigation time.Duration `yaml:"navigation"`
	IdleWindow time.Duration `yaml:"idle_window"`
}

type Scenario struct {
	Name     string `yaml:"name,omitempty"`
	Keyword  string `yaml:"keyword"`
	JobTitle string `yaml:"job_title"`
}

func DefaultSite() Site {
	return Site{
		BaseURL:               "https://dealls.com/",
		TitlePattern:          "Lowongan Kerja Terbaru",
		Heading:               "Cari Lowongan Kerja Pakai Dealls",
		SearchBoxName:         "Search by job title",
		SearchParam:           "searchJob",
		DescriptionHeading:    "Deskripsi Pekerjaan",
		QualificationsHeading: "Kualifikasi",
		ApplyText:             "Lamar",
		BenefitsHeading:       "Benefit Perusahaan",
	}
}

func DefaultConfig() Config {
	b := browser.DefaultConfig()
	return Config{
		Browser: b,
		Site:    DefaultSite(),
		Timeouts: Timeouts{
			Expect:     b.ExpectTimeout,
			Listings:   10 * time.Second,
			Navigation: b.NavigationTimeout,
			IdleWindow: b.IdleWindow,
		},
		Scenarios: []Scenario{
			{Name: "software developer search", Keyword: "software developer", JobTitle: "Software Developer"},
		},
	}
}

// Load reads a YAML file over the defaults. An empty filename yields the
// defaults. Environment overrides are applied last.
func Load(filename string) (Config, error) {
	if filename == "" {
		cfg := DefaultConfig()
		if err := applyEnv(&cfg); err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return LoadFromBytes(data)
}

func LoadFromBytes(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) > 0 {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML configuration: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHeadless)); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHeadless, err)
		}
		cfg.Browser.Headless = headless
	}
	if v := strings.TrimSpace(os.Getenv(EnvChrome)); v != "" {
		cfg.Browser.ExecPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvScreenshotDir)); v != "" {
		cfg.ScreenshotDir = v
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Site.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("site.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		errs = append(errs, fmt.Errorf("site.base_url: %q is not an absolute http(s) URL", c.Site.BaseURL))
	}
	if _, err := regexp.Compile(c.Site.TitlePattern); err != nil {
		errs = append(errs, fmt.Errorf("site.title_pattern: %w", err))
	}
	if c.Site.SearchParam == "" {
		errs = append(errs, errors.New("site.search_param is required"))
	}

	for name, d := range map[string]time.Duration{
		"expect":      c.Timeouts.Expect,
		"listings":    c.Timeouts.Listings,
		"navigation":  c.Timeouts.Navigation,
		"idle_window": c.Timeouts.IdleWindow,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("timeouts.%s must be positive, got %s", name, d))
		}
	}

	if len(c.Scenarios) == 0 {
		errs = append(errs, errors.New("at least one scenario is required"))
	}
	for i, s := range c.Scenarios {
		if strings.TrimSpace(s.Keyword) == "" {
			errs = append(errs, fmt.Errorf("scenarios[%d].keyword is required", i))
		}
		if strings.TrimSpace(s.JobTitle) == "" {
			errs = append(errs, fmt.Errorf("scenarios[%d].job_title is required", i))
		}
	}

	return errors.Join(errs...)
}

// BrowserConfig returns the browser settings with the configured timeouts.
func (c Config) BrowserConfig() browser.Config {
	b := c.Browser
	b.ExpectTimeout = c.Timeouts.Expect
	b.NavigationTimeout = c.Timeouts.Navigation
	b.IdleWindow = c.Timeouts.IdleWindow
	return b
}

// TitleRegexp panics on an invalid pattern; Validate catches that first.
func (s Site) TitleRegexp() *regexp.Regexp {
	return regexp.MustCompile(s.TitlePattern)
}
