package browser

import "time"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Config describes how the Chrome instance behind a Session is launched.
type Config struct {
	Headless       bool     `yaml:"headless"`
	ExecPath       string   `yaml:"exec_path,omitempty"`
	UserAgent      string   `yaml:"user_agent,omitempty"`
	ViewportWidth  int      `yaml:"viewport_width"`
	ViewportHeight int      `yaml:"viewport_height"`
	NoSandbox      bool     `yaml:"no_sandbox"`
	Flags          []string `yaml:"flags,omitempty"`

	// ExpectTimeout is the default wait for locator and page expectations.
	ExpectTimeout time.Duration `yaml:"-"`
	// NavigationTimeout bounds navigation, network idle and popup waits.
	NavigationTimeout time.Duration `yaml:"-"`
	// IdleWindow is how long the network has to stay quiet to count as idle.
	IdleWindow time.Duration `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Headless:          true,
		UserAgent:         defaultUserAgent,
		ViewportWidth:     1280,
		ViewportHeight:    900,
		ExpectTimeout:     5 * time.Second,
		NavigationTimeout: 30 * time.Second,
		IdleWindow:        500 * time.Millisecond,
	}
}
