package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Session owns one Chrome process. Pages opened from it share the browser
// but nothing else.
type Session struct {
	cfg           Config
	log           zerolog.Logger
	allocCtx      context.Context
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.Headless),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	for _, f := range cfg.Flags {
		name, value, found := strings.Cut(strings.TrimLeft(f, "-"), "=")
		if !found {
			opts = append(opts, chromedp.Flag(name, true))
			continue
		}
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// NewSession starts Chrome. The browser lives until Close is called or ctx
// is cancelled.
func NewSession(ctx context.Context, cfg Config, log zerolog.Logger) (*Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// first Run starts the browser, it must not carry a deadline
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	log.Debug().Bool("headless", cfg.Headless).Str("exec_path", cfg.ExecPath).Msg("browser started")
	return &Session{
		cfg:           cfg,
		log:           log,
		allocCtx:      allocCtx,
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}, nil
}

// NewPage opens a fresh tab.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	p, err := attachPage(tabCtx, cancel, s.cfg, s.log)
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return p, nil
}

// Pages lists the browser's open tabs.
func (s *Session) Pages(ctx context.Context) ([]*target.Info, error) {
	listCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	infos, err := chromedp.Targets(listCtx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	var tabs []*target.Info
	for _, info := range infos {
		if info.Type == "page" {
			tabs = append(tabs, info)
		}
	}
	return tabs, nil
}

func (s *Session) Close() {
	s.cancelBrowser()
	s.cancelAlloc()
	s.log.Debug().Msg("browser closed")
}

// attachPage runs the per-tab setup on a chromedp context that may still
// have to attach to its target.
func attachPage(tabCtx context.Context, cancel context.CancelFunc, cfg Config, log zerolog.Logger) (*Page, error) {
	p := &Page{
		ctx:    tabCtx,
		cancel: cancel,
		cfg:    cfg,
		idle:   newIdleTracker(),
	}
	chromedp.ListenTarget(tabCtx, p.idle.handle)

	// attaching enables the network and lifecycle events the tracker needs
	err := chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
				return nil
			}
			return emulation.SetDeviceMetricsOverride(int64(cfg.ViewportWidth), int64(cfg.ViewportHeight), 1.0, false).Do(ctx)
		}),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	p.targetID = chromedp.FromContext(tabCtx).Target.TargetID
	p.base = log
	p.log = log.With().Str("target", string(p.targetID)).Logger()
	return p, nil
}
