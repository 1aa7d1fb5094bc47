package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/sevigo/cartpilot/internal/config"
)

// Launcher starts headless Chrome sessions through chromedp.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *slog.Logger
}

func NewLauncher(cfg config.BrowserConfig, logger *slog.Logger) *Launcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = 10 * time.Second
	}
	return &Launcher{cfg: cfg, logger: logger.With("component", "browser")}
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if l.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.cfg.UserAgent))
	}
	if l.cfg.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(l.cfg.ProxyServer))
	}
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}
	if l.cfg.ProfilePath != "" {
		opts = append(opts, chromedp.UserDataDir(l.cfg.ProfilePath))
	}
	return opts
}

// NewSession launches a browser and opens a tab. The browser lives until the
// session is closed or ctx is cancelled.
func (l *Launcher) NewSession(ctx context.Context) (Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			l.logger.Debug("chromedp error", "message", fmt.Sprintf(format, args...))
		}),
	)

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	l.logger.Debug("browser session started", "headless", l.cfg.Headless)
	return &chromeSession{
		ctx:           tabCtx,
		cancelTab:     cancelTab,
		cancelAlloc:   cancelAlloc,
		navTimeout:    l.cfg.NavigationTimeout,
		actionTimeout: l.cfg.ActionTimeout,
		logger:        l.logger,
	}, nil
}

type chromeSession struct {
	ctx           context.Context
	cancelTab     context.CancelFunc
	cancelAlloc   context.CancelFunc
	navTimeout    time.Duration
	actionTimeout time.Duration
	logger        *slog.Logger
	closeOnce     sync.Once
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func queryOptions(loc Locator, all bool) []chromedp.QueryOption {
	if loc.By == ByXPath {
		return []chromedp.QueryOption{chromedp.BySearch}
	}
	if all {
		return []chromedp.QueryOption{chromedp.ByQueryAll}
	}
	return []chromedp.QueryOption{chromedp.ByQuery}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitFor(ctx context.Context, loc Locator) error {
	if err := s.run(ctx, s.navTimeout, chromedp.WaitVisible(loc.Query, queryOptions(loc, false)...)); err != nil {
		return fmt.Errorf("waiting for %s: %w", loc, err)
	}
	return nil
}

func (s *chromeSession) Exists(ctx context.Context, loc Locator) (bool, error) {
	var nodes []*cdp.Node
	opts := append(queryOptions(loc, true), chromedp.AtLeast(0))
	if err := s.run(ctx, s.actionTimeout, chromedp.Nodes(loc.Query, &nodes, opts...)); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", loc, err)
	}
	return len(nodes) > 0, nil
}

// require fails fast with ErrNotFound instead of letting a query wait out
// the action timeout.
func (s *chromeSession) require(ctx context.Context, loc Locator) error {
	ok, err := s.Exists(ctx, loc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", loc, ErrNotFound)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, loc Locator) error {
	if err := s.require(ctx, loc); err != nil {
		return err
	}
	if err := s.run(ctx, s.actionTimeout, chromedp.Click(loc.Query, queryOptions(loc, false)...)); err != nil {
		return fmt.Errorf("failed to click %s: %w", loc, err)
	}
	return nil
}

func (s *chromeSession) SendKeys(ctx context.Context, loc Locator, text string, submit bool) error {
	if err := s.require(ctx, loc); err != nil {
		return err
	}
	opts := queryOptions(loc, false)
	actions := []chromedp.Action{
		chromedp.Clear(loc.Query, opts...),
		chromedp.SendKeys(loc.Query, text, opts...),
	}
	if submit {
		actions = append(actions, chromedp.SendKeys(loc.Query, kb.Enter, opts...))
	}
	if err := s.run(ctx, s.actionTimeout, actions...); err != nil {
		return fmt.Errorf("failed to type into %s: %w", loc, err)
	}
	return nil
}

func (s *chromeSession) SetValue(ctx context.Context, loc Locator, value string) error {
	if err := s.require(ctx, loc); err != nil {
		return err
	}
	if err := s.run(ctx, s.actionTimeout, chromedp.SetValue(loc.Query, value, queryOptions(loc, false)...)); err != nil {
		return fmt.Errorf("failed to set %s: %w", loc, err)
	}
	return nil
}

func (s *chromeSession) Read(ctx context.Context, loc Locator) (string, error) {
	if err := s.require(ctx, loc); err != nil {
		return "", err
	}

	opts := queryOptions(loc, false)
	var (
		value  string
		action chromedp.Action
	)
	switch loc.Attr {
	case "":
		action = chromedp.Text(loc.Query, &value, opts...)
	case "value":
		action = chromedp.Value(loc.Query, &value, opts...)
	default:
		var ok bool
		action = chromedp.AttributeValue(loc.Query, loc.Attr, &value, &ok, opts...)
	}

	if err := s.run(ctx, s.actionTimeout, action); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", loc, err)
	}
	return value, nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.actionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, s.actionTimeout, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read page location: %w", err)
	}
	return url, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *chromeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = chromedp.Cancel(s.ctx)
		s.cancelTab()
		s.cancelAlloc()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		s.logger.Debug("browser session closed")
	})
	return err
}
