package browser

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"tagsignal/pkg/config"
	"tagsignal/pkg/errors"
	"tagsignal/pkg/logger"
	"tagsignal/pkg/ratelimit"
)

// loginURL is the platform's credential entry point.
const loginURL = "https://twitter.com/login"

// Login flow selectors. The flow presents the handle field first, sometimes
// twice when the account triggers an "unusual activity" check, then the
// password field, then lands on the home timeline.
const (
	selLoginUser     = `input[name="text"]`
	selLoginPassword = `input[name="password"]`
	selLoggedIn      = `a[href="/home"]`
)

// ChromeSession drives a headless Chrome instance. Page-mutating actions
// (navigation, scrolling) pass through the session's rate limiter so one
// session never hammers the platform faster than a person would.
type ChromeSession struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once

	pageTimeout  time.Duration
	loginTimeout time.Duration
	limiter      ratelimit.Limiter
	log          logger.Logger
}

// ChromeFactory opens ChromeSessions configured from the browser config.
// Each session picks its own user agent from the configured pool.
type ChromeFactory struct {
	cfg *config.BrowserConfig
	log logger.Logger
}

// NewChromeFactory returns a factory bound to the given browser config.
func NewChromeFactory(cfg *config.BrowserConfig, log logger.Logger) *ChromeFactory {
	return &ChromeFactory{cfg: cfg, log: log}
}

// Open launches a fresh browser instance and returns a session bound to it.
func (f *ChromeFactory) Open(ctx context.Context) (Session, error) {
	return OpenChrome(ctx, f.cfg, f.log)
}

// OpenChrome launches a Chrome instance with the configured options and
// verifies it started.
func OpenChrome(ctx context.Context, cfg *config.BrowserConfig, log logger.Logger) (*ChromeSession, error) {
	ua := pickUserAgent(cfg.UserAgents)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(ua),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, errors.Wrap(errors.ErrorTypeSession, "failed to launch browser", err)
	}

	log.InfoWithFields("browser session opened", map[string]interface{}{
		"headless":   cfg.Headless,
		"user_agent": ua,
	})

	return &ChromeSession{
		ctx:          browserCtx,
		cancelCtx:    cancelCtx,
		cancelAlloc:  cancelAlloc,
		pageTimeout:  cfg.PageLoadTimeout,
		loginTimeout: cfg.LoginTimeout,
		limiter:      ratelimit.PerMinute(cfg.ActionsPerMinute),
		log:          log,
	}, nil
}

func pickUserAgent(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}

// Authenticate walks the interactive login flow. The handle prompt can
// repeat once before the password field appears.
func (s *ChromeSession) Authenticate(creds Credentials) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.loginTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(selLoginUser, chromedp.ByQuery),
		chromedp.SendKeys(selLoginUser, creds.Username+kb.Enter, chromedp.ByQuery),
	)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeAuth, "login form did not load", err)
	}

	// The password field may be preceded by a second handle prompt.
	probe, probeCancel := context.WithTimeout(ctx, 5*time.Second)
	err = chromedp.Run(probe, chromedp.WaitVisible(selLoginPassword, chromedp.ByQuery))
	probeCancel()
	if err != nil {
		if rerr := chromedp.Run(ctx,
			chromedp.WaitVisible(selLoginUser, chromedp.ByQuery),
			chromedp.SendKeys(selLoginUser, creds.Username+kb.Enter, chromedp.ByQuery),
		); rerr != nil {
			return errors.Wrap(errors.ErrorTypeAuth, "login challenge not satisfied", rerr)
		}
	}

	err = chromedp.Run(ctx,
		chromedp.WaitVisible(selLoginPassword, chromedp.ByQuery),
		chromedp.SendKeys(selLoginPassword, creds.Password+kb.Enter, chromedp.ByQuery),
		chromedp.WaitVisible(selLoggedIn, chromedp.ByQuery),
	)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeAuth, "login was not accepted", err)
	}

	s.log.WithField("username", creds.Username).Info("authenticated")
	return nil
}

// Navigate loads the URL and waits for the document body.
func (s *ChromeSession) Navigate(url string) error {
	s.limiter.Wait()

	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNavigation, "failed to load "+url, err)
	}
	return nil
}

// FindAll snapshots the live DOM and returns the matching nodes. Snapshots
// are cheap relative to per-node round trips and give extraction a
// consistent view of the page.
func (s *ChromeSession) FindAll(selector string) ([]Node, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeExtraction, "failed to snapshot page", err)
	}
	return ParseNodes(html, selector)
}

// ScrollToEnd scrolls to the page's current bottom.
func (s *ChromeSession) ScrollToEnd() error {
	s.limiter.Wait()

	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
	)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNavigation, "scroll failed", err)
	}
	return nil
}

// MeasureExtent returns document.body.scrollHeight.
func (s *ChromeSession) MeasureExtent() (float64, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	var height float64
	if err := chromedp.Run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height)); err != nil {
		return 0, errors.Wrap(errors.ErrorTypeExtraction, "failed to measure page extent", err)
	}
	return height, nil
}

// Close tears down the browser. Idempotent.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancelCtx()
		s.cancelAlloc()
		s.log.Debug("browser session closed")
	})
	return nil
}
