package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"autojobfinder/internal/logging/types"
	"autojobfinder/pkg/utils"
)

// Options configures a Chrome session
type Options struct {
	Headless        bool
	UserAgent       string
	Bin             string
	PageLoadTimeout time.Duration
}

// RodDriver drives one stealth page in a locally launched Chrome
type RodDriver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	options  Options
	logger   types.Logger
}

// NewRodDriver launches Chrome and opens a stealth page
func NewRodDriver(opts Options, logger types.Logger) (*RodDriver, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := systemChromePath(opts.Bin); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	} else {
		logger.Warn("System Chrome not found, Rod will download browser")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		logger.Warn("Failed to set viewport", map[string]interface{}{"error": err.Error()})
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			logger.Warn("Failed to set user agent", map[string]interface{}{"error": err.Error()})
		}
	}

	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 30 * time.Second
	}

	logger.Info("Browser session started", map[string]interface{}{"headless": opts.Headless})

	return &RodDriver{
		launcher: l,
		browser:  browser,
		page:     page,
		options:  opts,
		logger:   logger,
	}, nil
}

// Navigate loads url and waits for the load event
func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.options.PageLoadTimeout)
	defer cancel()

	page := d.page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for %s to load: %w", url, err)
	}

	d.logger.Debug("Navigated", map[string]interface{}{"url": url})
	return nil
}

func (d *RodDriver) FindElement(ctx context.Context, loc Locator) (Element, error) {
	page := d.page.Context(ctx).Sleeper(rod.NotFoundSleeper)

	var (
		el  *rod.Element
		err error
	)
	switch loc.By {
	case ByXPath:
		el, err = page.ElementX(loc.Value)
	default:
		el, err = page.Element(cssSelector(loc))
	}
	if err != nil {
		return nil, notFound(loc, err)
	}
	return &rodElement{el: el}, nil
}

func (d *RodDriver) FindElements(ctx context.Context, loc Locator) ([]Element, error) {
	page := d.page.Context(ctx).Sleeper(rod.NotFoundSleeper)

	var (
		els rod.Elements
		err error
	)
	switch loc.By {
	case ByXPath:
		els, err = page.ElementsX(loc.Value)
	default:
		els, err = page.Elements(cssSelector(loc))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", loc, err)
	}
	return wrapElements(els), nil
}

func (d *RodDriver) ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	res, err := d.page.Context(ctx).Eval(script, args...)
	if err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}
	return res.Value.Val(), nil
}

func (d *RodDriver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// Quit closes the browser and removes its profile directory
func (d *RodDriver) Quit() error {
	err := d.browser.Close()
	d.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	d.logger.Info("Browser session closed")
	return nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) SendKeys(text string) error {
	return e.el.Input(text)
}

func (e *rodElement) PressEnter() error {
	return e.el.Type(input.Enter)
}

func (e *rodElement) Clear() error {
	_, err := e.el.Eval(`() => {
		this.value = '';
		this.dispatchEvent(new Event('input', { bubbles: true }));
	}`)
	return err
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	value, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (e *rodElement) IsSelected() (bool, error) {
	checked, err := e.el.Property("checked")
	if err != nil {
		return false, err
	}
	return checked.Bool(), nil
}

func (e *rodElement) ScrollIntoView() error {
	return e.el.ScrollIntoView()
}

func (e *rodElement) FindElement(loc Locator) (Element, error) {
	parent := e.el.Sleeper(rod.NotFoundSleeper)

	var (
		el  *rod.Element
		err error
	)
	switch loc.By {
	case ByXPath:
		el, err = parent.ElementX(loc.Value)
	default:
		el, err = parent.Element(cssSelector(loc))
	}
	if err != nil {
		return nil, notFound(loc, err)
	}
	return &rodElement{el: el}, nil
}

func (e *rodElement) FindElements(loc Locator) ([]Element, error) {
	parent := e.el.Sleeper(rod.NotFoundSleeper)

	var (
		els rod.Elements
		err error
	)
	switch loc.By {
	case ByXPath:
		els, err = parent.ElementsX(loc.Value)
	default:
		els, err = parent.Elements(cssSelector(loc))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", loc, err)
	}
	return wrapElements(els), nil
}

func wrapElements(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

func cssSelector(loc Locator) string {
	if loc.By == ByID {
		return fmt.Sprintf("[id=%q]", loc.Value)
	}
	return loc.Value
}

func notFound(loc Locator, err error) error {
	var nf *rod.ErrElementNotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %s", utils.ErrElementNotFound, loc)
	}
	return fmt.Errorf("failed to find %s: %w", loc, err)
}

// systemChromePath prefers the configured binary, then common install locations
func systemChromePath(configured string) string {
	candidates := []string{
		configured,
		os.Getenv("CHROME_BIN"),
		os.Getenv("CHROME_PATH"),
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"C:\\Program Files\\Google\\Chrome\\Application\\chrome.exe",
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
