package platform

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"autojobfinder/internal/browser"
	"autojobfinder/internal/logging/types"
	"autojobfinder/pkg/utils"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	clickAttempts       = 3
)

// Delays bounds the pacing pauses and element waits
type Delays struct {
	Min      time.Duration
	Max      time.Duration
	PageLoad time.Duration
}

// Actions wraps a driver with bounded waits, retried clicks and random pacing
type Actions struct {
	Driver       browser.Driver
	Delays       Delays
	Logger       types.Logger
	PollInterval time.Duration
}

// NewActions creates the primitives for one driver
func NewActions(driver browser.Driver, delays Delays, logger types.Logger) *Actions {
	return &Actions{
		Driver:       driver,
		Delays:       delays,
		Logger:       logger,
		PollInterval: defaultPollInterval,
	}
}

// WaitForElement polls until loc is present. A zero timeout uses the page
// load timeout. Expiry yields utils.ErrElementNotFound.
func (a *Actions) WaitForElement(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	el, _, err := a.WaitForAny(ctx, []browser.Locator{loc}, timeout)
	return el, err
}

// WaitForAny polls the locators in order until one matches and reports which
func (a *Actions) WaitForAny(ctx context.Context, locs []browser.Locator, timeout time.Duration) (browser.Element, browser.Locator, error) {
	if timeout <= 0 {
		timeout = a.Delays.PageLoad
	}
	interval := a.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	deadline := time.Now().Add(timeout)
	var lastErr error

	for {
		for _, loc := range locs {
			el, err := a.Driver.FindElement(ctx, loc)
			if err == nil {
				return el, loc, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, browser.Locator{}, ctxErr
			}
			if !errors.Is(err, utils.ErrElementNotFound) {
				lastErr = err
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if remaining > interval {
			remaining = interval
		}
		if err := sleep(ctx, remaining); err != nil {
			return nil, browser.Locator{}, err
		}
	}

	if lastErr != nil {
		return nil, browser.Locator{}, fmt.Errorf("%w: %v after %s: %v", utils.ErrElementNotFound, locs, timeout, lastErr)
	}
	return nil, browser.Locator{}, fmt.Errorf("%w: %v after %s", utils.ErrElementNotFound, locs, timeout)
}

// SafeClick clicks up to three times with a random pause between attempts
func (a *Actions) SafeClick(ctx context.Context, el browser.Element) error {
	var lastErr error
	for attempt := 1; attempt <= clickAttempts; attempt++ {
		if lastErr = el.Click(); lastErr == nil {
			return nil
		}

		a.Logger.Debug("Click failed", map[string]interface{}{
			"attempt": attempt,
			"error":   lastErr.Error(),
		})

		if attempt < clickAttempts {
			if err := a.Pause(ctx); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: %v", utils.ErrInteractionFailed, lastErr)
}

// ScrollIntoView is best effort and always followed by a pacing pause
func (a *Actions) ScrollIntoView(ctx context.Context, el browser.Element) error {
	if err := el.ScrollIntoView(); err != nil {
		a.Logger.Debug("Scroll into view failed", map[string]interface{}{"error": err.Error()})
	}
	return a.Pause(ctx)
}

// RandomDelay sleeps for a uniform random duration in [min, max]. It returns
// early with the context error when ctx is cancelled.
func (a *Actions) RandomDelay(ctx context.Context, min, max time.Duration) error {
	if max < min {
		min, max = max, min
	}
	d := min
	if span := max - min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span) + 1))
	}
	if d <= 0 {
		return ctx.Err()
	}
	return sleep(ctx, d)
}

// Pause is RandomDelay with the configured bounds
func (a *Actions) Pause(ctx context.Context) error {
	return a.RandomDelay(ctx, a.Delays.Min, a.Delays.Max)
}

// TypeInto clears el and types text, pausing afterwards
func (a *Actions) TypeInto(ctx context.Context, el browser.Element, text string) error {
	if err := el.Clear(); err != nil {
		return fmt.Errorf("%w: clear: %v", utils.ErrInteractionFailed, err)
	}
	if err := el.SendKeys(text); err != nil {
		return fmt.Errorf("%w: type: %v", utils.ErrInteractionFailed, err)
	}
	return a.Pause(ctx)
}

// Exists reports whether loc is present right now
func (a *Actions) Exists(ctx context.Context, loc browser.Locator) bool {
	_, err := a.Driver.FindElement(ctx, loc)
	return err == nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
