// Package linkedin drives LinkedIn job search and Easy Apply through a browser session.
package linkedin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autojobfinder/internal/browser"
	"autojobfinder/internal/config"
	"autojobfinder/internal/logging/types"
	"autojobfinder/internal/platform"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

const (
	maxScrollRounds  = 5
	maxLoadMore      = 25
	maxStepTimeout   = 5 * time.Second
	defaultMaxSteps  = 10
	defaultAnswerYes = "Yes"
)

// LinkedIn implements platform.Platform
type LinkedIn struct {
	actions     *platform.Actions
	settings    platform.Settings
	logger      types.Logger
	credentials func(models.Platform) (config.Credentials, error)
	stepTimeout time.Duration
	loggedIn    bool
}

// New creates the LinkedIn adapter over an existing browser session
func New(driver browser.Driver, delays platform.Delays, settings platform.Settings, logger types.Logger) *LinkedIn {
	if settings.MaxApplySteps <= 0 {
		settings.MaxApplySteps = defaultMaxSteps
	}
	if settings.DefaultAnswer == "" {
		settings.DefaultAnswer = defaultAnswerYes
	}

	// short waits for optional page features
	stepTimeout := delays.PageLoad
	if stepTimeout <= 0 || stepTimeout > maxStepTimeout {
		stepTimeout = maxStepTimeout
	}

	logger = logger.WithField("platform", string(models.PlatformLinkedIn))
	return &LinkedIn{
		actions:     platform.NewActions(driver, delays, logger),
		settings:    settings,
		logger:      logger,
		credentials: config.LoadCredentials,
		stepTimeout: stepTimeout,
	}
}

func (l *LinkedIn) Name() models.Platform {
	return models.PlatformLinkedIn
}

// Authenticate reuses an existing session when the home page shows the
// logged-in navigation, otherwise signs in with the environment credentials
func (l *LinkedIn) Authenticate(ctx context.Context) error {
	if l.loggedIn {
		return nil
	}

	creds, err := l.credentials(models.PlatformLinkedIn)
	if err != nil {
		return err
	}

	if l.checkLoggedIn(ctx) {
		l.logger.Info("Already logged in to LinkedIn")
		l.loggedIn = true
		return nil
	}

	l.logger.Info("Logging in to LinkedIn", map[string]interface{}{"username": creds.Username})

	if err := l.actions.Driver.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrAuthenticationFailed, err)
	}
	if err := l.actions.Pause(ctx); err != nil {
		return err
	}

	if err := l.fill(ctx, usernameField, creds.Username); err != nil {
		return fmt.Errorf("%w: username: %v", utils.ErrAuthenticationFailed, err)
	}
	if err := l.fill(ctx, passwordField, creds.Password); err != nil {
		return fmt.Errorf("%w: password: %v", utils.ErrAuthenticationFailed, err)
	}

	submit, err := l.actions.WaitForElement(ctx, submitButton, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrAuthenticationFailed, err)
	}
	if err := l.actions.SafeClick(ctx, submit); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrAuthenticationFailed, err)
	}

	if _, _, err := l.actions.WaitForAny(ctx, loggedInIndicators, 0); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if current, _ := l.actions.Driver.CurrentURL(ctx); strings.Contains(current, "/checkpoint/") {
			return fmt.Errorf("%w: security checkpoint at %s", utils.ErrAuthenticationFailed, current)
		}
		return fmt.Errorf("%w: logged-in page never appeared", utils.ErrAuthenticationFailed)
	}

	l.loggedIn = true
	l.logger.Info("Successfully logged in to LinkedIn")
	return nil
}

// Apply runs Easy Apply for every listing not yet applied to
func (l *LinkedIn) Apply(ctx context.Context, listings []*models.JobListing) error {
	if !l.settings.ApplyActive {
		l.logger.Info("Auto-apply is disabled in configuration")
		return nil
	}

	l.logger.Info("Processing LinkedIn jobs", map[string]interface{}{"count": len(listings)})

	for _, listing := range listings {
		if listing.Applied {
			continue
		}

		state, err := l.applyTo(ctx, listing)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fields := map[string]interface{}{
			"title":   listing.Title,
			"company": listing.Company,
			"url":     listing.URL,
			"state":   state.String(),
		}
		switch {
		case err != nil:
			fields["error"] = err.Error()
			l.logger.Error("Error processing LinkedIn job", fields)
		case state == stateSubmitted:
			listing.Applied = true
			l.logger.Info("Successfully applied to job", fields)
		default:
			l.logger.Info("Could not complete application", fields)
		}

		if err := l.actions.Pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *LinkedIn) checkLoggedIn(ctx context.Context) bool {
	if err := l.actions.Driver.Navigate(ctx, baseURL); err != nil {
		l.logger.Warn("Error checking login status", map[string]interface{}{"error": err.Error()})
		return false
	}
	_, _, err := l.actions.WaitForAny(ctx, loggedInIndicators, l.stepTimeout)
	return err == nil
}

func (l *LinkedIn) fill(ctx context.Context, loc browser.Locator, text string) error {
	field, err := l.actions.WaitForElement(ctx, loc, 0)
	if err != nil {
		return err
	}
	return l.actions.TypeInto(ctx, field, text)
}
