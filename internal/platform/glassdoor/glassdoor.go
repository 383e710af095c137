// Package glassdoor drives Glassdoor job search through a browser session.
// Glassdoor applications continue on employer sites, so apply only opens them.
package glassdoor

import (
	"context"
	"fmt"
	"strconv"
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
	maxLoadMore    = 25
	maxStepTimeout = 5 * time.Second
)

var experienceValues = map[models.ExperienceLevel]string{
	models.ExperienceInternship: "internship",
	models.ExperienceEntry:      "entrylevel",
	models.ExperienceAssociate:  "associate",
	models.ExperienceMidSenior:  "midseniorlevel",
	models.ExperienceDirector:   "director",
	models.ExperienceExecutive:  "executive",
}

// Glassdoor implements platform.Platform
type Glassdoor struct {
	actions     *platform.Actions
	settings    platform.Settings
	logger      types.Logger
	credentials func(models.Platform) (config.Credentials, error)
	stepTimeout time.Duration
	loggedIn    bool
}

// New creates the Glassdoor adapter over an existing browser session
func New(driver browser.Driver, delays platform.Delays, settings platform.Settings, logger types.Logger) *Glassdoor {
	stepTimeout := delays.PageLoad
	if stepTimeout <= 0 || stepTimeout > maxStepTimeout {
		stepTimeout = maxStepTimeout
	}

	logger = logger.WithField("platform", string(models.PlatformGlassdoor))
	return &Glassdoor{
		actions:     platform.NewActions(driver, delays, logger),
		settings:    settings,
		logger:      logger,
		credentials: config.LoadCredentials,
		stepTimeout: stepTimeout,
	}
}

func (g *Glassdoor) Name() models.Platform {
	return models.PlatformGlassdoor
}

// Authenticate signs in with the environment credentials. Success is the
// profile menu showing up after the form is submitted.
func (g *Glassdoor) Authenticate(ctx context.Context) error {
	if g.loggedIn {
		g.logger.Debug("Already logged in to Glassdoor")
		return nil
	}

	creds, err := g.credentials(models.PlatformGlassdoor)
	if err != nil {
		return err
	}

	g.logger.Info("Logging in to Glassdoor", map[string]interface{}{"username": creds.Username})

	if err := g.actions.Driver.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrAuthenticationFailed, err)
	}

	if accept, err := g.actions.WaitForElement(ctx, cookieAccept, g.stepTimeout); err == nil {
		if err := g.actions.SafeClick(ctx, accept); err != nil {
			g.logger.Debug("Could not accept cookies", map[string]interface{}{"error": err.Error()})
		}
	} else if ctx.Err() != nil {
		return ctx.Err()
	} else {
		g.logger.Debug("No cookie consent dialog found")
	}

	if err := g.fill(ctx, usernameField, creds.Username); err != nil {
		return fmt.Errorf("%w: username: %v", utils.ErrAuthenticationFailed, err)
	}
	if err := g.fill(ctx, passwordField, creds.Password); err != nil {
		return fmt.Errorf("%w: password: %v", utils.ErrAuthenticationFailed, err)
	}

	submit, err := g.actions.WaitForElement(ctx, submitButton, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrAuthenticationFailed, err)
	}
	if err := g.actions.SafeClick(ctx, submit); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrAuthenticationFailed, err)
	}

	if _, err := g.actions.WaitForElement(ctx, profileMenu, 0); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: profile menu never appeared", utils.ErrAuthenticationFailed)
	}

	g.loggedIn = true
	g.logger.Info("Successfully logged in to Glassdoor")
	return nil
}

// Search fills the search bar, applies the filter panel when it is available
// and reads cards until the limit is reached or no more results load
func (g *Glassdoor) Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.JobListing, error) {
	g.logger.Info("Starting Glassdoor job search", map[string]interface{}{
		"keywords": criteria.Keywords,
		"location": criteria.Location,
		"limit":    criteria.ResultLimit,
	})

	if err := g.actions.Driver.Navigate(ctx, jobsURL); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrSearchFailed, err)
	}

	keyword, err := g.actions.WaitForElement(ctx, keywordInput, 0)
	if err != nil {
		return nil, g.searchFailed(ctx, "search bar", err)
	}
	location, err := g.actions.WaitForElement(ctx, locationInput, 0)
	if err != nil {
		return nil, g.searchFailed(ctx, "location field", err)
	}

	if err := g.actions.TypeInto(ctx, keyword, criteria.Keywords); err != nil {
		return nil, g.searchFailed(ctx, "keywords", err)
	}
	if err := g.actions.TypeInto(ctx, location, criteria.Location); err != nil {
		return nil, g.searchFailed(ctx, "location", err)
	}
	if err := location.PressEnter(); err != nil {
		return nil, g.searchFailed(ctx, "submit", err)
	}
	if err := g.actions.Pause(ctx); err != nil {
		return nil, err
	}

	if err := g.applyFilters(ctx, criteria); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger.Warn("Error applying filters", map[string]interface{}{"error": err.Error()})
	}

	if _, err := g.actions.WaitForElement(ctx, jobList, 0); err != nil {
		return nil, g.searchFailed(ctx, "job list", err)
	}

	set := models.NewListingSet(criteria.ResultLimit)
	if err := g.collect(ctx, set); err != nil {
		return nil, err
	}

	g.logger.Info("Found jobs on Glassdoor", map[string]interface{}{"count": set.Len()})
	return set.Listings(), nil
}

func (g *Glassdoor) searchFailed(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %v", utils.ErrSearchFailed, step, err)
}

// applyFilters ticks the date, seniority and job type options. Missing
// options are skipped; a missing panel is an error the caller only logs.
func (g *Glassdoor) applyFilters(ctx context.Context, criteria models.SearchCriteria) error {
	button, err := g.actions.WaitForElement(ctx, filtersButton, g.stepTimeout)
	if err != nil {
		return err
	}
	if err := g.actions.SafeClick(ctx, button); err != nil {
		return err
	}

	var values []string
	if criteria.DatePostedWithinDays > 0 {
		values = append(values, strconv.Itoa(criteria.DatePostedWithinDays))
	}
	if v, ok := experienceValues[criteria.ExperienceLevel]; ok {
		values = append(values, v)
	}
	if criteria.JobType != "" {
		values = append(values, string(criteria.JobType))
	}

	for _, value := range values {
		option, err := g.actions.WaitForElement(ctx, filterOption(value), g.stepTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.logger.Debug("Filter option not available", map[string]interface{}{"value": value})
			continue
		}
		if err := g.actions.SafeClick(ctx, option); err != nil {
			g.logger.Debug("Could not select filter option", map[string]interface{}{"value": value, "error": err.Error()})
		}
	}

	apply, err := g.actions.WaitForElement(ctx, applyFiltersButton, g.stepTimeout)
	if err != nil {
		return err
	}
	if err := g.actions.SafeClick(ctx, apply); err != nil {
		return err
	}
	return g.actions.Pause(ctx)
}

// collect opens each new card so the description panel shows, then presses
// "show more jobs" until the set is full or the button disappears
func (g *Glassdoor) collect(ctx context.Context, set *models.ListingSet) error {
	processed := 0
	for loads := 0; loads <= maxLoadMore && !set.Full(); loads++ {
		cards, err := g.actions.Driver.FindElements(ctx, jobCards)
		if err != nil {
			return g.searchFailed(ctx, "job cards", err)
		}

		for processed < len(cards) && !set.Full() {
			card := cards[processed]
			processed++

			listing, err := g.openCard(ctx, card)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				g.logger.Warn("Error extracting job data", map[string]interface{}{"error": err.Error()})
				continue
			}
			set.Add(listing)
		}

		if set.Full() {
			break
		}

		more, err := g.actions.Driver.FindElement(ctx, showMoreJobs)
		if err != nil {
			break
		}
		if err := g.actions.SafeClick(ctx, more); err != nil {
			g.logger.Debug("Could not load more jobs", map[string]interface{}{"error": err.Error()})
			break
		}
		if err := g.actions.Pause(ctx); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (g *Glassdoor) openCard(ctx context.Context, card browser.Element) (*models.JobListing, error) {
	if err := g.actions.ScrollIntoView(ctx, card); err != nil {
		return nil, err
	}

	title := platform.ChildText(card, "", jobLink)
	href := platform.ChildAttr(card, "href", jobLink)
	if title == "" || href == "" {
		return nil, fmt.Errorf("job card without title or link")
	}

	if err := g.actions.SafeClick(ctx, card); err != nil {
		return nil, err
	}
	if err := g.actions.Pause(ctx); err != nil {
		return nil, err
	}

	listing := &models.JobListing{
		Platform:    models.PlatformGlassdoor,
		Title:       title,
		Company:     platform.ChildText(card, platform.UnknownCompany, employerName),
		Location:    platform.ChildText(card, platform.UnknownLocation, jobLocation),
		Description: platform.NoDescription,
		URL:         absoluteURL(href),
	}
	if id, ok, _ := card.Attribute("data-jobid"); ok {
		listing.ExternalID = id
	}

	if panel, err := g.actions.WaitForElement(ctx, descriptionPanel, g.stepTimeout); err == nil {
		if text, err := panel.Text(); err == nil {
			listing.Description = utils.GetStringOrDefault(utils.CleanText(text), platform.NoDescription)
		}
	}

	return listing, nil
}

// Apply opens each listing and presses its apply button. Glassdoor hands
// the application to the employer, so Applied is never set here.
func (g *Glassdoor) Apply(ctx context.Context, listings []*models.JobListing) error {
	if !g.settings.ApplyActive {
		g.logger.Info("Auto-apply is disabled in configuration")
		return nil
	}

	g.logger.Info("Processing Glassdoor jobs", map[string]interface{}{"count": len(listings)})

	for _, listing := range listings {
		if listing.Applied {
			continue
		}

		if err := g.openApplication(ctx, listing); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.logger.Error("Error processing Glassdoor job", map[string]interface{}{
				"url":   listing.URL,
				"error": err.Error(),
			})
			continue
		}

		if err := g.actions.Pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (g *Glassdoor) openApplication(ctx context.Context, listing *models.JobListing) error {
	g.logger.Info("Opening application", map[string]interface{}{
		"title":   listing.Title,
		"company": listing.Company,
	})

	if err := g.actions.Driver.Navigate(ctx, listing.URL); err != nil {
		return err
	}

	button, err := g.actions.WaitForElement(ctx, applyButton, g.stepTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.logger.Info("No direct apply button found", map[string]interface{}{"url": listing.URL})
		return nil
	}
	if err := g.actions.SafeClick(ctx, button); err != nil {
		return err
	}
	g.logger.Info("Job requires external application", map[string]interface{}{"url": listing.URL})
	return nil
}

func (g *Glassdoor) fill(ctx context.Context, loc browser.Locator, text string) error {
	field, err := g.actions.WaitForElement(ctx, loc, 0)
	if err != nil {
		return err
	}
	return g.actions.TypeInto(ctx, field, text)
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return href
}
