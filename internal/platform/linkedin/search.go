package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"autojobfinder/internal/browser"
	"autojobfinder/internal/platform"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

var experienceCodes = map[models.ExperienceLevel]string{
	models.ExperienceInternship: "1",
	models.ExperienceEntry:      "2",
	models.ExperienceAssociate:  "3",
	models.ExperienceMidSenior:  "4",
	models.ExperienceDirector:   "5",
	models.ExperienceExecutive:  "6",
}

var jobTypeCodes = map[models.JobType]string{
	models.JobTypeFullTime:   "F",
	models.JobTypePartTime:   "P",
	models.JobTypeContract:   "C",
	models.JobTypeTemporary:  "T",
	models.JobTypeInternship: "I",
}

// BuildSearchURL encodes the criteria as LinkedIn search parameters
func BuildSearchURL(criteria models.SearchCriteria) string {
	params := url.Values{}
	params.Set("keywords", criteria.Keywords)
	if criteria.Location != "" {
		params.Set("location", criteria.Location)
	}
	if criteria.DatePostedWithinDays > 0 {
		params.Set("f_TPR", "r"+strconv.Itoa(criteria.DatePostedWithinDays*86400))
	}
	if code, ok := experienceCodes[criteria.ExperienceLevel]; ok {
		params.Set("f_E", code)
	}
	if code, ok := jobTypeCodes[criteria.JobType]; ok {
		params.Set("f_JT", code)
	}
	if isRemote(criteria.Location) {
		params.Set("f_WT", "2")
	}
	return searchURL + "?" + params.Encode()
}

// Search collects listings by opening each result card's details pane. When
// no cards render it falls back to visiting /jobs/view/ links directly.
func (l *LinkedIn) Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.JobListing, error) {
	l.logger.Info("Starting LinkedIn job search", map[string]interface{}{
		"keywords": criteria.Keywords,
		"location": criteria.Location,
		"limit":    criteria.ResultLimit,
	})

	target := BuildSearchURL(criteria)
	if err := l.actions.Driver.Navigate(ctx, target); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrSearchFailed, err)
	}
	if err := l.actions.Pause(ctx); err != nil {
		return nil, err
	}

	if current, err := l.actions.Driver.CurrentURL(ctx); err == nil && isAuthWall(current) {
		l.loggedIn = false
		return nil, fmt.Errorf("%w: session is no longer authenticated (%s)", utils.ErrSearchFailed, current)
	}

	if _, _, err := l.actions.WaitForAny(ctx, resultsLoaded, 0); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Warn("Could not confirm if page loaded, but continuing")
	}

	if isRemote(criteria.Location) {
		if err := l.applyRemoteFilter(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("Could not apply additional filters", map[string]interface{}{"error": err.Error()})
		}
	}

	set := models.NewListingSet(criteria.ResultLimit)
	if err := l.collectFromCards(ctx, set); err != nil {
		return nil, err
	}

	if set.Len() == 0 {
		if err := l.collectFromLinks(ctx, set); err != nil {
			return nil, err
		}
	}

	l.logger.Info("Found jobs on LinkedIn", map[string]interface{}{"count": set.Len()})
	return set.Listings(), nil
}

// collectFromCards clicks through the result list, loading more results with
// the show-more control or by scrolling until the set is full or nothing new appears
func (l *LinkedIn) collectFromCards(ctx context.Context, set *models.ListingSet) error {
	processed, stale := 0, 0
	for loads := 0; loads < maxLoadMore && stale < maxScrollRounds && !set.Full(); loads++ {
		cards := l.findCards(ctx)
		if len(cards) == 0 {
			if processed == 0 {
				l.logger.Warn("No job cards found")
			}
			return ctx.Err()
		}

		for processed < len(cards) && !set.Full() {
			card := cards[processed]
			processed++

			listing, err := l.openCard(ctx, card)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.Warn("Error processing job card", map[string]interface{}{"error": err.Error()})
				continue
			}
			if set.Add(listing) {
				l.logger.Debug("Extracted job", map[string]interface{}{
					"title":   listing.Title,
					"company": listing.Company,
				})
			}
		}

		if set.Full() {
			break
		}

		if err := l.loadMore(ctx, cards[len(cards)-1]); err != nil {
			return err
		}
		if len(l.findCards(ctx)) <= processed {
			stale++
		}
	}
	return ctx.Err()
}

func (l *LinkedIn) findCards(ctx context.Context) []browser.Element {
	for _, loc := range jobCards {
		cards, err := l.actions.Driver.FindElements(ctx, loc)
		if err == nil && len(cards) > 0 {
			return cards
		}
	}
	return nil
}

// loadMore presses the show-more control when present, otherwise scrolls to the bottom
func (l *LinkedIn) loadMore(ctx context.Context, lastCard browser.Element) error {
	if err := l.actions.ScrollIntoView(ctx, lastCard); err != nil {
		return err
	}

	if more, err := l.actions.Driver.FindElement(ctx, showMoreButton); err == nil {
		if err := l.actions.SafeClick(ctx, more); err == nil {
			return l.actions.Pause(ctx)
		}
	}

	if _, err := l.actions.Driver.ExecuteScript(ctx, "() => window.scrollTo(0, document.body.scrollHeight)"); err != nil {
		l.logger.Debug("Scroll failed", map[string]interface{}{"error": err.Error()})
	}
	return l.actions.Pause(ctx)
}

func (l *LinkedIn) openCard(ctx context.Context, card browser.Element) (*models.JobListing, error) {
	if err := l.actions.ScrollIntoView(ctx, card); err != nil {
		return nil, err
	}

	jobID, _, _ := card.Attribute("data-occludable-job-id")

	target := card
	if clickable, err := card.FindElement(cardClickable); err == nil {
		target = clickable
	}
	if err := l.actions.SafeClick(ctx, target); err != nil {
		link, linkErr := card.FindElement(cardTitleLink)
		if linkErr != nil {
			return nil, err
		}
		if err := l.actions.SafeClick(ctx, link); err != nil {
			return nil, err
		}
	}
	if err := l.actions.Pause(ctx); err != nil {
		return nil, err
	}

	return l.extractDetails(ctx, jobID)
}

// collectFromLinks visits job view links found anywhere on the page
func (l *LinkedIn) collectFromLinks(ctx context.Context, set *models.ListingSet) error {
	links, err := l.actions.Driver.FindElements(ctx, jobViewLinks)
	if err != nil {
		l.logger.Warn("Error finding job links", map[string]interface{}{"error": err.Error()})
		return ctx.Err()
	}

	// hrefs are read up front since navigating invalidates the handles
	var targets []string
	seen := make(map[string]bool)
	for _, link := range links {
		href, ok, err := link.Attribute("href")
		if err != nil || !ok {
			continue
		}
		canonical, _, err := utils.CanonicalLinkedInJobURL(absoluteURL(href))
		if err != nil || seen[canonical] {
			continue
		}
		seen[canonical] = true
		targets = append(targets, canonical)
	}

	for _, target := range targets {
		if set.Full() {
			break
		}
		if err := l.actions.Driver.Navigate(ctx, target); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("Error processing job link", map[string]interface{}{"url": target, "error": err.Error()})
			continue
		}
		if err := l.actions.Pause(ctx); err != nil {
			return err
		}

		_, jobID, _ := utils.CanonicalLinkedInJobURL(target)
		listing, err := l.extractDetails(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("Error processing job link", map[string]interface{}{"url": target, "error": err.Error()})
			continue
		}
		set.Add(listing)
	}
	return nil
}

// extractDetails reads the currently shown job from the details pane
func (l *LinkedIn) extractDetails(ctx context.Context, jobID string) (*models.JobListing, error) {
	if _, _, err := l.actions.WaitForAny(ctx, detailsLoaded, l.stepTimeout); err != nil {
		return nil, fmt.Errorf("job details did not load: %w", err)
	}

	title := l.actions.PageText(ctx, "", titleFields...)
	if title == "" {
		return nil, errors.New("job title not found")
	}

	listing := &models.JobListing{
		Platform:    models.PlatformLinkedIn,
		Title:       title,
		Company:     l.actions.PageText(ctx, platform.UnknownCompany, companyFields...),
		Location:    l.actions.PageText(ctx, platform.UnknownLocation, locationFields...),
		Description: l.actions.PageText(ctx, platform.NoDescription, descriptionFields...),
		ExternalID:  jobID,
	}

	current, err := l.actions.Driver.CurrentURL(ctx)
	if err != nil {
		return nil, err
	}
	if canonical, id, err := utils.CanonicalLinkedInJobURL(current); err == nil {
		listing.URL = canonical
		if listing.ExternalID == "" {
			listing.ExternalID = id
		}
	} else if jobID != "" {
		listing.URL = utils.LinkedInJobViewURL(jobID)
	} else {
		return nil, fmt.Errorf("no job URL for %q", title)
	}

	return listing, nil
}

// applyRemoteFilter ticks every remote workplace option in the filter panel
func (l *LinkedIn) applyRemoteFilter(ctx context.Context) error {
	button, _, err := l.actions.WaitForAny(ctx, filterButtons, l.stepTimeout)
	if err != nil {
		return err
	}
	if err := l.actions.SafeClick(ctx, button); err != nil {
		return err
	}
	if err := l.actions.Pause(ctx); err != nil {
		return err
	}

	options, err := l.actions.Driver.FindElements(ctx, remoteCheckboxes)
	if err != nil {
		return err
	}
	for _, option := range options {
		if selected, err := option.IsSelected(); err == nil && !selected {
			if err := l.actions.SafeClick(ctx, option); err != nil {
				l.logger.Debug("Could not tick remote option", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	show, _, err := l.actions.WaitForAny(ctx, showResultsButtons, l.stepTimeout)
	if err != nil {
		return err
	}
	if err := l.actions.SafeClick(ctx, show); err != nil {
		return err
	}
	return l.actions.Pause(ctx)
}

func isRemote(location string) bool {
	return strings.Contains(strings.ToLower(location), "remote")
}

func isAuthWall(current string) bool {
	return strings.Contains(current, "/login") ||
		strings.Contains(current, "/authwall") ||
		strings.Contains(current, "/checkpoint/")
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return href
}
