// Package indeed searches Indeed over plain HTTP and parses the result pages.
// Applications are opened in the browser and left for the user to complete.
package indeed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"autojobfinder/internal/browser"
	"autojobfinder/internal/config"
	"autojobfinder/internal/logging/types"
	"autojobfinder/internal/platform"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

const (
	defaultBaseURL = "https://www.indeed.com"
	pageSize       = 10
	maxPages       = 10
	maxBodySize    = 5 << 20
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
}

// Indeed implements platform.Platform
type Indeed struct {
	client   *http.Client
	limiter  *rate.Limiter
	actions  *platform.Actions
	settings platform.Settings
	logger   types.Logger
	baseURL  string
	apiKey   string
}

// Option customizes the adapter
type Option func(*Indeed)

// WithBaseURL points the adapter at another host, used by tests
func WithBaseURL(base string) Option {
	return func(i *Indeed) { i.baseURL = base }
}

// WithLimiter replaces the request limiter
func WithLimiter(l *rate.Limiter) Option {
	return func(i *Indeed) { i.limiter = l }
}

// New creates the Indeed adapter. Requests are spaced by at least the minimum
// delay. driver may be nil, in which case Apply only records the listings.
func New(client *http.Client, driver browser.Driver, delays platform.Delays, settings platform.Settings, logger types.Logger, opts ...Option) *Indeed {
	if client == nil {
		client = &http.Client{Timeout: delays.PageLoad}
	}

	limit := rate.Inf
	if delays.Min > 0 {
		limit = rate.Every(delays.Min)
	}

	logger = logger.WithField("platform", string(models.PlatformIndeed))
	i := &Indeed{
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		settings: settings,
		logger:   logger,
		baseURL:  defaultBaseURL,
		apiKey:   config.IndeedAPIKey(),
	}
	if driver != nil {
		i.actions = platform.NewActions(driver, delays, logger)
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Indeed) Name() models.Platform {
	return models.PlatformIndeed
}

// Authenticate always succeeds; search works without an account
func (i *Indeed) Authenticate(ctx context.Context) error {
	if i.apiKey == "" {
		i.logger.Warn("Indeed API key not found. Some features may be limited.")
	}
	i.logger.Info("Indeed platform initialized")
	return ctx.Err()
}

// BuildSearchURL encodes the criteria and result offset as Indeed parameters
func BuildSearchURL(base string, criteria models.SearchCriteria, start int) string {
	params := url.Values{}
	params.Set("q", criteria.Keywords)
	if criteria.Location != "" {
		params.Set("l", criteria.Location)
	}
	if criteria.JobType != "" {
		params.Set("jt", string(criteria.JobType))
	}
	if criteria.DatePostedWithinDays > 0 {
		params.Set("fromage", strconv.Itoa(criteria.DatePostedWithinDays))
	}
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}
	return base + "/jobs?" + params.Encode()
}

// Search walks result pages until the limit is reached, a page adds nothing
// new or the page cap is hit. Failing to load the first page is ErrSearchFailed.
func (i *Indeed) Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.JobListing, error) {
	i.logger.Info("Starting Indeed job search", map[string]interface{}{
		"keywords": criteria.Keywords,
		"location": criteria.Location,
		"limit":    criteria.ResultLimit,
	})

	set := models.NewListingSet(criteria.ResultLimit)
	for page := 0; page < maxPages && !set.Full(); page++ {
		target := BuildSearchURL(i.baseURL, criteria, page*pageSize)

		listings, err := i.fetchPage(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if page == 0 {
				return nil, fmt.Errorf("%w: %v", utils.ErrSearchFailed, err)
			}
			i.logger.Warn("Error loading result page", map[string]interface{}{"page": page, "error": err.Error()})
			break
		}

		added := 0
		for _, listing := range listings {
			if set.Add(listing) {
				added++
			}
		}
		i.logger.Debug("Parsed result page", map[string]interface{}{
			"page":  page,
			"cards": len(listings),
			"added": added,
		})
		if added == 0 {
			break
		}
	}

	i.logger.Info("Found jobs on Indeed", map[string]interface{}{"count": set.Len()})
	return set.Listings(), nil
}

func (i *Indeed) fetchPage(ctx context.Context, target string) ([]*models.JobListing, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", randomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", i.baseURL)
	req.Header.Set("DNT", "1")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	listings, err := ParseJobCards(bytes.NewReader(body), i.baseURL)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 && isBlocked(string(body)) {
		return nil, fmt.Errorf("request was challenged by %s", target)
	}
	return listings, nil
}

// Apply opens each listing for the user. Indeed applications usually continue
// on the employer's site, so Applied is never set here.
func (i *Indeed) Apply(ctx context.Context, listings []*models.JobListing) error {
	if !i.settings.ApplyActive {
		i.logger.Info("Auto-apply is disabled in configuration")
		return nil
	}

	i.logger.Info("Processing Indeed jobs", map[string]interface{}{"count": len(listings)})

	for _, listing := range listings {
		if listing.Applied {
			continue
		}

		i.logger.Info("Opening application", map[string]interface{}{
			"title":   listing.Title,
			"company": listing.Company,
		})

		if i.actions == nil {
			i.logger.Info("Job requires manual application", map[string]interface{}{"url": listing.URL})
			continue
		}

		if err := i.actions.Driver.Navigate(ctx, listing.URL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			i.logger.Error("Error processing Indeed job", map[string]interface{}{
				"url":   listing.URL,
				"error": err.Error(),
			})
			continue
		}
		i.logger.Info("Job requires manual application", map[string]interface{}{"url": listing.URL})

		if err := i.actions.Pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}
