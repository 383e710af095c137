package indeed

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autojobfinder/internal/platform"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

var (
	cardSelector        = "div.job_seen_beacon"
	titleSelector       = "h2.jobTitle"
	linkSelector        = "h2.jobTitle a"
	companySelectors    = []string{"span.companyName", "[data-testid='company-name']"}
	locationSelectors   = []string{"div.companyLocation", "[data-testid='text-location']"}
	descriptionSelector = []string{"div.job-snippet", "[data-testid='jobsnippet_footer']"}
)

// ParseJobCards extracts the listings of one Indeed result page. Relative
// links are resolved against base. Cards without a title or link are skipped.
func ParseJobCards(r io.Reader, base string) ([]*models.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var listings []*models.JobListing
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		if listing := parseCard(card, baseURL); listing != nil {
			listings = append(listings, listing)
		}
	})
	return listings, nil
}

func parseCard(card *goquery.Selection, base *url.URL) *models.JobListing {
	title := utils.CleanText(card.Find(titleSelector).First().Text())
	href, ok := card.Find(linkSelector).First().Attr("href")
	if title == "" || !ok || href == "" {
		return nil
	}

	link, err := base.Parse(href)
	if err != nil {
		return nil
	}

	listing := &models.JobListing{
		Platform:    models.PlatformIndeed,
		Title:       title,
		Company:     firstText(card, platform.UnknownCompany, companySelectors),
		Location:    firstText(card, platform.UnknownLocation, locationSelectors),
		Description: firstText(card, platform.NoDescription, descriptionSelector),
		URL:         link.String(),
	}

	// the job key identifies a posting regardless of tracking parameters
	jk := link.Query().Get("jk")
	if jk == "" {
		jk, _ = card.Find("a[data-jk]").First().Attr("data-jk")
	}
	if jk != "" {
		listing.ExternalID = jk
		listing.URL = viewJobURL(base, jk)
	}
	return listing
}

func firstText(card *goquery.Selection, fallback string, selectors []string) string {
	for _, selector := range selectors {
		if text := utils.CleanText(card.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return fallback
}

func viewJobURL(base *url.URL, jk string) string {
	u := *base
	u.Path = "/viewjob"
	u.RawQuery = url.Values{"jk": {jk}}.Encode()
	u.Fragment = ""
	return u.String()
}

func isBlocked(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "hcaptcha") || strings.Contains(lower, "verify you are human")
}
