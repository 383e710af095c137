package glassdoor

import (
	"fmt"

	"autojobfinder/internal/browser"
)

const (
	baseURL  = "https://www.glassdoor.com"
	loginURL = baseURL + "/profile/login_input"
	jobsURL  = baseURL + "/Job/jobs.htm"
)

var (
	cookieAccept  = browser.ID("onetrust-accept-btn-handler")
	usernameField = browser.ID("userEmail")
	passwordField = browser.ID("userPassword")
	submitButton  = browser.CSS("button[type='submit']")
	profileMenu   = browser.CSS("div[data-test='profile-dropdown']")

	keywordInput  = browser.CSS("input[data-test='search-bar-keyword-input']")
	locationInput = browser.CSS("input[data-test='search-bar-location-input']")

	filtersButton      = browser.CSS("button[data-test='filters-button']")
	applyFiltersButton = browser.CSS("button[data-test='apply-filters-button']")

	jobList          = browser.CSS("ul[data-test='jl']")
	jobCards         = browser.CSS("li[data-test='jobListing']")
	jobLink          = browser.CSS("a[data-test='job-link']")
	employerName     = browser.CSS("div[data-test='employer-name']")
	jobLocation      = browser.CSS("div[data-test='location']")
	descriptionPanel = browser.CSS("div[data-test='jobDescriptionContent']")
	showMoreJobs     = browser.CSS("button[data-test='show-more-jobs']")

	applyButton = browser.CSS("button[data-test='apply-button']")
)

// filterOption is the filter panel input carrying value
func filterOption(value string) browser.Locator {
	return browser.CSS(fmt.Sprintf("input[value='%s']", value))
}
