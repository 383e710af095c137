package glassdoor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autojobfinder/internal/browser/browsertest"
	"autojobfinder/internal/config"
	"autojobfinder/internal/logging"
	"autojobfinder/internal/platform"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

const scenarioYAML = `
search:
  keywords: "Python Developer"
  location: "New York"
  job_type: "fulltime"
  date_posted: "7"
  experience_level: "entry_level"
application:
  apply_active: false
platforms:
  linkedin:
    enabled: false
    search_limit: 0
  indeed:
    enabled: false
    search_limit: 0
  glassdoor:
    enabled: true
    search_limit: 10
browser:
  headless: true
delays:
  min_delay: 0
  max_delay: 0
  page_load_timeout: 0.05
logging:
  file_path: "logs/test.log"
  level: "debug"
  max_file_size: 1
  backup_count: 1
`

var testDelays = platform.Delays{PageLoad: 30 * time.Millisecond}

func newTestGlassdoor(driver *browsertest.Driver, delays platform.Delays, settings platform.Settings) *Glassdoor {
	g := New(driver, delays, settings, logging.NewMultiLogger())
	g.actions.PollInterval = time.Millisecond
	g.credentials = func(models.Platform) (config.Credentials, error) {
		return config.Credentials{Username: "jane@example.com", Password: "secret"}, nil
	}
	return g
}

func jobCard(d *browsertest.Driver, n int) *browsertest.Element {
	title := fmt.Sprintf("Python Developer %d", n)
	link := browsertest.NewElement(title).WithAttr("href", fmt.Sprintf("/job-listing/python-developer-%d.htm?jl=%d", n, n))
	card := browsertest.NewElement("").
		WithAttr("data-jobid", fmt.Sprint(n)).
		WithChild(jobLink, link).
		WithChild(employerName, browsertest.NewElement(fmt.Sprintf("Employer %d", n))).
		WithChild(jobLocation, browsertest.NewElement("New York, NY"))
	card.OnClick = func() {
		d.Set(descriptionPanel, browsertest.NewElement(fmt.Sprintf("Description of job %d", n)))
	}
	return card
}

// searchPage serves the search bar; pressing Enter renders count cards
func searchPage(count int) func(d *browsertest.Driver, url string) {
	return func(d *browsertest.Driver, url string) {
		d.Reset()
		if url != jobsURL {
			return
		}
		location := browsertest.NewElement("")
		location.OnEnter = func() {
			d.Set(jobList, browsertest.NewElement(""))
			for n := 1; n <= count; n++ {
				d.Add(jobCards, jobCard(d, n))
			}
		}
		d.Set(keywordInput, browsertest.NewElement(""))
		d.Set(locationInput, location)
	}
}

func TestSearch_PythonDeveloperScenario(t *testing.T) {
	doc, err := config.ParseDocument([]byte(scenarioYAML))
	require.NoError(t, err)
	cfg, err := config.FromDocument(doc)
	require.NoError(t, err)

	criteria, err := cfg.SearchCriteria(models.PlatformGlassdoor)
	require.NoError(t, err)
	require.Equal(t, 10, criteria.ResultLimit)

	driver := browsertest.NewDriver()
	driver.OnNavigate = searchPage(15)
	g := newTestGlassdoor(driver, platform.Delays{PageLoad: cfg.PageLoadTimeout()}, platform.Settings{ApplyActive: cfg.Application.ApplyActive})

	listings, err := g.Search(context.Background(), criteria)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(listings), 10)
	assert.NotEmpty(t, listings)

	for _, listing := range listings {
		assert.Equal(t, models.PlatformGlassdoor, listing.Platform)
		assert.False(t, listing.Applied)
	}

	require.NoError(t, g.Apply(context.Background(), listings))
	for _, listing := range listings {
		assert.False(t, listing.Applied)
	}
	assert.Equal(t, 1, len(driver.Visited))
}

func TestSearch_ExtractsCardsAndDescriptions(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = searchPage(2)
	g := newTestGlassdoor(driver, testDelays, platform.Settings{})

	listings, err := g.Search(context.Background(), models.SearchCriteria{Keywords: "Python", Location: "New York", ResultLimit: 10})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Python Developer 1", first.Title)
	assert.Equal(t, "Employer 1", first.Company)
	assert.Equal(t, "New York, NY", first.Location)
	assert.Equal(t, "Description of job 1", first.Description)
	assert.Equal(t, "https://www.glassdoor.com/job-listing/python-developer-1.htm?jl=1", first.URL)
	assert.Equal(t, "1", first.ExternalID)
}

func TestSearch_ShowMoreJobs(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		searchPage(2)(d, url)
		more := browsertest.NewElement("Show more jobs")
		more.OnClick = func() {
			d.Add(jobCards, jobCard(d, 3), jobCard(d, 4))
			d.Remove(showMoreJobs)
		}
		d.Set(showMoreJobs, more)
	}
	g := newTestGlassdoor(driver, testDelays, platform.Settings{})

	listings, err := g.Search(context.Background(), models.SearchCriteria{Keywords: "Python", ResultLimit: 3})
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "Python Developer 3", listings[2].Title)
}

func TestSearch_AppliesFilters(t *testing.T) {
	driver := browsertest.NewDriver()
	days := &browsertest.Element{Checkable: true}
	level := &browsertest.Element{Checkable: true}
	jobType := &browsertest.Element{Checkable: true}
	apply := browsertest.NewElement("Apply")

	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		searchPage(1)(d, url)
		d.Set(filtersButton, browsertest.NewElement("Filters"))
		d.Set(filterOption("7"), days)
		d.Set(filterOption("entrylevel"), level)
		d.Set(filterOption("fulltime"), jobType)
		d.Set(applyFiltersButton, apply)
	}
	g := newTestGlassdoor(driver, testDelays, platform.Settings{})

	_, err := g.Search(context.Background(), models.SearchCriteria{
		Keywords:             "Python",
		DatePostedWithinDays: 7,
		ExperienceLevel:      models.ExperienceEntry,
		JobType:              models.JobTypeFullTime,
		ResultLimit:          5,
	})
	require.NoError(t, err)

	assert.True(t, days.Selected)
	assert.True(t, level.Selected)
	assert.True(t, jobType.Selected)
	assert.Equal(t, 1, apply.Clicks)
}

func TestSearch_MissingSearchBarFails(t *testing.T) {
	driver := browsertest.NewDriver()
	g := newTestGlassdoor(driver, testDelays, platform.Settings{})

	_, err := g.Search(context.Background(), models.SearchCriteria{Keywords: "Python", ResultLimit: 5})
	assert.ErrorIs(t, err, utils.ErrSearchFailed)
}

func TestAuthenticate_MissingCredentialsNeverNavigates(t *testing.T) {
	t.Setenv("GLASSDOOR_USERNAME", "")
	t.Setenv("GLASSDOOR_PASSWORD", "")

	driver := browsertest.NewDriver()
	g := newTestGlassdoor(driver, testDelays, platform.Settings{})
	g.credentials = config.LoadCredentials

	err := g.Authenticate(context.Background())
	assert.ErrorIs(t, err, utils.ErrCredentialsMissing)
	assert.Empty(t, driver.Visited)
}

func TestAuthenticate_AcceptsCookiesAndSignsIn(t *testing.T) {
	driver := browsertest.NewDriver()
	cookies := browsertest.NewElement("Accept Cookies")
	username := browsertest.NewElement("")
	password := browsertest.NewElement("")

	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		submit := browsertest.NewElement("Sign In")
		submit.OnClick = func() { d.Set(profileMenu, browsertest.NewElement("")) }
		d.Set(cookieAccept, cookies)
		d.Set(usernameField, username)
		d.Set(passwordField, password)
		d.Set(submitButton, submit)
	}
	g := newTestGlassdoor(driver, testDelays, platform.Settings{})

	require.NoError(t, g.Authenticate(context.Background()))
	require.NoError(t, g.Authenticate(context.Background()))

	assert.Equal(t, 1, cookies.Clicks)
	assert.Equal(t, "jane@example.com", username.Typed)
	assert.Equal(t, "secret", password.Typed)
	assert.Equal(t, []string{loginURL}, driver.Visited)
}

func TestAuthenticate_ProfileMenuNeverAppears(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Set(usernameField, browsertest.NewElement(""))
		d.Set(passwordField, browsertest.NewElement(""))
		d.Set(submitButton, browsertest.NewElement("Sign In"))
	}
	g := newTestGlassdoor(driver, testDelays, platform.Settings{})

	err := g.Authenticate(context.Background())
	assert.ErrorIs(t, err, utils.ErrAuthenticationFailed)
}

func TestApply_ClicksApplyButNeverMarksApplied(t *testing.T) {
	driver := browsertest.NewDriver()
	button := browsertest.NewElement("Apply Now")
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		if url == "https://www.glassdoor.com/job-listing/1" {
			d.Set(applyButton, button)
		}
	}
	g := newTestGlassdoor(driver, testDelays, platform.Settings{ApplyActive: true})

	listings := []*models.JobListing{
		{Platform: models.PlatformGlassdoor, URL: "https://www.glassdoor.com/job-listing/1"},
		{Platform: models.PlatformGlassdoor, URL: "https://www.glassdoor.com/job-listing/2"},
	}
	require.NoError(t, g.Apply(context.Background(), listings))

	assert.Equal(t, 1, button.Clicks)
	assert.Len(t, driver.Visited, 2)
	for _, listing := range listings {
		assert.False(t, listing.Applied)
	}
}

func TestApply_InactiveDoesNothing(t *testing.T) {
	driver := browsertest.NewDriver()
	g := newTestGlassdoor(driver, testDelays, platform.Settings{ApplyActive: false})

	listings := []*models.JobListing{{Platform: models.PlatformGlassdoor, URL: "https://www.glassdoor.com/job-listing/1"}}
	require.NoError(t, g.Apply(context.Background(), listings))
	assert.Empty(t, driver.Visited)
}
