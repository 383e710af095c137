package linkedin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autojobfinder/internal/browser"
	"autojobfinder/internal/browser/browsertest"
	"autojobfinder/internal/config"
	"autojobfinder/internal/logging"
	"autojobfinder/internal/logging/types"
	"autojobfinder/internal/platform"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

func newTestLinkedIn(driver *browsertest.Driver, settings platform.Settings) *LinkedIn {
	l := New(driver, platform.Delays{PageLoad: 30 * time.Millisecond}, settings, logging.NewMultiLogger())
	l.actions.PollInterval = time.Millisecond
	l.credentials = func(models.Platform) (config.Credentials, error) {
		return config.Credentials{Username: "jane@example.com", Password: "secret"}, nil
	}
	return l
}

// showJob makes the details pane display a job, as clicking a card does
func showJob(d *browsertest.Driver, id, title, company string) {
	d.SetURL(searchURL + "?currentJobId=" + id + "&keywords=go")
	d.Set(detailsLoaded[0], browsertest.NewElement(""))
	d.Set(titleFields[0], browsertest.NewElement(title))
	d.Set(companyFields[0], browsertest.NewElement(company))
	d.Set(locationFields[1], browsertest.NewElement("Remote"))
	d.Set(descriptionFields[0], browsertest.NewElement("Build things in Go."))
}

func card(d *browsertest.Driver, id, title, company string) *browsertest.Element {
	c := browsertest.NewElement(title).WithAttr("data-occludable-job-id", id)
	c.OnClick = func() { showJob(d, id, title, company) }
	return c
}

var criteria = models.SearchCriteria{
	Keywords:             "Go Developer",
	Location:             "New York",
	JobType:              models.JobTypeFullTime,
	DatePostedWithinDays: 7,
	ExperienceLevel:      models.ExperienceEntry,
	ResultLimit:          10,
}

func TestAuthenticate_MissingCredentialsNeverNavigates(t *testing.T) {
	t.Setenv("LINKEDIN_USERNAME", "")
	t.Setenv("LINKEDIN_PASSWORD", "")

	driver := browsertest.NewDriver()
	l := newTestLinkedIn(driver, platform.Settings{})
	l.credentials = config.LoadCredentials

	err := l.Authenticate(context.Background())
	assert.ErrorIs(t, err, utils.ErrCredentialsMissing)
	assert.Empty(t, driver.Visited)
}

func TestAuthenticate_AlreadyLoggedIn(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Set(loggedInIndicators[0], browsertest.NewElement(""))
	}
	l := newTestLinkedIn(driver, platform.Settings{})

	require.NoError(t, l.Authenticate(context.Background()))
	require.NoError(t, l.Authenticate(context.Background()))

	assert.Equal(t, []string{baseURL}, driver.Visited)
}

func TestAuthenticate_SignsIn(t *testing.T) {
	driver := browsertest.NewDriver()
	username := browsertest.NewElement("")
	password := browsertest.NewElement("")

	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		if url != loginURL {
			return
		}
		submit := browsertest.NewElement("Sign in")
		submit.OnClick = func() {
			d.SetURL(baseURL + "/feed/")
			d.Set(loggedInIndicators[1], browsertest.NewElement(""))
		}
		d.Set(usernameField, username)
		d.Set(passwordField, password)
		d.Set(submitButton, submit)
	}
	l := newTestLinkedIn(driver, platform.Settings{})

	require.NoError(t, l.Authenticate(context.Background()))
	assert.Equal(t, "jane@example.com", username.Typed)
	assert.Equal(t, "secret", password.Typed)
	assert.Equal(t, 1, driver.Navigations("/login"))
}

func TestAuthenticate_RejectedCredentials(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		if url == loginURL {
			d.Set(usernameField, browsertest.NewElement(""))
			d.Set(passwordField, browsertest.NewElement(""))
			d.Set(submitButton, browsertest.NewElement("Sign in"))
		}
	}
	l := newTestLinkedIn(driver, platform.Settings{})

	err := l.Authenticate(context.Background())
	assert.ErrorIs(t, err, utils.ErrAuthenticationFailed)
	assert.False(t, l.loggedIn)
}

func TestBuildSearchURL(t *testing.T) {
	u := BuildSearchURL(criteria)
	assert.True(t, strings.HasPrefix(u, searchURL+"?"))
	assert.Contains(t, u, "keywords=Go+Developer")
	assert.Contains(t, u, "location=New+York")
	assert.Contains(t, u, "f_TPR=r604800")
	assert.Contains(t, u, "f_E=2")
	assert.Contains(t, u, "f_JT=F")
	assert.NotContains(t, u, "f_WT")

	remote := BuildSearchURL(models.SearchCriteria{Keywords: "go", Location: "Remote"})
	assert.Contains(t, remote, "f_WT=2")
	assert.NotContains(t, remote, "f_E")
}

func TestSearch_CardsRespectLimitAndDedupe(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		d.Set(resultsLoaded[0], browsertest.NewElement(""))
		d.Set(jobCards[0],
			card(d, "111", "Go Developer", "Acme"),
			card(d, "111", "Go Developer", "Acme"),
			card(d, "222", "Backend Engineer", "Globex"),
			card(d, "333", "Platform Engineer", "Initech"),
		)
	}
	l := newTestLinkedIn(driver, platform.Settings{})

	limited := criteria
	limited.ResultLimit = 2
	listings, err := l.Search(context.Background(), limited)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Go Developer", listings[0].Title)
	assert.Equal(t, "Acme", listings[0].Company)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/111/", listings[0].URL)
	assert.Equal(t, "111", listings[0].ExternalID)
	assert.Equal(t, "Backend Engineer", listings[1].Title)
	for _, listing := range listings {
		assert.Equal(t, models.PlatformLinkedIn, listing.Platform)
		assert.False(t, listing.Applied)
	}

	// a second search navigates again
	again, err := l.Search(context.Background(), criteria)
	require.NoError(t, err)
	assert.Len(t, again, 3)
	assert.Equal(t, 2, driver.Navigations("/jobs/search/"))
}

func TestSearch_LoadsMoreCards(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		d.Set(jobCards[0], card(d, "1", "First", "A"))
		more := browsertest.NewElement("See more jobs")
		more.OnClick = func() {
			d.Add(jobCards[0], card(d, "2", "Second", "B"))
			d.Remove(showMoreButton)
		}
		d.Set(showMoreButton, more)
	}
	l := newTestLinkedIn(driver, platform.Settings{})

	listings, err := l.Search(context.Background(), criteria)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "Second", listings[1].Title)
}

func TestSearch_FallsBackToJobLinks(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		if strings.Contains(url, "/jobs/view/") {
			d.Set(detailsLoaded[2], browsertest.NewElement(""))
			d.Set(titleFields[2], browsertest.NewElement("Site Reliability Engineer"))
			return
		}
		d.Set(jobViewLinks,
			browsertest.NewElement("").WithAttr("href", "/jobs/view/999/?trk=abc"),
			browsertest.NewElement("").WithAttr("href", "https://www.linkedin.com/jobs/view/999/"),
		)
	}
	l := newTestLinkedIn(driver, platform.Settings{})

	listings, err := l.Search(context.Background(), criteria)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Site Reliability Engineer", listings[0].Title)
	assert.Equal(t, platform.UnknownCompany, listings[0].Company)
	assert.Equal(t, platform.NoDescription, listings[0].Description)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/999/", listings[0].URL)
	assert.Equal(t, "999", listings[0].ExternalID)
}

func TestSearch_AuthWallFails(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.SetURL(baseURL + "/authwall?trk=jobs")
	}
	l := newTestLinkedIn(driver, platform.Settings{})
	l.loggedIn = true

	_, err := l.Search(context.Background(), criteria)
	assert.ErrorIs(t, err, utils.ErrSearchFailed)
	assert.False(t, l.loggedIn)
}

func TestApply_InactiveLeavesListingsUntouched(t *testing.T) {
	driver := browsertest.NewDriver()
	l := newTestLinkedIn(driver, platform.Settings{ApplyActive: false})

	listings := []*models.JobListing{
		{Platform: models.PlatformLinkedIn, Title: "A", URL: "https://www.linkedin.com/jobs/view/1/"},
		{Platform: models.PlatformLinkedIn, Title: "B", URL: "https://www.linkedin.com/jobs/view/2/", Applied: true},
	}
	require.NoError(t, l.Apply(context.Background(), listings))

	assert.False(t, listings[0].Applied)
	assert.True(t, listings[1].Applied)
	assert.Empty(t, driver.Visited)
}

// easyApplyPage serves a dialog with the given number of "next" steps before submit
func easyApplyPage(steps int, question *browsertest.Element) func(d *browsertest.Driver, url string) {
	return func(d *browsertest.Driver, url string) {
		d.Reset()
		button := browsertest.NewElement("Easy Apply")
		remaining := steps
		var showStep func()
		showStep = func() {
			d.Remove(nextButton)
			d.Remove(submitAppButton)
			if remaining > 0 {
				remaining--
				next := browsertest.NewElement("Next")
				next.OnClick = showStep
				d.Set(nextButton, next)
				return
			}
			submit := browsertest.NewElement("Submit application")
			submit.OnClick = func() { d.Remove(submitAppButton) }
			d.Set(submitAppButton, submit)
		}
		button.OnClick = func() {
			if question != nil {
				d.Set(textQuestions, question)
			}
			showStep()
		}
		d.Set(easyApplyButtons[0], button)
	}
}

func TestApply_EasyApplySubmits(t *testing.T) {
	driver := browsertest.NewDriver()
	question := browsertest.NewElement("")
	driver.OnNavigate = easyApplyPage(2, question)
	l := newTestLinkedIn(driver, platform.Settings{ApplyActive: true})

	listings := []*models.JobListing{
		{Platform: models.PlatformLinkedIn, Title: "Go Developer", URL: "https://www.linkedin.com/jobs/view/1/"},
		{Platform: models.PlatformLinkedIn, Title: "Done", URL: "https://www.linkedin.com/jobs/view/2/", Applied: true},
	}
	require.NoError(t, l.Apply(context.Background(), listings))

	assert.True(t, listings[0].Applied)
	assert.Equal(t, []string{"https://www.linkedin.com/jobs/view/1/"}, driver.Visited)
	assert.Contains(t, question.Typed, "Yes")
}

func TestApply_StepLimitEndsStuck(t *testing.T) {
	driver := browsertest.NewDriver()
	next := browsertest.NewElement("Next")
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		button := browsertest.NewElement("Easy Apply")
		button.OnClick = func() { d.Set(nextButton, next) }
		d.Set(easyApplyButtons[0], button)
	}
	l := newTestLinkedIn(driver, platform.Settings{ApplyActive: true, MaxApplySteps: 3})

	listing := &models.JobListing{Platform: models.PlatformLinkedIn, URL: "https://www.linkedin.com/jobs/view/1/"}
	state, err := l.applyTo(context.Background(), listing)
	require.NoError(t, err)
	assert.Equal(t, stateStuck, state)
	assert.Equal(t, 3, next.Clicks)

	require.NoError(t, l.Apply(context.Background(), []*models.JobListing{listing}))
	assert.False(t, listing.Applied)
}

type messageRecorder struct {
	messages []string
}

func (r *messageRecorder) Write(entry *types.LogEntry) error {
	r.messages = append(r.messages, entry.Message)
	return nil
}

func (r *messageRecorder) Close() error { return nil }
func (r *messageRecorder) Name() string { return "recorder" }

func newRecordedLinkedIn(t *testing.T, driver *browsertest.Driver, settings platform.Settings) (*LinkedIn, *messageRecorder) {
	t.Helper()
	rec := &messageRecorder{}
	logger := logging.NewMultiLogger()
	logger.SetLevel(logging.DebugLevel)
	require.NoError(t, logger.AddAdapter(rec))

	l := New(driver, platform.Delays{PageLoad: 30 * time.Millisecond}, settings, logger)
	l.actions.PollInterval = time.Millisecond
	return l, rec
}

func failingClicks() []error {
	return []error{errors.New("detached"), errors.New("detached"), errors.New("detached")}
}

func TestApply_DismissFailureIsLogged(t *testing.T) {
	driver := browsertest.NewDriver()
	dismiss := browsertest.NewElement("Dismiss")
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		d.Set(easyApplyButtons[0], browsertest.NewElement("Easy Apply"))
		dismiss.ClickErrs = failingClicks()
		d.Set(dismissButton, dismiss)
	}
	l, rec := newRecordedLinkedIn(t, driver, platform.Settings{ApplyActive: true})

	listing := &models.JobListing{Platform: models.PlatformLinkedIn, URL: "https://www.linkedin.com/jobs/view/1/"}
	require.NoError(t, l.Apply(context.Background(), []*models.JobListing{listing}))

	assert.False(t, listing.Applied)
	assert.Equal(t, 3, dismiss.Clicks)
	assert.Contains(t, rec.messages, "Could not dismiss application")
}

func TestApply_ConfirmationCloseFailureIsLogged(t *testing.T) {
	driver := browsertest.NewDriver()
	dismiss := browsertest.NewElement("Dismiss")
	submitPage := easyApplyPage(0, nil)
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		submitPage(d, url)
		dismiss.ClickErrs = failingClicks()
		d.Set(dismissButton, dismiss)
	}
	l, rec := newRecordedLinkedIn(t, driver, platform.Settings{ApplyActive: true})

	listing := &models.JobListing{Platform: models.PlatformLinkedIn, URL: "https://www.linkedin.com/jobs/view/1/"}
	require.NoError(t, l.Apply(context.Background(), []*models.JobListing{listing}))

	assert.True(t, listing.Applied)
	assert.Contains(t, rec.messages, "Could not close confirmation")
}

func TestApply_NoControlsEndsStuck(t *testing.T) {
	driver := browsertest.NewDriver()
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		d.Set(easyApplyButtons[0], browsertest.NewElement("Easy Apply"))
	}
	l := newTestLinkedIn(driver, platform.Settings{ApplyActive: true})

	listing := &models.JobListing{Platform: models.PlatformLinkedIn, URL: "https://www.linkedin.com/jobs/view/1/"}
	require.NoError(t, l.Apply(context.Background(), []*models.JobListing{listing}))
	assert.False(t, listing.Applied)
}

func TestApply_ExternalApplyIsSkipped(t *testing.T) {
	driver := browsertest.NewDriver()
	external := browsertest.NewElement("Apply")
	driver.OnNavigate = func(d *browsertest.Driver, url string) {
		d.Reset()
		d.Set(easyApplyButtons[0], external)
	}
	l := newTestLinkedIn(driver, platform.Settings{ApplyActive: true})

	listing := &models.JobListing{Platform: models.PlatformLinkedIn, URL: "https://www.linkedin.com/jobs/view/1/"}
	require.NoError(t, l.Apply(context.Background(), []*models.JobListing{listing}))
	assert.False(t, listing.Applied)
	assert.Zero(t, external.Clicks)
}

func TestAnswerQuestions(t *testing.T) {
	driver := browsertest.NewDriver()

	filled := browsertest.NewElement("").WithAttr("value", "10")
	empty := browsertest.NewElement("")
	driver.Set(textQuestions, filled, empty)

	first := &browsertest.Element{Checkable: true}
	second := &browsertest.Element{Checkable: true}
	group := browsertest.NewElement("").
		WithChild(radioOptions, first).
		WithChild(radioOptions, second)
	answered := browsertest.NewElement("").
		WithChild(radioOptions, &browsertest.Element{Checkable: true, Selected: true})
	driver.Set(radioGroups, group, answered)

	unchecked := &browsertest.Element{Checkable: true}
	checked := &browsertest.Element{Checkable: true, Selected: true}
	driver.Set(checkboxes, unchecked, checked)

	l := newTestLinkedIn(driver, platform.Settings{DefaultAnswer: "Absolutely"})
	l.answerQuestions(context.Background())

	assert.Empty(t, filled.Typed)
	assert.Equal(t, "Absolutely", empty.Typed)
	assert.True(t, first.Selected)
	assert.False(t, second.Selected)
	assert.True(t, unchecked.Selected)
	assert.True(t, checked.Selected)
}

var _ platform.Platform = (*LinkedIn)(nil)
var _ browser.Driver = (*browsertest.Driver)(nil)
