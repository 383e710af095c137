package linkedin

import "autojobfinder/internal/browser"

const (
	baseURL   = "https://www.linkedin.com"
	loginURL  = baseURL + "/login"
	searchURL = baseURL + "/jobs/search/"
)

var (
	// any of these means the session is logged in
	loggedInIndicators = []browser.Locator{
		browser.CSS("nav.global-nav"),
		browser.CSS(".feed-identity-module"),
		browser.CSS(".search-global-typeahead"),
	}

	usernameField = browser.ID("username")
	passwordField = browser.ID("password")
	submitButton  = browser.CSS("button[type='submit']")

	resultsLoaded = []browser.Locator{
		browser.CSS(".jobs-search-results-list"),
		browser.CSS("div[data-results-list-top-scroll-sentinel]"),
		browser.CSS(".scaffold-layout__list-container"),
		browser.CSS(".jobs-search-no-results"),
		browser.CSS(".jobs-search-results__list"),
	}

	filterButtons = []browser.Locator{
		browser.CSS("button.search-reusables__filters-show-modal-button"),
		browser.CSS("button[aria-label='Show all filters']"),
	}
	remoteCheckboxes   = browser.XPath("//label[contains(translate(., 'REMOTE', 'remote'), 'remote')]//input[@type='checkbox']")
	showResultsButtons = []browser.Locator{
		browser.CSS("button.search-reusables__secondary-filters-show-results-button"),
		browser.CSS("button[data-test-reusables-filters-modal-show-results-button]"),
		browser.CSS("button[aria-label='Apply current filters']"),
	}

	jobCards = []browser.Locator{
		browser.CSS("li.scaffold-layout__list-item[data-occludable-job-id]"),
		browser.CSS(".jobs-search-results__list-item"),
		browser.CSS(".job-card-container"),
	}
	cardClickable  = browser.CSS("div.job-card-container--clickable")
	cardTitleLink  = browser.CSS("a.job-card-list__title, a.job-card-container__link")
	showMoreButton = browser.CSS("button.infinite-scroller__show-more-button, button.see-more-jobs")
	jobViewLinks   = browser.CSS("a[href*='/jobs/view/']")

	detailsLoaded = []browser.Locator{
		browser.CSS(".jobs-unified-top-card"),
		browser.CSS(".job-details-jobs-unified-top-card__container--two-pane"),
		browser.CSS(".jobs-details"),
	}
	titleFields = []browser.Locator{
		browser.CSS(".job-details-jobs-unified-top-card__job-title"),
		browser.CSS(".jobs-unified-top-card__job-title"),
		browser.CSS("h1.t-24"),
	}
	companyFields = []browser.Locator{
		browser.CSS(".job-details-jobs-unified-top-card__company-name"),
		browser.CSS(".jobs-unified-top-card__company-name"),
	}
	locationFields = []browser.Locator{
		browser.CSS(".job-details-jobs-unified-top-card__primary-description-container .tvm__text"),
		browser.CSS(".jobs-unified-top-card__bullet"),
		browser.CSS(".jobs-unified-top-card__workplace-type"),
	}
	descriptionFields = []browser.Locator{
		browser.CSS(".jobs-description__content"),
		browser.CSS(".jobs-description-content"),
		browser.ID("job-details"),
	}

	easyApplyButtons = []browser.Locator{
		browser.CSS("button.jobs-apply-button"),
		browser.CSS("button[data-control-name='jobdetails_topcard_inapply']"),
	}
	nextButton      = browser.CSS("button[aria-label='Continue to next step']")
	reviewButton    = browser.CSS("button[aria-label='Review your application']")
	submitAppButton = browser.CSS("button[aria-label='Submit application']")
	dismissButton   = browser.CSS("button[aria-label='Dismiss']")
	discardButton   = browser.CSS("button[data-control-name='discard_application_confirm_btn']")

	textQuestions = browser.CSS("div.jobs-easy-apply-form-section__grouping input[type='text'], div.jobs-easy-apply-form-section__grouping textarea")
	radioGroups   = browser.CSS("div.jobs-easy-apply-form-section__grouping fieldset")
	radioOptions  = browser.CSS("input[type='radio']")
	radioLabels   = browser.CSS("label")
	checkboxes    = browser.CSS("div.jobs-easy-apply-form-section__grouping input[type='checkbox']")
)
