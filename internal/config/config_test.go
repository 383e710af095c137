package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

const validYAML = `
search:
  keywords: "Python Developer"
  location: "New York"
  experience_level: "entry_level"
  job_type: "fulltime"
  date_posted: "7"
application:
  apply_active: false
platforms:
  linkedin:
    enabled: true
    search_limit: 25
  indeed:
    enabled: false
    search_limit: 50
  glassdoor:
    enabled: true
    search_limit: 10
browser:
  headless: true
delays:
  min_delay: 1
  max_delay: 3
  page_load_timeout: 20
logging:
  file_path: "logs/autojobfinder.log"
  level: "INFO"
  max_file_size: 10
  backup_count: 5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// dropSection removes a top-level section and its indented body
func dropSection(content, section string) string {
	var out []string
	skipping := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, section+":") {
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(line, " ") {
			continue
		}
		skipping = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "Python Developer", cfg.Search.Keywords)
	assert.False(t, cfg.Application.ApplyActive)
	assert.Equal(t, "Yes", cfg.Application.DefaultAnswer)
	assert.Equal(t, 10, cfg.Application.MaxApplySteps)
	assert.Equal(t, 25, cfg.Platforms.LinkedIn.SearchLimit)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 20.0, cfg.Delays.PageLoadTimeout)
	assert.Equal(t, 5, cfg.Logging.BackupCount)
	assert.True(t, cfg.Logging.Console)

	assert.Equal(t, []models.Platform{models.PlatformLinkedIn, models.PlatformGlassdoor}, cfg.EnabledPlatforms())
}

func TestLoadConfig_MissingSection(t *testing.T) {
	for _, section := range RequiredSections {
		t.Run(section, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, dropSection(validYAML, section)))
			require.Error(t, err)
			assert.True(t, utils.IsValidationError(err))
			assert.Contains(t, err.Error(), "missing required configuration section: "+section)
		})
	}
}

func TestLoadConfig_MissingField(t *testing.T) {
	content := strings.Replace(validYAML, "  backup_count: 5\n", "", 1)
	_, err := LoadConfig(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.backup_count")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var ce *utils.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "config_error", ce.Code)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		message string
	}{
		{"max below min", "max_delay: 3", "max_delay: 0.5", "MaxDelay"},
		{"zero timeout", "page_load_timeout: 20", "page_load_timeout: 0", "PageLoadTimeout"},
		{"bad job type", `job_type: "fulltime"`, `job_type: "gig"`, "unknown job type"},
		{"bad date posted", `date_posted: "7"`, `date_posted: "last week"`, "date_posted"},
		{"enabled without limit", "search_limit: 25", "search_limit: 0", "SearchLimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validYAML, tt.old, tt.new, 1)
			_, err := LoadConfig(writeConfig(t, content))
			require.Error(t, err)
			assert.True(t, utils.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadConfig_DisabledPlatformMayHaveNoLimit(t *testing.T) {
	content := strings.Replace(validYAML, "search_limit: 50", "search_limit: 0", 1)
	cfg, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)
	assert.False(t, cfg.Platforms.Indeed.Enabled)
	assert.Equal(t, 0, cfg.Platforms.Indeed.SearchLimit)
}

func TestSearchCriteria_RejectsMissingLimit(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	cfg.Platforms.LinkedIn.SearchLimit = 0
	_, err = cfg.SearchCriteria(models.PlatformLinkedIn)
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
	assert.Contains(t, err.Error(), "ResultLimit")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APPLY_ACTIVE", "true")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OUTPUT_DIR", "/tmp/jobs")

	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.True(t, cfg.Application.ApplyActive)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "/tmp/jobs", cfg.Output.Dir)
}

func TestLoadConfig_ExpandsVariables(t *testing.T) {
	t.Setenv("JOB_KEYWORDS", "Go Engineer")
	content := strings.Replace(validYAML, `keywords: "Python Developer"`, `keywords: "${JOB_KEYWORDS}"`, 1)

	cfg, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", cfg.Search.Keywords)
}

func TestSearchCriteria(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	criteria, err := cfg.SearchCriteria(models.PlatformGlassdoor)
	require.NoError(t, err)

	assert.Equal(t, models.SearchCriteria{
		Keywords:             "Python Developer",
		Location:             "New York",
		JobType:              models.JobTypeFullTime,
		DatePostedWithinDays: 7,
		ExperienceLevel:      models.ExperienceEntry,
		ResultLimit:          10,
	}, criteria)
}

func TestDocument_Get(t *testing.T) {
	doc, err := ParseDocument([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "New York", doc.Get("search.location", nil))
	assert.Equal(t, 10, doc.Get("platforms.glassdoor.search_limit", 0))
	assert.Equal(t, "fallback", doc.Get("search.salary.min", "fallback"))
	assert.Equal(t, "fallback", doc.Get("nothing.here", "fallback"))
	// a scalar in the middle of the path is treated as absent
	assert.Nil(t, doc.Get("search.keywords.first", nil))
}

func TestDocument_Update(t *testing.T) {
	doc := NewDocument(nil)

	doc.Update("a.b", 42)
	assert.Equal(t, 42, doc.Get("a.b", nil))

	doc.Update("a.c.d", "deep")
	assert.Equal(t, "deep", doc.Get("a.c.d", nil))
	assert.Equal(t, 42, doc.Get("a.b", nil))

	doc.Update("a.b", "replaced")
	assert.Equal(t, "replaced", doc.Get("a.b", nil))
}

func TestDocument_SaveRoundTrip(t *testing.T) {
	path := writeConfig(t, validYAML)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	doc.Update("application.apply_active", true)
	require.NoError(t, doc.Save())

	reloaded, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, true, reloaded.Get("application.apply_active", false))
	assert.NoError(t, reloaded.Validate())
}

func TestDocument_SaveWithoutPath(t *testing.T) {
	assert.Error(t, NewDocument(nil).Save())
}

func TestLoadCredentials(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("LINKEDIN_USERNAME", "")
		t.Setenv("LINKEDIN_PASSWORD", "")
		_, err := LoadCredentials(models.PlatformLinkedIn)
		assert.ErrorIs(t, err, utils.ErrCredentialsMissing)
	})

	t.Run("present", func(t *testing.T) {
		t.Setenv("GLASSDOOR_USERNAME", "jane@example.com")
		t.Setenv("GLASSDOOR_PASSWORD", "hunter2")
		creds, err := LoadCredentials(models.PlatformGlassdoor)
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", creds.Username)
		assert.NotContains(t, creds.String(), "hunter2")
	})

	t.Run("no login platform", func(t *testing.T) {
		_, err := LoadCredentials(models.PlatformIndeed)
		assert.ErrorIs(t, err, utils.ErrCredentialsMissing)
	})
}
