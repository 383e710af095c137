package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

// PlatformConfig holds the per-platform switches
type PlatformConfig struct {
	Enabled     bool `yaml:"enabled"`
	SearchLimit int  `yaml:"search_limit" validate:"gte=0,required_if=Enabled true"`
}

// Config represents the application configuration
type Config struct {
	Search struct {
		Keywords        string `yaml:"keywords" validate:"required"`
		Location        string `yaml:"location"`
		ExperienceLevel string `yaml:"experience_level"`
		JobType         string `yaml:"job_type"`
		DatePosted      string `yaml:"date_posted"`
	} `yaml:"search"`

	Application struct {
		ApplyActive   bool   `yaml:"apply_active"`
		DefaultAnswer string `yaml:"default_answer"`
		MaxApplySteps int    `yaml:"max_apply_steps" validate:"gte=0"`
	} `yaml:"application"`

	Platforms struct {
		LinkedIn  PlatformConfig `yaml:"linkedin"`
		Indeed    PlatformConfig `yaml:"indeed"`
		Glassdoor PlatformConfig `yaml:"glassdoor"`
	} `yaml:"platforms"`

	Browser struct {
		Headless  bool   `yaml:"headless"`
		UserAgent string `yaml:"user_agent"`
		Bin       string `yaml:"bin"`
	} `yaml:"browser"`

	// Delays are expressed in seconds
	Delays struct {
		MinDelay        float64 `yaml:"min_delay" validate:"gte=0"`
		MaxDelay        float64 `yaml:"max_delay" validate:"gtefield=MinDelay"`
		PageLoadTimeout float64 `yaml:"page_load_timeout" validate:"gt=0"`
	} `yaml:"delays"`

	Logging struct {
		FilePath    string `yaml:"file_path" validate:"required"`
		Level       string `yaml:"level"`
		MaxFileSize int    `yaml:"max_file_size" validate:"gte=0"` // megabytes
		BackupCount int    `yaml:"backup_count" validate:"gte=0"`
		Format      string `yaml:"format"`
		Console     bool   `yaml:"console"`
	} `yaml:"logging"`

	Output struct {
		Dir    string `yaml:"dir"`
		Upload struct {
			Enabled         bool   `yaml:"enabled"`
			Bucket          string `yaml:"bucket" validate:"required_if=Enabled true"`
			Region          string `yaml:"region"`
			Endpoint        string `yaml:"endpoint"`
			Prefix          string `yaml:"prefix"`
			PublicURL       string `yaml:"public_url"`
			AccessKeyID     string `yaml:"-"`
			AccessKeySecret string `yaml:"-"`
		} `yaml:"upload"`
	} `yaml:"output"`

	Dedup struct {
		Enabled  bool          `yaml:"enabled"`
		RedisURL string        `yaml:"redis_url"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"dedup"`

	Storage struct {
		PostgresURL string `yaml:"postgres_url"`
	} `yaml:"storage"`

	Schedule struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron" validate:"required_if=Enabled true"`
	} `yaml:"schedule"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables.
// A missing required section or field is an error.
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	doc, err := LoadDocument(configPath)
	if err != nil {
		return nil, err
	}

	return FromDocument(doc)
}

// FromDocument validates a document and decodes it into a Config
func FromDocument(doc *Document) (*Config, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	config := &Config{}
	config.setDefaults()

	if err := doc.decode(config); err != nil {
		return nil, err
	}

	config.loadFromEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults fills optional settings that the document may omit
func (c *Config) setDefaults() {
	c.Application.DefaultAnswer = "Yes"
	c.Application.MaxApplySteps = 10

	c.Logging.Format = "text"
	c.Logging.Console = true

	c.Output.Dir = "."
	c.Output.Upload.Region = "nyc3"

	c.Dedup.RedisURL = "redis://localhost:6379"
	c.Dedup.TTL = 30 * 24 * time.Hour

	c.Schedule.Cron = "@every 6h"
}

// loadFromEnv loads configuration overrides from environment variables
func (c *Config) loadFromEnv() {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if headless := os.Getenv("BROWSER_HEADLESS"); headless != "" {
		c.Browser.Headless = headless == "true" || headless == "1"
	}

	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		c.Browser.Bin = chromeBin
	}

	if applyActive := os.Getenv("APPLY_ACTIVE"); applyActive != "" {
		c.Application.ApplyActive = applyActive == "true" || applyActive == "1"
	}

	if outputDir := os.Getenv("OUTPUT_DIR"); outputDir != "" {
		c.Output.Dir = outputDir
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Dedup.RedisURL = redisURL
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Storage.PostgresURL = dbURL
	}

	// Object storage credentials never live in the document
	c.Output.Upload.AccessKeyID = os.Getenv("SPACES_ACCESS_KEY_ID")
	c.Output.Upload.AccessKeySecret = os.Getenv("SPACES_SECRET_ACCESS_KEY")
}

// Validate checks value constraints on the decoded configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return utils.NewValidationError(err.Error())
	}

	if _, err := models.ParseJobType(c.Search.JobType); err != nil {
		return utils.NewValidationError(err.Error())
	}
	if _, err := models.ParseExperienceLevel(c.Search.ExperienceLevel); err != nil {
		return utils.NewValidationError(err.Error())
	}
	if _, err := parseDays(c.Search.DatePosted); err != nil {
		return utils.NewValidationError(err.Error())
	}

	return nil
}

// Platform returns the settings of the given platform
func (c *Config) Platform(p models.Platform) PlatformConfig {
	switch p {
	case models.PlatformLinkedIn:
		return c.Platforms.LinkedIn
	case models.PlatformIndeed:
		return c.Platforms.Indeed
	case models.PlatformGlassdoor:
		return c.Platforms.Glassdoor
	default:
		return PlatformConfig{}
	}
}

// EnabledPlatforms returns the enabled platforms in processing order
func (c *Config) EnabledPlatforms() []models.Platform {
	var enabled []models.Platform
	for _, p := range models.AllPlatforms {
		if c.Platform(p).Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// SearchCriteria builds the criteria for one platform's search
func (c *Config) SearchCriteria(p models.Platform) (models.SearchCriteria, error) {
	jobType, err := models.ParseJobType(c.Search.JobType)
	if err != nil {
		return models.SearchCriteria{}, err
	}
	level, err := models.ParseExperienceLevel(c.Search.ExperienceLevel)
	if err != nil {
		return models.SearchCriteria{}, err
	}
	days, err := parseDays(c.Search.DatePosted)
	if err != nil {
		return models.SearchCriteria{}, err
	}

	criteria := models.SearchCriteria{
		Keywords:             c.Search.Keywords,
		Location:             c.Search.Location,
		JobType:              jobType,
		DatePostedWithinDays: days,
		ExperienceLevel:      level,
		ResultLimit:          c.Platform(p).SearchLimit,
	}
	if err := validator.New().Struct(criteria); err != nil {
		return models.SearchCriteria{}, utils.NewValidationError(fmt.Sprintf("%s search: %v", p, err))
	}
	return criteria, nil
}

// PageLoadTimeout returns the default element wait
func (c *Config) PageLoadTimeout() time.Duration {
	return utils.SecondsToDuration(c.Delays.PageLoadTimeout)
}

func parseDays(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(s)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("date_posted must be a non-negative number of days, got %q", s)
	}
	return days, nil
}
