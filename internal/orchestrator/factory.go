package orchestrator

import (
	"fmt"
	"net/http"

	"autojobfinder/internal/browser"
	"autojobfinder/internal/logging/types"
	"autojobfinder/internal/platform"
	"autojobfinder/internal/platform/glassdoor"
	"autojobfinder/internal/platform/indeed"
	"autojobfinder/internal/platform/linkedin"
	"autojobfinder/pkg/models"
)

// Resources are the collaborators a run shares between its platforms
type Resources struct {
	Driver     browser.Driver
	HTTPClient *http.Client
	Delays     platform.Delays
	Settings   platform.Settings
	Logger     types.Logger
}

// PlatformFactory builds the adapter for one platform
type PlatformFactory func(p models.Platform, res Resources) (platform.Platform, error)

// NewPlatform is the PlatformFactory for the supported job boards
func NewPlatform(p models.Platform, res Resources) (platform.Platform, error) {
	switch p {
	case models.PlatformLinkedIn:
		if res.Driver == nil {
			return nil, fmt.Errorf("%s requires a browser session", p)
		}
		return linkedin.New(res.Driver, res.Delays, res.Settings, res.Logger), nil
	case models.PlatformIndeed:
		return indeed.New(res.HTTPClient, res.Driver, res.Delays, res.Settings, res.Logger), nil
	case models.PlatformGlassdoor:
		if res.Driver == nil {
			return nil, fmt.Errorf("%s requires a browser session", p)
		}
		return glassdoor.New(res.Driver, res.Delays, res.Settings, res.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", p)
	}
}

// needsBrowser reports whether any of the platforms drives a browser
func needsBrowser(platforms []models.Platform, applyActive bool) bool {
	for _, p := range platforms {
		switch p {
		case models.PlatformLinkedIn, models.PlatformGlassdoor:
			return true
		case models.PlatformIndeed:
			if applyActive {
				return true
			}
		}
	}
	return false
}
