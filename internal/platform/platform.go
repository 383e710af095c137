// Package platform defines the lifecycle every job board adapter follows
// and the action primitives the browser-driven adapters are built from.
package platform

import (
	"context"

	"autojobfinder/internal/logging/types"
	"autojobfinder/pkg/models"
)

// Platform is one job board. The orchestrator calls Authenticate, Search and
// then Apply or Persist, in that order.
type Platform interface {
	Name() models.Platform

	// Authenticate establishes a session; repeated calls are no-ops once it
	// succeeded. Returns utils.ErrCredentialsMissing before any network call
	// when credentials are absent.
	Authenticate(ctx context.Context) error

	// Search navigates afresh on every call and returns at most
	// criteria.ResultLimit unique listings.
	Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.JobListing, error)

	// Apply attempts every listing not yet applied to. Applied is set only
	// on confirmed submission.
	Apply(ctx context.Context, listings []*models.JobListing) error
}

// Exporter writes a batch of listings and returns where they went
type Exporter interface {
	Export(ctx context.Context, p models.Platform, listings []*models.JobListing) (string, error)
}

// Persist writes listings through the exporter. An empty batch is skipped
// with a warning and yields an empty location.
func Persist(ctx context.Context, exp Exporter, p models.Platform, listings []*models.JobListing, logger types.Logger) (string, error) {
	if len(listings) == 0 {
		logger.Warn("No jobs to save", map[string]interface{}{"platform": string(p)})
		return "", nil
	}

	location, err := exp.Export(ctx, p, listings)
	if err != nil {
		return "", err
	}

	logger.Info("Saved jobs", map[string]interface{}{
		"platform": string(p),
		"count":    len(listings),
		"location": location,
	})
	return location, nil
}

// Settings shared by the adapters
type Settings struct {
	ApplyActive   bool
	DefaultAnswer string
	MaxApplySteps int
}
