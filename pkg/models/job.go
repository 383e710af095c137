package models

import (
	"fmt"
	"strings"
)

// Platform identifies one of the supported job boards
type Platform string

const (
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformIndeed    Platform = "Indeed"
	PlatformGlassdoor Platform = "Glassdoor"
)

// AllPlatforms lists the supported platforms in the order they are processed
var AllPlatforms = []Platform{PlatformLinkedIn, PlatformIndeed, PlatformGlassdoor}

// Slug returns the lower-case identifier used in configuration keys and file names
func (p Platform) Slug() string {
	return strings.ToLower(string(p))
}

// ParsePlatform converts a configuration key such as "linkedin" to a Platform
func ParsePlatform(s string) (Platform, error) {
	for _, p := range AllPlatforms {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ListingKey is the identity of a listing. Two listings with the same key are
// the same posting regardless of how they were scraped.
type ListingKey struct {
	Platform Platform
	URL      string
}

func (k ListingKey) String() string {
	return string(k.Platform) + "|" + k.URL
}

// JobListing represents one scraped job posting
type JobListing struct {
	Platform    Platform `json:"platform"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Applied     bool     `json:"applied"`
	ExternalID  string   `json:"external_id,omitempty"`
}

// Key returns the (platform, url) identity of the listing
func (j *JobListing) Key() ListingKey {
	return ListingKey{Platform: j.Platform, URL: j.URL}
}

// ListingSet collects listings while rejecting duplicates by key
type ListingSet struct {
	seen  map[ListingKey]struct{}
	items []*JobListing
	limit int
}

// NewListingSet creates a set that accepts at most limit listings (0 = unlimited)
func NewListingSet(limit int) *ListingSet {
	return &ListingSet{
		seen:  make(map[ListingKey]struct{}),
		limit: limit,
	}
}

// Add appends the listing unless it is a duplicate or the set is full.
// It reports whether the listing was added.
func (s *ListingSet) Add(j *JobListing) bool {
	if j == nil || s.Full() {
		return false
	}
	key := j.Key()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, j)
	return true
}

// Full reports whether the limit has been reached
func (s *ListingSet) Full() bool {
	return s.limit > 0 && len(s.items) >= s.limit
}

// Len returns the number of collected listings
func (s *ListingSet) Len() int {
	return len(s.items)
}

// Listings returns the collected listings in insertion order
func (s *ListingSet) Listings() []*JobListing {
	return s.items
}
