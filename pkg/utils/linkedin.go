package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// LinkedInURLType represents the type of LinkedIn URL
type LinkedInURLType int

const (
	LinkedInURLTypeUnknown      LinkedInURLType = iota
	LinkedInURLTypeJobView                      // Direct job view: /jobs/view/123
	LinkedInURLTypeJobSelection                 // Search or collection page with ?currentJobId=123
	LinkedInURLTypeNonJob                       // Profiles, company pages, feed, etc.
)

var (
	linkedInJobViewPattern = regexp.MustCompile(`^/jobs/view/(?:[^/]*-)?(\d+)/?$`)
	numericIDPattern       = regexp.MustCompile(`^\d+$`)
)

// LinkedInURLInfo contains information about a parsed LinkedIn URL
type LinkedInURLInfo struct {
	Type      LinkedInURLType
	JobID     string
	PublicURL string
}

// IsLinkedInURL checks if a URL is a LinkedIn URL
func IsLinkedInURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	return hostname == "linkedin.com" || strings.HasSuffix(hostname, ".linkedin.com")
}

// ParseLinkedInURL analyzes a LinkedIn URL and returns its type and job ID
func ParseLinkedInURL(urlStr string) (*LinkedInURLInfo, error) {
	if !IsLinkedInURL(urlStr) {
		return nil, fmt.Errorf("not a LinkedIn URL: %s", urlStr)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	path := strings.ToLower(parsedURL.Path)
	info := &LinkedInURLInfo{Type: LinkedInURLTypeNonJob}

	if matches := linkedInJobViewPattern.FindStringSubmatch(path); len(matches) > 1 {
		info.Type = LinkedInURLTypeJobView
		info.JobID = matches[1]
		info.PublicURL = LinkedInJobViewURL(info.JobID)
		return info, nil
	}

	// Clicking a card on /jobs/search/ or /jobs/collections/ only changes the
	// currentJobId query parameter.
	if strings.HasPrefix(path, "/jobs/search") || strings.HasPrefix(path, "/jobs/collections/") {
		if id := parsedURL.Query().Get("currentJobId"); numericIDPattern.MatchString(id) {
			info.Type = LinkedInURLTypeJobSelection
			info.JobID = id
			info.PublicURL = LinkedInJobViewURL(id)
		}
	}

	return info, nil
}

// LinkedInJobViewURL builds the canonical public URL for a job ID
func LinkedInJobViewURL(jobID string) string {
	return fmt.Sprintf("https://www.linkedin.com/jobs/view/%s/", jobID)
}

// CanonicalLinkedInJobURL converts the various LinkedIn job URL formats to the
// canonical /jobs/view/<id>/ form so that tracking parameters never make the
// same posting look like two listings.
func CanonicalLinkedInJobURL(urlStr string) (string, string, error) {
	info, err := ParseLinkedInURL(urlStr)
	if err != nil {
		return "", "", err
	}

	switch info.Type {
	case LinkedInURLTypeJobView, LinkedInURLTypeJobSelection:
		return info.PublicURL, info.JobID, nil
	default:
		return "", "", fmt.Errorf("LinkedIn URL is not a job posting: %s", urlStr)
	}
}
