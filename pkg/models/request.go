package models

import (
	"fmt"
	"strings"
)

// JobType is the employment type filter applied to a search
type JobType string

const (
	JobTypeAny        JobType = ""
	JobTypeFullTime   JobType = "fulltime"
	JobTypePartTime   JobType = "parttime"
	JobTypeContract   JobType = "contract"
	JobTypeTemporary  JobType = "temporary"
	JobTypeInternship JobType = "internship"
)

// ExperienceLevel is the seniority filter applied to a search
type ExperienceLevel string

const (
	ExperienceAny        ExperienceLevel = ""
	ExperienceInternship ExperienceLevel = "internship"
	ExperienceEntry      ExperienceLevel = "entry_level"
	ExperienceAssociate  ExperienceLevel = "associate"
	ExperienceMidSenior  ExperienceLevel = "mid_senior_level"
	ExperienceDirector   ExperienceLevel = "director"
	ExperienceExecutive  ExperienceLevel = "executive"
)

// ParseJobType normalises values such as "full-time" or "Full Time"
func ParseJobType(s string) (JobType, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch JobType(norm) {
	case JobTypeAny, JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeTemporary, JobTypeInternship:
		return JobType(norm), nil
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

// ParseExperienceLevel normalises values such as "Entry Level" or "entry-level"
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch ExperienceLevel(norm) {
	case ExperienceAny, ExperienceInternship, ExperienceEntry, ExperienceAssociate,
		ExperienceMidSenior, ExperienceDirector, ExperienceExecutive:
		return ExperienceLevel(norm), nil
	case "entry", "junior":
		return ExperienceEntry, nil
	case "mid", "senior", "mid_senior":
		return ExperienceMidSenior, nil
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

// SearchCriteria describes one search against one platform. It is read-only
// for the duration of the search.
type SearchCriteria struct {
	Keywords             string          `json:"keywords" validate:"required"`
	Location             string          `json:"location"`
	JobType              JobType         `json:"job_type"`
	DatePostedWithinDays int             `json:"date_posted" validate:"gte=0"`
	ExperienceLevel      ExperienceLevel `json:"experience_level"`
	ResultLimit          int             `json:"result_limit" validate:"gt=0"`
}
