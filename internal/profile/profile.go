// Package profile defines the resume and job data model shared by the
// scoring pipeline, HTTP API and CLI.
package profile

import (
	"errors"
	"strings"
)

// ExperienceLevel is the seniority a job posting targets.
type ExperienceLevel string

const (
	LevelEntry       ExperienceLevel = "entry"
	LevelMid         ExperienceLevel = "mid"
	LevelSenior      ExperienceLevel = "senior"
	LevelUnspecified ExperienceLevel = "unspecified"
)

// ErrEmptyResume is returned when a resume carries no usable content.
var ErrEmptyResume = errors.New("resume profile has no text, skills or experience")

// ErrEmptyJob is returned when a job carries neither title nor description.
var ErrEmptyJob = errors.New("job profile has no title or description")

// ExperienceEntry is one position on a resume.
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	DateRange   string `json:"date_range,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry is one degree or certification on a resume.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
}

// ResumeProfile is the structured candidate side of a scoring request.
type ResumeProfile struct {
	RawText           string            `json:"raw_text,omitempty"`
	Skills            []string          `json:"skills,omitempty"`
	Experience        []ExperienceEntry `json:"experience,omitempty"`
	Education         []EducationEntry  `json:"education,omitempty"`
	CandidateComments string            `json:"candidate_comments,omitempty"`
}

// Validate reports whether the resume has enough content to score. A resume
// must carry raw text or at least one of skills or experience entries.
func (r *ResumeProfile) Validate() error {
	if strings.TrimSpace(r.RawText) != "" {
		return nil
	}
	if len(r.Skills) > 0 || len(r.Experience) > 0 {
		return nil
	}
	return ErrEmptyResume
}

// JobProfile is the structured posting side of a scoring request.
type JobProfile struct {
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	RequiredSkills  []string        `json:"required_skills,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty"`
}

// Validate reports whether the job has enough content to score against. A job
// must carry a title or a description.
func (j *JobProfile) Validate() error {
	if strings.TrimSpace(j.Title) == "" && strings.TrimSpace(j.Description) == "" {
		return ErrEmptyJob
	}
	return nil
}

// Level normalizes the posting's experience level, mapping unknown values to
// LevelUnspecified.
func (j *JobProfile) Level() ExperienceLevel {
	switch ExperienceLevel(strings.ToLower(strings.TrimSpace(string(j.ExperienceLevel)))) {
	case LevelEntry:
		return LevelEntry
	case LevelMid:
		return LevelMid
	case LevelSenior:
		return LevelSenior
	default:
		return LevelUnspecified
	}
}
