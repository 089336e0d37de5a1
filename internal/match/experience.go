package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sohv/scorj/internal/profile"
)

var (
	monthRangePattern = regexp.MustCompile(`(\d{1,2})\s*/\s*(\d{4})\s*[-–—]\s*(\d{1,2})\s*/\s*(\d{4})`)
	presentPattern    = regexp.MustCompile(`(?i)(\d{4})\s*[-–—]\s*(present|current|now)`)
	yearRangePattern  = regexp.MustCompile(`(\d{4})\s*[-–—]\s*(\d{4})`)
	bareYearPattern   = regexp.MustCompile(`\b(\d{4})\b`)
)

// genericRoles keeps broadly transferable titles from scoring as irrelevant
// when keyword overlap is thin.
var genericRoles = []string{"engineer", "developer", "analyst", "manager"}

// ExperienceResult reports experience depth and how much of it matters for
// the job at hand.
type ExperienceResult struct {
	TotalYears     float64 `json:"total_years"`
	RelevantYears  float64 `json:"relevant_years"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ExperienceAnalyzer extracts years from free-form date ranges and weighs them
// by relevance to a job posting.
type ExperienceAnalyzer struct {
	now func() time.Time
}

// NewExperienceAnalyzer builds an analyzer using the wall clock.
func NewExperienceAnalyzer() *ExperienceAnalyzer {
	return &ExperienceAnalyzer{now: time.Now}
}

// YearsFromRange parses a free-form date range into a year count. Supported
// forms: "2018-2022", "2020-present", "03/2019-09/2021" and a bare year, which
// counts as one year. Anything else parses to zero, as do negative spans.
func (a *ExperienceAnalyzer) YearsFromRange(dateRange string) float64 {
	s := strings.TrimSpace(dateRange)
	if s == "" {
		return 0
	}

	if m := presentPattern.FindStringSubmatch(s); m != nil {
		start, _ := strconv.Atoi(m[1])
		years := float64(a.now().Year() - start)
		return clampYears(years)
	}

	if m := monthRangePattern.FindStringSubmatch(s); m != nil {
		startMonth, _ := strconv.Atoi(m[1])
		startYear, _ := strconv.Atoi(m[2])
		endMonth, _ := strconv.Atoi(m[3])
		endYear, _ := strconv.Atoi(m[4])
		years := float64(endYear-startYear) + float64(endMonth-startMonth)/12
		return clampYears(years)
	}

	if m := yearRangePattern.FindStringSubmatch(s); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		return clampYears(float64(end - start))
	}

	if bareYearPattern.MatchString(s) {
		return 1
	}

	return 0
}

func clampYears(years float64) float64 {
	if years < 0 {
		return 0
	}
	return years
}

// Analyze totals the candidate's years and scores how relevant they are to the
// job. Entries with unparsable dates contribute nothing.
func (a *ExperienceAnalyzer) Analyze(entries []profile.ExperienceEntry, job *profile.JobProfile) ExperienceResult {
	var result ExperienceResult
	if len(entries) == 0 || job == nil {
		return result
	}

	jobKeywords := keywordSet(job.Title + " " + job.Description)

	for _, entry := range entries {
		years := a.YearsFromRange(entry.DateRange)
		if years <= 0 {
			continue
		}

		result.TotalYears += years
		result.RelevantYears += years * relevanceFactor(entry, job, jobKeywords)
	}

	if result.TotalYears > 0 {
		result.RelevanceScore = result.RelevantYears / result.TotalYears * 100
		if result.RelevanceScore > 100 {
			result.RelevanceScore = 100
		}
	}

	return result
}

// relevanceFactor weighs one position against the job on [0,1]. Keyword
// overlap drives it; shared generic role words floor it at 0.8.
func relevanceFactor(entry profile.ExperienceEntry, job *profile.JobProfile, jobKeywords map[string]struct{}) float64 {
	factor := 0.0

	if len(jobKeywords) > 0 {
		entryWords := keywordSet(entry.Title + " " + entry.Description)
		overlap := 0
		for word := range jobKeywords {
			if _, ok := entryWords[word]; ok {
				overlap++
			}
		}
		factor = float64(overlap) / (float64(len(jobKeywords)) * 0.3)
		if factor > 1 {
			factor = 1
		}
	}

	entryTitle := strings.ToLower(entry.Title)
	jobTitle := strings.ToLower(job.Title)
	for _, role := range genericRoles {
		if strings.Contains(entryTitle, role) && strings.Contains(jobTitle, role) {
			if factor < 0.8 {
				factor = 0.8
			}
			break
		}
	}

	return factor
}

// keywordSet splits text into lowercase words longer than three characters.
func keywordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:()[]{}!?\"'")
		if len(word) > 3 {
			set[word] = struct{}{}
		}
	}
	return set
}
