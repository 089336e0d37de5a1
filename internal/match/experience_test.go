package match

import (
	"testing"
	"time"

	"github.com/sohv/scorj/internal/profile"
)

func fixedAnalyzer(year int) *ExperienceAnalyzer {
	return &ExperienceAnalyzer{now: func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}}
}

func TestYearsFromRange(t *testing.T) {
	t.Parallel()

	analyzer := fixedAnalyzer(2025)

	tests := []struct {
		input  string
		expect float64
	}{
		{"2018-2020", 2},
		{"2018 - 2020", 2},
		{"2018–2020", 2},
		{"2020-present", 5},
		{"2020 - Current", 5},
		{"03/2019-09/2021", 2.5},
		{"01/2020 - 01/2020", 0},
		{"2023", 1},
		{"2022-2018", 0},
		{"sometime", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := analyzer.YearsFromRange(tt.input); got != tt.expect {
			t.Errorf("YearsFromRange(%q): expected %v, got %v", tt.input, tt.expect, got)
		}
	}
}

func TestAnalyzeTotalsAndRelevance(t *testing.T) {
	t.Parallel()

	analyzer := fixedAnalyzer(2025)
	job := &profile.JobProfile{
		Title:       "Backend Engineer",
		Description: "Build distributed backend services with golang and postgresql",
	}

	entries := []profile.ExperienceEntry{
		{
			Title:       "Backend Engineer",
			DateRange:   "2020-present",
			Description: "Built distributed backend services in golang",
		},
		{
			Title:     "Barista",
			DateRange: "2018-2020",
		},
	}

	got := analyzer.Analyze(entries, job)

	if got.TotalYears != 7 {
		t.Fatalf("expected 7 total years, got %v", got.TotalYears)
	}
	if got.RelevantYears < 5 || got.RelevantYears > 7 {
		t.Fatalf("expected at least the backend years to count, got %v", got.RelevantYears)
	}
	if got.RelevanceScore <= 0 || got.RelevanceScore > 100 {
		t.Fatalf("relevance score out of range: %v", got.RelevanceScore)
	}
}

func TestAnalyzeGenericRoleFloor(t *testing.T) {
	t.Parallel()

	analyzer := fixedAnalyzer(2025)
	job := &profile.JobProfile{Title: "Software Engineer"}

	entries := []profile.ExperienceEntry{
		{Title: "QA Engineer", DateRange: "2015-2025"},
	}

	got := analyzer.Analyze(entries, job)
	if got.RelevantYears < 8 {
		t.Fatalf("shared engineer role should floor relevance at 0.8, got %v relevant years", got.RelevantYears)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	t.Parallel()

	analyzer := fixedAnalyzer(2025)

	got := analyzer.Analyze(nil, &profile.JobProfile{Title: "Engineer"})
	if got.TotalYears != 0 || got.RelevanceScore != 0 {
		t.Fatalf("empty entries should produce a zero result, got %+v", got)
	}

	got = analyzer.Analyze([]profile.ExperienceEntry{{Title: "Engineer", DateRange: "unknown"}}, &profile.JobProfile{Title: "Engineer"})
	if got.TotalYears != 0 {
		t.Fatalf("unparsable dates should contribute nothing, got %+v", got)
	}
}
