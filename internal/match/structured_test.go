package match

import (
	"context"
	"testing"
	"time"

	"github.com/sohv/scorj/internal/profile"
	"github.com/sohv/scorj/internal/weights"
)

func TestAnalyzeComposite(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(nil, nil)
	analyzer.experience = &ExperienceAnalyzer{now: func() time.Time {
		return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	}}

	resume := &profile.ResumeProfile{
		Skills: []string{"Go", "PostgreSQL"},
		Experience: []profile.ExperienceEntry{
			{Title: "Backend Engineer", DateRange: "2020-2025", Description: "golang services"},
		},
		Education: []profile.EducationEntry{
			{Degree: "Bachelor of Science"},
		},
	}
	job := &profile.JobProfile{
		Title:          "Backend Engineer",
		Description:    "golang services",
		RequiredSkills: []string{"Go", "PostgreSQL"},
	}

	analysis := analyzer.Analyze(context.Background(), resume, job, weights.Defaults())

	if analysis.Skills.MatchPercentage != 100 {
		t.Fatalf("expected full skill match, got %+v", analysis.Skills)
	}
	if analysis.Education.Score != 60 {
		t.Fatalf("expected bachelor score, got %+v", analysis.Education)
	}
	if analysis.Composite < 0 || analysis.Composite > 100 {
		t.Fatalf("composite out of range: %d", analysis.Composite)
	}

	// skills 100*0.35 + relevance 100*0.30 + education 60*0.15 = 74
	if analysis.Experience.RelevanceScore == 100 && analysis.Composite != 74 {
		t.Fatalf("expected composite 74, got %d", analysis.Composite)
	}
}

func TestCompositeBounds(t *testing.T) {
	t.Parallel()

	if got := Composite(nil, weights.Defaults()); got != 0 {
		t.Fatalf("nil analysis should score 0, got %d", got)
	}

	full := &Analysis{
		Skills:     SkillsResult{MatchPercentage: 100},
		Experience: ExperienceResult{RelevanceScore: 100},
		Education:  EducationResult{Score: 100},
	}
	got := Composite(full, weights.Defaults())
	if got != 80 {
		t.Fatalf("perfect deterministic inputs blend to 80 with a zero domain term, got %d", got)
	}
}
