package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohv/scorj/internal/profile"
)

type stubExtractor struct {
	claims *Claims
	err    error
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (*Claims, error) {
	return s.claims, s.err
}

func remoteJob() *profile.JobProfile {
	return &profile.JobProfile{
		Title:       "Backend Engineer",
		Description: "Fully remote backend role. Required: Python, PostgreSQL.",
	}
}

func onsiteJob() *profile.JobProfile {
	return &profile.JobProfile{
		Title:       "Backend Engineer",
		Description: "On-site position at our office. Backend services in Python.",
	}
}

func commentedResume() *profile.ResumeProfile {
	return &profile.ResumeProfile{
		Skills:            []string{"python"},
		CandidateComments: "I prefer remote work and can start immediately.",
	}
}

func TestAnalyzeEmptyComments(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubExtractor{}, nil)
	result, err := analyzer.Analyze(context.Background(), &profile.ResumeProfile{}, remoteJob())

	require.NoError(t, err)
	assert.Zero(t, result.TotalBonus)
	assert.Empty(t, result.Bonuses)
}

func TestAnalyzeExtractorFailure(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubExtractor{err: errors.New("model down")}, nil)
	_, err := analyzer.Analyze(context.Background(), commentedResume(), remoteJob())

	require.Error(t, err)
}

func TestAnalyzeAlignedArrangement(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubExtractor{claims: &Claims{
		WorkArrangement: &ArrangementClaim{Preference: "remote", Strength: 0.9},
	}}, nil)

	result, err := analyzer.Analyze(context.Background(), commentedResume(), remoteJob())

	require.NoError(t, err)
	assert.InDelta(t, 0.9, result.Alignments[DimWorkArrangement], 1e-9)
	assert.InDelta(t, 3.6, result.Bonuses[DimWorkArrangement], 1e-9)
	assert.Len(t, result.Feedback, 1)
	assert.Contains(t, result.Feedback[0], "Work arrangement")

	require.NotNil(t, result.Claims)
	assert.Equal(t, "remote", result.Claims.WorkArrangement.Preference)
}

func TestAnalyzeBonusScalesWithClaimStrength(t *testing.T) {
	t.Parallel()

	// A hedged preference clears the claim threshold but earns a fraction of
	// the dimension cap, not the full 4 points.
	analyzer := NewAnalyzer(&stubExtractor{claims: &Claims{
		WorkArrangement: &ArrangementClaim{Preference: "remote", Strength: 0.35},
	}}, nil)

	result, err := analyzer.Analyze(context.Background(), commentedResume(), remoteJob())

	require.NoError(t, err)
	assert.InDelta(t, 0.35, result.Alignments[DimWorkArrangement], 1e-9)
	assert.InDelta(t, 1.4, result.Bonuses[DimWorkArrangement], 1e-9)
}

func TestAnalyzeMisalignedArrangementEarnsNothing(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubExtractor{claims: &Claims{
		WorkArrangement: &ArrangementClaim{Preference: "remote", Strength: 0.9},
	}}, nil)

	result, err := analyzer.Analyze(context.Background(), commentedResume(), onsiteJob())

	require.NoError(t, err)
	assert.Zero(t, result.Alignments[DimWorkArrangement])
	assert.NotContains(t, result.Bonuses, DimWorkArrangement)
	assert.Empty(t, result.AlignedNotes())
	assert.Zero(t, result.TotalBonus)
}

func TestAnalyzeWeakClaimIgnored(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubExtractor{claims: &Claims{
		WorkArrangement: &ArrangementClaim{Preference: "remote", Strength: 0.2},
	}}, nil)

	result, err := analyzer.Analyze(context.Background(), commentedResume(), remoteJob())

	require.NoError(t, err)
	assert.Zero(t, result.TotalBonus)
}

func TestAnalyzeTechnicalDimension(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubExtractor{claims: &Claims{
		TechnicalSkills: []SkillClaim{
			{Skill: "Python", Confidence: 0.9},
			{Skill: "PostgreSQL", Confidence: 0.8},
		},
	}}, nil)

	result, err := analyzer.Analyze(context.Background(), commentedResume(), remoteJob())

	require.NoError(t, err)
	assert.Greater(t, result.Alignments[DimTechnical], 0.0)
	assert.LessOrEqual(t, result.Bonuses[DimTechnical], 8.0)
}

func TestAnalyzeLearnClaimNeverCounts(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubExtractor{claims: &Claims{
		TechnicalSkills: []SkillClaim{
			{Skill: "Python", WantsToLearn: true, Confidence: 0.9},
		},
	}}, nil)

	result, err := analyzer.Analyze(context.Background(), commentedResume(), remoteJob())

	require.NoError(t, err)
	assert.Zero(t, result.Alignments[DimTechnical])
}

func TestAnalyzeNoJobSignalMeansNoBonus(t *testing.T) {
	t.Parallel()

	// Job with no focus keywords and no stated level: focus and level claims
	// have nothing to verify against.
	job := &profile.JobProfile{Title: "Specialist", Description: "A role."}

	analyzer := NewAnalyzer(&stubExtractor{claims: &Claims{
		RoleFocus:       &FocusClaim{Areas: []string{"backend"}, Strength: 0.9},
		ExperienceLevel: &LevelClaim{Level: "senior", Strength: 0.9},
	}}, nil)

	result, err := analyzer.Analyze(context.Background(), commentedResume(), job)

	require.NoError(t, err)
	assert.Zero(t, result.TotalBonus)
	assert.Empty(t, result.Bonuses)
}

func TestAlignExperienceLevelMatrix(t *testing.T) {
	t.Parallel()

	senior := jobSignals{level: profile.LevelSenior}
	entry := jobSignals{level: profile.LevelEntry}

	tests := []struct {
		name   string
		claim  *LevelClaim
		signal jobSignals
		expect float64
	}{
		{"junior for senior role", &LevelClaim{Level: "junior", Strength: 1}, senior, 0},
		{"expert for senior role", &LevelClaim{Level: "expert", Strength: 1}, senior, 1},
		{"mid for senior role", &LevelClaim{Level: "mid", Strength: 1}, senior, 0.5},
		{"senior for entry role is overqualified", &LevelClaim{Level: "senior", Strength: 1}, entry, 0},
		{"strength scales alignment", &LevelClaim{Level: "expert", Strength: 0.5}, senior, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expect, alignExperienceLevel(tt.claim, tt.signal), 1e-9)
		})
	}
}

func TestAlignAvailability(t *testing.T) {
	t.Parallel()

	calm := jobSignals{}
	urgent := jobSignals{urgent: true}

	assert.InDelta(t, 1.0, alignAvailability(&AvailabilityClaim{Timeline: "immediate", Strength: 1}, calm), 1e-9)
	assert.InDelta(t, 0.8, alignAvailability(&AvailabilityClaim{Timeline: "weeks", Strength: 1}, calm), 1e-9)
	assert.InDelta(t, 0.7, alignAvailability(&AvailabilityClaim{Timeline: "flexible", Strength: 1}, urgent), 1e-9)
	assert.InDelta(t, 0.4, alignAvailability(&AvailabilityClaim{Timeline: "months", Strength: 1}, calm), 1e-9)
	assert.Zero(t, alignAvailability(&AvailabilityClaim{Timeline: "months", Strength: 1}, urgent))
	assert.InDelta(t, 0.5, alignAvailability(&AvailabilityClaim{Timeline: "unknown", Strength: 1}, calm), 1e-9)
	assert.InDelta(t, 0.4, alignAvailability(&AvailabilityClaim{Timeline: "immediate", Strength: 0.4}, calm), 1e-9)
	assert.Zero(t, alignAvailability(nil, calm))
}

func TestApplyBonus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50, Apply(50, nil))
	assert.Equal(t, 50, Apply(50, ZeroResult()))

	boosted := &Result{TotalBonus: 12}
	assert.Equal(t, 62, Apply(50, boosted))

	// Bonus can never push past 100.
	capped := &Result{TotalBonus: 18}
	assert.Equal(t, 100, Apply(95, capped))

	// Total bonus itself caps at 20.
	oversized := &Result{TotalBonus: 35}
	assert.Equal(t, 70, Apply(50, oversized))
}
