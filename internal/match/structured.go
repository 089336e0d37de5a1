package match

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/embedding"
	"github.com/sohv/scorj/internal/profile"
	"github.com/sohv/scorj/internal/weights"
)

// Analysis is the deterministic baseline every scoring run computes exactly
// once and shares read-only with the judges and the consensus engine.
type Analysis struct {
	Skills     SkillsResult     `json:"skills"`
	Experience ExperienceResult `json:"experience"`
	Education  EducationResult  `json:"education"`
	Weights    weights.Weights  `json:"weights"`
	// Composite is the weighted blend of the deterministic dimensions. The
	// domain weight has no deterministic source and contributes zero rather
	// than being redistributed.
	Composite int `json:"composite"`
}

// Analyzer composes the skill, experience and education analyzers.
type Analyzer struct {
	skills     *SkillMatcher
	experience *ExperienceAnalyzer
	education  *EducationAnalyzer
}

// NewAnalyzer builds the composite analyzer. The embedding provider may be nil.
func NewAnalyzer(provider embedding.Provider, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		skills:     NewSkillMatcher(provider, logger),
		experience: NewExperienceAnalyzer(),
		education:  NewEducationAnalyzer(),
	}
}

// Analyze runs all deterministic matchers and blends them with the provided
// weights. It never fails: missing resume sections score zero.
func (a *Analyzer) Analyze(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile, w weights.Weights) *Analysis {
	analysis := &Analysis{
		Skills:     a.skills.Match(ctx, resume.Skills, job.RequiredSkills),
		Experience: a.experience.Analyze(resume.Experience, job),
		Education:  a.education.Analyze(resume.Education),
		Weights:    w,
	}

	analysis.Composite = Composite(analysis, w)
	return analysis
}

// Composite blends the deterministic dimension scores with the given weights
// and rounds to an integer on [0,100].
func Composite(analysis *Analysis, w weights.Weights) int {
	if analysis == nil {
		return 0
	}

	blended := analysis.Skills.MatchPercentage*w.Skills +
		analysis.Experience.RelevanceScore*w.Experience +
		analysis.Education.Score*w.Education

	score := int(math.Round(blended))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
