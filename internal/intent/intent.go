package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/profile"
)

// Result is the outcome of validating candidate comments against a job. Only
// dimensions with positive alignment appear in Bonuses; misaligned claims are
// recorded as zero alignment and excluded everywhere else.
type Result struct {
	Claims     *Claims            `json:"claims,omitempty"`
	Alignments map[string]float64 `json:"alignments"`
	Bonuses    map[string]float64 `json:"bonuses"`
	TotalBonus float64            `json:"total_bonus"`
	Feedback   []string           `json:"feedback,omitempty"`
}

// AlignedNotes returns human-readable statements for positively aligned
// dimensions only, suitable for inclusion in a judge prompt.
func (r *Result) AlignedNotes() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.Feedback...)
}

// ZeroResult is the result for absent or unusable comments.
func ZeroResult() *Result {
	return &Result{
		Alignments: map[string]float64{},
		Bonuses:    map[string]float64{},
	}
}

// Analyzer validates intent claims and prices them into bonuses.
type Analyzer struct {
	extractor Extractor
	logger    *zap.Logger
}

// NewAnalyzer builds an analyzer. A nil extractor disables intent analysis.
func NewAnalyzer(extractor Extractor, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{extractor: extractor, logger: logger}
}

// Analyze extracts claims from the resume's comments and validates each
// dimension against the job. Empty comments or a nil extractor yield a zero
// result without an error; extraction failures are returned to the caller.
func (a *Analyzer) Analyze(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile) (*Result, error) {
	comments := strings.TrimSpace(resume.CandidateComments)
	if comments == "" || a.extractor == nil {
		return ZeroResult(), nil
	}

	claims, err := a.extractor.Extract(ctx, comments)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		return ZeroResult(), nil
	}

	signals := deriveJobSignals(job)

	result := ZeroResult()
	result.Claims = claims
	result.Alignments[DimTechnical] = alignTechnical(claims.TechnicalSkills, signals)
	result.Alignments[DimWorkArrangement] = alignArrangement(claims.WorkArrangement, signals)
	result.Alignments[DimAvailability] = alignAvailability(claims.Availability, signals)
	result.Alignments[DimRoleFocus] = alignRoleFocus(claims.RoleFocus, signals)
	result.Alignments[DimExperienceLevel] = alignExperienceLevel(claims.ExperienceLevel, signals)

	for _, dim := range dimensionOrder {
		alignment := result.Alignments[dim]
		if alignment <= 0 {
			continue
		}
		bonus := alignment * bonusCaps[dim]
		result.Bonuses[dim] = bonus
		result.TotalBonus += bonus
		result.Feedback = append(result.Feedback, feedbackLine(dim, claims, alignment, bonus))
	}

	if result.TotalBonus > maxTotalBonus {
		result.TotalBonus = maxTotalBonus
	}

	a.logger.Debug("intent analysis complete",
		zap.Float64("total_bonus", result.TotalBonus),
		zap.Int("aligned_dimensions", len(result.Bonuses)),
	)

	return result, nil
}

var dimensionOrder = []string{
	DimTechnical,
	DimWorkArrangement,
	DimAvailability,
	DimRoleFocus,
	DimExperienceLevel,
}

func feedbackLine(dim string, claims *Claims, alignment, bonus float64) string {
	var claimText string
	switch dim {
	case DimTechnical:
		skills := make([]string, 0, len(claims.TechnicalSkills))
		for _, c := range claims.TechnicalSkills {
			if !c.WantsToLearn && c.Confidence >= minClaimStrength {
				skills = append(skills, c.Skill)
			}
		}
		sort.Strings(skills)
		claimText = "claims " + strings.Join(skills, ", ")
	case DimWorkArrangement:
		claimText = "prefers " + claims.WorkArrangement.Preference
	case DimAvailability:
		claimText = "available " + claims.Availability.Timeline
	case DimRoleFocus:
		claimText = "wants " + strings.Join(claims.RoleFocus.Areas, "/") + " work"
	case DimExperienceLevel:
		claimText = "self-assessed " + claims.ExperienceLevel.Level
	}

	return fmt.Sprintf("%s: %s, verified against job (%.0f%% aligned, +%.1f points)",
		dimensionLabel(dim), claimText, alignment*100, bonus)
}

func dimensionLabel(dim string) string {
	switch dim {
	case DimTechnical:
		return "Technical skills"
	case DimWorkArrangement:
		return "Work arrangement"
	case DimAvailability:
		return "Availability"
	case DimRoleFocus:
		return "Role focus"
	case DimExperienceLevel:
		return "Experience level"
	default:
		return dim
	}
}
