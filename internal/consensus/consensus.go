// Package consensus combines independent judge verdicts into one score and an
// agreement level. It always produces a result: with no usable judges it falls
// back to the deterministic analysis.
package consensus

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/judge"
	"github.com/sohv/scorj/internal/match"
)

// Level describes how the final score was produced and, when several judges
// responded, how strongly they agreed.
type Level string

const (
	LevelExceptional Level = "exceptional"
	LevelVeryHigh    Level = "very_high"
	LevelHigh        Level = "high"
	LevelMedium      Level = "medium"
	LevelLow         Level = "low"
	LevelVeryLow     Level = "very_low"
	// LevelSingleModel marks a score taken verbatim from the only judge that
	// responded.
	LevelSingleModel Level = "single_model"
	// LevelFallbackOnly marks a score derived purely from the deterministic
	// analysis because no judge responded.
	LevelFallbackOnly Level = "fallback_only"
)

// Fixed fallback weights. The deterministic path never uses model-proposed
// weights so identical inputs always produce identical scores.
const (
	fallbackSkillsWeight     = 0.35
	fallbackExperienceWeight = 0.30
	fallbackEducationWeight  = 0.15
)

// Qualitative is the narrative side of a combined verdict, taken from the
// highest-confidence judge or synthesized from the deterministic analysis.
type Qualitative struct {
	Strengths       []string `json:"strengths,omitempty"`
	Concerns        []string `json:"concerns,omitempty"`
	MatchingSkills  []string `json:"matching_skills,omitempty"`
	MissingSkills   []string `json:"missing_skills,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	RiskFactors     []string `json:"risk_factors,omitempty"`
	MatchCategory   string   `json:"match_category,omitempty"`
	SourceProvider  string   `json:"source_provider,omitempty"`
}

// Result is the combined verdict of all judges plus the agreement analysis.
type Result struct {
	Score        int                `json:"score"`
	Level        Level              `json:"level"`
	Weights      map[string]float64 `json:"judge_weights,omitempty"`
	Scores       map[string]int     `json:"judge_scores,omitempty"`
	StdDev       float64            `json:"std_dev,omitempty"`
	CV           float64            `json:"cv,omitempty"`
	Qualitative  Qualitative        `json:"qualitative"`
	Explanation  string             `json:"explanation,omitempty"`
	JudgesAsked  int                `json:"judges_asked"`
	JudgesUsable int                `json:"judges_usable"`
}

// Engine combines judge results.
type Engine struct {
	logger *zap.Logger
}

// NewEngine builds an engine; a nil logger is replaced with a no-op.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Combine merges judge results into one verdict. Judge order matters only for
// tie-breaking; the structured analysis backs the fallback path and must not
// be nil when no judge succeeded.
func (e *Engine) Combine(results []*judge.Result, structured *match.Analysis) *Result {
	usable := make([]*judge.Result, 0, len(results))
	for _, r := range results {
		if r.Succeeded() {
			usable = append(usable, r)
		}
	}

	combined := &Result{
		JudgesAsked:  len(results),
		JudgesUsable: len(usable),
	}

	switch {
	case len(usable) >= 2:
		e.combineWeighted(combined, usable)
	case len(usable) == 1:
		combined.Score = usable[0].OverallScore
		combined.Level = LevelSingleModel
		combined.Scores = map[string]int{usable[0].Provider: usable[0].OverallScore}
		combined.Qualitative = qualitativeFrom(usable[0])
		combined.Explanation = fmt.Sprintf("only %s responded, score taken verbatim", usable[0].Provider)
	default:
		combined.Score = FallbackScore(structured)
		combined.Level = LevelFallbackOnly
		combined.Qualitative = fallbackQualitative(structured)
		combined.Explanation = "no judges responded, score derived from deterministic analysis"
	}

	e.logger.Debug("consensus combined",
		zap.Int("score", combined.Score),
		zap.String("level", string(combined.Level)),
		zap.Int("judges_usable", combined.JudgesUsable),
	)

	return combined
}

func (e *Engine) combineWeighted(combined *Result, usable []*judge.Result) {
	combined.Weights = make(map[string]float64, len(usable))
	combined.Scores = make(map[string]int, len(usable))

	var weightedSum, weightTotal float64
	for _, r := range usable {
		w := confidenceWeight(r)
		combined.Weights[r.Provider] = w
		combined.Scores[r.Provider] = r.OverallScore
		weightedSum += w * float64(r.OverallScore)
		weightTotal += w
	}

	combined.Score = int(math.Round(weightedSum / weightTotal))

	mean := 0.0
	for _, r := range usable {
		mean += float64(r.OverallScore)
	}
	mean /= float64(len(usable))

	variance := 0.0
	for _, r := range usable {
		diff := float64(r.OverallScore) - mean
		variance += diff * diff
	}
	variance /= float64(len(usable))
	combined.StdDev = math.Sqrt(variance)
	if mean > 0 {
		combined.CV = combined.StdDev / mean
	}

	combined.Level = levelForCV(combined.CV)
	combined.Qualitative = qualitativeFrom(bestJudge(usable, combined.Weights))
	combined.Explanation = fmt.Sprintf(
		"confidence-weighted mean of %d judges (cv %.3f)", len(usable), combined.CV)
}

// confidenceWeight prices a judge's reliability for weighting. The base comes
// from self-reported confidence, adjusted for how decisive the score is and
// whether the judge took a degraded path.
func confidenceWeight(r *judge.Result) float64 {
	var w float64
	switch r.Confidence {
	case judge.ConfidenceHigh:
		w = 0.9
	case judge.ConfidenceLow:
		w = 0.4
	default:
		w = 0.7
	}

	if r.OverallScore >= 85 || r.OverallScore <= 25 {
		w += 0.1
	}
	if r.OverallScore >= 40 && r.OverallScore <= 70 {
		w -= 0.1
	}
	if r.Degraded {
		w -= 0.2
	}

	if w < 0.1 {
		w = 0.1
	}
	if w > 1.0 {
		w = 1.0
	}
	return w
}

func levelForCV(cv float64) Level {
	switch {
	case cv <= 0.05:
		return LevelExceptional
	case cv <= 0.10:
		return LevelVeryHigh
	case cv <= 0.20:
		return LevelHigh
	case cv <= 0.35:
		return LevelMedium
	case cv <= 0.50:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// bestJudge picks the highest-weight judge, breaking ties by input order.
func bestJudge(usable []*judge.Result, weights map[string]float64) *judge.Result {
	best := usable[0]
	for _, r := range usable[1:] {
		if weights[r.Provider] > weights[best.Provider] {
			best = r
		}
	}
	return best
}

func qualitativeFrom(r *judge.Result) Qualitative {
	return Qualitative{
		Strengths:       r.Strengths,
		Concerns:        r.Concerns,
		MatchingSkills:  r.MatchingSkills,
		MissingSkills:   r.MissingSkills,
		Summary:         r.Summary,
		Recommendations: r.Recommendations,
		RiskFactors:     r.RiskFactors,
		MatchCategory:   r.MatchCategory,
		SourceProvider:  r.Provider,
	}
}

// FallbackScore blends the deterministic dimensions with fixed weights. The
// domain term has no deterministic source and contributes zero.
func FallbackScore(structured *match.Analysis) int {
	if structured == nil {
		return 0
	}

	score := structured.Skills.MatchPercentage*fallbackSkillsWeight +
		structured.Experience.RelevanceScore*fallbackExperienceWeight +
		structured.Education.Score*fallbackEducationWeight

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func fallbackQualitative(structured *match.Analysis) Qualitative {
	q := Qualitative{
		Concerns:       []string{"Limited analysis depth", "AI services unavailable"},
		Summary:        "Score derived from deterministic matching only.",
		SourceProvider: "fallback",
	}
	if structured == nil {
		return q
	}

	matched := append([]string(nil), structured.Skills.Matched...)
	sort.Strings(matched)
	if len(matched) > 3 {
		matched = matched[:3]
	}
	for _, skill := range matched {
		q.Strengths = append(q.Strengths, "Has required skill: "+skill)
	}
	q.MatchingSkills = structured.Skills.Matched
	q.MissingSkills = structured.Skills.Missing

	return q
}
