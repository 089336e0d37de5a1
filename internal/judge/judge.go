// Package judge defines the model-backed evaluators that score a resume
// against a job and the common result shape the consensus engine consumes.
package judge

import (
	"context"

	"github.com/sohv/scorj/internal/match"
	"github.com/sohv/scorj/internal/profile"
)

// Confidence is a judge's self-reported confidence in its score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Context carries the shared, read-only inputs every judge sees alongside the
// raw profiles: the deterministic analysis and the validated intent notes.
// Misaligned intent claims are never included here.
type Context struct {
	Structured  *match.Analysis
	IntentNotes []string
}

// Result is one judge's verdict. Failed evaluations are represented as error
// results rather than propagated errors so one provider outage never sinks a
// scoring run.
type Result struct {
	Provider        string     `json:"provider"`
	Model           string     `json:"model,omitempty"`
	OverallScore    int        `json:"overall_score"`
	Confidence      Confidence `json:"confidence"`
	Strengths       []string   `json:"strengths,omitempty"`
	Concerns        []string   `json:"concerns,omitempty"`
	MatchingSkills  []string   `json:"matching_skills,omitempty"`
	MissingSkills   []string   `json:"missing_skills,omitempty"`
	Summary         string     `json:"summary,omitempty"`
	Recommendations []string   `json:"recommendations,omitempty"`
	RiskFactors     []string   `json:"risk_factors,omitempty"`
	MatchCategory   string     `json:"match_category,omitempty"`
	// Degraded marks a verdict produced by a reduced-quality path, such as a
	// reply obtained only after failed attempts.
	Degraded      bool   `json:"degraded,omitempty"`
	ErrorOccurred bool   `json:"error_occurred,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	Raw           string `json:"-"`
}

// Succeeded reports whether the result is usable for consensus.
func (r *Result) Succeeded() bool {
	return r != nil && !r.ErrorOccurred && r.OverallScore > 0
}

// ErrorResult wraps a failed evaluation into a Result for the given provider.
func ErrorResult(provider string, err error) *Result {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Result{
		Provider:      provider,
		Confidence:    ConfidenceLow,
		ErrorOccurred: true,
		ErrorMessage:  msg,
	}
}

// Judge evaluates a resume against a job.
type Judge interface {
	Evaluate(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile, jc *Context) (*Result, error)
	Provider() string
}
