package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sohv/scorj/internal/judge"
	"github.com/sohv/scorj/internal/profile"
)

type stubGenerator struct {
	responses  []string
	errs       []error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	idx := s.calls
	s.calls++
	var response string
	if idx < len(s.responses) {
		response = s.responses[idx]
	}
	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	return response, err
}

func (s *stubGenerator) Model() string { return "stub-model" }

func testProfiles() (*profile.ResumeProfile, *profile.JobProfile) {
	return &profile.ResumeProfile{Skills: []string{"go"}},
		&profile.JobProfile{Title: "Backend Engineer"}
}

func TestEvaluate(t *testing.T) {
	stub := &stubGenerator{responses: []string{
		`{"overall_score": 77, "confidence": "high", "summary": "good fit"}`,
	}}

	j := NewJudge(stub, nil, 0, 0)
	resume, job := testProfiles()
	jc := &judge.Context{IntentNotes: []string{"available immediately, verified"}}

	result, err := j.Evaluate(context.Background(), resume, job, jc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stub.lastPrompt, "available immediately, verified") {
		t.Fatalf("expected intent notes in prompt, got %q", stub.lastPrompt)
	}
	if result.Provider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", result.Provider)
	}
	if result.OverallScore != 77 {
		t.Fatalf("expected score 77, got %d", result.OverallScore)
	}
	if result.Model != "stub-model" {
		t.Fatalf("expected model recorded, got %q", result.Model)
	}
	if result.Degraded {
		t.Fatalf("first-attempt success must not be degraded")
	}
}

func TestEvaluateRetries(t *testing.T) {
	stub := &stubGenerator{
		responses: []string{"", `{"overall_score": 60}`},
		errs:      []error{errors.New("transient"), nil},
	}

	j := NewJudge(stub, nil, 2, 0)
	resume, job := testProfiles()

	result, err := j.Evaluate(context.Background(), resume, job, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", stub.calls)
	}
	if result.OverallScore != 60 {
		t.Fatalf("expected score 60, got %d", result.OverallScore)
	}
	if !result.Degraded {
		t.Fatalf("success after a failed attempt must be marked degraded")
	}
}

func TestEvaluateExhaustsRetries(t *testing.T) {
	stub := &stubGenerator{
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}

	j := NewJudge(stub, nil, 2, 0)
	resume, job := testProfiles()

	if _, err := j.Evaluate(context.Background(), resume, job, nil); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", stub.calls)
	}
}

func TestEvaluateMalformedResponse(t *testing.T) {
	stub := &stubGenerator{responses: []string{"not json at all"}}

	j := NewJudge(stub, nil, 0, 0)
	resume, job := testProfiles()

	if _, err := j.Evaluate(context.Background(), resume, job, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
