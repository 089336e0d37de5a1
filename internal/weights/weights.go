// Package weights holds the relative importance of each structured scoring
// dimension. Fixed defaults always work; an optional provider may propose
// per-job weights.
package weights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/profile"
)

// Weights assigns the share of the composite score owned by each dimension.
type Weights struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Domain     float64 `json:"domain"`
}

// Defaults returns the fixed weight distribution used when no provider is
// configured or a provider fails.
func Defaults() Weights {
	return Weights{
		Skills:     0.35,
		Experience: 0.30,
		Education:  0.15,
		Domain:     0.20,
	}
}

// Validate checks that every weight is in [0,1] and that the total stays close
// to 1. A small tolerance absorbs rounding in model-proposed weights.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"skills":     w.Skills,
		"experience": w.Experience,
		"education":  w.Education,
		"domain":     w.Domain,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s weight %v is out of range [0,1]", name, v)
		}
	}

	sum := w.Skills + w.Experience + w.Education + w.Domain
	if sum < 0.95 || sum > 1.05 {
		return fmt.Errorf("weights sum to %.3f, expected a value in [0.95,1.05]", sum)
	}

	return nil
}

// Provider proposes a weight distribution tailored to a specific job.
type Provider interface {
	Propose(ctx context.Context, job *profile.JobProfile) (Weights, error)
}

// Resolve asks the provider for job-specific weights and falls back to the
// defaults on any failure. It never returns an error.
func Resolve(ctx context.Context, provider Provider, job *profile.JobProfile, logger *zap.Logger) Weights {
	if logger == nil {
		logger = zap.NewNop()
	}

	if provider == nil || job == nil {
		return Defaults()
	}

	proposed, err := provider.Propose(ctx, job)
	if err != nil {
		logger.Warn("weight provider failed, using defaults", zap.Error(err))
		return Defaults()
	}

	if err := proposed.Validate(); err != nil {
		logger.Warn("weight provider proposal rejected, using defaults", zap.Error(err))
		return Defaults()
	}

	return proposed
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// LLMProvider asks a text generator for a job-specific weight distribution.
type LLMProvider struct {
	generator contentGenerator
	logger    *zap.Logger
}

// NewLLMProvider wires a generator into a weight provider.
func NewLLMProvider(generator contentGenerator, logger *zap.Logger) *LLMProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMProvider{generator: generator, logger: logger}
}

const weightsPrompt = `You are scoring how a resume should be weighed against the job below.
Return ONLY a JSON object with four float fields: "skills", "experience",
"education" and "domain". The fields must each be between 0 and 1 and together
sum to 1.0. Weigh the dimensions by how much this specific job depends on them.

Job title: %s
Job description:
%s
`

// Propose asks the generator for weights tuned to the job posting.
func (p *LLMProvider) Propose(ctx context.Context, job *profile.JobProfile) (Weights, error) {
	if p == nil || p.generator == nil {
		return Weights{}, errors.New("weight provider is not initialized")
	}
	if job == nil {
		return Weights{}, errors.New("job profile is required")
	}

	prompt := fmt.Sprintf(weightsPrompt, job.Title, job.Description)

	raw, err := p.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return Weights{}, fmt.Errorf("propose weights: %w", err)
	}

	cleaned := stripFences(raw)

	var proposed Weights
	if err := json.Unmarshal([]byte(cleaned), &proposed); err != nil {
		return Weights{}, fmt.Errorf("parse weights response: %w", err)
	}

	if err := proposed.Validate(); err != nil {
		return Weights{}, err
	}

	return proposed, nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}
