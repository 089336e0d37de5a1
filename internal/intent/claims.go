// Package intent validates what candidates say they want against what the job
// actually offers, and converts verified alignment into a small bonus. Claims
// that cannot be verified against a job signal earn nothing; misalignment is
// never penalized.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// minClaimStrength is the confidence below which a claim is treated as not
// made at all.
const minClaimStrength = 0.3

// SkillClaim is one technical skill the candidate mentions in comments.
type SkillClaim struct {
	Skill        string  `json:"skill"`
	WantsToLearn bool    `json:"wants_to_learn"`
	Confidence   float64 `json:"confidence"`
}

// ArrangementClaim is a stated work-arrangement preference.
type ArrangementClaim struct {
	Preference string  `json:"preference"`
	Strength   float64 `json:"strength"`
}

// AvailabilityClaim is a stated start timeline.
type AvailabilityClaim struct {
	Timeline string  `json:"timeline"`
	Strength float64 `json:"strength"`
}

// FocusClaim lists the role areas the candidate says they want to work in.
type FocusClaim struct {
	Areas    []string `json:"areas"`
	Strength float64  `json:"strength"`
}

// LevelClaim is a stated seniority self-assessment.
type LevelClaim struct {
	Level    string  `json:"level"`
	Strength float64 `json:"strength"`
}

// Claims is everything extracted from the candidate's free-form comments.
type Claims struct {
	TechnicalSkills []SkillClaim       `json:"technical_skills,omitempty"`
	WorkArrangement *ArrangementClaim  `json:"work_arrangement,omitempty"`
	Availability    *AvailabilityClaim `json:"availability,omitempty"`
	RoleFocus       *FocusClaim        `json:"role_focus,omitempty"`
	ExperienceLevel *LevelClaim        `json:"experience_level,omitempty"`
}

// Extractor pulls structured claims out of free-form candidate comments.
type Extractor interface {
	Extract(ctx context.Context, comments string) (*Claims, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// LLMExtractor backs Extractor with a text generator.
type LLMExtractor struct {
	generator contentGenerator
}

// NewLLMExtractor wires a generator into an extractor.
func NewLLMExtractor(generator contentGenerator) *LLMExtractor {
	return &LLMExtractor{generator: generator}
}

const extractPrompt = `Extract the candidate's stated intentions from the comments below.
Respond with ONLY a JSON object with these optional fields:

- "technical_skills": array of {"skill": string, "wants_to_learn": bool, "confidence": 0-1}
  (wants_to_learn is true when they want to pick the skill up, false when they claim it)
- "work_arrangement": {"preference": "remote"|"hybrid"|"onsite"|"flexible", "strength": 0-1}
- "availability": {"timeline": "immediate"|"weeks"|"months"|"flexible"|"unknown", "strength": 0-1}
- "role_focus": {"areas": ["frontend"|"backend"|"fullstack"|"data"|"devops"|"mobile"|"web"], "strength": 0-1}
- "experience_level": {"level": "junior"|"mid"|"senior"|"expert", "strength": 0-1}

Omit any field the comments say nothing about. Do not infer beyond the text.

Comments:
%s
`

// Extract asks the generator for structured claims. Empty comments yield empty
// claims without a model call.
func (e *LLMExtractor) Extract(ctx context.Context, comments string) (*Claims, error) {
	if e == nil || e.generator == nil {
		return nil, errors.New("intent extractor is not initialized")
	}

	comments = strings.TrimSpace(comments)
	if comments == "" {
		return &Claims{}, nil
	}

	raw, err := e.generator.GenerateContent(ctx, fmt.Sprintf(extractPrompt, comments))
	if err != nil {
		return nil, fmt.Errorf("extract intent claims: %w", err)
	}

	cleaned := stripFences(raw)

	var claims Claims
	if err := json.Unmarshal([]byte(cleaned), &claims); err != nil {
		return nil, fmt.Errorf("parse intent claims: %w", err)
	}

	return &claims, nil
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
