package openai

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/judge"
	"github.com/sohv/scorj/internal/logger"
	"github.com/sohv/scorj/internal/profile"
	"github.com/sohv/scorj/internal/util"
)

const providerName = "openai"

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Judge evaluates resumes against jobs with an OpenAI chat model.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewJudge wires a generator into a judge.
func NewJudge(generator contentGenerator, log *zap.Logger) *Judge {
	if log == nil {
		log = zap.NewNop()
	}

	return &Judge{
		generator: generator,
		logger:    logger.WithFields(log, logger.JudgeFields(providerName, generator.Model())...),
		maxLogLen: defaultMaxLogLength,
	}
}

// Provider returns the judge's provider id.
func (j *Judge) Provider() string {
	return providerName
}

// Evaluate builds the shared recruiter prompt, queries the chat model and
// parses the reply into a judge result. Retry policy lives with the transport
// client; the pipeline's bulkhead handles anything that still fails.
func (j *Judge) Evaluate(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile, jc *judge.Context) (*judge.Result, error) {
	prompt, err := judge.BuildPrompt(resume, job, jc)
	if err != nil {
		return nil, err
	}

	j.logger.Debug("openai judge request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	j.logger.Debug("openai judge response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, j.maxLogLen)),
	)

	return judge.ParseResponse(providerName, j.generator.Model(), raw)
}
