// Package gemini implements the Gemini-backed judge.
package gemini

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/judge"
	"github.com/sohv/scorj/internal/logger"
	"github.com/sohv/scorj/internal/profile"
	"github.com/sohv/scorj/internal/util"
)

const providerName = "gemini"

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Judge evaluates resumes against jobs with a Gemini model.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	retries   int
	backoff   time.Duration
	maxLogLen int
}

// NewJudge wires a generator into a judge. Retries below zero are treated as
// zero; a zero backoff disables waiting between attempts.
func NewJudge(generator contentGenerator, log *zap.Logger, retries int, backoff time.Duration) *Judge {
	if log == nil {
		log = zap.NewNop()
	}
	if retries < 0 {
		retries = 0
	}

	return &Judge{
		generator: generator,
		logger:    logger.WithFields(log, logger.JudgeFields(providerName, generator.Model())...),
		retries:   retries,
		backoff:   backoff,
		maxLogLen: defaultMaxLogLength,
	}
}

// Provider returns the judge's provider id.
func (j *Judge) Provider() string {
	return providerName
}

// Evaluate builds the shared recruiter prompt, queries Gemini with retries and
// parses the reply into a judge result.
func (j *Judge) Evaluate(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile, jc *judge.Context) (*judge.Result, error) {
	prompt, err := judge.BuildPrompt(resume, job, jc)
	if err != nil {
		return nil, err
	}

	j.logger.Debug("gemini judge request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, j.maxLogLen)),
	)

	var raw string
	var lastErr error
	retried := false
	for attempt := 0; attempt <= j.retries; attempt++ {
		if attempt > 0 {
			retried = true
			j.logger.Debug("retrying gemini judge",
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			if err := util.WaitFor(ctx, j.backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}

		raw, lastErr = j.generator.GenerateContent(ctx, prompt)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("gemini evaluation failed after %d attempts: %w", j.retries+1, lastErr)
	}

	j.logger.Debug("gemini judge response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, j.maxLogLen)),
	)

	result, err := judge.ParseResponse(providerName, j.generator.Model(), raw)
	if err != nil {
		return nil, err
	}
	// A verdict reached only after failed attempts weighs less in consensus.
	result.Degraded = result.Degraded || retried
	return result, nil
}
