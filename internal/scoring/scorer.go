// Package scoring is the public entry point of the matching pipeline: it runs
// the deterministic analysis, fans out to the judges, validates intent and
// assembles the final report.
package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sohv/scorj/internal/consensus"
	"github.com/sohv/scorj/internal/intent"
	"github.com/sohv/scorj/internal/judge"
	"github.com/sohv/scorj/internal/logger"
	"github.com/sohv/scorj/internal/match"
	"github.com/sohv/scorj/internal/profile"
	"github.com/sohv/scorj/internal/weights"
)

const defaultJudgeTimeout = 90 * time.Second

// Breakdown lists the deterministic dimension scores for transparency.
type Breakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
}

// Report is the full outcome of one scoring run.
type Report struct {
	RequestID  string            `json:"request_id"`
	FinalScore int               `json:"final_score"`
	BaseScore  int               `json:"base_score"`
	Consensus  *consensus.Result `json:"consensus"`
	Intent     *intent.Result    `json:"intent,omitempty"`
	Structured *match.Analysis   `json:"structured"`
	Breakdown  Breakdown         `json:"breakdown"`
	// IntentDegraded is set when comments were present but claim extraction
	// failed, so the run proceeded without a bonus.
	IntentDegraded bool          `json:"intent_degraded,omitempty"`
	Elapsed        time.Duration `json:"elapsed"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Config tunes the pipeline.
type Config struct {
	// JudgeTimeout bounds each judge call independently.
	JudgeTimeout time.Duration
	// WeightProvider proposes per-job weights; nil means fixed defaults.
	WeightProvider weights.Provider
}

// Scorer runs scoring requests. Safe for concurrent use.
type Scorer struct {
	analyzer *match.Analyzer
	intents  *intent.Analyzer
	engine   *consensus.Engine
	judges   []judge.Judge
	cfg      Config
	logger   *zap.Logger
}

// NewScorer assembles a pipeline. Judges may be empty; the consensus fallback
// covers that. A nil intent analyzer disables intent bonuses.
func NewScorer(analyzer *match.Analyzer, intents *intent.Analyzer, judges []judge.Judge, cfg Config, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.JudgeTimeout <= 0 {
		cfg.JudgeTimeout = defaultJudgeTimeout
	}

	return &Scorer{
		analyzer: analyzer,
		intents:  intents,
		engine:   consensus.NewEngine(log),
		judges:   judges,
		cfg:      cfg,
		logger:   log,
	}
}

// Score runs the full pipeline for one resume/job pair. Profile validation is
// the only fail-fast path; judge and intent failures degrade the result
// instead of sinking it.
func (s *Scorer) Score(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile) (*Report, error) {
	if err := resume.Validate(); err != nil {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	requestID := uuid.NewString()
	log := logger.WithFields(s.logger, zap.String(logger.FieldRequestID, requestID))

	w := weights.Resolve(ctx, s.cfg.WeightProvider, job, log)
	structured := s.analyzer.Analyze(ctx, resume, job, w)

	intentResult, intentDegraded := s.analyzeIntent(ctx, resume, job, log)

	jc := &judge.Context{
		Structured:  structured,
		IntentNotes: intentResult.AlignedNotes(),
	}

	results := s.runJudges(ctx, resume, job, jc, log)
	combined := s.engine.Combine(results, structured)

	report := &Report{
		RequestID:  requestID,
		BaseScore:  combined.Score,
		FinalScore: intent.Apply(combined.Score, intentResult),
		Consensus:  combined,
		Intent:     intentResult,
		Structured: structured,
		Breakdown: Breakdown{
			Skills:     structured.Skills.MatchPercentage,
			Experience: structured.Experience.RelevanceScore,
			Education:  structured.Education.Score,
		},
		IntentDegraded: intentDegraded,
		Elapsed:        time.Since(started),
		CreatedAt:      started.UTC(),
	}

	log.Info("scoring run complete",
		zap.Int("final_score", report.FinalScore),
		zap.String("consensus_level", string(combined.Level)),
		zap.Int("judges_usable", combined.JudgesUsable),
		zap.Float64("intent_bonus", intentResult.TotalBonus),
		zap.Duration("elapsed", report.Elapsed),
	)

	return report, nil
}

// analyzeIntent never fails the run: extraction errors degrade to a zero
// bonus.
func (s *Scorer) analyzeIntent(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile, log *zap.Logger) (*intent.Result, bool) {
	if s.intents == nil {
		return intent.ZeroResult(), false
	}

	result, err := s.intents.Analyze(ctx, resume, job)
	if err != nil {
		log.Warn("intent analysis failed, continuing without bonus", zap.Error(err))
		return intent.ZeroResult(), true
	}
	return result, false
}

// runJudges fans out to all judges concurrently. Each call gets its own
// timeout and any failure is converted to an error result in place, so one
// slow or broken provider never affects the others.
func (s *Scorer) runJudges(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile, jc *judge.Context, log *zap.Logger) []*judge.Result {
	results := make([]*judge.Result, len(s.judges))

	g, gctx := errgroup.WithContext(ctx)
	for i, j := range s.judges {
		g.Go(func() error {
			jctx, cancel := context.WithTimeout(gctx, s.cfg.JudgeTimeout)
			defer cancel()

			result, err := j.Evaluate(jctx, resume, job, jc)
			if err != nil {
				log.Warn("judge evaluation failed",
					zap.String(logger.FieldProvider, j.Provider()),
					zap.Error(err),
				)
				results[i] = judge.ErrorResult(j.Provider(), err)
				return nil
			}
			results[i] = result
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	return results
}
