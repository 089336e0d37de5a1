package cmd

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/embedding"
	"github.com/sohv/scorj/internal/history"
	"github.com/sohv/scorj/internal/intent"
	"github.com/sohv/scorj/internal/judge"
	geminijudge "github.com/sohv/scorj/internal/judge/gemini"
	openaijudge "github.com/sohv/scorj/internal/judge/openai"
	"github.com/sohv/scorj/internal/match"
	"github.com/sohv/scorj/internal/scoring"
	"github.com/sohv/scorj/internal/secrets"
	"github.com/sohv/scorj/internal/weights"
)

// buildScorer assembles the scoring pipeline from the config. Providers that
// are disabled or missing credentials are skipped with a warning; the pipeline
// degrades down to the deterministic fallback rather than refusing to start.
func buildScorer(ctx context.Context, config *Config, logger *zap.Logger) *scoring.Scorer {
	var judges []judge.Judge
	var geminiGen *geminijudge.Generator

	ai := config.AI
	if ai == nil {
		ai = &AIConfig{}
	}

	if ai.Gemini != nil && ai.Gemini.Enabled {
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: ai.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
			File:  ai.Gemini.APIKeyFile,
		})
		if err != nil {
			logger.Warn("skipping gemini judge", zap.Error(err))
		} else {
			generator, err := geminijudge.NewGenerator(ctx, apiKey, ai.Gemini.Model)
			if err != nil {
				logger.Warn("skipping gemini judge", zap.Error(err))
			} else {
				geminiGen = generator
				backoff := time.Duration(ai.Gemini.BackoffSeconds) * time.Second
				judges = append(judges, geminijudge.NewJudge(generator, logger, ai.Gemini.MaxRetries, backoff))
			}
		}
	}

	if ai.OpenAI != nil && ai.OpenAI.Enabled {
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: ai.OpenAI.APIKey,
			Env:   "OPENAI_API_KEY",
			File:  ai.OpenAI.APIKeyFile,
		})
		if err != nil {
			logger.Warn("skipping openai judge", zap.Error(err))
		} else {
			client, err := openaijudge.NewClient(apiKey, ai.OpenAI.Model)
			if err != nil {
				logger.Warn("skipping openai judge", zap.Error(err))
			} else {
				judges = append(judges, openaijudge.NewJudge(client, logger))
			}
		}
	}

	if len(judges) == 0 {
		logger.Warn("no judges configured, scores will use the deterministic fallback only")
	}

	analyzer := match.NewAnalyzer(buildEmbeddingProvider(ctx, config, logger), logger)

	var intents *intent.Analyzer
	if config.Intent != nil && config.Intent.Enabled {
		if geminiGen == nil {
			logger.Warn("intent analysis requires the gemini provider, disabling")
		} else {
			intents = intent.NewAnalyzer(intent.NewLLMExtractor(geminiGen), logger)
		}
	}

	cfg := scoring.Config{}
	if ai.JudgeTimeoutSeconds > 0 {
		cfg.JudgeTimeout = time.Duration(ai.JudgeTimeoutSeconds) * time.Second
	}
	if ai.DynamicWeights {
		if geminiGen == nil {
			logger.Warn("dynamic weights require the gemini provider, using defaults")
		} else {
			cfg.WeightProvider = weights.NewLLMProvider(geminiGen, logger)
		}
	}

	return scoring.NewScorer(analyzer, intents, judges, cfg, logger)
}

// buildEmbeddingProvider returns the shared embedding provider or nil when
// embeddings are disabled or unconfigured.
func buildEmbeddingProvider(ctx context.Context, config *Config, logger *zap.Logger) embedding.Provider {
	if config.Embedding == nil || !config.Embedding.Enabled {
		return nil
	}

	var geminiCfg GeminiConfig
	if config.AI != nil && config.AI.Gemini != nil {
		geminiCfg = *config.AI.Gemini
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  geminiCfg.APIKeyFile,
	})
	if err != nil {
		logger.Warn("skipping embedding provider", zap.Error(err))
		return nil
	}

	provider, err := embedding.LoadShared(ctx, apiKey, config.Embedding.Model)
	if err != nil {
		logger.Warn("skipping embedding provider", zap.Error(err))
		return nil
	}

	return provider
}

// buildHistory opens the history store when a path is configured.
func buildHistory(config *Config, logger *zap.Logger) *history.Store {
	if config.History == nil || strings.TrimSpace(config.History.Path) == "" {
		return nil
	}

	store, err := history.Open(config.History.Path)
	if err != nil {
		logger.Warn("history store unavailable, runs will not be recorded", zap.Error(err))
		return nil
	}

	logger.Debug("history store opened", zap.String("path", config.History.Path))
	return store
}

func listenAddr(config *Config) string {
	if config.Server != nil && strings.TrimSpace(config.Server.Listen) != "" {
		return config.Server.Listen
	}
	return ":8080"
}
