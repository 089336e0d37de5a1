package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "scorj"
)

type Config struct {
	AI        *AIConfig        `mapstructure:"ai"`
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
	Intent    *IntentConfig    `mapstructure:"intent"`
	History   *HistoryConfig   `mapstructure:"history"`
	Server    *ServerConfig    `mapstructure:"server"`
}

type AIConfig struct {
	JudgeTimeoutSeconds int           `mapstructure:"judge-timeout-seconds"`
	DynamicWeights      bool          `mapstructure:"dynamic-weights"`
	Gemini              *GeminiConfig `mapstructure:"gemini"`
	OpenAI              *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	BackoffSeconds int    `mapstructure:"backoff-seconds"`
}

type OpenAIConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type EmbeddingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

type IntentConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scorj scores resumes against job postings with a multi-model consensus engine",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scorj.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Local .env files carry API keys during development. Absence is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Everything has a default or an environment fallback, so a missing
		// config file is not an error. A broken one is.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	return config, nil
}
