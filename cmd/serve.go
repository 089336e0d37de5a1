package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/logger"
	"github.com/sohv/scorj/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address, overrides server.listen from the config")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx := context.Background()

	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	zl.Info("starting "+app, zap.String("version", version))

	scorer := buildScorer(ctx, config, zl)
	store := buildHistory(config, zl)
	defer store.Close()

	srv := server.New(scorer, store, zl)
	if err := srv.Run(listenAddr(config)); err != nil {
		zl.Fatal("http server failed", zap.Error(err))
	}
}
