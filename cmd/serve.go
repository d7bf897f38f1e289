package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/odellis/hireflow/internal/agent"
	"github.com/odellis/hireflow/internal/ai/gemini"
	"github.com/odellis/hireflow/internal/ai/heuristic"
	"github.com/odellis/hireflow/internal/httpapi"
	"github.com/odellis/hireflow/internal/logger"
	"github.com/odellis/hireflow/internal/mailbox/gmail"
	"github.com/odellis/hireflow/internal/secrets"
	"github.com/odellis/hireflow/internal/watch"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultListenAddr = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hireflow backend: role loops, mailbox pollers, and the HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address for the HTTP API. Default is :8080.")
	serveCmd.Flags().Bool("no-scanner", false, "disable the mailbox-wide scanner")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

// serve is the main command for the backend.
func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hireflow", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}
	if config.HREmail == "" {
		logger.Fatal("hr email is required under hr-email to deliver interview guides")
	}

	token, err := resolveGmailToken(config)
	if err != nil {
		logger.Fatal(
			"loading gmail token",
			zap.Error(err),
			zap.String("hint", "set HIREFLOW_GMAIL_TOKEN_FILE environment variable or the 'gmail.token-file' key in the configuration file"),
		)
	}

	apiKey, err := resolveGeminiKey(config)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	gemCfg := geminiConfig(config)
	generator, err := gemini.NewGenerator(ctx, apiKey, gemCfg.Model, gemCfg.MaxRetries, logger)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}

	classifier := gemini.NewClassifier(generator, logger, gemCfg.MaxLogLength)
	detector := gemini.NewDetector(generator, logger, gemCfg.MaxLogLength)
	cvModel := gemini.NewCVAnalyzer(generator, logger, gemCfg.MaxLogLength)
	interviewModel := gemini.NewInterviewAnalyzer(generator, logger, gemCfg.MaxLogLength)

	mail := gmail.New(logger, token)

	coordinator := agent.NewCoordinator(agent.Deps{
		Mailbox:           mail,
		Classifier:        classifier,
		CVModel:           cvModel,
		CVFallback:        heuristic.NewCVAnalyzer(logger),
		InterviewAnalyzer: interviewModel,
		HREmail:           config.HREmail,
		WatchInterval:     watchInterval(config),
		Logger:            logger,
	})

	var scanner *watch.Scanner
	if cmd.Flag("no-scanner").Value.String() == "false" {
		scanner = watch.NewScanner(watch.Config{
			Mailbox:    mail,
			Detector:   detector,
			Fallback:   heuristic.NewDetector(),
			Classifier: classifier,
			Interval:   scanInterval(config),
			Logger:     logger,
		})
	}

	coordinator.Start(ctx)
	if scanner != nil {
		scanner.Start(ctx)
	}

	listen := defaultListenAddr
	if config.Server != nil && config.Server.Listen != "" {
		listen = config.Server.Listen
	}

	server := httpapi.NewServer(listen, coordinator, scanner, logger)
	if err := server.Run(ctx); err != nil {
		logger.Error("http server failed", zap.Error(err))
	}

	if scanner != nil {
		scanner.Stop()
	}
	coordinator.Stop()
	logger.Info("hireflow stopped")
}

func resolveGmailToken(config *Config) (string, error) {
	src := secrets.Source{Name: "gmail token", Env: "HIREFLOW_GMAIL_TOKEN"}
	if config.Gmail != nil {
		src.File = config.Gmail.TokenFile
	}
	if src.File == "" {
		src.File = viper.GetString("gmail.token-file")
	}
	return secrets.Load(src)
}

func resolveGeminiKey(config *Config) (string, error) {
	src := secrets.Source{Name: "gemini api key", Env: "GEMINI_API_KEY"}
	if config.AI != nil && config.AI.Gemini != nil {
		src.File = config.AI.Gemini.APIKeyFile
	}
	return secrets.Load(src)
}

func geminiConfig(config *Config) *GeminiConfig {
	if config.AI != nil && config.AI.Gemini != nil {
		return config.AI.Gemini
	}
	return &GeminiConfig{}
}

func watchInterval(config *Config) time.Duration {
	if config.Monitor != nil && config.Monitor.WatchIntervalSeconds > 0 {
		return time.Duration(config.Monitor.WatchIntervalSeconds) * time.Second
	}
	return 0
}

func scanInterval(config *Config) time.Duration {
	if config.Monitor != nil && config.Monitor.ScanIntervalSeconds > 0 {
		return time.Duration(config.Monitor.ScanIntervalSeconds) * time.Second
	}
	return 0
}
