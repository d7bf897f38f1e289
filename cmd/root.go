package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hireflow"
)

type Config struct {
	HREmail string         `mapstructure:"hr-email"`
	Server  *ServerConfig  `mapstructure:"server"`
	Gmail   *GmailConfig   `mapstructure:"gmail"`
	AI      *AIConfig      `mapstructure:"ai"`
	Monitor *MonitorConfig `mapstructure:"monitor"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

type GmailConfig struct {
	TokenFile string `mapstructure:"token-file"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type MonitorConfig struct {
	WatchIntervalSeconds int `mapstructure:"watch-interval-seconds"`
	ScanIntervalSeconds  int `mapstructure:"scan-interval-seconds"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hireflow is a recruiting-automation backend: it emails candidates, schedules interviews, and screens CVs and transcripts",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gmail.token-file", "HIREFLOW_GMAIL_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HIREFLOW_GMAIL_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hireflow.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for serve command now. If there is no config, we can skip initialization
	if serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
