package cmd

import (
	"log"
	"time"

	"github.com/avoelkl/mietscout/internal/ai"
	"github.com/avoelkl/mietscout/internal/rubric"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "mietscout"
)

type Config struct {
	LedgerFile string         `mapstructure:"ledger-file"`
	Gmail      *GmailConfig   `mapstructure:"gmail"`
	Listing    *ai.Listing    `mapstructure:"listing"`
	AI         *AIConfig      `mapstructure:"ai"`
	Rubric     *rubric.Config `mapstructure:"rubric"`
}

type GmailConfig struct {
	TokenFile  string `mapstructure:"token-file"`
	Query      string `mapstructure:"query"`
	DaysBack   int    `mapstructure:"days-back"`
	MaxResults int    `mapstructure:"max-results"`
}

type AIConfig struct {
	Provider        string        `mapstructure:"provider"`
	RequestInterval time.Duration `mapstructure:"request-interval"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string        `mapstructure:"api-key"`
	APIKeyFile      string        `mapstructure:"api-key-file"`
	Model           string        `mapstructure:"model"`
	MaxOutputTokens int           `mapstructure:"max-output-tokens"`
	Temperature     float64       `mapstructure:"temperature"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxLogLength    int           `mapstructure:"max-log-length"`
}

var (
	// cfgFile holds the --config override.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "mietscout is a simple cli for scoring and ranking rental applications from a gmail inbox",
	}
)

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gmail.token-file", "GMAIL_TOKEN_FILE"); err != nil {
		log.Fatalf("binding GMAIL_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is mietscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "log in json format")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the run and report commands. If neither was
	// called, we can skip initialization.
	if runCmd.CalledAs() == "" && reportCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing or malformed config file is unrecoverable here.
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

func ledgerPath(config *Config) string {
	if config != nil && config.LedgerFile != "" {
		return config.LedgerFile
	}

	return defaultLedgerFile
}
