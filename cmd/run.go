package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/avoelkl/mietscout/internal/ai"
	"github.com/avoelkl/mietscout/internal/ai/gemini"
	"github.com/avoelkl/mietscout/internal/ledger"
	"github.com/avoelkl/mietscout/internal/logger"
	"github.com/avoelkl/mietscout/internal/mail"
	"github.com/avoelkl/mietscout/internal/mail/gmail"
	"github.com/avoelkl/mietscout/internal/report"
	"github.com/avoelkl/mietscout/internal/rubric"
	"github.com/avoelkl/mietscout/internal/secrets"
	"github.com/avoelkl/mietscout/internal/utils"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptDashboard      = "Show dashboard"
	PromptDetailed       = "Show detailed analysis"
	PromptSecretary      = "Show secretary plan"
	PromptRankingsToFile = "Dump rankings to file"
	PromptExit           = "Exit"

	defaultLedgerFile = "data/candidates.json"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptDashboard, PromptDetailed, PromptSecretary, PromptRankingsToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch new applications from gmail, score them and update the ledger",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("batch", "y", false, "print the dashboard and exit without the interactive menu")
	runCmd.Flags().IntP("days-back", "b", 0, "override the gmail search window in days")
}

// run drives one full fetch, evaluate and report pass.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the mietscout", zap.String("version", version))

	// marshalling a config that viper just decoded cannot fail
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	r := rubric.FromConfig(config.Rubric)
	if err := r.Validate(); err != nil {
		logger.Fatal("validating the scoring rubric", zap.Error(err))
	}

	token, err := resolveGmailToken(config)
	if err != nil {
		logger.Fatal(
			"loading gmail token",
			zap.Error(err),
			zap.String("hint", "set GMAIL_TOKEN_FILE environment variable or the 'gmail.token-file' key in the configuration file"),
		)
	}

	mailbox := gmail.New(ctx, logger, token)

	led, err := ledger.FromFile(ledgerPath(config))
	if err != nil {
		if !errors.Is(err, ledger.ErrCorrupted) {
			logger.Fatal("loading the candidate ledger", zap.Error(err))
		}

		logger.Warn("candidate ledger is unreadable, starting fresh", zap.Error(err))
	}

	logger.Info("loaded the candidate ledger",
		zap.Int("count", led.Len()),
		zap.String("filename", ledgerPath(config)),
	)

	messages, err := fetchMessages(cmd, mailbox, config, logger)
	if err != nil {
		logger.Fatal("searching gmail for applications", zap.Error(err))
	}

	if skipped := messages.Exclude(led.EmailIDs()); len(skipped) > 0 {
		logger.Info("skipping already evaluated messages", zap.Int("count", len(skipped)))
	}

	if messages.Len() == 0 {
		logger.Info("no new applications to evaluate")
	} else {
		evaluator, err := newEvaluator(ctx, config, r, logger)
		if err != nil {
			logger.Fatal("building the ai evaluator", zap.Error(err))
		}

		if err := process(ctx, evaluator, messages, led, config, logger); err != nil {
			logger.Fatal("evaluating applications", zap.Error(err))
		}
	}

	fmt.Println(report.Summarize(led).Dashboard(config.Listing))

	if cmd.Flag("batch").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, led, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// process evaluates every message and persists the ledger after each one, so
// an aborted run keeps the records it already paid for.
func process(ctx context.Context, evaluator ai.Evaluator, messages *mail.Messages, led *ledger.Ledger, config *Config, log *zap.Logger) error {
	interval := requestInterval(config)

	for i, msg := range messages.Items {
		if i > 0 {
			if err := utils.WaitFor(ctx, interval); err != nil {
				return err
			}
		}

		log.Info("evaluating candidate", logger.CandidateFields(msg.ID, msg.Sender)...)

		record := evaluator.Evaluate(ctx, ai.Request{
			Sender:  msg.Sender,
			Subject: msg.Subject,
			Body:    msg.Body,
		})

		if !led.Append(ledger.NewEntry(msg, record)) {
			log.Warn("candidate already in the ledger, keeping the stored entry",
				zap.String(logger.FieldEmailID, msg.ID),
			)
			continue
		}

		if err := led.ToFile(ledgerPath(config)); err != nil {
			return fmt.Errorf("saving the candidate ledger: %w", err)
		}

		log.Info("candidate recorded",
			zap.String(logger.FieldEmailID, msg.ID),
			zap.Float64("total", record.Total),
		)
	}

	log.Info("finished evaluating applications", zap.Int("count", messages.Len()))

	return nil
}

func handleAction(action string, led *ledger.Ledger, config *Config, logger *zap.Logger) error {
	switch action {
	case PromptDashboard:
		fmt.Println(report.Summarize(led).Dashboard(config.Listing))
		return nil
	case PromptDetailed:
		fmt.Println(report.Summarize(led).Detailed())
		return nil
	case PromptSecretary:
		fmt.Println(report.PlanSecretary(led.Candidates).Render())
		return nil
	case PromptRankingsToFile:
		filename, err := led.DumpRankingsToTmpFile()
		if err != nil {
			return fmt.Errorf("dump rankings to file: %w", err)
		}

		logger.Info("dumping rankings to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func resolveGmailToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	var tokenFile string
	if config.Gmail != nil {
		tokenFile = strings.TrimSpace(config.Gmail.TokenFile)
	}

	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("gmail.token-file"))
	}

	if tokenFile == "" {
		return "", errors.New("gmail token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "gmail token",
		File: tokenFile,
	})
}

func newEvaluator(ctx context.Context, config *Config, r *rubric.Rubric, log *zap.Logger) (ai.Evaluator, error) {
	cfg := config.AI
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("ai.gemini configuration is required to evaluate applications")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key, ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Params{
		Model:           cfg.Gemini.Model,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		Temperature:     cfg.Gemini.Temperature,
		Timeout:         cfg.Gemini.Timeout,
	})
	if err != nil {
		return nil, err
	}

	evalLogger := logger.WithCommonFields(log, "gemini", generator.Model())

	return gemini.NewEvaluator(generator, r, config.Listing, evalLogger, cfg.Gemini.MaxLogLength), nil
}

// fetchMessages returns the applications that match the configured gmail search.
func fetchMessages(cmd *cobra.Command, mailbox *gmail.Client, config *Config, logger *zap.Logger) (*mail.Messages, error) {
	params := &gmail.SearchParams{}
	if config.Gmail != nil {
		params.Query = config.Gmail.Query
		params.DaysBack = config.Gmail.DaysBack
		params.MaxResults = config.Gmail.MaxResults
	}

	if days, err := cmd.Flags().GetInt("days-back"); err == nil && days > 0 {
		params.DaysBack = days
	}

	results, err := mailbox.Search(params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Info("getting applications", zap.Int("count", results.Len()))
	return results, nil
}

func requestInterval(config *Config) time.Duration {
	if config == nil || config.AI == nil {
		return 0
	}

	return config.AI.RequestInterval
}
