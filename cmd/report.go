package cmd

import (
	"fmt"
	"log"

	"github.com/avoelkl/mietscout/internal/ai"
	"github.com/avoelkl/mietscout/internal/ledger"
	"github.com/avoelkl/mietscout/internal/logger"
	"github.com/avoelkl/mietscout/internal/report"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print reports from the stored ledger without touching gmail or the ai",
	Run: func(cmd *cobra.Command, _ []string) {
		runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("detailed", false, "include the per criterion analysis")
	reportCmd.Flags().Bool("secretary", false, "include the secretary stopping plan")
}

func runReport(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	led, err := ledger.FromFile(ledgerPath(config))
	if err != nil {
		logger.Fatal("loading the candidate ledger", zap.Error(err))
	}

	if led.Len() == 0 {
		logger.Info("the candidate ledger is empty", zap.String("filename", ledgerPath(config)))
	}

	var listing *ai.Listing
	if config != nil {
		listing = config.Listing
	}

	summary := report.Summarize(led)

	fmt.Println(summary.Dashboard(listing))

	if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
		fmt.Println(summary.Detailed())
	}

	if secretary, _ := cmd.Flags().GetBool("secretary"); secretary {
		fmt.Println(report.PlanSecretary(led.Candidates).Render())
	}
}
