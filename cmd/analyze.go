package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/service"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a company website and print its profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initService(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.Service.Analyze(ctx, args[0])
		if err != nil {
			return err
		}

		zap.L().Info("analysis complete",
			zap.String("id", result.Record.ID),
			zap.Bool("cached", result.Cached),
		)

		return printResult(result)
	},
}

func printResult(result *service.AnalyzeResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"id":             result.Record.ID,
		"url":            result.Record.URL,
		"normalized_url": result.Record.NormalizedURL,
		"cached":         result.Cached,
		"profile":        result.Record.Profile,
	})
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
