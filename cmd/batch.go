package main

import (
	"bufio"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze a file of website URLs",
	Long:  "Reads one URL per line (blank lines and #-comments skipped) and analyzes each with bounded concurrency. Failures are logged and do not stop the batch.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		urls, err := readURLFile(args[0])
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			zap.L().Warn("no URLs found in file", zap.String("file", args[0]))
			return nil
		}

		e, err := initService(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		zap.L().Info("starting batch",
			zap.Int("urls", len(urls)),
			zap.Int("concurrency", concurrency),
		)

		var analyzed, cached, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, url := range urls {
			g.Go(func() error {
				result, err := e.Service.Analyze(gctx, url)
				if err != nil {
					failed.Add(1)
					zap.L().Error("analyze failed", zap.String("url", url), zap.Error(err))
					return nil
				}
				if result.Cached {
					cached.Add(1)
				} else {
					analyzed.Add(1)
				}
				zap.L().Info("analyzed",
					zap.String("url", url),
					zap.String("id", result.Record.ID),
					zap.Bool("cached", result.Cached),
				)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int64("analyzed", analyzed.Load()),
			zap.Int64("cached", cached.Load()),
			zap.Int64("failed", failed.Load()),
		)

		return nil
	},
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return urls, nil
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent analyses (default from config)")
	rootCmd.AddCommand(batchCmd)
}
