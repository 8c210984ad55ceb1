package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/signaldeskai/signaldesk/internal/analyze"
	"github.com/signaldeskai/signaldesk/internal/config"
	"github.com/signaldeskai/signaldesk/internal/extract"
	"github.com/signaldeskai/signaldesk/internal/logger"
	"github.com/signaldeskai/signaldesk/internal/pipeline"
	"github.com/signaldeskai/signaldesk/internal/slackbot"
	"github.com/signaldeskai/signaldesk/internal/store"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "signaldesk",
		Short:         "Slack signal capture and trend analysis bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Watch the configured channel and process signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	app := fx.New(
		fx.Supply(cfg),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		fx.Provide(
			provideLogger,
			provideSlackClient,
			providePageFetcher,
			provideFileDownloader,
			provideAnalyzer,
			provideWriter,
			providePipeline,
			provideRunner,
		),
		fx.Invoke(registerRunner),
	)
	app.Run()
	return nil
}

func provideLogger() *slog.Logger {
	return logger.L
}

func provideSlackClient(log *slog.Logger, cfg config.Config) *slackbot.Client {
	return slackbot.NewClient(log, cfg.Slack.BotToken, cfg.Slack.AppToken)
}

func providePageFetcher(log *slog.Logger) *extract.PageFetcher {
	return extract.NewPageFetcher(log)
}

func provideFileDownloader(log *slog.Logger, cfg config.Config) *extract.FileDownloader {
	return extract.NewFileDownloader(log, cfg.Slack.BotToken)
}

func provideAnalyzer(log *slog.Logger, cfg config.Config) *analyze.Analyzer {
	return analyze.NewAnalyzer(log, cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
}

func provideWriter(log *slog.Logger, cfg config.Config) *store.Writer {
	return store.NewWriter(log, cfg.Airtable.APIKey, cfg.Airtable.BaseID, cfg.Airtable.Table)
}

func providePipeline(log *slog.Logger, cfg config.Config, chat *slackbot.Client, analyzer *analyze.Analyzer, writer *store.Writer, pages *extract.PageFetcher, files *extract.FileDownloader) *pipeline.Pipeline {
	return pipeline.New(log, chat, analyzer, writer, pages, files, pipeline.Options{
		ChannelID:          cfg.Slack.ChannelID,
		WorkspaceURL:       cfg.Slack.WorkspaceURL,
		ProcessingReaction: cfg.Slack.ProcessingReaction,
		SuccessReaction:    cfg.Slack.SuccessReaction,
		FailureReaction:    cfg.Slack.FailureReaction,
	})
}

func provideRunner(log *slog.Logger, client *slackbot.Client, p *pipeline.Pipeline) *slackbot.Runner {
	return slackbot.NewRunner(log, client, p)
}

func registerRunner(lc fx.Lifecycle, shutdowner fx.Shutdowner, log *slog.Logger, runner *slackbot.Runner) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				if err := runner.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("socket runner exited", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
