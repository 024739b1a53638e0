package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/BalanceBalls/timedoctor-reports/internal/config"
	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	stderr io.Writer
	logger *slog.Logger

	envFile  string
	format   string
	telegram bool

	closers []io.Closer
}

func newApp(stderr io.Writer) *app {
	return &app{
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}
}

// setup loads the configuration and replaces the bootstrap logger with the
// configured one, tagged with a fresh run id.
func (a *app) setup(cmd *cobra.Command) (context.Context, config.Config, error) {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return nil, config.Config{}, err
	}

	log, closer, err := logger.New(a.stderr, logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, config.Config{}, err
	}
	a.closers = append(a.closers, closer)

	a.logger = log.With("run_id", uuid.NewString(), "command", cmd.Name())
	return logger.AddToContext(cmd.Context(), a.logger), cfg, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		c.Close()
	}
	a.closers = nil
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tdreport",
		Short: "Generate activity and productivity reports from Time Doctor",
		Long: `tdreport logs in to the Time Doctor API, collects worklogs, productivity
scores and app/web usage for a set of users or a group and prints a report.

Credentials are read from EMAIL (or USERNAME), PASSWORD and TWOFACODE in the
environment or in the file given by --env-file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Path to a dotenv file with credentials and settings.")
	rootCmd.PersistentFlags().StringVar(&a.format, "format", "json", "Output format: json, yaml, text or html.")
	rootCmd.PersistentFlags().BoolVar(&a.telegram, "telegram", false, "Also send the report to TELEGRAM_CHAT_ID using BOT_TOKEN.")

	rootCmd.AddCommand(
		newUserStatusCmd(a),
		newUserSummaryCmd(a),
		newWebAppUsageCmd(a),
		newHistoryCmd(a),
	)

	return rootCmd
}

// rangeFlag registers -t/--this, also reachable as --date-range.
func rangeFlag(cmd *cobra.Command, target *string, def string) {
	cmd.Flags().StringVarP(target, "this", "t", def, "Calendar unit to report on: day, week, month, quarter, year, hour, ...")
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "date-range" {
			name = "this"
		}
		return pflag.NormalizedName(name)
	})
}

func splitIds(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func requireNonEmpty(name string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("required flag %q has no values", name)
	}
	return nil
}
