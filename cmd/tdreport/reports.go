package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/BalanceBalls/timedoctor-reports/internal/bot"
	"github.com/BalanceBalls/timedoctor-reports/internal/builder"
	"github.com/BalanceBalls/timedoctor-reports/internal/config"
	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
	"github.com/BalanceBalls/timedoctor-reports/internal/generator"
	htmlgenerator "github.com/BalanceBalls/timedoctor-reports/internal/generator/html"
	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/storage"
	"github.com/BalanceBalls/timedoctor-reports/internal/storage/archive"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
)

var errTelegramNotConfigured = errors.New("--telegram needs BOT_TOKEN and TELEGRAM_CHAT_ID")

type newBuilderFunc func(api builder.Api, opts builder.Options) builder.Builder

func newUserStatusCmd(a *app) *cobra.Command {
	var (
		users     []string
		dateRange string
	)

	cmd := &cobra.Command{
		Use:   "user-status",
		Short: "Activity window, productivity totals and categories per user",
		Long: `Reports, for each given user, the first and last tracked time of the range,
total, productive, unproductive and neutral time and the app and web
categories the time was spent on.`,
		Example: "  tdreport user-status -u 1a2b3c,4d5e6f -t day",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := splitIds(users)
			if err := requireNonEmpty("user", ids); err != nil {
				return err
			}
			return a.runReport(cmd, dateRange, func(api builder.Api, opts builder.Options) builder.Builder {
				return builder.NewStatus(api, ids, opts)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&users, "user", "u", nil, "User ids, comma separated or repeated.")
	cmd.MarkFlagRequired("user")
	rangeFlag(cmd, &dateRange, "day")

	return cmd
}

func newUserSummaryCmd(a *app) *cobra.Command {
	var (
		users     []string
		dateRange string
	)

	cmd := &cobra.Command{
		Use:   "user-summary",
		Short: "Productivity summary for the given users, or everybody",
		Long: `Like user-status, but processes users page by page so it can cover the
whole company when no user ids are given.`,
		Example: "  tdreport user-summary -t week --format text",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := splitIds(users)
			return a.runReport(cmd, dateRange, func(api builder.Api, opts builder.Options) builder.Builder {
				return builder.NewSummary(api, ids, opts)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&users, "user", "u", nil, "User ids, comma separated or repeated. All users when omitted.")
	rangeFlag(cmd, &dateRange, "today")

	return cmd
}

func newWebAppUsageCmd(a *app) *cobra.Command {
	var (
		group     string
		dateRange string
	)

	cmd := &cobra.Command{
		Use:     "web-app-usage",
		Short:   "Time per app and website for the members of a group",
		Example: `  tdreport web-app-usage -g "Support" -t month`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(group) == "" {
				return fmt.Errorf("required flag %q is empty", "group-name")
			}
			return a.runReport(cmd, dateRange, func(api builder.Api, opts builder.Options) builder.Builder {
				return builder.NewUsage(api, group, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group-name", "g", "", "Exact, case sensitive name of the group.")
	cmd.MarkFlagRequired("group-name")
	rangeFlag(cmd, &dateRange, "day")

	return cmd
}

// runReport validates everything it can before the first network call, builds
// the report, writes it to stdout and then archives and delivers it.
func (a *app) runReport(cmd *cobra.Command, dateRange string, newBuilder newBuilderFunc) error {
	ctx, cfg, err := a.setup(cmd)
	if err != nil {
		return err
	}
	logger := logger.GetFromContext(ctx)

	if err := cfg.Credentials.Validate(); err != nil {
		return err
	}

	if _, err := daterange.ParseUnit(dateRange); err != nil {
		return err
	}

	gen, err := newGenerator(a.format)
	if err != nil {
		return err
	}

	var notifier *bot.ReportsBot
	if a.telegram {
		if !cfg.TelegramEnabled() {
			return errTelegramNotConfigured
		}
		if notifier, err = bot.New(bot.Config{Token: cfg.BotToken, ChatId: cfg.TelegramChatId}); err != nil {
			return err
		}
	}

	client := timedoctor.NewClient(timedoctor.Options{
		BaseUrl:   cfg.ApiBaseUrl,
		Timeout:   cfg.HttpTimeout,
		PageDelay: cfg.PageDelay,
		PageLimit: cfg.PageLimit,
	})

	b := newBuilder(client, builder.Options{
		Credentials:  cfg.Credentials,
		RangeKeyword: dateRange,
		Concurrency:  cfg.FetchConcurrency,
	})

	rep, err := b.Build(ctx)
	if err != nil {
		if notifier != nil {
			if notifyErr := notifier.SendFailure(ctx, err); notifyErr != nil {
				logger.WarnContext(ctx, "could not report the failure to telegram", "error", notifyErr)
			}
		}
		return err
	}

	rendered, err := gen.Generate(rep)
	if err != nil {
		return err
	}

	if _, err := cmd.OutOrStdout().Write(rendered.Data); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	logger.InfoContext(ctx, "report generated", "kind", rep.Kind, "rows", rep.Len(), "range", rep.Range.String())

	if cfg.ArchiveDsn != "" {
		if err := archiveReport(ctx, cfg, rep); err != nil {
			return err
		}
	}

	if notifier != nil {
		if err := notifier.SendReport(ctx, rep, rendered); err != nil {
			return err
		}
	}

	return nil
}

func archiveReport(ctx context.Context, cfg config.Config, rep report.Report) error {
	st, err := archive.Open(ctx, cfg.ArchiveDsn)
	if err != nil {
		return fmt.Errorf("could not open report archive: %w", err)
	}
	defer st.Close()

	a, err := storage.NewArchived(uuid.New(), rep)
	if err != nil {
		return err
	}
	if err := st.Save(ctx, a); err != nil {
		return err
	}

	logger.GetFromContext(ctx).InfoContext(ctx, "report archived", "report_id", a.Id.String())
	return nil
}

func newGenerator(format string) (generator.Generator, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return generator.JsonGenerator{}, nil
	case "yaml", "yml":
		return generator.YamlGenerator{}, nil
	case "text", "txt":
		return generator.TextGenerator{}, nil
	case "html":
		return htmlgenerator.New(htmlgenerator.DefaultTemplate)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
