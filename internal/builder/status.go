package builder

import (
	"context"
	"fmt"

	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
)

const statusCategoryLimit = 200

// StatusBuilder reports on an explicit list of users: first and last activity,
// productivity totals and per-category time.
type StatusBuilder struct {
	api     Api
	userIds []string
	opts    Options
}

func NewStatus(api Api, userIds []string, opts Options) *StatusBuilder {
	return &StatusBuilder{
		api:     api,
		userIds: userIds,
		opts:    opts.withDefaults(report.ExactPolicy, statusCategoryLimit),
	}
}

func (sb *StatusBuilder) Build(ctx context.Context) (report.Report, error) {
	logger := logger.GetFromContext(ctx)

	session, r, err := start(ctx, sb.api, sb.opts)
	if err != nil {
		return report.Report{}, err
	}

	logger.InfoContext(ctx, "get users info", "user_ids", sb.userIds)
	users, err := sb.api.Users(ctx, session, timedoctor.UserQuery{UserIds: sb.userIds})
	if err != nil {
		return report.Report{}, err
	}

	rows := report.NewRows(users...)
	if err := fillRows(ctx, sb.api, session, rows, rows.Ids(), r, sb.opts, true); err != nil {
		return report.Report{}, err
	}

	return report.Report{
		Kind:        report.KindUserStatus,
		Range:       r,
		GeneratedAt: sb.opts.Now(),
		Users:       rows.Views(sb.opts.Format),
	}, nil
}

// fillRows fetches worklogs, score ratios and category totals for ids and
// merges them into rows. With perUser set, categories are requested for each
// user separately and concurrently; otherwise in a single request.
func fillRows(ctx context.Context, api Api, s timedoctor.Session, rows *report.Rows, ids []string, r daterange.Range, opts Options, perUser bool) error {
	if len(ids) == 0 {
		return nil
	}
	logger := logger.GetFromContext(ctx)

	logger.InfoContext(ctx, "get all users worklogs", "users", len(ids))
	worklogs, err := api.Worklogs(ctx, s, ids, r)
	if err != nil {
		return err
	}
	mergeWorklogs(ctx, rows, ids, worklogs, r)

	logger.InfoContext(ctx, "get tracking time score for users", "users", len(ids))
	scores, err := api.ScoreRatio(ctx, s, ids, r)
	if err != nil {
		return err
	}
	mergeScores(ctx, rows, scores)

	if !perUser {
		logger.InfoContext(ctx, "get all categories for users", "users", len(ids))
		categories, err := api.CategoryTotals(ctx, s, ids, r, opts.CategoryLimit)
		if err != nil {
			return err
		}
		mergeCategories(ctx, rows, categories, opts.Classify)
		return nil
	}

	perUserCategories, err := categoriesPerUser(ctx, api, s, ids, r, opts.CategoryLimit, opts.Concurrency)
	if err != nil {
		return fmt.Errorf("category totals: %w", err)
	}
	for _, categories := range perUserCategories {
		mergeCategories(ctx, rows, categories, opts.Classify)
	}

	return nil
}
