package builder

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
)

// mergeWorklogs sets each user's first start and last end time. A worklog
// group is matched by its userId, or by request order when the API omits it.
func mergeWorklogs(ctx context.Context, rows *report.Rows, ids []string, worklogs [][]timedoctor.Worklog, r daterange.Range) {
	logger := logger.GetFromContext(ctx)
	loc := r.From.Location()

	for i, logs := range worklogs {
		if len(logs) == 0 {
			continue
		}

		userId := logs[0].UserId
		if userId == "" && i < len(ids) {
			userId = ids[i]
		}

		first, last := logs[0], logs[len(logs)-1]
		if !rows.SetActivity(userId, first.Start.In(loc), last.End().In(loc)) {
			logger.DebugContext(ctx, "dropping worklogs of unknown user", "user_id", userId)
		}
	}
}

func mergeScores(ctx context.Context, rows *report.Rows, scores []timedoctor.UserScores) {
	logger := logger.GetFromContext(ctx)

	for _, s := range scores {
		ok := rows.SetScores(s.UserId, report.Scores{
			Total:        int64(s.Total),
			Productive:   int64(s.Productive),
			Unproductive: int64(s.Unproductive),
			Neutral:      int64(s.Neutral),
		})
		if !ok {
			logger.DebugContext(ctx, "dropping score ratio of unknown user", "user_id", s.UserId)
		}
	}
}

func categoryEntry(c timedoctor.Category, classify report.Classifier) report.CategoryEntry {
	return report.CategoryEntry{
		Name:    c.Name,
		Rating:  classify(c.Score),
		Total:   int64(c.Total),
		Channel: report.ChannelFromEntity(c.Entity),
	}
}

func mergeCategories(ctx context.Context, rows *report.Rows, categories []timedoctor.Category, classify report.Classifier) {
	logger := logger.GetFromContext(ctx)

	for _, c := range categories {
		if len(c.UserId) > 1 {
			logger.DebugContext(ctx, "category has more than one owner, using the first", "category", c.Name, "owners", c.UserId)
		}
		if !rows.AddCategory(c.Owner(), categoryEntry(c, classify)) {
			logger.DebugContext(ctx, "dropping category of unknown user", "category", c.Name, "user_id", c.Owner())
		}
	}
}

// categoriesPerUser issues one category-total request per user, at most
// limit at a time. Results are indexed like ids. The first failure cancels
// the remaining requests.
func categoriesPerUser(ctx context.Context, api Api, s timedoctor.Session, ids []string, r daterange.Range, categoryLimit int, limit int) ([][]timedoctor.Category, error) {
	results := make([][]timedoctor.Category, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, id := range ids {
		g.Go(func() error {
			userCtx := logger.With(gctx, "user_id", id)
			logger.GetFromContext(userCtx).InfoContext(userCtx, "get all categories for user")

			categories, err := api.CategoryTotals(userCtx, s, []string{id}, r, categoryLimit)
			if err != nil {
				return err
			}
			results[i] = categories
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
