package builder

import (
	"context"
	"fmt"

	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
)

const summaryCategoryLimit = 5000

// SummaryBuilder is the paged variant of the status report. It walks the user
// list one page at a time and fetches every metric for that page before
// requesting the next one.
type SummaryBuilder struct {
	api     Api
	userIds []string
	opts    Options
}

// NewSummary reports on userIds, or on every report-visible user when empty.
func NewSummary(api Api, userIds []string, opts Options) *SummaryBuilder {
	return &SummaryBuilder{
		api:     api,
		userIds: userIds,
		opts:    opts.withDefaults(report.ExactPolicy, summaryCategoryLimit),
	}
}

func (sb *SummaryBuilder) Build(ctx context.Context) (report.Report, error) {
	logger := logger.GetFromContext(ctx)

	session, r, err := start(ctx, sb.api, sb.opts)
	if err != nil {
		return report.Report{}, err
	}

	query := timedoctor.UserQuery{UserIds: sb.userIds}
	rows := report.NewRows()
	page := ""

	for {
		logger.InfoContext(ctx, "get users info", "page", page)
		res, err := sb.api.UsersPage(ctx, session, query, page)
		if err != nil {
			return report.Report{}, err
		}

		var pageIds []string
		for _, u := range res.Users {
			if rows.Add(u) {
				pageIds = append(pageIds, u.Id)
			}
		}

		if err := fillRows(ctx, sb.api, session, rows, pageIds, r, sb.opts, false); err != nil {
			return report.Report{}, err
		}

		if res.Next == "" {
			break
		}
		if res.Next == page {
			return report.Report{}, fmt.Errorf("users pagination did not advance past page %q", page)
		}

		logger.InfoContext(ctx, fmt.Sprintf("processed %d of %d", rows.Len(), res.TotalCount))
		page = res.Next
	}

	return report.Report{
		Kind:        report.KindUserSummary,
		Range:       r,
		GeneratedAt: sb.opts.Now(),
		Users:       rows.Views(sb.opts.Format),
	}, nil
}
