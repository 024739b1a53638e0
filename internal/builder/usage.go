package builder

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
)

const usageCategoryLimit = 400

// UsageBuilder lists the apps and websites used by the members of a group.
type UsageBuilder struct {
	api       Api
	groupName string
	opts      Options
}

func NewUsage(api Api, groupName string, opts Options) *UsageBuilder {
	return &UsageBuilder{
		api:       api,
		groupName: groupName,
		opts:      opts.withDefaults(report.ThresholdPolicy, usageCategoryLimit),
	}
}

func (ub *UsageBuilder) Build(ctx context.Context) (report.Report, error) {
	logger := logger.GetFromContext(ctx)

	session, r, err := start(ctx, ub.api, ub.opts)
	if err != nil {
		return report.Report{}, err
	}

	logger.InfoContext(ctx, "get all groups", "group", ub.groupName)
	group, err := ub.api.FindGroup(ctx, session, ub.groupName)
	if err != nil {
		return report.Report{}, err
	}

	logger.InfoContext(ctx, "get all users for group", "group_id", group.Id)
	users, err := ub.api.Users(ctx, session, timedoctor.UserQuery{TagId: group.Id})
	if err != nil {
		return report.Report{}, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.Id)
	}

	perUser, err := categoriesPerUser(ctx, ub.api, session, ids, r, ub.opts.CategoryLimit, ub.opts.Concurrency)
	if err != nil {
		return report.Report{}, err
	}

	usage := []report.UsageRow{}
	for _, categories := range perUser {
		for _, c := range categories {
			idx := slices.IndexFunc(users, func(u report.User) bool { return u.Id == c.Owner() })
			if idx < 0 {
				logger.DebugContext(ctx, "dropping category of user outside the group", "category", c.Name, "user_id", c.Owner())
				continue
			}

			entry := categoryEntry(c, ub.opts.Classify)
			usage = append(usage, report.NewUsageRow(users[idx].Name, entry, ub.opts.Format))
		}
	}

	return report.Report{
		Kind:        report.KindWebAppUsage,
		Range:       r,
		GeneratedAt: ub.opts.Now(),
		Usage:       usage,
	}, nil
}
