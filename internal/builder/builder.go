// Package builder runs the report pipeline: login, resolve the target users,
// resolve the date range once, fetch the metrics and merge them by user id.
package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/BalanceBalls/timedoctor-reports/internal/config"
	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
)

type Builder interface {
	Build(ctx context.Context) (report.Report, error)
}

// Api is the part of the Time Doctor client the builders use.
type Api interface {
	Login(ctx context.Context, creds config.Credentials) (timedoctor.Session, error)
	Users(ctx context.Context, s timedoctor.Session, q timedoctor.UserQuery) ([]report.User, error)
	UsersPage(ctx context.Context, s timedoctor.Session, q timedoctor.UserQuery, page string) (timedoctor.UsersPage, error)
	FindGroup(ctx context.Context, s timedoctor.Session, name string) (timedoctor.Tag, error)
	Worklogs(ctx context.Context, s timedoctor.Session, userIds []string, r daterange.Range) ([][]timedoctor.Worklog, error)
	ScoreRatio(ctx context.Context, s timedoctor.Session, userIds []string, r daterange.Range) ([]timedoctor.UserScores, error)
	CategoryTotals(ctx context.Context, s timedoctor.Session, userIds []string, r daterange.Range, limit int) ([]timedoctor.Category, error)
}

type Options struct {
	Credentials config.Credentials
	// RangeKeyword names the calendar unit to report on, e.g. "day".
	RangeKeyword string
	// Classify and Format override the report's default policies.
	Classify report.Classifier
	Format   report.DurationFormatter
	// CategoryLimit caps each category-total request.
	CategoryLimit int
	// Concurrency bounds parallel per-user category requests.
	Concurrency int
	Now         func() time.Time
}

func (o Options) withDefaults(classify report.Classifier, categoryLimit int) Options {
	if o.Classify == nil {
		o.Classify = classify
	}
	if o.Format == nil {
		o.Format = report.Humanize
	}
	if o.CategoryLimit <= 0 {
		o.CategoryLimit = categoryLimit
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// start logs in and resolves the run's date range in the company time zone.
// The range is computed once and passed to every fetch.
func start(ctx context.Context, api Api, opts Options) (timedoctor.Session, daterange.Range, error) {
	session, err := api.Login(ctx, opts.Credentials)
	if err != nil {
		return timedoctor.Session{}, daterange.Range{}, err
	}

	r, err := daterange.Resolve(opts.RangeKeyword, session.Timezone, opts.Now())
	if err != nil {
		return timedoctor.Session{}, daterange.Range{}, fmt.Errorf("could not resolve range %q: %w", opts.RangeKeyword, err)
	}

	logger.GetFromContext(ctx).InfoContext(ctx, "date range resolved",
		"range", opts.RangeKeyword, "from", r.FromParam(), "to", r.ToParam())

	return session, r, nil
}
