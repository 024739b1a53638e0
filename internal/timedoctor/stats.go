package timedoctor

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
)

// Category totals under this many seconds are not returned.
const minCategorySeconds = 60

func rangeParams(s Session, userIds []string, r daterange.Range) url.Values {
	params := url.Values{}
	params.Set("company", s.CompanyId)
	params.Set("user", strings.Join(userIds, ","))
	params.Set("from", r.FromParam())
	params.Set("to", r.ToParam())
	return params
}

// Worklogs returns one time-ordered interval list per requested user.
func (c *Client) Worklogs(ctx context.Context, s Session, userIds []string, r daterange.Range) ([][]Worklog, error) {
	params := rangeParams(s, userIds, r)
	params.Set("task-project-names", "true")

	res, err := get[[][]Worklog](ctx, c, s, "/activity/worklog", params)
	if err != nil {
		return nil, fmt.Errorf("worklog request failed: %w", err)
	}
	return res.Data, nil
}

// ScoreRatio returns productive, unproductive and neutral totals grouped by user.
func (c *Client) ScoreRatio(ctx context.Context, s Session, userIds []string, r daterange.Range) ([]UserScores, error) {
	params := rangeParams(s, userIds, r)
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("realtime", "0")
	params.Set("sort", "_total")
	params.Set("group-by", "user")

	res, err := get[scoreRatioData](ctx, c, s, "/stats/score-ratio", params)
	if err != nil {
		return nil, fmt.Errorf("score ratio request failed: %w", err)
	}
	return res.Data.Users, nil
}

// CategoryTotals returns up to limit categories, largest first, skipping any
// with less than a minute tracked.
func (c *Client) CategoryTotals(ctx context.Context, s Session, userIds []string, r daterange.Range, limit int) ([]Category, error) {
	params := rangeParams(s, userIds, r)
	params.Set("fields", "entity,name,score,userId")
	params.Set("filter[total]", strconv.Itoa(minCategorySeconds)+"_")
	params.Set("sort", "_total")
	params.Set("limit", strconv.Itoa(limit))

	res, err := get[categoryData](ctx, c, s, "/stats/category-total", params)
	if err != nil {
		return nil, fmt.Errorf("category total request failed: %w", err)
	}
	return res.Data.Category, nil
}
