package timedoctor

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

// firstPage is the page token of the first users request.
const firstPage = "0"

// UserQuery selects users either by id or by group. An empty query selects
// every report-visible user of the company.
type UserQuery struct {
	UserIds []string
	TagId   string
}

type UsersPage struct {
	Users      []report.User
	TotalCount int
	// Next is empty on the last page.
	Next string
}

func (q UserQuery) params(s Session) url.Values {
	params := url.Values{}
	params.Set("company", s.CompanyId)
	params.Set("task-project-names", "true")
	params.Set("filter[0][show-on-reports]", "1")

	if q.TagId != "" {
		params.Set("tag", q.TagId)
		params.Set("detail", "info")
		params.Set("sort", "name")
		params.Set("filter[0][!role]", "guest")
		return params
	}

	if len(q.UserIds) > 0 {
		params.Set("user", strings.Join(q.UserIds, ","))
	}
	params.Set("detail", "tags")
	params.Set("self", "include")
	params.Set("silent-details", "1")
	return params
}

// UsersPage fetches one page of users. An empty page token requests the first
// page. Consecutive calls are spaced by the client's page delay.
func (c *Client) UsersPage(ctx context.Context, s Session, q UserQuery, page string) (UsersPage, error) {
	if page == "" {
		page = firstPage
	}

	if err := c.pageLimiter.Wait(ctx); err != nil {
		return UsersPage{}, fmt.Errorf("waiting for next users page: %w", err)
	}

	params := q.params(s)
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("page", page)

	res, err := get[[]apiUser](ctx, c, s, "/users", params)
	if err != nil {
		return UsersPage{}, fmt.Errorf("users request failed: %w", err)
	}

	result := UsersPage{Users: make([]report.User, 0, len(res.Data))}
	for _, u := range res.Data {
		result.Users = append(result.Users, report.User{Id: u.Id, Name: u.Name})
	}
	if res.Paging != nil {
		result.TotalCount = res.Paging.TotalCount
		result.Next = string(res.Paging.Next)
	}

	return result, nil
}

// Users walks every page of q and returns the users in the order received.
// A user appearing on more than one page is kept once.
func (c *Client) Users(ctx context.Context, s Session, q UserQuery) ([]report.User, error) {
	logger := logger.GetFromContext(ctx)

	var users []report.User
	seen := make(map[string]struct{})
	page := firstPage

	for {
		res, err := c.UsersPage(ctx, s, q, page)
		if err != nil {
			return nil, err
		}

		for _, u := range res.Users {
			if _, dup := seen[u.Id]; dup {
				continue
			}
			seen[u.Id] = struct{}{}
			users = append(users, u)
		}

		logger.DebugContext(ctx, "users page fetched", "page", page, "received", len(res.Users), "total", res.TotalCount)

		if res.Next == "" {
			return users, nil
		}
		if res.Next == page {
			return nil, fmt.Errorf("users pagination did not advance past page %q", page)
		}
		page = res.Next
	}
}

// Tags returns every group of the company.
func (c *Client) Tags(ctx context.Context, s Session) ([]Tag, error) {
	params := url.Values{}
	params.Set("company", s.CompanyId)

	res, err := get[[]Tag](ctx, c, s, "/tags", params)
	if err != nil {
		return nil, fmt.Errorf("tags request failed: %w", err)
	}
	return res.Data, nil
}

// FindGroup returns the group whose name equals name exactly.
func (c *Client) FindGroup(ctx context.Context, s Session, name string) (Tag, error) {
	tags, err := c.Tags(ctx, s)
	if err != nil {
		return Tag{}, err
	}

	for _, tag := range tags {
		if tag.Name == name {
			return tag, nil
		}
	}

	return Tag{}, fmt.Errorf("%w: group %q doesn't exist", ErrGroupNotFound, name)
}
