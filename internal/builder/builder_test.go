package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/BalanceBalls/timedoctor-reports/internal/config"
	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor/tdtest"
)

var fixedNow = time.Date(2024, time.March, 13, 18, 0, 0, 0, time.UTC)

func testOptions(keyword string) Options {
	return Options{
		Credentials:  config.Credentials{Email: "ops@example.com", Password: "secret"},
		RangeKeyword: keyword,
		Now:          func() time.Time { return fixedNow },
	}
}

func newClient(api *tdtest.Server) *timedoctor.Client {
	return timedoctor.NewClient(timedoctor.Options{BaseUrl: api.URL, PageLimit: api.PageSize})
}

// twoUserApi is two users with one worklog and one productive category each.
func twoUserApi() *tdtest.Server {
	api := tdtest.NewServer()
	api.Timezone = "America/New_York"
	api.Users = []tdtest.User{{Id: "u1", Name: "Alice"}, {Id: "u2", Name: "Bob"}}

	for i, id := range []string{"u1", "u2"} {
		start := time.Date(2024, 3, 13, 13+i, 0, 0, 0, time.UTC)
		api.Worklogs[id] = []tdtest.Worklog{{Start: start, Seconds: 3600}}
		api.Scores[id] = tdtest.Scores{Total: 3600, Unproductive: 600, Neutral: 1200, Productive: 1800}
		api.Categories[id] = []tdtest.Category{{Name: "Editor", Entity: 2, Score: 4, Total: 1800}}
	}
	return api
}

func TestStatusBuilderEndToEnd(t *testing.T) {
	api := twoUserApi()
	defer api.Close()

	rep, err := NewStatus(newClient(api), []string{"u1", "u2"}, testOptions("day")).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if rep.Kind != report.KindUserStatus {
		t.Errorf("Kind = %s", rep.Kind)
	}
	if len(rep.Users) != 2 {
		t.Fatalf("got %d rows, want 2", len(rep.Users))
	}

	for _, row := range rep.Users {
		if row.TotalProductiveTime != "30m" {
			t.Errorf("%s: productive = %q, want 30m", row.UserId, row.TotalProductiveTime)
		}
		if row.TotalTime != "1h" {
			t.Errorf("%s: total = %q, want 1h", row.UserId, row.TotalTime)
		}
		if len(row.Categories) != 1 || row.Categories[0].Rating != report.Productive {
			t.Errorf("%s: categories = %+v", row.UserId, row.Categories)
		}
		if row.Categories[0].Channel != report.ChannelApp {
			t.Errorf("%s: channel = %s", row.UserId, row.Categories[0].Channel)
		}
	}

	alice := rep.Users[0]
	if alice.Name != "Alice" || alice.StartTime == nil || alice.EndTime == nil {
		t.Fatalf("unexpected first row: %+v", alice)
	}
	if got := alice.StartTime.Format(time.RFC3339); got != "2024-03-13T09:00:00-04:00" {
		t.Errorf("start = %s, want company time zone", got)
	}
	if got := alice.EndTime.Format(time.RFC3339); got != "2024-03-13T10:00:00-04:00" {
		t.Errorf("end = %s", got)
	}

	// one category request per user
	if n := len(api.Requests("/api/1.0/stats/category-total")); n != 2 {
		t.Errorf("made %d category requests, want 2", n)
	}
}

func TestBuildersUseOneRange(t *testing.T) {
	api := twoUserApi()
	defer api.Close()

	calls := 0
	opts := testOptions("day")
	opts.Now = func() time.Time {
		// every call lands a day later; only the first may be used for the range
		calls++
		return fixedNow.Add(time.Duration(calls-1) * 24 * time.Hour)
	}

	rep, err := NewStatus(newClient(api), []string{"u1", "u2"}, opts).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := daterange.Of(daterange.Day, fixedNow.In(rep.Range.From.Location()))
	for _, path := range []string{"/api/1.0/activity/worklog", "/api/1.0/stats/score-ratio", "/api/1.0/stats/category-total"} {
		for _, q := range api.Requests(path) {
			if q.Get("from") != want.FromParam() || q.Get("to") != want.ToParam() {
				t.Errorf("%s used range %s - %s, want %s", path, q.Get("from"), q.Get("to"), want)
			}
		}
	}
}

func TestStatusBuilderDropsUnknownOwners(t *testing.T) {
	api := twoUserApi()
	defer api.Close()
	api.Categories["u1"] = append(api.Categories["u1"], tdtest.Category{Name: "Stray", Entity: 1, Score: 3, Total: 600, Owners: []string{"ghost"}})

	rep, err := NewStatus(newClient(api), []string{"u1", "u2"}, testOptions("day")).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Users) != 2 {
		t.Fatalf("row count changed: %d", len(rep.Users))
	}
	for _, row := range rep.Users {
		for _, c := range row.Categories {
			if c.Name == "Stray" {
				t.Errorf("category of unknown user merged into %s", row.UserId)
			}
		}
	}
}

func TestStatusBuilderFailsFast(t *testing.T) {
	api := twoUserApi()
	defer api.Close()
	api.Fail["/api/1.0/stats/score-ratio"] = http.StatusInternalServerError

	_, err := NewStatus(newClient(api), []string{"u1"}, testOptions("day")).Build(context.Background())
	if !errors.Is(err, timedoctor.ErrUpstreamRequestFailed) {
		t.Fatalf("got %v, want ErrUpstreamRequestFailed", err)
	}
	if n := len(api.Requests("/api/1.0/stats/category-total")); n != 0 {
		t.Errorf("kept fetching after a failure: %d category requests", n)
	}
}

func TestStatusBuilderInvalidRange(t *testing.T) {
	api := twoUserApi()
	defer api.Close()

	_, err := NewStatus(newClient(api), []string{"u1"}, testOptions("fortnight")).Build(context.Background())
	if !errors.Is(err, daterange.ErrInvalidDateRange) {
		t.Fatalf("got %v, want ErrInvalidDateRange", err)
	}
	if n := len(api.Requests("/api/1.0/users")); n != 0 {
		t.Errorf("fetched users despite a bad range")
	}
}

func TestStatusBuilderLoginFailure(t *testing.T) {
	api := twoUserApi()
	defer api.Close()

	opts := testOptions("day")
	opts.Credentials.Password = "wrong"
	_, err := NewStatus(newClient(api), []string{"u1"}, opts).Build(context.Background())
	if !errors.Is(err, timedoctor.ErrAuthenticationFailed) {
		t.Fatalf("got %v, want ErrAuthenticationFailed", err)
	}
	if n := len(api.Requests("/api/1.0/users")); n != 0 {
		t.Errorf("pipeline continued after failed login")
	}
}

func TestSummaryBuilderPages(t *testing.T) {
	api := tdtest.NewServer()
	defer api.Close()
	api.PageSize = 2
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("u%d", i)
		api.Users = append(api.Users, tdtest.User{Id: id, Name: "User " + id})
		api.Scores[id] = tdtest.Scores{Total: int64(600 * (i + 1))}
		api.Categories[id] = []tdtest.Category{{Name: "Chat", Entity: 1, Score: 2, Total: 120}}
	}

	rep, err := NewSummary(newClient(api), nil, testOptions("today")).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(rep.Users) != 5 {
		t.Fatalf("got %d rows, want 5", len(rep.Users))
	}
	for i, row := range rep.Users {
		if want := report.Humanize(int64(600 * (i + 1))); row.TotalTime != want {
			t.Errorf("%s: total = %q, want %q", row.UserId, row.TotalTime, want)
		}
		if len(row.Categories) != 1 || row.Categories[0].Rating != report.Unproductive {
			t.Errorf("%s: categories = %+v", row.UserId, row.Categories)
		}
	}

	// each page gets its own metric requests with that page's users
	if n := len(api.Requests("/api/1.0/users")); n != 3 {
		t.Errorf("made %d users requests, want 3", n)
	}
	categoryReqs := api.Requests("/api/1.0/stats/category-total")
	if len(categoryReqs) != 3 {
		t.Fatalf("made %d category requests, want 3", len(categoryReqs))
	}
	if got := categoryReqs[0].Get("user"); got != "u0,u1" {
		t.Errorf("first page category users = %q", got)
	}
	if got := categoryReqs[0].Get("limit"); got != "5000" {
		t.Errorf("category limit = %q", got)
	}
}

func TestUsageBuilder(t *testing.T) {
	api := tdtest.NewServer()
	defer api.Close()
	api.Tags = []tdtest.Tag{{Id: "t1", Name: "Support"}}
	api.Users = []tdtest.User{
		{Id: "u1", Name: "Alice", Tags: []string{"t1"}},
		{Id: "u2", Name: "Bob", Tags: []string{"t1"}},
		{Id: "u3", Name: "Carol"},
	}
	api.Categories["u1"] = []tdtest.Category{
		{Name: "slack.com", Entity: 1, Score: 2.5, Total: 5430},
		{Name: "Terminal", Entity: 2, Score: 3.5, Total: 60},
	}
	api.Categories["u2"] = []tdtest.Category{{Name: "news.site", Entity: 1, Score: 1, Total: 600}}
	api.Categories["u3"] = []tdtest.Category{{Name: "never", Entity: 1, Score: 4, Total: 600}}

	rep, err := NewUsage(newClient(api), "Support", testOptions("day")).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if rep.Kind != report.KindWebAppUsage || len(rep.Users) != 0 {
		t.Errorf("unexpected report shape: %+v", rep)
	}
	if len(rep.Usage) != 3 {
		t.Fatalf("got %d usage rows, want 3: %+v", len(rep.Usage), rep.Usage)
	}

	first := rep.Usage[0]
	if first.Employee != "Alice" || first.Name != "slack.com" || first.Rating != report.Neutral ||
		first.ActivityTracked != report.ChannelWeb || first.TimeWorked != "1h 30m" || first.TotalTimeMinutes != 90 {
		t.Errorf("unexpected first row: %+v", first)
	}
	if second := rep.Usage[1]; second.Rating != report.Productive || second.ActivityTracked != report.ChannelApp {
		t.Errorf("unexpected second row: %+v", second)
	}
	if third := rep.Usage[2]; third.Employee != "Bob" || third.Rating != report.Unproductive {
		t.Errorf("unexpected third row: %+v", third)
	}

	if q := api.Requests("/api/1.0/users")[0]; q.Get("tag") != "t1" {
		t.Errorf("users not filtered by group: %v", q)
	}
}

func TestUsageBuilderGroupNotFound(t *testing.T) {
	api := tdtest.NewServer()
	defer api.Close()
	api.Tags = []tdtest.Tag{{Id: "t1", Name: "Support"}}

	_, err := NewUsage(newClient(api), "Sales", testOptions("day")).Build(context.Background())
	if !errors.Is(err, timedoctor.ErrGroupNotFound) {
		t.Fatalf("got %v, want ErrGroupNotFound", err)
	}
}

func TestMergeWorklogsByRequestOrder(t *testing.T) {
	rows := report.NewRows(report.User{Id: "a", Name: "Alice"}, report.User{Id: "b", Name: "Bob"})
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	r := daterange.Of(daterange.Day, fixedNow.In(loc))

	start := time.Date(2024, 3, 13, 13, 0, 0, 0, time.UTC)
	worklogs := [][]timedoctor.Worklog{
		{},
		{{Start: start, Time: 60}, {Start: start.Add(time.Hour), Time: 120}},
	}
	mergeWorklogs(context.Background(), rows, []string{"a", "b"}, worklogs, r)

	list := rows.List()
	if list[0].StartTime != nil || list[0].EndTime != nil {
		t.Errorf("user without worklogs got activity: %+v", list[0])
	}

	bob := list[1]
	if bob.StartTime == nil || bob.EndTime == nil {
		t.Fatalf("worklogs without userId were not matched by position: %+v", bob)
	}
	if got := bob.StartTime.Format(time.RFC3339); got != "2024-03-13T09:00:00-04:00" {
		t.Errorf("start = %s", got)
	}
	if got := bob.EndTime.Format(time.RFC3339); got != "2024-03-13T10:02:00-04:00" {
		t.Errorf("end = %s", got)
	}
}

func TestMergeWorklogsPrefersUserId(t *testing.T) {
	rows := report.NewRows(report.User{Id: "a"}, report.User{Id: "b"})
	r := daterange.Of(daterange.Day, fixedNow)

	start := time.Date(2024, 3, 13, 13, 0, 0, 0, time.UTC)
	worklogs := [][]timedoctor.Worklog{{{UserId: "b", Start: start, Time: 60}}}
	mergeWorklogs(context.Background(), rows, []string{"a", "b"}, worklogs, r)

	list := rows.List()
	if list[0].StartTime != nil {
		t.Errorf("worklogs of b were merged into a")
	}
	if list[1].StartTime == nil || !list[1].StartTime.Equal(start) {
		t.Errorf("b start = %v, want %s", list[1].StartTime, start)
	}
}
