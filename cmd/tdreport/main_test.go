package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BalanceBalls/timedoctor-reports/internal/config"
	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor"
	"github.com/BalanceBalls/timedoctor-reports/internal/timedoctor/tdtest"
)

const loginPath = "/api/1.0/authorization/login"

// setupApi starts a fake API with two users and points the environment at it.
func setupApi(t *testing.T) *tdtest.Server {
	t.Helper()

	api := tdtest.NewServer()
	t.Cleanup(api.Close)

	api.Tags = []tdtest.Tag{{Id: "t1", Name: "Support"}}
	api.Users = []tdtest.User{
		{Id: "u1", Name: "Alice", Tags: []string{"t1"}},
		{Id: "u2", Name: "Bob", Tags: []string{"t1"}},
	}
	for i, id := range []string{"u1", "u2"} {
		api.Worklogs[id] = []tdtest.Worklog{{Start: time.Date(2024, 3, 13, 9+i, 0, 0, 0, time.UTC), Seconds: 3600}}
		api.Scores[id] = tdtest.Scores{Total: 3600, Unproductive: 600, Neutral: 1200, Productive: 1800}
		api.Categories[id] = []tdtest.Category{{Name: "slack.com", Entity: 1, Score: 4, Total: 1800}}
	}

	for k, v := range map[string]string{
		"EMAIL":            "ops@example.com",
		"USERNAME":         "",
		"PASSWORD":         "secret",
		"TWOFACODE":        "",
		"API_BASE_URL":     api.URL,
		"PAGE_DELAY":       "0s",
		"LOG_LEVEL":        "error",
		"LOG_FILE":         "",
		"ARCHIVE_DSN":      "",
		"BOT_TOKEN":        "",
		"TELEGRAM_CHAT_ID": "",
	} {
		t.Setenv(k, v)
	}

	return api
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	a := newApp(&stderr)
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestUserStatusCommand(t *testing.T) {
	api := setupApi(t)

	out, err := execute(t, "user-status", "-u", "u1,u2")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var rep struct {
		Kind  string `json:"kind"`
		Users []struct {
			Name                string `json:"name"`
			TotalTime           string `json:"totalTime"`
			TotalProductiveTime string `json:"totalProductiveTime"`
			Categories          []struct {
				Rating string `json:"rating"`
			} `json:"categories"`
		} `json:"users"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("stdout is not a json report: %v\n%s", err, out)
	}

	if rep.Kind != "user-status" || len(rep.Users) != 2 {
		t.Fatalf("unexpected report: %s", out)
	}
	for _, u := range rep.Users {
		if u.TotalTime != "1h" || u.TotalProductiveTime != "30m" {
			t.Errorf("%s: total %q productive %q", u.Name, u.TotalTime, u.TotalProductiveTime)
		}
		if len(u.Categories) != 1 || u.Categories[0].Rating != "Productive" {
			t.Errorf("%s: categories %+v", u.Name, u.Categories)
		}
	}

	if q := api.Requests("/api/1.0/users")[0]; q.Get("user") != "u1,u2" {
		t.Errorf("users requested with %v", q)
	}
}

func TestDateRangeFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		days int
	}{
		{name: "default", args: []string{"user-status", "-u", "u1"}, days: 1},
		{name: "short", args: []string{"user-status", "-u", "u1", "-t", "week"}, days: 7},
		{name: "alias", args: []string{"user-status", "-u", "u1", "--date-range", "this-week"}, days: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := setupApi(t)

			if _, err := execute(t, tt.args...); err != nil {
				t.Fatalf("command failed: %v", err)
			}

			q := api.Requests("/api/1.0/activity/worklog")[0]
			from, err := time.Parse(daterange.Layout, q.Get("from"))
			if err != nil {
				t.Fatal(err)
			}
			to, err := time.Parse(daterange.Layout, q.Get("to"))
			if err != nil {
				t.Fatal(err)
			}

			if got := to.Add(time.Millisecond).Sub(from); got != time.Duration(tt.days)*24*time.Hour {
				t.Errorf("range spans %s, want %d days", got, tt.days)
			}
		})
	}
}

func TestAbortsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr error
	}{
		{name: "missing user flag", args: []string{"user-status"}},
		{name: "missing group flag", args: []string{"web-app-usage"}},
		{
			name:    "missing password",
			args:    []string{"user-status", "-u", "u1"},
			env:     map[string]string{"PASSWORD": ""},
			wantErr: config.ErrMissingCredentials,
		},
		{
			name:    "telegram without bot config",
			args:    []string{"user-status", "-u", "u1", "--telegram"},
			wantErr: errTelegramNotConfigured,
		},
		{name: "unsupported format", args: []string{"user-status", "-u", "u1", "--format", "pdf"}},
		{
			name:    "unknown range unit",
			args:    []string{"user-status", "-u", "u1", "-t", "fortnight"},
			wantErr: daterange.ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := setupApi(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if n := len(api.Requests(loginPath)); n != 0 {
				t.Errorf("made %d login requests", n)
			}
		})
	}
}

func TestUpstreamFailureFailsRun(t *testing.T) {
	api := setupApi(t)
	api.Fail["/api/1.0/stats/category-total"] = 500

	out, err := execute(t, "user-status", "-u", "u1")
	if !errors.Is(err, timedoctor.ErrUpstreamRequestFailed) {
		t.Fatalf("got %v, want ErrUpstreamRequestFailed", err)
	}
	if out != "" {
		t.Errorf("wrote a partial report: %s", out)
	}
}

func TestWebAppUsageText(t *testing.T) {
	setupApi(t)

	out, err := execute(t, "web-app-usage", "-g", "Support", "--format", "text")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	for _, want := range []string{"EMPLOYEE", "Alice", "Bob", "slack.com", "Productive", "30m"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}

func TestWebAppUsageUnknownGroup(t *testing.T) {
	setupApi(t)

	_, err := execute(t, "web-app-usage", "-g", "support")
	if !errors.Is(err, timedoctor.ErrGroupNotFound) {
		t.Fatalf("got %v, want ErrGroupNotFound", err)
	}
}

func TestUserSummaryAllUsers(t *testing.T) {
	api := setupApi(t)
	api.PageSize = 1
	t.Setenv("PAGE_LIMIT", "1")

	out, err := execute(t, "user-summary", "--format", "yaml")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "kind: user-summary") || !strings.Contains(out, "Alice") || !strings.Contains(out, "Bob") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if n := len(api.Requests("/api/1.0/users")); n != 2 {
		t.Errorf("made %d users requests, want 2", n)
	}
}

func TestArchiveAndHistory(t *testing.T) {
	setupApi(t)
	t.Setenv("ARCHIVE_DSN", filepath.Join(t.TempDir(), "archive.sqlite"))

	if _, err := execute(t, "user-status", "-u", "u1"); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	out, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "user-status") {
		t.Fatalf("unexpected history:\n%s", out)
	}

	id := strings.Fields(lines[1])[0]
	out, err = execute(t, "history", "show", id)
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	if !strings.Contains(out, `"name": "Alice"`) {
		t.Errorf("archived report misses the user row:\n%s", out)
	}

	if _, err := execute(t, "history", "show", "not-a-uuid"); err == nil {
		t.Error("expected an error for a malformed id")
	}
}

func TestHistoryWithoutArchive(t *testing.T) {
	setupApi(t)

	_, err := execute(t, "history")
	if !errors.Is(err, errArchiveNotConfigured) {
		t.Fatalf("got %v, want errArchiveNotConfigured", err)
	}
}

func TestWebAppUsageWithoutActivity(t *testing.T) {
	api := setupApi(t)
	api.Categories = map[string][]tdtest.Category{}

	out, err := execute(t, "web-app-usage", "-g", "Support")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, `"usage": []`) {
		t.Errorf("empty usage list missing from output:\n%s", out)
	}
}
