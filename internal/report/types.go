package report

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BalanceBalls/timedoctor-reports/internal/daterange"
)

type Kind string

const (
	KindUserStatus  Kind = "user-status"
	KindUserSummary Kind = "user-summary"
	KindWebAppUsage Kind = "web-app-usage"
)

// Channel is where a category was tracked.
type Channel string

const (
	ChannelApp Channel = "app"
	ChannelWeb Channel = "web"
)

// entityApp is the API's entity flag for desktop applications.
const entityApp = 2

func ChannelFromEntity(entity int) Channel {
	if entity == entityApp {
		return ChannelApp
	}
	return ChannelWeb
}

type User struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type CategoryEntry struct {
	Name    string
	Rating  Rating
	Total   int64
	Channel Channel
}

// Scores holds the per-user second counts of a score-ratio response.
type Scores struct {
	Total        int64
	Productive   int64
	Unproductive int64
	Neutral      int64
}

// Row is the per-user line of the status and summary reports.
type Row struct {
	UserId     string
	Name       string
	StartTime  *time.Time
	EndTime    *time.Time
	Scores     Scores
	Categories []CategoryEntry
}

type CategoryView struct {
	Name    string  `json:"name" yaml:"name"`
	Rating  Rating  `json:"rating" yaml:"rating"`
	Total   string  `json:"total" yaml:"total"`
	Channel Channel `json:"entity" yaml:"entity"`
}

type RowView struct {
	UserId                string         `json:"userId" yaml:"userId"`
	Name                  string         `json:"name" yaml:"name"`
	StartTime             *time.Time     `json:"startTime" yaml:"startTime"`
	EndTime               *time.Time     `json:"endTime" yaml:"endTime"`
	TotalTime             string         `json:"totalTime" yaml:"totalTime"`
	TotalProductiveTime   string         `json:"totalProductiveTime" yaml:"totalProductiveTime"`
	TotalUnproductiveTime string         `json:"totalUnproductiveTime" yaml:"totalUnproductiveTime"`
	TotalNeutralTime      string         `json:"totalNeutralTime" yaml:"totalNeutralTime"`
	Categories            []CategoryView `json:"categories" yaml:"categories"`
}

// View renders the row's second counts with format.
func (r Row) View(format DurationFormatter) RowView {
	view := RowView{
		UserId:                r.UserId,
		Name:                  r.Name,
		StartTime:             r.StartTime,
		EndTime:               r.EndTime,
		TotalTime:             format(r.Scores.Total),
		TotalProductiveTime:   format(r.Scores.Productive),
		TotalUnproductiveTime: format(r.Scores.Unproductive),
		TotalNeutralTime:      format(r.Scores.Neutral),
		Categories:            make([]CategoryView, 0, len(r.Categories)),
	}

	for _, c := range r.Categories {
		view.Categories = append(view.Categories, CategoryView{
			Name:    c.Name,
			Rating:  c.Rating,
			Total:   format(c.Total),
			Channel: c.Channel,
		})
	}

	return view
}

// UsageRow is one category line of the web and app usage report.
type UsageRow struct {
	Employee         string          `json:"employee" yaml:"employee"`
	ActivityTracked  Channel         `json:"activityTracked" yaml:"activityTracked"`
	Name             string          `json:"name" yaml:"name"`
	Rating           Rating          `json:"rating" yaml:"rating"`
	TimeWorked       string          `json:"timeWorked" yaml:"timeWorked"`
	TotalTimeDecimal decimal.Decimal `json:"totalTimeDecimal" yaml:"totalTimeDecimal"`
	TotalTimeMinutes int64           `json:"totalTimeMinutes" yaml:"totalTimeMinutes"`
}

var secondsPerHour = decimal.NewFromInt(3600)

func NewUsageRow(employee string, c CategoryEntry, format DurationFormatter) UsageRow {
	return UsageRow{
		Employee:         employee,
		ActivityTracked:  c.Channel,
		Name:             c.Name,
		Rating:           c.Rating,
		TimeWorked:       format(c.Total),
		TotalTimeDecimal: decimal.NewFromInt(c.Total).DivRound(secondsPerHour, 4),
		TotalTimeMinutes: c.Total / 60,
	}
}

// Report is the merged result handed to generators and the archive.
type Report struct {
	Kind        Kind
	Range       daterange.Range
	GeneratedAt time.Time
	Users       []RowView
	Usage       []UsageRow
}

// reportView carries exactly one data key, chosen by kind, which is
// rendered as an empty list when the report has no lines.
type reportView struct {
	Kind        Kind            `json:"kind" yaml:"kind"`
	Range       daterange.Range `json:"range" yaml:"range"`
	GeneratedAt time.Time       `json:"generatedAt" yaml:"generatedAt"`
	Users       *[]RowView      `json:"users,omitempty" yaml:"users,omitempty"`
	Usage       *[]UsageRow     `json:"usage,omitempty" yaml:"usage,omitempty"`
}

func (r Report) view() reportView {
	v := reportView{Kind: r.Kind, Range: r.Range, GeneratedAt: r.GeneratedAt}

	if r.Kind == KindWebAppUsage {
		usage := r.Usage
		if usage == nil {
			usage = []UsageRow{}
		}
		v.Usage = &usage
		return v
	}

	users := r.Users
	if users == nil {
		users = []RowView{}
	}
	v.Users = &users
	return v
}

func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

func (r Report) MarshalYAML() (interface{}, error) {
	return r.view(), nil
}

// Len is the number of report lines regardless of kind.
func (r Report) Len() int {
	if r.Kind == KindWebAppUsage {
		return len(r.Usage)
	}
	return len(r.Users)
}
