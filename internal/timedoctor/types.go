package timedoctor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Session is the result of a successful login. Every other call needs it.
type Session struct {
	CompanyId string
	Timezone  string
	Token     string
}

type envelope[T any] struct {
	Data   T       `json:"data"`
	Paging *paging `json:"paging"`
}

type paging struct {
	TotalCount int       `json:"totalCount"`
	Next       PageToken `json:"next"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// PageToken is the opaque next-page pointer. The API sends it as a string, a
// number or null; null and "" both mean there are no more pages.
type PageToken string

func (p *PageToken) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = PageToken(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unexpected page token %s", data)
	}
	*p = PageToken(n.String())
	return nil
}

// Seconds decodes a JSON number of seconds, integer or not, rounding down.
type Seconds int64

func (s *Seconds) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("could not parse seconds %s: %w", data, err)
	}
	*s = Seconds(math.Floor(f))
	return nil
}

type loginRequest struct {
	DeviceId string `json:"deviceId"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TotpCode string `json:"totpCode,omitempty"`
}

type loginResponse struct {
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	Companies []company `json:"companies"`
}

type company struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	CompanyTimezone string `json:"companyTimezone"`
	Timezone        string `json:"timezone"`
}

func (c company) zone() string {
	if c.CompanyTimezone != "" {
		return c.CompanyTimezone
	}
	return c.Timezone
}

type apiUser struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// Worklog is one tracked interval.
type Worklog struct {
	UserId string    `json:"userId"`
	Start  time.Time `json:"start"`
	Time   Seconds   `json:"time"`
}

func (w Worklog) End() time.Time {
	return w.Start.Add(time.Duration(w.Time) * time.Second)
}

// UserScores are the score-ratio second counts of one user. Score keys are the
// API's productivity scores: 4 productive, 3 neutral, 2 unproductive.
type UserScores struct {
	UserId       string
	Total        Seconds
	Productive   Seconds
	Unproductive Seconds
	Neutral      Seconds
}

func (u *UserScores) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["userId"]; ok {
		if err := json.Unmarshal(v, &u.UserId); err != nil {
			return fmt.Errorf("could not parse score ratio user id: %w", err)
		}
	}

	fields := map[string]*Seconds{
		"total":                         &u.Total,
		strconv.Itoa(scoreProductive):   &u.Productive,
		strconv.Itoa(scoreUnproductive): &u.Unproductive,
		strconv.Itoa(scoreNeutral):      &u.Neutral,
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("could not parse score ratio %q: %w", key, err)
		}
	}

	return nil
}

const (
	scoreUnproductive = 2
	scoreNeutral      = 3
	scoreProductive   = 4
)

type scoreRatioData struct {
	Users []UserScores `json:"users"`
}

// Category is one category-total entry.
type Category struct {
	Entity int      `json:"entity"`
	Name   string   `json:"name"`
	Score  float64  `json:"score"`
	Total  Seconds  `json:"total"`
	UserId OwnerIds `json:"userId"`
}

// Owner is the user the entry belongs to. The API wraps it in a list.
func (c Category) Owner() string {
	if len(c.UserId) == 0 {
		return ""
	}
	return c.UserId[0]
}

// OwnerIds accepts both a single id and a list of ids.
type OwnerIds []string

func (o *OwnerIds) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("unexpected category owner %s", data)
	}
	if single == "" {
		*o = nil
		return nil
	}
	*o = OwnerIds{single}
	return nil
}

type categoryData struct {
	Category []Category `json:"category"`
}
