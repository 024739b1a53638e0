// Package tdtest provides an in-memory Time Doctor API for tests.
package tdtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const Token = "test-token"

type User struct {
	Id   string
	Name string
	Tags []string
}

type Worklog struct {
	Start   time.Time
	Seconds int64
}

type Scores struct {
	Total, Productive, Unproductive, Neutral int64
}

type Category struct {
	Name   string
	Entity int
	Score  float64
	Total  int64
	// Owners defaults to the user the category is registered under.
	Owners []string
}

type Tag struct {
	Id   string
	Name string
}

// Server is a fake API. Configure the exported fields before the first request.
type Server struct {
	*httptest.Server

	CompanyId string
	Timezone  string
	// TimezoneField is the login field carrying the zone, "companyTimezone" by default.
	TimezoneField string
	TotpNeeded    bool
	PageSize      int

	Users      []User
	Tags       []Tag
	Worklogs   map[string][]Worklog
	Scores     map[string]Scores
	Categories map[string][]Category

	// Fail maps an endpoint path such as "/api/1.0/stats/score-ratio" to a
	// status code returned instead of data.
	Fail map[string]int

	mu       sync.Mutex
	requests []*http.Request
}

func NewServer() *Server {
	s := &Server{
		CompanyId:  "company-1",
		Timezone:   "UTC",
		PageSize:   200,
		Worklogs:   map[string][]Worklog{},
		Scores:     map[string]Scores{},
		Categories: map[string][]Category{},
		Fail:       map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/1.0/authorization/login", s.login)
	mux.HandleFunc("/api/1.0/users", s.authed(s.users))
	mux.HandleFunc("/api/1.0/tags", s.authed(s.tags))
	mux.HandleFunc("/api/1.0/activity/worklog", s.authed(s.worklogs))
	mux.HandleFunc("/api/1.0/stats/score-ratio", s.authed(s.scoreRatio))
	mux.HandleFunc("/api/1.0/stats/category-total", s.authed(s.categoryTotal))

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		status, fail := s.Fail[r.URL.Path]
		s.mu.Unlock()

		if fail {
			writeJSON(w, status, map[string]any{"message": "forced failure"})
			return
		}
		mux.ServeHTTP(w, r)
	}))

	return s
}

// Requests returns the query of every request made to path, in order.
func (s *Server) Requests(path string) []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []url.Values
	for _, r := range s.requests {
		if r.URL.Path == path {
			result = append(result, r.URL.Query())
		}
	}
	return result
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid token"})
			return
		}
		next(w, r)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TotpCode string `json:"totpCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || r.Method != http.MethodPost {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Bad request"})
		return
	}
	if body.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
		return
	}
	if s.TotpNeeded && body.TotpCode == "" {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": "totpNeeded"}})
		return
	}

	field := s.TimezoneField
	if field == "" {
		field = "companyTimezone"
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"token": Token,
		"companies": []map[string]any{
			{"id": s.CompanyId, "name": "Acme", field: s.Timezone},
		},
	}})
}

func (s *Server) users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var selected []User
	ids := splitIds(q.Get("user"))
	for _, u := range s.Users {
		if len(ids) > 0 && !contains(ids, u.Id) {
			continue
		}
		if tag := q.Get("tag"); tag != "" && !contains(u.Tags, tag) {
			continue
		}
		selected = append(selected, u)
	}

	page, _ := strconv.Atoi(q.Get("page"))
	start := page * s.PageSize
	end := start + s.PageSize
	if start > len(selected) {
		start = len(selected)
	}
	if end > len(selected) {
		end = len(selected)
	}

	data := []map[string]any{}
	for _, u := range selected[start:end] {
		data = append(data, map[string]any{"id": u.Id, "name": u.Name})
	}

	var next any
	if end < len(selected) {
		next = strconv.Itoa(page + 1)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":   data,
		"paging": map[string]any{"totalCount": len(selected), "next": next},
	})
}

func (s *Server) tags(w http.ResponseWriter, r *http.Request) {
	data := []map[string]any{}
	for _, t := range s.Tags {
		data = append(data, map[string]any{"id": t.Id, "name": t.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) worklogs(w http.ResponseWriter, r *http.Request) {
	data := [][]map[string]any{}
	for _, id := range splitIds(r.URL.Query().Get("user")) {
		logs := []map[string]any{}
		for _, wl := range s.Worklogs[id] {
			logs = append(logs, map[string]any{
				"userId": id,
				"start":  wl.Start.UTC().Format("2006-01-02T15:04:05.000Z"),
				"time":   wl.Seconds,
			})
		}
		data = append(data, logs)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) scoreRatio(w http.ResponseWriter, r *http.Request) {
	users := []map[string]any{}
	for _, id := range splitIds(r.URL.Query().Get("user")) {
		sc, ok := s.Scores[id]
		if !ok {
			continue
		}
		users = append(users, map[string]any{
			"userId": id,
			"total":  sc.Total,
			"0":      0,
			"2":      sc.Unproductive,
			"3":      sc.Neutral,
			"4":      sc.Productive,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"users": users}})
}

func (s *Server) categoryTotal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	categories := []map[string]any{}
	for _, id := range splitIds(q.Get("user")) {
		for _, c := range s.Categories[id] {
			if c.Total < 60 {
				continue
			}
			owners := c.Owners
			if owners == nil {
				owners = []string{id}
			}
			categories = append(categories, map[string]any{
				"entity": c.Entity,
				"name":   c.Name,
				"score":  c.Score,
				"total":  c.Total,
				"userId": owners,
			})
		}
	}
	if limit > 0 && len(categories) > limit {
		categories = categories[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"category": categories}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func splitIds(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
