package report

import "time"

// Rows is the set of report rows keyed by user id, kept in insertion order.
// Rows are only ever created by Add; every other mutation targets an existing
// row and reports false when the id is unknown.
type Rows struct {
	order []string
	byId  map[string]*Row
}

func NewRows(users ...User) *Rows {
	rs := &Rows{byId: make(map[string]*Row, len(users))}
	for _, u := range users {
		rs.Add(u)
	}
	return rs
}

// Add creates a default row for u. Adding an id twice is a no-op.
func (rs *Rows) Add(u User) bool {
	if _, exists := rs.byId[u.Id]; exists {
		return false
	}

	rs.byId[u.Id] = &Row{UserId: u.Id, Name: u.Name, Categories: []CategoryEntry{}}
	rs.order = append(rs.order, u.Id)
	return true
}

func (rs *Rows) Len() int {
	return len(rs.order)
}

// Ids returns user ids in insertion order.
func (rs *Rows) Ids() []string {
	ids := make([]string, len(rs.order))
	copy(ids, rs.order)
	return ids
}

func (rs *Rows) SetActivity(userId string, start, end time.Time) bool {
	row, ok := rs.byId[userId]
	if !ok {
		return false
	}

	row.StartTime = &start
	row.EndTime = &end
	return true
}

func (rs *Rows) SetScores(userId string, scores Scores) bool {
	row, ok := rs.byId[userId]
	if !ok {
		return false
	}

	row.Scores = scores
	return true
}

func (rs *Rows) AddCategory(userId string, entry CategoryEntry) bool {
	row, ok := rs.byId[userId]
	if !ok {
		return false
	}

	row.Categories = append(row.Categories, entry)
	return true
}

// List returns copies of all rows in insertion order.
func (rs *Rows) List() []Row {
	result := make([]Row, 0, len(rs.order))
	for _, id := range rs.order {
		result = append(result, *rs.byId[id])
	}
	return result
}

// Views renders every row with format.
func (rs *Rows) Views(format DurationFormatter) []RowView {
	result := make([]RowView, 0, len(rs.order))
	for _, id := range rs.order {
		result = append(result, rs.byId[id].View(format))
	}
	return result
}
