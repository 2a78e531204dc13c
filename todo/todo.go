package todo

import "strings"

// Task is a single list entry.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
}

// Active reports whether the task is not yet done.
func (t Task) Active() bool {
	return !t.Done
}

// List is an ordered task list, newest first.
type List []Task

// Clone returns a copy of the list that shares nothing with l.
// The clone of a nil list is an empty, non-nil list.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Index returns the position of the task with the given id, or -1.
func (l List) Index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the task ids in list order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i := range l {
		ids[i] = l[i].ID
	}
	return ids
}

// Filter selects a subset of a list by completion state.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
	FilterDone   Filter = "done"
)

// Valid reports whether f is one of the known filters.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterDone:
		return true
	}
	return false
}

// String returns the filter name.
func (f Filter) String() string {
	return string(f)
}

// ParseFilter normalizes a filter name. An empty name is FilterAll.
// Unknown names are returned as given and behave like FilterAll.
func ParseFilter(s string) Filter {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll
	}
	return Filter(s)
}

// Stats summarizes a list.
type Stats struct {
	Total  int `json:"total"`
	Done   int `json:"done"`
	Active int `json:"active"`
}
