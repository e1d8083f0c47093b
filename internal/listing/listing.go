// Package listing filters and pages the event list shown by the admin
// console and the public browse page.
package listing

import (
	"strings"
	"time"

	"charity-events/internal/models"
)

const DefaultPageSize = 10

// Criteria narrows the list. Zero fields match everything.
type Criteria struct {
	Keyword    string
	CategoryID int64
	Status     models.EventStatus
	Date       *time.Time
}

// Match reports whether e satisfies every set field.
func (c Criteria) Match(e models.Event) bool {
	if kw := strings.ToLower(strings.TrimSpace(c.Keyword)); kw != "" {
		text := strings.ToLower(e.Name + " " + e.Description)
		if !strings.Contains(text, kw) {
			return false
		}
	}
	if c.CategoryID != 0 && e.CategoryID != c.CategoryID {
		return false
	}
	if c.Status != "" && e.Status != c.Status {
		return false
	}
	if c.Date != nil {
		ay, am, ad := e.EventDate.UTC().Date()
		by, bm, bd := c.Date.UTC().Date()
		if ay != by || am != bm || ad != bd {
			return false
		}
	}
	return true
}

// Filter returns a new slice with the matching events in their original order.
func Filter(items []models.Event, c Criteria) []models.Event {
	out := make([]models.Event, 0, len(items))
	for _, e := range items {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

type Page struct {
	Items      []models.Event `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalItems int            `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// Paginate cuts one 1-based page out of items. Out of range pages are clamped
// to the nearest valid one; an empty list is page 1 of 0.
func Paginate(items []models.Event, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size

	switch {
	case pages == 0:
		page = 1
	case page < 1:
		page = 1
	case page > pages:
		page = pages
	}

	result := Page{
		Items:      []models.Event{},
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
	}
	if total == 0 {
		return result
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	result.Items = append(result.Items, items[start:end]...)
	return result
}

// State is the browse view: the loaded list, the active criteria and the
// selected page. Every With method returns a new State and leaves the
// receiver untouched.
type State struct {
	all      []models.Event
	criteria Criteria
	page     int
	pageSize int
}

func NewState(items []models.Event, pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{all: clone(items), page: 1, pageSize: pageSize}
}

// WithCriteria applies new criteria and goes back to the first page.
func (s State) WithCriteria(c Criteria) State {
	s.criteria = c
	s.page = 1
	return s
}

func (s State) WithPage(page int) State {
	s.page = page
	return s
}

// WithItems swaps in a freshly loaded list, keeping criteria and page.
func (s State) WithItems(items []models.Event) State {
	s.all = clone(items)
	return s
}

func (s State) Criteria() Criteria { return s.criteria }

func (s State) View() Page {
	return Paginate(Filter(s.all, s.criteria), s.page, s.pageSize)
}

func clone(items []models.Event) []models.Event {
	out := make([]models.Event, len(items))
	copy(out, items)
	return out
}
