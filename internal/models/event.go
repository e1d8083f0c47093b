package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusPast      EventStatus = "past"
	StatusSuspended EventStatus = "suspended"
)

// ParseEventStatus normalizes a status name, accepting the legacy aliases
// "active" and "ended". It reports false for anything else.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upcoming", "active":
		return StatusUpcoming, true
	case "past", "ended":
		return StatusPast, true
	case "suspended":
		return StatusSuspended, true
	}
	return "", false
}

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID            int64       `bun:"id,pk,autoincrement" json:"id"`
	Name          string      `bun:"name,notnull" json:"name"`
	Description   string      `bun:"description" json:"description"`
	EventDate     time.Time   `bun:"event_date,notnull" json:"event_date"`
	Location      string      `bun:"location,notnull" json:"location"`
	CategoryID    int64       `bun:"category_id,notnull" json:"category_id"`
	CategoryName  string      `bun:"category_name,scanonly" json:"category_name"`
	TicketPrice   float64     `bun:"ticket_price,notnull" json:"ticket_price"`
	MaxTickets    int         `bun:"max_tickets,notnull" json:"max_tickets"`
	TicketsSold   int         `bun:"tickets_sold,notnull" json:"tickets_sold"`
	GoalAmount    float64     `bun:"goal_amount,notnull" json:"goal_amount"`
	CurrentAmount float64     `bun:"current_amount,notnull" json:"current_amount"`
	Status        EventStatus `bun:"status,notnull" json:"status"`
	CreatedAt     time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time   `bun:"updated_at,notnull" json:"updated_at"`

	Registrations []Registration `bun:"-" json:"registrations,omitempty"`
}

// IsFree reports whether tickets cost nothing.
func (e Event) IsFree() bool {
	return e.TicketPrice == 0
}

// TicketsRemaining returns nil for events without a capacity limit.
func (e Event) TicketsRemaining() *int {
	if e.MaxTickets <= 0 {
		return nil
	}
	remaining := e.MaxTickets - e.TicketsSold
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// ProgressPercent is the share of the fundraising goal raised so far,
// capped at 100 and rounded to one decimal.
func (e Event) ProgressPercent() float64 {
	if e.GoalAmount <= 0 {
		return 0
	}
	p := math.Min(100, e.CurrentAmount/e.GoalAmount*100)
	return math.Round(p*10) / 10
}

func (e Event) MarshalJSON() ([]byte, error) {
	type event Event
	return json.Marshal(struct {
		event
		IsFree           bool    `json:"is_free"`
		TicketsRemaining *int    `json:"tickets_remaining"`
		ProgressPercent  float64 `json:"progress_percent"`
	}{
		event:            event(e),
		IsFree:           e.IsFree(),
		TicketsRemaining: e.TicketsRemaining(),
		ProgressPercent:  e.ProgressPercent(),
	})
}

// EventInput is the create/update body. Date and category are accepted under
// both their short and column names.
type EventInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	Date          string   `json:"date"`
	EventDate     string   `json:"event_date"`
	Location      string   `json:"location" validate:"required,max=200"`
	Category      *int64   `json:"category"`
	CategoryID    *int64   `json:"category_id"`
	TicketPrice   float64  `json:"ticket_price" validate:"gte=0"`
	MaxTickets    int      `json:"max_tickets" validate:"gte=0"`
	GoalAmount    float64  `json:"goal_amount" validate:"gte=0"`
	CurrentAmount *float64 `json:"current_amount" validate:"omitempty,gte=0"`
	Status        string   `json:"status"`
}

// DateValue returns whichever date field was supplied.
func (in EventInput) DateValue() string {
	if strings.TrimSpace(in.Date) != "" {
		return strings.TrimSpace(in.Date)
	}
	return strings.TrimSpace(in.EventDate)
}

// CategoryValue returns whichever category field was supplied, or 0.
func (in EventInput) CategoryValue() int64 {
	if in.Category != nil {
		return *in.Category
	}
	if in.CategoryID != nil {
		return *in.CategoryID
	}
	return 0
}

// EventFilter holds the search parameters; empty fields are ignored.
type EventFilter struct {
	Name     string
	Day      *time.Time
	Location string
	Category string
	Status   EventStatus
}
