package models

// EventTotals aggregates the events table.
type EventTotals struct {
	TotalEvents      int     `bun:"total_events" json:"total_events"`
	UpcomingEvents   int     `bun:"upcoming_events" json:"upcoming_events"`
	PastEvents       int     `bun:"past_events" json:"past_events"`
	SuspendedEvents  int     `bun:"suspended_events" json:"suspended_events"`
	TotalTicketsSold int     `bun:"total_tickets_sold" json:"total_tickets_sold"`
	TotalRaised      float64 `bun:"total_raised" json:"total_raised"`
	TotalGoal        float64 `bun:"total_goal" json:"total_goal"`
}

// RegistrationTotals aggregates the registrations table.
type RegistrationTotals struct {
	TotalRegistrations int `bun:"total_registrations" json:"total_registrations"`
	TotalTickets       int `bun:"total_tickets" json:"total_tickets"`
}

type EventOverview struct {
	Events        EventTotals        `json:"events"`
	Registrations RegistrationTotals `json:"registrations"`
}

type CategoryStats struct {
	ID          int64   `bun:"id" json:"id"`
	Name        string  `bun:"name" json:"name"`
	EventCount  int     `bun:"event_count" json:"event_count"`
	TicketsSold int     `bun:"tickets_sold" json:"tickets_sold"`
	TotalRaised float64 `bun:"total_raised" json:"total_raised"`
}
