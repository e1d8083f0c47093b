package models

import "time"

const (
	EntityEvent        = "event"
	EntityCategory     = "category"
	EntityRegistration = "registration"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Change describes one successful mutation. It is pushed to the admin
// console feed and to the message broker.
type Change struct {
	ID       string    `json:"id"`
	Entity   string    `json:"entity"`
	Action   string    `json:"action"`
	EntityID int64     `json:"entity_id"`
	At       time.Time `json:"at"`
}
