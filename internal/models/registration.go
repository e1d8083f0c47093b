package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	EventID      int64     `bun:"event_id,notnull" json:"event_id"`
	EventName    string    `bun:"event_name,scanonly" json:"event_name,omitempty"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull" json:"email"`
	Phone        string    `bun:"phone" json:"phone,omitempty"`
	Tickets      int       `bun:"tickets,notnull" json:"tickets"`
	RegisteredAt time.Time `bun:"registered_at,notnull" json:"registered_at"`
}

type RegistrationInput struct {
	EventID int64  `json:"event_id" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"max=40"`
	Tickets int    `json:"tickets" validate:"required,gt=0"`
}

// RegistrationResult is returned after a successful registration.
type RegistrationResult struct {
	ID        int64  `json:"id"`
	EventID   int64  `json:"event_id"`
	EventName string `json:"event_name"`
}

// PassClaims is the content signed into a registration pass.
type PassClaims struct {
	RegistrationID int64  `json:"registration_id"`
	EventID        int64  `json:"event_id"`
	Email          string `json:"email"`
	Tickets        int    `json:"tickets"`
}
