package utils

import "github.com/google/uuid"

// GenerateID returns a random UUID v4 string.
func GenerateID() string {
	return uuid.NewString()
}
