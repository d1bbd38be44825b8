package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// IDOrGenerate keeps a caller-supplied idempotency key, or mints one when empty
func IDOrGenerate(id string) string {
	if id != "" {
		return id
	}
	return GenerateID()
}
