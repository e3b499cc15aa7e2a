package checkout

import "github.com/google/uuid"

// IDGenerator produces order ids.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random (version 4) UUID order ids.
//
// Safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new hyphenated UUID.
//
// Panics if the system random source fails.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewRandom()).String()
}
