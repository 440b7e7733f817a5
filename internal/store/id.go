package store

import "github.com/google/uuid"

// IDGenerator assigns run ids.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator issues UUIDv7 ids, which sort by creation time.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
