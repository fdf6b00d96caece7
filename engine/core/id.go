package core

import "github.com/google/uuid"

// ID is an opaque identifier for requests and generated artifacts.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}
