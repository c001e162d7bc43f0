package domain

import "strings"

// Actor is the identity on whose behalf an engine operation runs.
// It is passed explicitly into every call instead of being read from
// ambient request state.
type Actor struct {
	ID string
}

// NewActor builds an actor from a raw identity, trimming whitespace.
func NewActor(id string) (Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Actor{}, ErrMissingActor
	}
	return Actor{ID: id}, nil
}

// SystemActor is used by background jobs and the CLI.
var SystemActor = Actor{ID: "system"}
