package domain

import (
	"maps"
	"time"
)

// State is the whole durable record: every user and every live token.
// It is persisted and loaded as a single document.
type State struct {
	Users  map[string]*User
	Tokens map[string]Token
}

func NewState() *State {
	return &State{
		Users:  make(map[string]*User),
		Tokens: make(map[string]Token),
	}
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s *State) Clone() *State {
	out := &State{
		Users:  make(map[string]*User, len(s.Users)),
		Tokens: maps.Clone(s.Tokens),
	}
	if out.Tokens == nil {
		out.Tokens = make(map[string]Token)
	}
	for name, u := range s.Users {
		out.Users[name] = u.Clone()
	}
	return out
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	c := &User{
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		URLs:     maps.Clone(u.URLs),
	}
	if c.URLs == nil {
		c.URLs = make(map[string]Bookmark)
	}
	if u.Pin != nil {
		pin := *u.Pin
		c.Pin = &pin
	}
	if u.Created != nil {
		created := *u.Created
		c.Created = &created
	}
	return c
}

// SeedAdmin is the user provisioned when no prior state exists.
type SeedAdmin struct {
	Username string
	Pin      string
}

// NewSeededState returns a state holding only the seed admin, with its PIN
// already established at now.
func NewSeededState(seed SeedAdmin, now time.Time) *State {
	st := NewState()
	pin := seed.Pin
	st.Users[seed.Username] = &User{
		Username: seed.Username,
		Pin:      &pin,
		Created:  &now,
		IsAdmin:  true,
		URLs:     make(map[string]Bookmark),
	}
	return st
}
