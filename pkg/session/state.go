// Package session tracks who is signed in and what the backend knows about them.
package session

import (
	"context"

	"educycle_backend/pkg/client"
)

// User is a signed-in identity. IDToken is asked for on every API call.
type User interface {
	UID() string
	Email() string
	IDToken(ctx context.Context) (string, error)
}

// State is one of Loading, Anonymous, Roleless or Authenticated.
type State interface {
	isState()
}

// Loading is the state before the identity provider has reported, and while the
// profile of a fresh sign-in is fetched. User is nil in the first case.
type Loading struct {
	User User
}

// Anonymous means nobody is signed in.
type Anonymous struct{}

// Roleless means the identity is valid but the backend profile could not be read.
type Roleless struct {
	User User
	Err  error
}

// Authenticated carries the backend profile of the signed-in user.
type Authenticated struct {
	User    User
	Profile client.Profile
}

func (Loading) isState()       {}
func (Anonymous) isState()     {}
func (Roleless) isState()      {}
func (Authenticated) isState() {}

// UserOf returns the identity carried by st, or nil.
func UserOf(st State) User {
	switch v := st.(type) {
	case Loading:
		return v.User
	case Roleless:
		return v.User
	case Authenticated:
		return v.User
	}
	return nil
}

// StaticUser is a User with a fixed token, for CLIs and tests.
type StaticUser struct {
	ID      string
	Address string
	Token   string
}

func (u StaticUser) UID() string   { return u.ID }
func (u StaticUser) Email() string { return u.Address }

func (u StaticUser) IDToken(context.Context) (string, error) { return u.Token, nil }
