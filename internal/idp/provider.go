package idp

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned when a token is requested without a signed-in user.
var ErrNoSession = errors.New("no active session")

// Session is the authenticated identity for the current user.
// Sessions are immutable; a sign-in produces a new one.
type Session struct {
	UID        string
	Email      string
	ProviderID string // "password" or "google.com"

	tokens oauth2.TokenSource
}

// NewSession creates a session whose ID tokens come from tokens.
func NewSession(uid, email, providerID string, tokens oauth2.TokenSource) *Session {
	return &Session{
		UID:        uid,
		Email:      email,
		ProviderID: providerID,
		tokens:     tokens,
	}
}

// IDToken returns a bearer token for backend calls. The token source caches
// and refreshes on expiry, so callers ask for a token on every request.
func (s *Session) IDToken(ctx context.Context) (string, error) {
	if s == nil || s.tokens == nil {
		return "", ErrNoSession
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := s.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get ID token: %w", err)
	}
	// The Secure Token endpoint returns the Firebase ID token as id_token;
	// the access_token field carries the same value.
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		return idToken, nil
	}
	return tok.AccessToken, nil
}

// GoogleFlow is an in-progress Google sign-in. The user completes it in a
// browser at AuthURL while Wait blocks for the callback.
type GoogleFlow interface {
	AuthURL() string
	Wait(ctx context.Context) (*Session, error)
}

// Provider abstracts the identity provider the client signs in against.
type Provider interface {
	// Type returns the provider type identifier (e.g. "firebase").
	Type() string

	// SignInWithPassword signs in an existing email/password account.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// CreateAccount creates an email/password account. It does not change
	// the current session.
	CreateAccount(ctx context.Context, email, password string) (*Session, error)

	// BeginGoogleSignIn starts the browser-based Google sign-in.
	BeginGoogleSignIn(ctx context.Context) (GoogleFlow, error)

	// SignOut ends the current session. Signing out without a session is not an error.
	SignOut(ctx context.Context) error

	// CurrentSession returns the active session, or nil.
	CurrentSession() *Session

	// Changes delivers the session after every sign-in and sign-out, starting
	// with the state at the time of the first call. A nil value means signed out.
	Changes() <-chan *Session
}
