package client

import (
	"context"
	"net/http"
)

// StatusResponse is returned by GET /auth/status.
type StatusResponse struct {
	Message       string `json:"message"`
	FirebaseUID   string `json:"firebase_uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role"`
}

// QueryResponse is returned by GET /api/query.
type QueryResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Results string `json:"results"`
}

// SignUpResponse is returned by POST /auth/signup.
type SignUpResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UID     string `json:"uid"`
}

// MessageResponse is the generic {status, message} acknowledgement.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// Status verifies the current ID token with the backend.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.Call(ctx, "/auth/status", http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query runs the protected example query.
func (c *Client) Query(ctx context.Context) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.Call(ctx, "/api/query", http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp creates an account through the backend, which also sends the
// verification email.
func (c *Client) SignUp(ctx context.Context, email, password string) (*SignUpResponse, error) {
	var out SignUpResponse
	if err := c.Call(ctx, "/auth/signup", http.MethodPost, credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendVerificationEmail asks the backend to resend the verification link.
func (c *Client) SendVerificationEmail(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.Call(ctx, "/auth/send-verification-email", http.MethodPost, emailRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the user's refresh tokens on the backend.
func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.Call(ctx, "/auth/logout", http.MethodPost, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend is up. It needs no session.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.Call(ctx, "/health", http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
