package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	"github.com/dgellow/nexusquery/internal/idp"
)

// NewSession returns a session whose ID token is always token.
func NewSession(uid, email, token string) *idp.Session {
	return idp.NewSession(uid, email, "password", oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

// MockProvider is a mock implementation of idp.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Type() string {
	return "mock"
}

func (m *MockProvider) SignInWithPassword(ctx context.Context, email, password string) (*idp.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idp.Session), args.Error(1)
}

func (m *MockProvider) CreateAccount(ctx context.Context, email, password string) (*idp.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idp.Session), args.Error(1)
}

func (m *MockProvider) BeginGoogleSignIn(ctx context.Context) (idp.GoogleFlow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(idp.GoogleFlow), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProvider) CurrentSession() *idp.Session {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*idp.Session)
}

func (m *MockProvider) Changes() <-chan *idp.Session {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(chan *idp.Session)
}

// MockGoogleFlow is a mock implementation of idp.GoogleFlow
type MockGoogleFlow struct {
	mock.Mock
}

func (m *MockGoogleFlow) AuthURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockGoogleFlow) Wait(ctx context.Context) (*idp.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idp.Session), args.Error(1)
}
