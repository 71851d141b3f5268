package idp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/dgellow/nexusquery/internal/envutil"
	"github.com/dgellow/nexusquery/internal/log"
)

const (
	// DefaultTokenURL is Firebase's Secure Token endpoint, which exchanges
	// refresh tokens for fresh ID tokens using the OAuth2 refresh grant.
	DefaultTokenURL = "https://securetoken.googleapis.com/v1/token"

	providerPassword = "password"
	providerGoogle   = "google.com"

	changeBuffer = 16
)

// FirebaseConfig configures a FirebaseProvider. APIKey, AuthDomain and
// ProjectID come from the backend's /config endpoint; the Google credentials
// come from the local config.
type FirebaseConfig struct {
	APIKey     string
	AuthDomain string
	ProjectID  string

	GoogleClientID     string
	GoogleClientSecret string

	// IdentityEndpoint overrides the Identity Toolkit base URL (for testing).
	IdentityEndpoint string
	// TokenURL overrides the Secure Token endpoint (for testing).
	TokenURL string
}

// FirebaseProvider implements Provider against Firebase Authentication's
// REST API.
type FirebaseProvider struct {
	cfg      FirebaseConfig
	service  *identitytoolkit.Service
	tokenCtx context.Context

	mu         sync.RWMutex
	current    *Session
	subscribed bool

	publishMu sync.Mutex
	changes   chan *Session
}

// NewFirebaseProvider creates a provider. ctx bounds service construction
// only; token refreshes use a background context because sessions outlive
// the call that created them.
func NewFirebaseProvider(ctx context.Context, cfg FirebaseConfig) (*FirebaseProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firebase apiKey is required")
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = envutil.URLOverride("SECURE_TOKEN_URL", DefaultTokenURL)
	}
	if cfg.IdentityEndpoint == "" {
		cfg.IdentityEndpoint = envutil.URLOverride("IDENTITY_TOOLKIT_URL", "")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.IdentityEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.IdentityEndpoint))
	}
	service, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}

	return &FirebaseProvider{
		cfg:      cfg,
		service:  service,
		tokenCtx: context.Background(),
		changes:  make(chan *Session, changeBuffer),
	}, nil
}

// Type returns the provider type.
func (p *FirebaseProvider) Type() string {
	return "firebase"
}

// SignInWithPassword signs in with the Identity Toolkit verifyPassword call.
func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	resp, err := p.service.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		log.LogDebugWithFields("firebase", "Password sign-in failed", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil, wrapError(err)
	}

	session := p.newSession(resp.LocalId, resp.Email, providerPassword, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
	p.setSession(session)
	return session, nil
}

// CreateAccount creates an account with signupNewUser. The returned session
// belongs to the new account, but the current session is left unchanged:
// new accounts sign in explicitly.
func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password string) (*Session, error) {
	resp, err := p.service.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	log.LogInfoWithFields("firebase", "Account created", map[string]any{
		"uid":   resp.LocalId,
		"email": resp.Email,
	})
	return p.newSession(resp.LocalId, resp.Email, providerPassword, resp.IdToken, resp.RefreshToken, resp.ExpiresIn), nil
}

// signInWithIDP exchanges a Google ID token for a Firebase session.
func (p *FirebaseProvider) signInWithIDP(ctx context.Context, googleIDToken string) (*Session, error) {
	postBody := url.Values{
		"id_token":   {googleIDToken},
		"providerId": {providerGoogle},
	}.Encode()

	resp, err := p.service.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          postBody,
		RequestUri:        "http://localhost",
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	if resp.ErrorMessage != "" {
		return nil, &Error{Code: CodeFromMessage(resp.ErrorMessage), Message: resp.ErrorMessage}
	}
	if resp.IdToken == "" {
		return nil, &Error{Code: CodeInvalidCredential, Message: "identity provider returned no ID token"}
	}

	session := p.newSession(resp.LocalId, resp.Email, providerGoogle, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
	p.setSession(session)
	return session, nil
}

// SignOut clears the local session. Firebase ID tokens are stateless, so
// there is nothing to revoke remotely.
func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.setSession(nil)
	return nil
}

// CurrentSession returns the active session, or nil.
func (p *FirebaseProvider) CurrentSession() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Changes returns the session-change stream. The first call emits the
// current session; changes made before anyone subscribed are folded into it.
func (p *FirebaseProvider) Changes() <-chan *Session {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.Lock()
	first := !p.subscribed
	p.subscribed = true
	current := p.current
	p.mu.Unlock()

	if first {
		p.changes <- current
	}
	return p.changes
}

func (p *FirebaseProvider) setSession(session *Session) {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.Lock()
	p.current = session
	subscribed := p.subscribed
	p.mu.Unlock()

	if session != nil {
		log.LogInfoWithFields("firebase", "User authenticated", map[string]any{
			"uid":      session.UID,
			"provider": session.ProviderID,
		})
	}
	if subscribed {
		p.changes <- session
	}
}

func (p *FirebaseProvider) newSession(uid, email, providerID, idToken, refreshToken string, expiresIn int64) *Session {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.cfg.TokenURL + "?key=" + url.QueryEscape(p.cfg.APIKey),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	initial := &oauth2.Token{
		AccessToken:  idToken,
		TokenType:    "Bearer",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	return NewSession(uid, email, providerID, conf.TokenSource(p.tokenCtx, initial))
}

// ErrGoogleNotConfigured is returned by BeginGoogleSignIn when the local
// config has no Google OAuth client.
var ErrGoogleNotConfigured = errors.New("google sign-in is not configured")
