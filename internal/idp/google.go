package idp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"github.com/dgellow/nexusquery/internal/crypto"
	"github.com/dgellow/nexusquery/internal/envutil"
	"github.com/dgellow/nexusquery/internal/log"
)

const callbackPath = "/callback"

const callbackPage = `<!DOCTYPE html>
<html><head><title>NexusQuery</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h2>%s</h2><p>You can close this window and return to the terminal.</p>
</body></html>`

// googleFlow is a desktop loopback OAuth2 authorization with PKCE. Google
// redirects the browser to a listener on 127.0.0.1; the returned Google ID
// token is then exchanged for a Firebase session.
type googleFlow struct {
	provider *FirebaseProvider
	config   oauth2.Config
	listener net.Listener
	state    string
	verifier string
	authURL  string

	once sync.Once
}

type callbackResult struct {
	code string
	err  error
}

// BeginGoogleSignIn opens the loopback listener and builds the consent URL.
func (p *FirebaseProvider) BeginGoogleSignIn(ctx context.Context) (GoogleFlow, error) {
	if p.cfg.GoogleClientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open callback listener: %w", err)
	}

	state, err := crypto.GenerateSecureToken()
	if err != nil {
		listener.Close()
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	conf := newGoogleOAuth2Config(p.cfg, fmt.Sprintf("http://%s%s", listener.Addr(), callbackPath))
	authURL := conf.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	log.LogDebugWithFields("google", "Started Google sign-in", map[string]any{
		"redirect": conf.RedirectURL,
	})

	return &googleFlow{
		provider: p,
		config:   conf,
		listener: listener,
		state:    state,
		verifier: verifier,
		authURL:  authURL,
	}, nil
}

// newGoogleOAuth2Config creates the OAuth2 config for the loopback flow
func newGoogleOAuth2Config(cfg FirebaseConfig, redirectURL string) oauth2.Config {
	// Use custom OAuth endpoints if provided (for testing)
	endpoint := google.Endpoint
	endpoint.AuthURL = envutil.URLOverride("GOOGLE_OAUTH_AUTH_URL", endpoint.AuthURL)
	endpoint.TokenURL = envutil.URLOverride("GOOGLE_OAUTH_TOKEN_URL", endpoint.TokenURL)

	return oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     endpoint,
	}
}

func (f *googleFlow) AuthURL() string {
	return f.authURL
}

// Wait serves the callback until the browser returns or ctx ends, then
// completes sign-in. A flow can only be waited on once.
func (f *googleFlow) Wait(ctx context.Context) (*Session, error) {
	started := false
	f.once.Do(func() { started = true })
	if !started {
		return nil, errors.New("google sign-in already completed")
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, f.handleCallback(results))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	var code string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(f.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		select {
		case res := <-results:
			code = res.code
			return res.err
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	if err := g.Wait(); err != nil {
		return nil, wrapError(err)
	}

	token, err := f.config.Exchange(ctx, code, oauth2.VerifierOption(f.verifier))
	if err != nil {
		log.LogErrorWithFields("google", "Failed to exchange code", map[string]any{
			"error": err.Error(),
		})
		return nil, wrapError(fmt.Errorf("failed to exchange code: %w", err))
	}

	googleIDToken, _ := token.Extra("id_token").(string)
	if googleIDToken == "" {
		return nil, &Error{Code: CodeInvalidCredential, Message: "google did not return an ID token"}
	}

	return f.provider.signInWithIDP(ctx, googleIDToken)
}

func (f *googleFlow) handleCallback(results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if !crypto.TokensEqual(query.Get("state"), f.state) {
			http.Error(w, "invalid state parameter", http.StatusBadRequest)
			return
		}

		var res callbackResult
		switch {
		case query.Get("error") != "":
			// access_denied is what Google sends when the user closes the consent screen
			code := CodeUnknown
			if query.Get("error") == "access_denied" {
				code = CodeCancelled
			}
			res.err = &Error{Code: code, Message: query.Get("error")}
		case query.Get("code") == "":
			res.err = &Error{Code: CodeInvalidCredential, Message: "missing authorization code"}
		default:
			res.code = query.Get("code")
		}

		title := "Signed in to NexusQuery"
		if res.err != nil {
			title = "Sign-in failed"
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, callbackPage, title)

		select {
		case results <- res:
		default:
		}
	}
}
