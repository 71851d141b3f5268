package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	jsonwriter "github.com/dgellow/nexusquery/internal/json"
)

const testAPIKey = "test-api-key"

type fakeUser struct {
	uid      string
	email    string
	password string
	verified bool
}

// FakeIdentityToolkit serves the Identity Toolkit relyingparty endpoints
// and the Secure Token refresh endpoint for email/password accounts.
type FakeIdentityToolkit struct {
	server *httptest.Server

	mu        sync.Mutex
	users     map[string]*fakeUser // by email
	tokens    map[string]string    // ID token -> uid
	refreshes map[string]string    // refresh token -> uid
	next      int
	refreshed int

	// ExpiresIn is the lifetime, in seconds, of issued ID tokens.
	ExpiresIn string
}

// NewFakeIdentityToolkit starts the fake.
func NewFakeIdentityToolkit() *FakeIdentityToolkit {
	f := &FakeIdentityToolkit{
		users:     make(map[string]*fakeUser),
		tokens:    make(map[string]string),
		refreshes: make(map[string]string),
		ExpiresIn: "3600",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /verifyPassword", f.handleVerifyPassword)
	mux.HandleFunc("POST /signupNewUser", f.handleSignup)
	mux.HandleFunc("POST /token", f.handleToken)

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != testAPIKey {
			identityError(w, "API key not valid. Please pass a valid API key.")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	return f
}

// URL returns the base URL of the fake.
func (f *FakeIdentityToolkit) URL() string {
	return f.server.URL
}

// Close stops the fake.
func (f *FakeIdentityToolkit) Close() {
	f.server.Close()
}

// AddUser creates an account and returns its UID.
func (f *FakeIdentityToolkit) AddUser(email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(email, password).uid
}

func (f *FakeIdentityToolkit) addUserLocked(email, password string) *fakeUser {
	f.next++
	u := &fakeUser{uid: fmt.Sprintf("uid-%d", f.next), email: email, password: password}
	f.users[email] = u
	return u
}

// HasUser reports whether an account exists for email.
func (f *FakeIdentityToolkit) HasUser(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok
}

// Lookup returns the account an ID token was issued to.
func (f *FakeIdentityToolkit) Lookup(idToken string) (uid, email string, verified, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok = f.tokens[idToken]
	if !ok {
		return "", "", false, false
	}
	for _, u := range f.users {
		if u.uid == uid {
			return u.uid, u.email, u.verified, true
		}
	}
	return "", "", false, false
}

// Refreshed returns how many refresh-token grants were served.
func (f *FakeIdentityToolkit) Refreshed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshed
}

// createUser is the backend's admin path for sign-up.
func (f *FakeIdentityToolkit) createUser(email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return "", fmt.Errorf("EMAIL_EXISTS")
	}
	return f.addUserLocked(email, password).uid, nil
}

func (f *FakeIdentityToolkit) issueLocked(u *fakeUser) map[string]any {
	f.next++
	idToken := fmt.Sprintf("id-token-%d", f.next)
	refreshToken := fmt.Sprintf("refresh-token-%d", f.next)
	f.tokens[idToken] = u.uid
	f.refreshes[refreshToken] = u.uid
	return map[string]any{
		"kind":         "identitytoolkit#VerifyPasswordResponse",
		"localId":      u.uid,
		"email":        u.email,
		"idToken":      idToken,
		"refreshToken": refreshToken,
		"expiresIn":    f.ExpiresIn,
	}
}

func identityError(w http.ResponseWriter, message string) {
	_ = jsonwriter.WriteResponse(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":    http.StatusBadRequest,
			"message": message,
			"errors": []map[string]any{
				{"message": message, "domain": "global", "reason": "invalid"},
			},
		},
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *FakeIdentityToolkit) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		identityError(w, "INVALID_JSON")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[req.Email]
	switch {
	case !ok:
		identityError(w, "EMAIL_NOT_FOUND")
	case u.password != req.Password:
		identityError(w, "INVALID_PASSWORD")
	default:
		_ = jsonwriter.Write(w, f.issueLocked(u))
	}
}

func (f *FakeIdentityToolkit) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		identityError(w, "INVALID_JSON")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[req.Email]; ok {
		identityError(w, "EMAIL_EXISTS")
		return
	}
	if len(req.Password) < 6 {
		identityError(w, "WEAK_PASSWORD : Password should be at least 6 characters")
		return
	}
	_ = jsonwriter.Write(w, f.issueLocked(f.addUserLocked(req.Email, req.Password)))
}

func (f *FakeIdentityToolkit) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "refresh_token" {
		_ = jsonwriter.WriteResponse(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.refreshes[r.PostForm.Get("refresh_token")]
	if !ok {
		_ = jsonwriter.WriteResponse(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		return
	}
	var user *fakeUser
	for _, u := range f.users {
		if u.uid == uid {
			user = u
		}
	}
	f.refreshed++
	issued := f.issueLocked(user)
	_ = jsonwriter.Write(w, map[string]any{
		"access_token":  issued["idToken"],
		"id_token":      issued["idToken"],
		"refresh_token": issued["refreshToken"],
		"expires_in":    3600,
		"token_type":    "Bearer",
		"user_id":       uid,
	})
}

// FakeBackend is the NexusQuery auth service: the bootstrap config, the
// account endpoints and the protected query.
type FakeBackend struct {
	server *httptest.Server
	idp    *FakeIdentityToolkit

	mu           sync.Mutex
	calls        []string
	loggedOut    []string
	verification []string

	// ConfigStatus, when non-zero, makes /config fail with that status.
	ConfigStatus int
}

// NewFakeBackend starts a backend that trusts tokens issued by idp.
func NewFakeBackend(idp *FakeIdentityToolkit) *FakeBackend {
	b := &FakeBackend{idp: idp}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /config", b.handleConfig)
	mux.HandleFunc("GET /health", b.handleHealth)
	mux.HandleFunc("POST /auth/signup", b.handleSignup)
	mux.HandleFunc("POST /auth/send-verification-email", b.handleVerification)
	mux.HandleFunc("GET /auth/status", b.authenticated(b.handleStatus))
	mux.HandleFunc("GET /api/query", b.authenticated(b.handleQuery))
	mux.HandleFunc("POST /auth/logout", b.authenticated(b.handleLogout))

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return b
}

// URL returns the backend base URL.
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// Close stops the backend.
func (b *FakeBackend) Close() {
	b.server.Close()
}

// Calls returns every request received, as "METHOD /path".
func (b *FakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// LoggedOut returns the UIDs whose sessions were revoked.
func (b *FakeBackend) LoggedOut() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.loggedOut...)
}

// VerificationSent returns the addresses verification emails went to.
func (b *FakeBackend) VerificationSent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.verification...)
}

type principal struct {
	uid      string
	email    string
	verified bool
}

func (b *FakeBackend) authenticated(next func(http.ResponseWriter, *http.Request, principal)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			jsonwriter.WriteUnauthorized(w, "Missing authorization header")
			return
		}
		uid, email, verified, ok := b.idp.Lookup(token)
		if !ok {
			jsonwriter.WriteUnauthorized(w, "Invalid token")
			return
		}
		next(w, r, principal{uid: uid, email: email, verified: verified})
	}
}

func (b *FakeBackend) handleConfig(w http.ResponseWriter, r *http.Request) {
	if b.ConfigStatus != 0 {
		jsonwriter.WriteError(w, b.ConfigStatus, "config unavailable")
		return
	}
	_ = jsonwriter.Write(w, map[string]string{
		"apiKey":     testAPIKey,
		"authDomain": "nexus-test.firebaseapp.com",
		"projectId":  "nexus-test",
	})
}

func (b *FakeBackend) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = jsonwriter.Write(w, map[string]string{
		"status":  "healthy",
		"service": "NexusQuery Auth Service",
		"version": "1.0.0",
	})
}

func (b *FakeBackend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		jsonwriter.WriteError(w, http.StatusUnprocessableEntity, []map[string]any{
			{"loc": []string{"body"}, "msg": "field required", "type": "value_error.missing"},
		})
		return
	}
	uid, err := b.idp.createUser(req.Email, req.Password)
	if err != nil {
		jsonwriter.WriteBadRequest(w, "Email already registered. Please sign in.")
		return
	}
	b.mu.Lock()
	b.verification = append(b.verification, req.Email)
	b.mu.Unlock()
	_ = jsonwriter.WriteResponse(w, http.StatusCreated, map[string]string{
		"status":  "success",
		"message": "Account created. Please check your email to verify your account.",
		"uid":     uid,
	})
}

func (b *FakeBackend) handleVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request")
		return
	}
	if !b.idp.HasUser(req.Email) {
		jsonwriter.WriteNotFound(w, "User not found")
		return
	}
	b.mu.Lock()
	b.verification = append(b.verification, req.Email)
	b.mu.Unlock()
	_ = jsonwriter.Write(w, map[string]string{
		"status":  "success",
		"message": "Verification email resent. Please check your inbox.",
	})
}

func (b *FakeBackend) handleStatus(w http.ResponseWriter, r *http.Request, p principal) {
	_ = jsonwriter.Write(w, map[string]any{
		"message":        "Token is valid",
		"firebase_uid":   p.uid,
		"email":          p.email,
		"email_verified": p.verified,
		"role":           "user",
	})
}

func (b *FakeBackend) handleQuery(w http.ResponseWriter, r *http.Request, p principal) {
	_ = jsonwriter.Write(w, map[string]string{
		"status":  "success",
		"message": "Query executed successfully.",
		"user_id": p.uid,
		"results": "Sample data for user " + p.uid,
	})
}

func (b *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request, p principal) {
	b.mu.Lock()
	b.loggedOut = append(b.loggedOut, p.uid)
	b.mu.Unlock()
	_ = jsonwriter.Write(w, map[string]string{
		"status":  "success",
		"message": "Logged out successfully. All sessions revoked.",
	})
}
