package ui

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgellow/nexusquery/internal/client"
	"github.com/dgellow/nexusquery/internal/config"
	"github.com/dgellow/nexusquery/internal/idp"
	"github.com/dgellow/nexusquery/internal/log"
)

// minPasswordLength is enforced locally before any sign-up request.
const minPasswordLength = 6

// Sign-in messages.
const (
	msgSignInMissing  = "Please enter both email and password"
	msgSigningIn      = "Signing you in..."
	msgSignInFailed   = "Sign-in failed. Please check your credentials and try again."
	msgGoogleFailed   = "Google sign-in failed. Please try again."
	msgGoogleWaiting  = "Waiting for Google sign-in in your browser..."
	msgAccountCreated = "Account created! Please sign in with your email and password."
)

// Sign-up and verification messages.
const (
	msgSignUpInvalid   = "Please enter a valid email and password (minimum 6 characters)"
	msgCreatingAccount = "Creating your account..."
	msgSignUpSucceeded = "Account created successfully! Redirecting to sign in..."
	msgSignUpFailed    = "Failed to create account. Please try again."
	msgVerifyMissing   = "Please enter your email address"
	msgVerifySending   = "Sending verification email..."
	msgVerifySent      = "Verification email sent! Please check your inbox."
	msgVerifyFailed    = "Failed to send verification email. Please try again."
)

var signInMessages = map[idp.ErrorCode]string{
	idp.CodeUserNotFound:      "No account found. Please create an account first.",
	idp.CodeWrongPassword:     "Incorrect password. Please try again.",
	idp.CodeInvalidCredential: "Invalid email or password. Please check and try again.",
	idp.CodeTooManyRequests:   "Too many failed attempts. Please wait a few minutes and try again.",
}

var signUpMessages = map[idp.ErrorCode]string{
	idp.CodeEmailAlreadyInUse: "This email is already registered. Please sign in instead.",
	idp.CodeInvalidEmail:      "Please enter a valid email address.",
	idp.CodeWeakPassword:      "Password is too weak. Please use at least 6 characters.",
}

func signInErrorMessage(err error) string {
	if msg, ok := signInMessages[idp.CodeOf(err)]; ok {
		return msg
	}
	return msgSignInFailed
}

func signUpErrorMessage(err error) string {
	if msg, ok := signUpMessages[idp.CodeOf(err)]; ok {
		return msg
	}
	return msgSignUpFailed
}

type inputID int

const (
	signInEmail inputID = iota
	signInPassword
	signUpEmail
	signUpPassword
	verifyEmail
	numInputs
)

// pageInputs lists each page's inputs in focus order.
var pageInputs = map[Page][]inputID{
	PageSignIn: {signInEmail, signInPassword},
	PageSignUp: {signUpEmail, signUpPassword, verifyEmail},
}

func newInputs() [numInputs]textinput.Model {
	var inputs [numInputs]textinput.Model
	inputs[signInEmail] = newInput("you@example.com", false)
	inputs[signInPassword] = newInput("password", true)
	inputs[signUpEmail] = newInput("you@example.com", false)
	inputs[signUpPassword] = newInput("at least 6 characters", true)
	inputs[verifyEmail] = newInput("you@example.com", false)
	return inputs
}

func newInput(placeholder string, password bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Width = 36
	if password {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	// A static cursor needs no blink commands, so focus changes stay
	// synchronous.
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// focusCurrent focuses the active page's input at m.focus and blurs the rest.
func (m *Model) focusCurrent() {
	ids := pageInputs[m.active]
	for i, id := range ids {
		if i == m.focus {
			_ = m.inputs[id].Focus()
		} else {
			m.inputs[id].Blur()
		}
	}
}

func (m *Model) cycleFocus(delta int) {
	ids := pageInputs[m.active]
	if len(ids) == 0 {
		return
	}
	m.focus = (m.focus + delta + len(ids)) % len(ids)
	m.focusCurrent()
}

func (m *Model) focusedInput() (inputID, bool) {
	ids := pageInputs[m.active]
	if m.focus < 0 || m.focus >= len(ids) {
		return 0, false
	}
	return ids[m.focus], true
}

func (m *Model) value(id inputID) string {
	return m.inputs[id].Value()
}

func (m *Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.cfg.RequestTimeout)
}

type signInResultMsg struct{ err error }

// submitSignIn validates the sign-in form and signs in with the provider.
// Success needs no handling here: the session binder navigates.
func (m *Model) submitSignIn() tea.Cmd {
	email := strings.TrimSpace(m.value(signInEmail))
	password := m.value(signInPassword)
	if email == "" || password == "" {
		return m.presenter.Show(PageSignIn, msgSignInMissing, SeverityError)
	}

	m.presenter.Progress(PageSignIn, msgSigningIn)
	provider := m.state.Provider()
	ctx, cancel := m.requestContext()
	return func() tea.Msg {
		defer cancel()
		if provider == nil {
			return signInResultMsg{err: client.ErrNotInitialized}
		}
		_, err := provider.SignInWithPassword(ctx, email, password)
		return signInResultMsg{err: err}
	}
}

func (m *Model) handleSignInResult(msg signInResultMsg) tea.Cmd {
	if msg.err == nil {
		return nil
	}
	log.LogInfoWithFields("forms", "Sign-in failed", map[string]any{
		"code":  string(idp.CodeOf(msg.err)),
		"error": msg.err.Error(),
	})
	return m.presenter.Show(PageSignIn, signInErrorMessage(msg.err), SeverityError)
}

type (
	signUpResultMsg    struct{ err error }
	signUpSignedOutMsg struct{ err error }
	signUpRedirectMsg  struct{}
)

// submitSignUp validates the sign-up form and creates the account through
// the configured collaborator.
func (m *Model) submitSignUp() tea.Cmd {
	email := strings.TrimSpace(m.value(signUpEmail))
	password := m.value(signUpPassword)
	if email == "" || password == "" || utf8.RuneCountInString(password) < minPasswordLength {
		return m.presenter.Show(PageSignUp, msgSignUpInvalid, SeverityError)
	}

	m.presenter.Progress(PageSignUp, msgCreatingAccount)
	via := m.cfg.SignUpVia
	gateway := m.gateway
	provider := m.state.Provider()
	ctx, cancel := m.requestContext()
	return func() tea.Msg {
		defer cancel()
		if via == config.SignUpViaProvider {
			if provider == nil {
				return signUpResultMsg{err: client.ErrNotInitialized}
			}
			_, err := provider.CreateAccount(ctx, email, password)
			return signUpResultMsg{err: err}
		}
		_, err := gateway.SignUp(ctx, email, password)
		return signUpResultMsg{err: err}
	}
}

func (m *Model) handleSignUpResult(msg signUpResultMsg) tea.Cmd {
	if msg.err != nil {
		log.LogInfoWithFields("forms", "Sign-up failed", map[string]any{
			"code":  string(idp.CodeOf(msg.err)),
			"error": msg.err.Error(),
		})
		return m.presenter.Show(PageSignUp, signUpErrorMessage(msg.err), SeverityError)
	}

	show := m.presenter.Show(PageSignUp, msgSignUpSucceeded, SeveritySuccess)
	m.inputs[signUpEmail].Reset()
	m.inputs[signUpPassword].Reset()

	// New accounts are not treated as signed in
	provider := m.state.Provider()
	ctx, cancel := m.requestContext()
	return tea.Batch(show, func() tea.Msg {
		defer cancel()
		if provider == nil {
			return signUpSignedOutMsg{err: client.ErrNotInitialized}
		}
		return signUpSignedOutMsg{err: provider.SignOut(ctx)}
	})
}

func (m *Model) handleSignUpSignedOut(msg signUpSignedOutMsg) tea.Cmd {
	if msg.err != nil {
		return m.presenter.Show(PageSignUp, msgSignUpFailed, SeverityError)
	}
	return m.timer(m.cfg.Timing.SignUpRedirectDelay, signUpRedirectMsg{})
}

func (m *Model) handleSignUpRedirect() tea.Cmd {
	m.navigate(PageSignIn)
	return m.presenter.Show(PageSignIn, msgAccountCreated, SeveritySuccess)
}

type verifyResultMsg struct{ err error }

// submitVerification asks the backend to resend the verification email.
func (m *Model) submitVerification() tea.Cmd {
	email := strings.TrimSpace(m.value(verifyEmail))
	if email == "" {
		return m.presenter.Show(PageSignUp, msgVerifyMissing, SeverityError)
	}

	m.presenter.Progress(PageSignUp, msgVerifySending)
	gateway := m.gateway
	ctx, cancel := m.requestContext()
	return func() tea.Msg {
		defer cancel()
		_, err := gateway.SendVerificationEmail(ctx, email)
		return verifyResultMsg{err: err}
	}
}

func (m *Model) handleVerifyResult(msg verifyResultMsg) tea.Cmd {
	if msg.err != nil {
		log.LogInfoWithFields("forms", "Verification email failed", map[string]any{
			"error": msg.err.Error(),
		})
		return m.presenter.Show(PageSignUp, msgVerifyFailed, SeverityError)
	}
	return m.presenter.Show(PageSignUp, msgVerifySent, SeveritySuccess)
}

// googleSignIn is a pending browser sign-in. flow is nil until the
// loopback listener is up.
type googleSignIn struct {
	flow      idp.GoogleFlow
	cancel    context.CancelFunc
	cancelled bool
}

type (
	googleStartedMsg struct {
		flow idp.GoogleFlow
		err  error
	}
	googleResultMsg struct{ err error }
)

// beginGoogleSignIn starts the loopback flow. The view shows the consent
// URL until the flow finishes.
func (m *Model) beginGoogleSignIn() tea.Cmd {
	if m.google != nil {
		return nil
	}
	provider := m.state.Provider()
	ctx, cancel := m.requestContext()
	m.google = &googleSignIn{cancel: cancel}
	return func() tea.Msg {
		defer cancel()
		if provider == nil {
			return googleStartedMsg{err: client.ErrNotInitialized}
		}
		flow, err := provider.BeginGoogleSignIn(ctx)
		return googleStartedMsg{flow: flow, err: err}
	}
}

func (m *Model) handleGoogleStarted(msg googleStartedMsg) tea.Cmd {
	if msg.err != nil {
		m.google = nil
		log.LogInfoWithFields("forms", "Google sign-in unavailable", map[string]any{
			"error": msg.err.Error(),
		})
		return m.presenter.Show(PageSignIn, msgGoogleFailed, SeverityError)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.GoogleSignInTimeout)
	if m.google != nil && m.google.cancelled {
		// Cancelled while starting; Wait returns at once and releases the listener.
		cancel()
	}
	m.google = &googleSignIn{flow: msg.flow, cancel: cancel}
	flow := msg.flow
	m.presenter.Progress(PageSignIn, msgGoogleWaiting)
	return func() tea.Msg {
		defer cancel()
		_, err := flow.Wait(ctx)
		return googleResultMsg{err: err}
	}
}

func (m *Model) handleGoogleResult(msg googleResultMsg) tea.Cmd {
	m.google = nil
	if msg.err == nil {
		return nil
	}
	log.LogInfoWithFields("forms", "Google sign-in failed", map[string]any{
		"code":  string(idp.CodeOf(msg.err)),
		"error": msg.err.Error(),
	})
	return m.presenter.Show(PageSignIn, msgGoogleFailed, SeverityError)
}

func (m *Model) cancelGoogleSignIn() {
	if m.google != nil {
		m.google.cancelled = true
		m.google.cancel()
	}
}
