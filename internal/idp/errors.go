package idp

import (
	"context"
	"errors"
	"net"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrorCode is a provider-independent classification of identity errors.
type ErrorCode string

const (
	CodeUserNotFound      ErrorCode = "user-not-found"
	CodeWrongPassword     ErrorCode = "wrong-password"
	CodeInvalidCredential ErrorCode = "invalid-credential"
	CodeTooManyRequests   ErrorCode = "too-many-requests"
	CodeEmailAlreadyInUse ErrorCode = "email-already-in-use"
	CodeInvalidEmail      ErrorCode = "invalid-email"
	CodeWeakPassword      ErrorCode = "weak-password"
	CodeUserDisabled      ErrorCode = "user-disabled"
	CodeCancelled         ErrorCode = "cancelled"
	CodeNetwork           ErrorCode = "network-request-failed"
	CodeUnknown           ErrorCode = "unknown"
)

// Error is an identity provider failure with a classified code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "auth/" + string(e.Code)
	}
	return "auth/" + string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// codeTokens maps the tokens that identify each code in error text. Both the
// client-style codes and the Identity Toolkit REST codes are recognised.
// Order matters: the first match wins.
var codeTokens = []struct {
	token string
	code  ErrorCode
}{
	{"user-not-found", CodeUserNotFound},
	{"EMAIL_NOT_FOUND", CodeUserNotFound},
	{"wrong-password", CodeWrongPassword},
	{"INVALID_PASSWORD", CodeWrongPassword},
	{"invalid-credential", CodeInvalidCredential},
	{"INVALID_LOGIN_CREDENTIALS", CodeInvalidCredential},
	{"too-many-requests", CodeTooManyRequests},
	{"TOO_MANY_ATTEMPTS_TRY_LATER", CodeTooManyRequests},
	{"email-already-in-use", CodeEmailAlreadyInUse},
	{"EMAIL_EXISTS", CodeEmailAlreadyInUse},
	{"invalid-email", CodeInvalidEmail},
	{"INVALID_EMAIL", CodeInvalidEmail},
	{"weak-password", CodeWeakPassword},
	{"WEAK_PASSWORD", CodeWeakPassword},
	{"user-disabled", CodeUserDisabled},
	{"USER_DISABLED", CodeUserDisabled},
}

// CodeFromMessage classifies free-form error text by the known code tokens
// it contains. Text without a known token is CodeUnknown.
func CodeFromMessage(msg string) ErrorCode {
	for _, t := range codeTokens {
		if strings.Contains(msg, t.token) {
			return t.code
		}
	}
	return CodeUnknown
}

// CodeOf returns the code of err. Typed *Error values carry their own code;
// anything else is classified from its text.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var idpErr *Error
	if errors.As(err, &idpErr) {
		return idpErr.Code
	}
	return CodeFromMessage(err.Error())
}

// wrapError converts a transport or API failure into an *Error.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var idpErr *Error
	if errors.As(err, &idpErr) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &Error{Code: CodeFromMessage(apiErr.Message), Message: apiErr.Message, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeCancelled, Message: err.Error(), Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Code: CodeNetwork, Message: err.Error(), Err: err}
	}
	return &Error{Code: CodeFromMessage(err.Error()), Message: err.Error(), Err: err}
}
