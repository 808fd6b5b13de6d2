package identity

import (
	"errors"
	"fmt"
)

// Code classifies an authentication failure into a stable, user-mappable
// category. Codes are what the UI layer switches on; the underlying provider
// message is kept only for logging.
type Code string

const (
	CodeDuplicateEmail     Code = "duplicate-email"
	CodeWeakPassword       Code = "weak-password"
	CodeInvalidEmail       Code = "invalid-email"
	CodeInvalidCredentials Code = "invalid-credentials"
	CodeUserDisabled       Code = "user-disabled"
	CodeTooManyAttempts    Code = "too-many-attempts"
	CodeUnknownEmail       Code = "unknown-email"
	CodeFlowCanceled       Code = "flow-canceled"
	CodeNetwork            Code = "network"
)

// AuthError is a classified authentication failure from the identity provider.
type AuthError struct {
	Code    Code
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Code, e.Message)
}

// Messages shown next to the relevant form field.
var userMessages = map[Code]string{
	CodeDuplicateEmail:     "An account with this email already exists",
	CodeWeakPassword:       "Password must be at least 6 characters",
	CodeInvalidEmail:       "Email address is not valid",
	CodeInvalidCredentials: "Incorrect email or password",
	CodeUserDisabled:       "This account has been disabled",
	CodeTooManyAttempts:    "Too many attempts, please try again later",
	CodeUnknownEmail:       "No account found with this email",
	CodeFlowCanceled:       "Sign-in was canceled",
	CodeNetwork:            "Could not reach the sign-in service",
}

// UserMessage returns the human-readable message for the error.
func (e *AuthError) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return "Sign-in failed, please try again"
}

// AsAuthError unwraps err into an *AuthError if it is one.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// providerCodes maps the provider's wire-level error identifiers to codes.
var providerCodes = map[string]Code{
	"EMAIL_EXISTS":                CodeDuplicateEmail,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"INVALID_PASSWORD":            CodeInvalidCredentials,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredentials,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyAttempts,
	"EMAIL_NOT_FOUND":             CodeUnknownEmail,
}

func classify(providerCode, message string) *AuthError {
	if code, ok := providerCodes[providerCode]; ok {
		return &AuthError{Code: code, Message: message}
	}
	return &AuthError{Code: CodeNetwork, Message: message}
}
