package identity

import (
	"errors"
	"fmt"
)

// Code is a provider failure code.
type Code string

const (
	CodeInvalidEmail      Code = "auth/invalid-email"
	CodeUserNotFound      Code = "auth/user-not-found"
	CodeWrongPassword     Code = "auth/wrong-password"
	CodeWeakPassword      Code = "auth/weak-password"
	CodePasswordTooLong   Code = "auth/password-too-long"
	CodeEmailInUse        Code = "auth/email-already-in-use"
	CodeInvalidCredential Code = "auth/invalid-credential"
	CodeInvalidToken      Code = "auth/invalid-token"
	CodeInternal          Code = "auth/internal-error"
)

type AuthError struct {
	Code Code
	// MinLength is the configured minimum for CodeWeakPassword.
	MinLength int
	Err       error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func fail(code Code, err error) error {
	return &AuthError{Code: code, Err: err}
}

func weakPassword(min int) error {
	return &AuthError{Code: CodeWeakPassword, MinLength: min}
}

// CodeOf returns the failure code carried by err, or "" when err is not an AuthError.
func CodeOf(err error) Code {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

var messages = map[Code]string{
	CodeInvalidEmail:    "Invalid email address.",
	CodeUserNotFound:    "No account found with that email.",
	CodeWrongPassword:   "Incorrect password.",
	CodeWeakPassword:    "Password should be at least 6 characters.",
	CodePasswordTooLong: "Password should be at most 72 bytes long.",
	CodeEmailInUse:      "This email is already registered.",
}

// Message maps a failure to the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if !errors.As(err, &ae) {
		return "Something went wrong."
	}
	if ae.Code == CodeWeakPassword && ae.MinLength > 0 {
		return fmt.Sprintf("Password should be at least %d characters.", ae.MinLength)
	}
	if msg, ok := messages[ae.Code]; ok {
		return msg
	}
	return "Authentication failed."
}
