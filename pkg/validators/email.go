// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"estate-api/internal/apperr"
	"net/mail"
	"strings"
)

var (
	ErrEmailEmpty   = apperr.New(apperr.InvalidArgument, "no email address provided")
	ErrEmailInvalid = apperr.New(apperr.InvalidArgument, "invalid email address provided")
)

func EmailValidator(e string) error {
	if strings.TrimSpace(e) == "" {
		return ErrEmailEmpty
	}

	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}
