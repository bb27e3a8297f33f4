package validators

import (
	"estate-api/internal/apperr"
	"unicode"
)

var (
	ErrPasswordTooShort = apperr.New(apperr.InvalidArgument, "password must be at least 8 characters long")
	ErrPasswordInvalid  = apperr.New(apperr.InvalidArgument, "password contains invalid characters")
	ErrPasswordTooLong  = apperr.New(apperr.InvalidArgument, "password is too long")
	ErrPasswordEmpty    = apperr.New(apperr.InvalidArgument, "no password provided")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < 8 {
		return ErrPasswordTooShort
	}

	// argon2 doesn't care but nobody needs a password this long
	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	for _, r := range p {
		if unicode.IsControl(r) {
			return ErrPasswordInvalid
		}
	}

	return nil
}
