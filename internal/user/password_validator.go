package user

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const PasswordMinimumLength = 8

var (
	ErrPasswordNotAlphanumeric = errors.New("password must contain letters and digits")
	ErrPasswordTooShort        = fmt.Errorf("password should be at least %d characters", PasswordMinimumLength)
)

// CheckPassword enforces the minimal password policy: length and a mix of
// letters and digits.
func CheckPassword(password string) error {
	if len(password) < PasswordMinimumLength {
		return ErrPasswordTooShort
	}
	if !hasLetterAndDigit(password) {
		return ErrPasswordNotAlphanumeric
	}
	return nil
}

func hasLetterAndDigit(password string) bool {
	hasLetter := strings.IndexFunc(password, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(password, unicode.IsDigit) >= 0
	return hasLetter && hasDigit
}
