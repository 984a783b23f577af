// Package validation provides input validation for account credentials.
package validation

import (
	"errors"
	"regexp"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Password checks length bounds only. Accounts are created by an operator
// through the admin CLI, so there is no complexity policy.
func Password(password string) error {
	if len(password) < 8 {
		return errors.New("Password must be at least 8 characters.")
	}
	if len(password) > 128 {
		return errors.New("Password must not exceed 128 characters.")
	}
	return nil
}

func Username(username string) error {
	if len(username) < 3 {
		return errors.New("Username must be at least 3 characters.")
	}
	if len(username) > 30 {
		return errors.New("Username must not exceed 30 characters.")
	}
	if !usernameRe.MatchString(username) {
		return errors.New("Username may only contain letters, numbers, underscores, and hyphens.")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return errors.New("Username cannot start or end with an underscore or hyphen.")
	}
	return nil
}

func Email(email string) error {
	if len(email) > 254 || !emailRe.MatchString(email) {
		return errors.New("Enter a valid email address.")
	}
	return nil
}
