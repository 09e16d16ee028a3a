package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// User is a registered member of the platform. Anyone can both list items
// and book items listed by others.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

var validate = validator.New()

// ValidateEmail checks that an email address is present and well-formed.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return errors.New("invalid email")
	}
	return nil
}
