package forms

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/FischerJoao/mindestoque/internal/domain"
)

// RegisterAPI is the slice of the backend client the registration form needs.
type RegisterAPI interface {
	Register(ctx context.Context, reg domain.Registration) error
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

const (
	passwordMinLen = 4
	passwordMaxLen = 20
)

// ValidateRegistration applies the sign-up rules: non-empty name, a
// local@domain email, and a password of 4-20 characters containing at least
// one uppercase letter, one lowercase letter and one digit or symbol.
func ValidateRegistration(reg domain.Registration) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(reg.Name) == "" {
		errs["name"] = "name is required"
	}

	if !emailPattern.MatchString(strings.TrimSpace(reg.Email)) {
		errs["email"] = "email must look like local@domain"
	}

	pw := reg.Password
	if len(pw) < passwordMinLen || len(pw) > passwordMaxLen {
		errs["password"] = "password must be between 4 and 20 characters"
		return errs
	}
	var hasUpper, hasLower, hasOther bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		default:
			hasOther = true
		}
	}
	if !hasUpper {
		errs["password"] = "password needs at least one uppercase letter"
	} else if !hasLower {
		errs["password"] = "password needs at least one lowercase letter"
	} else if !hasOther {
		errs["password"] = "password needs at least one digit or symbol"
	}

	return errs
}

// RegistrationForm drives the new-user flow: local validation, then the
// backend call. Invalid input never reaches the network.
type RegistrationForm struct {
	api RegisterAPI
}

func NewRegistrationForm(api RegisterAPI) *RegistrationForm {
	return &RegistrationForm{api: api}
}

func (f *RegistrationForm) Submit(ctx context.Context, reg domain.Registration) (FieldErrors, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if errs := ValidateRegistration(reg); errs.Any() {
		return errs, nil
	}
	return nil, f.api.Register(ctx, reg)
}
