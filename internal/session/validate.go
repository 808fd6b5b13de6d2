package session

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is a client-side form constraint violation. It blocks submission
// locally and never reaches the network.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// AsFieldError unwraps err into a *FieldError if it is one.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// ValidateCredentials checks the login/registration form constraints.
func ValidateCredentials(email, password string) error {
	err := validate.Struct(credentials{Email: email, Password: password})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Email":
			return &FieldError{Field: "email", Message: "a valid email address is required"}
		case "Password":
			return &FieldError{Field: "password", Message: "password must be at least 6 characters"}
		}
	}
	return err
}
