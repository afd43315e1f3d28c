// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingUserID = errors.New("user id missing")
	ErrMissingEmail  = errors.New("email missing")
	ErrNilInterests  = errors.New("interests missing")
)

type UserID string

// Profile is the identity slice handed to us by the identity provider.
// The core trusts it; validation only guards against a malformed payload,
// not against a forged one.
type Profile struct {
	ID             UserID    `json:"id" validate:"required"`
	Email          string    `json:"email" validate:"required,email"`
	Interests      []string  `json:"interests"`
	InterestVector []float64 `json:"interestVector,omitempty"`
}

// PublicProfile is the slice of a partner's profile the other side of a room
// is allowed to see.
type PublicProfile struct {
	ID              UserID   `json:"userId"`
	Email           string   `json:"email"`
	CommonInterests []string `json:"commonInterests"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "ID":
				return ErrMissingUserID
			case "Email":
				return ErrMissingEmail
			}
		}
		return err
	}
	if p.Interests == nil {
		return ErrNilInterests
	}
	return nil
}

// Public trims the profile down to what a stranger may see about their match.
func (p *Profile) Public(commonInterests []string) PublicProfile {
	if commonInterests == nil {
		commonInterests = []string{}
	}
	return PublicProfile{ID: p.ID, Email: p.Email, CommonInterests: commonInterests}
}
