package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
)

// Validation messages are surfaced verbatim to the member, so they stay
// in the club's language.
const (
	MsgAdultRequired   = "Vous devez certifier être majeur(e) pour vous inscrire."
	MsgMissingFields   = "Veuillez remplir tous les champs obligatoires."
	MsgInvalidEmail    = "L'adresse e-mail n'est pas valide."
	MsgUnknownGender   = "Le genre sélectionné n'est pas reconnu."
	MsgPasswordTooWeak = "Le mot de passe doit contenir au moins 6 caractères."
)

// SignupInput carries the raw signup form fields.
type SignupInput struct {
	Username  string `json:"identite" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Gender    string `json:"genre" validate:"required"`
	IsStudent bool   `json:"etudiant"`
	IsAdult   bool   `json:"majeur"`
}

var validate = validator.New()

// CheckSignup validates a signup form. It returns a user-facing message
// for the first failed rule, checking the adult certification before
// anything else so the message matches what the form always showed.
func CheckSignup(in SignupInput) error {
	if !in.IsAdult {
		return errors.New(MsgAdultRequired)
	}

	if err := validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return errors.New(messageFor(ve[0]))
		}
		return errors.New(MsgMissingFields)
	}

	if !models.ValidGender(in.Gender) {
		return errors.New(MsgUnknownGender)
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgMissingFields
	case "email":
		return MsgInvalidEmail
	case "min":
		return MsgPasswordTooWeak
	default:
		return MsgMissingFields
	}
}
