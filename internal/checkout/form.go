package checkout

import (
	"errors"
	"fmt"
	"sync"
)

// Form is the shipping and payment form of the checkout page.
type Form struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	Email     string `json:"email" validate:"contact_email,notblank"`
	Phone     string `json:"phone" validate:"phone"`
	Address   string `json:"address" validate:"notblank"`
	City      string `json:"city" validate:"notblank"`
	State     string `json:"state" validate:"notblank"`
	ZipCode   string `json:"zipCode" validate:"notblank"`
	Country   string `json:"country"`

	CardNumber string `json:"cardNumber" validate:"card_number,notblank"`
	ExpiryDate string `json:"expiryDate" validate:"expiry_date,notblank"`
	CVV        string `json:"cvv" validate:"cvv,notblank"`
	CardName   string `json:"cardName" validate:"notblank"`

	SaveInfo      bool `json:"saveInfo"`
	SameAsBilling bool `json:"sameAsBilling"`
}

// NewForm returns the initial form.
func NewForm() Form {
	return Form{Country: "US", SameAsBilling: true}
}

var ErrUnknownField = errors.New("unknown form field")

// textFields maps the JSON field names to their string slots.
func (f *Form) textFields() map[string]*string {
	return map[string]*string{
		"firstName":  &f.FirstName,
		"lastName":   &f.LastName,
		"email":      &f.Email,
		"phone":      &f.Phone,
		"address":    &f.Address,
		"city":       &f.City,
		"state":      &f.State,
		"zipCode":    &f.ZipCode,
		"country":    &f.Country,
		"cardNumber": &f.CardNumber,
		"expiryDate": &f.ExpiryDate,
		"cvv":        &f.CVV,
		"cardName":   &f.CardName,
	}
}

// FormState is the session copy of the form with its last validation result.
type FormState struct {
	mu         sync.Mutex
	form       Form
	errors     FieldErrors
	processing bool
}

func NewFormState() *FormState {
	return &FormState{form: NewForm(), errors: FieldErrors{}}
}

// Update sets one field the way the inputs of the page do: card number and
// expiry date are reformatted as typed, and the field's error is cleared.
func (s *FormState) Update(field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case "saveInfo", "sameAsBilling":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s: expected a boolean, got %T", field, value)
		}
		if field == "saveInfo" {
			s.form.SaveInfo = b
		} else {
			s.form.SameAsBilling = b
		}
	default:
		slot, ok := s.form.textFields()[field]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected a string, got %T", field, value)
		}
		switch field {
		case "cardNumber":
			text = FormatCardNumber(text)
		case "expiryDate":
			text = FormatExpiryDate(text)
		}
		*slot = text
	}

	delete(s.errors, field)
	return nil
}

func (s *FormState) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Errors returns a copy of the field errors of the last submission.
func (s *FormState) Errors() FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(FieldErrors, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

func (s *FormState) setErrors(errs FieldErrors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errs == nil {
		errs = FieldErrors{}
	}
	s.errors = errs
}

// begin marks a submission in flight. It reports false when one already is.
func (s *FormState) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return false
	}
	s.processing = true
	return true
}

func (s *FormState) end() {
	s.mu.Lock()
	s.processing = false
	s.mu.Unlock()
}

func (s *FormState) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Set replaces the whole form, formatting it like Update, and clears the
// field errors.
func (s *FormState) Set(f Form) {
	f.CardNumber = FormatCardNumber(f.CardNumber)
	f.ExpiryDate = FormatExpiryDate(f.ExpiryDate)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
	s.errors = FieldErrors{}
}

// Reset restores the initial form.
func (s *FormState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = NewForm()
	s.errors = FieldErrors{}
}
