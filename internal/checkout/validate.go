package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MsgRequired      = "This field is required"
	MsgInvalidEmail  = "Please enter a valid email address"
	MsgInvalidPhone  = "Please enter a valid phone number"
	MsgInvalidCard   = "Please enter a valid card number"
	MsgInvalidExpiry = "Please enter a valid expiry date (MM/YY)"
	MsgInvalidCVV    = "Please enter a valid CVV"
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe  = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	cardRe   = regexp.MustCompile(`^\d{13,19}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe    = regexp.MustCompile(`^\d{3,4}$`)
	spaceRe  = regexp.MustCompile(`\s`)
)

// tagMessages maps a failing validation tag to the message shown next to the field.
var tagMessages = map[string]string{
	"notblank":      MsgRequired,
	"contact_email": MsgInvalidEmail,
	"phone":         MsgInvalidPhone,
	"card_number":   MsgInvalidCard,
	"expiry_date":   MsgInvalidExpiry,
	"cvv":           MsgInvalidCVV,
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "contact_email", matchWhenSet(emailRe, nil))
	mustRegister(v, "phone", matchWhenSet(phoneRe, nil))
	mustRegister(v, "card_number", matchWhenSet(cardRe, func(s string) string {
		return spaceRe.ReplaceAllString(s, "")
	}))
	mustRegister(v, "expiry_date", matchWhenSet(expiryRe, nil))
	mustRegister(v, "cvv", matchWhenSet(cvvRe, nil))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// matchWhenSet passes empty values and matches the rest against re,
// after clean when given.
func matchWhenSet(re *regexp.Regexp, clean func(string) string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		if clean != nil {
			value = clean(value)
		}
		return re.MatchString(value)
	}
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

// ValidationError carries every failing field of a submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

// Validate checks the whole form and returns all failures at once.
// Format rules apply only to non-empty values.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}

	var failed validator.ValidationErrors
	if !errors.As(formValidator.Struct(f), &failed) {
		return errs
	}
	for _, fe := range failed {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = MsgRequired
		}
		errs[fe.Field()] = msg
	}
	return errs
}
