package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/payment"
)

// ShippingForm is the shipping step as entered. Every field is required.
type ShippingForm struct {
	FirstName string `json:"firstName" validate:"required,notblank"`
	LastName  string `json:"lastName" validate:"required,notblank"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,notblank"`
	Address   string `json:"address" validate:"required,notblank"`
	City      string `json:"city" validate:"required,notblank"`
	State     string `json:"state" validate:"required,notblank"`
	ZipCode   string `json:"zipCode" validate:"required,notblank"`
}

// ShippingAddress is the address stamped on the order.
func (f ShippingForm) ShippingAddress() model.Address {
	return model.Address{
		Street:  f.Address,
		City:    f.City,
		State:   f.State,
		ZipCode: f.ZipCode,
	}
}

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)

	fieldLabels = map[string]string{
		"firstName":  "First name",
		"lastName":   "Last name",
		"email":      "Email",
		"phone":      "Phone",
		"address":    "Address",
		"city":       "City",
		"state":      "State",
		"zipCode":    "ZIP code",
		"cardNumber": "Card number",
		"expiryDate": "Expiry date",
		"cvv":        "CVV",
		"cardName":   "Name on card",
	}
)

// newValidator returns a validator that reports fields by their json
// names and knows the card rules.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		d := strings.ReplaceAll(fl.Field().String(), " ", "")
		return len(d) == 16 && digits(d) == d
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})

	return v
}

// validateForm runs v over form and converts failures into a
// ValidationError with one message per field.
func validateForm(v *validator.Validate, form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "cardnumber":
		return "Card number must be 16 digits"
	case "len", "expiry":
		return "Use MM/YY"
	case "number", "min", "max":
		return "CVV must be 3 or 4 digits"
	default:
		return label + " is invalid"
	}
}

// validateCard checks the card superficially. The gateway is authoritative.
func validateCard(v *validator.Validate, card payment.Card) error {
	return validateForm(v, card)
}
