package checkout

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/security"
)

var (
	validate     = newValidator()
	cardDigits   = regexp.MustCompile(`^[0-9]{12,19}$`)
	expiryFormat = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest checks the checkout body. Details are keyed by
// "shipping.<field>" and "payment.<field>".
func validateRequest(req Request) error {
	details := map[string]string{}
	collect(details, "shipping", validate.Struct(req.Shipping))
	collect(details, "payment", validate.Struct(req.Payment))

	if _, seen := details["payment.card_number"]; !seen && !cardDigits.MatchString(security.NormalizeCardNumber(req.Payment.CardNumber)) {
		details["payment.card_number"] = "must be 12 to 19 digits"
	}
	if _, seen := details["payment.expiry_date"]; !seen && !expiryFormat.MatchString(req.Payment.ExpiryDate) {
		details["payment.expiry_date"] = "must be MM/YY"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func collect(details map[string]string, prefix string, err error) {
	if err == nil {
		return
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		details[prefix] = "is invalid"
		return
	}
	for _, fe := range errs {
		details[prefix+"."+fe.Field()] = message(fe)
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "numeric":
		return "must be numeric"
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
