package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	nationalIDPattern = regexp.MustCompile(`^\d{11}$`)
	phonePattern      = regexp.MustCompile(`^\d{10,11}$`)

	registerOnce sync.Once
)

// RegisterValidators installs the custom tags on gin's validator engine.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		v.RegisterValidation("nationalid", func(fl validator.FieldLevel) bool {
			return nationalIDPattern.MatchString(fl.Field().String())
		})
		v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})

		// decimals are validated through their string form
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && d.IsPositive()
		})
		v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative()
		})
		v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && HasMoneyScale(d)
		})
	})
}

// MoneyScale is the number of decimal places stored for amounts and balances.
const MoneyScale = 2

// HasMoneyScale reports whether d fits in MoneyScale decimal places without rounding.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// IsStrongPassword requires at least 8 characters with a letter and a digit.
func IsStrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// BindAndValidate binds the request body to the given object and validates it.
// If validation fails, it sends a formatted error response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondError(c, ValidationErrorFrom(err))
		return false
	}
	return true
}

// BindQuery is BindAndValidate for query strings.
func BindQuery(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindQuery(obj); err != nil {
		RespondError(c, ValidationErrorFrom(err))
		return false
	}
	return true
}

// ValidationErrorFrom converts a binding error into a field keyed AppError.
func ValidationErrorFrom(err error) *AppError {
	fields := map[string][]string{}

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		for _, e := range validationErrs {
			fields[e.Field()] = append(fields[e.Field()], fieldMessage(e))
		}
	case errors.As(err, &typeErr):
		fields[typeErr.Field] = append(fields[typeErr.Field],
			fmt.Sprintf("must be of type %s", typeErr.Type.String()))
	default:
		fields["body"] = []string{"malformed JSON or invalid request body"}
	}

	return NewValidationError(fields)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", e.Param())
	case "numeric":
		return "must contain only digits"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "nationalid":
		return "must contain exactly 11 digits"
	case "phone":
		return "must contain 10 or 11 digits"
	case "password":
		return "must be at least 8 characters and contain a letter and a digit"
	case "positive":
		return "must be greater than zero"
	case "nonnegative":
		return "cannot be negative"
	case "money":
		return "must have at most 2 decimal places"
	case "nefield":
		return fmt.Sprintf("must differ from %s", e.Param())
	}
	return fmt.Sprintf("failed on the '%s' rule", e.Tag())
}
