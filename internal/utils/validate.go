package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the domain tags registered:
// currency, trip_status, item_type, role and api_key.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return currency.IsSupported(fl.Field().String())
		})
		_ = v.RegisterValidation("trip_status", oneOf(models.TripStatuses))
		_ = v.RegisterValidation("item_type", oneOf(models.ItemTypes))
		_ = v.RegisterValidation("role", oneOf([]string{models.RoleViewer, models.RoleEditor}))
		_ = v.RegisterValidation("api_key", oneOf(models.APIKeys))
		validate = v
	})
	return validate
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}

// ValidateStruct runs the validator and flattens failures into field -> message.
// A nil map means the struct is valid.
func ValidateStruct(s interface{}) map[string]string {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "currency":
		return "must be a supported currency code"
	case "trip_status":
		return "must be one of " + strings.Join(models.TripStatuses, ", ")
	case "item_type":
		return "must be one of " + strings.Join(models.ItemTypes, ", ")
	case "role":
		return "must be viewer or editor"
	case "api_key":
		return "must be one of " + strings.Join(models.APIKeys, ", ")
	default:
		return "is invalid"
	}
}
