package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"cargodesk/internal/access"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// money is validated as a float so gte/gt work on decimal fields
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Register custom validations
	if err := v.RegisterValidation("admin_role", validateAdminRole); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("numeric_id", validateNumericID); err != nil {
		panic(err)
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateAdminRole(fl playgroundvalidator.FieldLevel) bool {
	return access.Role(fl.Field().String()).Valid()
}

func validateNumericID(fl playgroundvalidator.FieldLevel) bool {
	id, err := strconv.ParseUint(fl.Field().String(), 10, 64)
	return err == nil && id > 0
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// Fields formats validation errors into a field to message map
func (ve ValidationErrors) Fields() map[string]string {
	errMap := make(map[string]string)
	for _, err := range ve {
		field := err.Field()
		param := err.Param()

		switch err.Tag() {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "gt":
			errMap[field] = fmt.Sprintf("%s must be greater than %s", field, param)
		case "gte":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "uuid":
			errMap[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "admin_role":
			errMap[field] = fmt.Sprintf("%s must be one of MANAGER, ADMIN, COOK", field)
		case "numeric_id":
			errMap[field] = fmt.Sprintf("%s must be a positive numeric id", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, err.Tag())
		}
	}
	return errMap
}
