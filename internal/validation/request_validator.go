package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/files"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// RequestValidator validates decoded API requests against their struct tags.
type RequestValidator struct {
	validator *validator.Validate
}

// NewRequestValidator creates a validator with the bhavcopy specific tags
// registered: "bhavdate" (ddmmyy or dd/mm/yy) and "exchange".
func NewRequestValidator() *RequestValidator {
	v := validator.New()

	v.RegisterValidation("bhavdate", isBhavDate)
	v.RegisterValidation("exchange", isExchange)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validator: v}
}

// ValidateStruct validates a struct and returns an *errors.APIError listing
// every failing field.
func (rv *RequestValidator) ValidateStruct(s interface{}) error {
	err := rv.validator.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

func isBhavDate(fl validator.FieldLevel) bool {
	_, err := files.ParseBhavDate(fl.Field().String())
	return err == nil
}

func isExchange(fl validator.FieldLevel) bool {
	_, err := domain.ParseExchange(fl.Field().String())
	return err == nil
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "bhavdate":
		return fmt.Sprintf("%s must be a date formatted as ddmmyy or dd/mm/yy", field)
	case "exchange":
		return fmt.Sprintf("%s must be a supported exchange (%s)", field, exchangeList())
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func exchangeList() string {
	tags := make([]string, 0, len(domain.Exchanges))
	for _, ex := range domain.Exchanges {
		tags = append(tags, ex.String())
	}
	return strings.Join(tags, ", ")
}
