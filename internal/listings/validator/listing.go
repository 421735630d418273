package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"suitespot/pkg/model"
	"suitespot/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type ListingValidator struct {
	validate *validator.Validate
}

func NewListingValidator() *ListingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &ListingValidator{
		validate: v,
	}
}

func (v *ListingValidator) Validate(listing *model.Listing) error {
	if err := v.validateStruct(listing); err != nil {
		return err
	}
	return v.validateBusinessRules(listing)
}

func (v *ListingValidator) ValidateReview(review *model.Review) error {
	return v.validateStruct(review)
}

func (v *ListingValidator) ValidateStatusUpdate(update *model.ListingStatusUpdate) error {
	return v.validateStruct(update)
}

func (v *ListingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ListingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// validateBusinessRules runs after tag validation passed.
func (v *ListingValidator) validateBusinessRules(listing *model.Listing) error {
	var errs ValidationErrors

	if sanitizer.ComparisonKey(listing.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title must contain letters or digits"})
	}
	if math.IsNaN(listing.Price) || math.IsInf(listing.Price, 0) {
		errs = append(errs, ValidationError{Field: "price", Message: "price must be a finite number"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
