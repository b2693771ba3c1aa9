package controllers

import (
	"errors"
	"strings"

	apperrors "github.com/yashrajoria/storefront/errors"

	"github.com/go-playground/validator/v10"
)

// RequestValidator checks screen payloads and maps failures onto the
// messages the screens show.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(),
	}
}

// ValidateProductForm trims the text fields of form in place and validates it.
// Any missing field yields the generic "fill in all fields" failure.
func (rv *RequestValidator) ValidateProductForm(form *productForm) error {
	form.Description = strings.TrimSpace(form.Description)
	form.Brand = strings.TrimSpace(form.Brand)
	form.Model = strings.TrimSpace(form.Model)
	form.Currency = strings.ToUpper(strings.TrimSpace(form.Currency))

	err := rv.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation("Invalid product")
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return apperrors.ErrMissingFields
		}
	}
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Price":
			return apperrors.Validation("Price must be greater than zero.")
		case "Currency":
			return apperrors.Validation("Currency must be a three-letter code.")
		}
	}
	return apperrors.Validation("Invalid product")
}
