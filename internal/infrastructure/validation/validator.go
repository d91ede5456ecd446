package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

type Rule struct {
	Rule func(v *validator.Validate)
}

// Validator wraps go-playground/validator and reports failures as
// domain.ErrInvalidInput.
type Validator struct {
	validator *validator.Validate
}

func New() *Validator {
	v := &Validator{validator: validator.New(validator.WithRequiredStructEnabled())}
	v.Register(OnboardingRules()...)
	return v
}

func (v *Validator) Register(rules ...Rule) {
	for _, rule := range rules {
		rule.Rule(v.validator)
	}
}

func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrInvalidInput, "validate", errors.New(describe(fieldErrs)))
	}
	return domain.WrapError(domain.ErrInvalidInput, "validate", err)
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Tag() == "required" {
			parts = append(parts, fmt.Sprintf("%s is required", fe.Namespace()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v is not a valid %s", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
