package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func OnboardingRules() []Rule {
	return []Rule{
		{Rule: registerFn("task_type", taskTypeValidator)},
		{Rule: registerFn("task_status", taskStatusValidator)},
		{Rule: registerFn("task_priority", taskPriorityValidator)},
		{Rule: registerFn("document_status", documentStatusValidator)},
	}
}

func taskTypeValidator(fl validator.FieldLevel) bool {
	return domain.TaskType(fl.Field().String()).Valid()
}

func taskStatusValidator(fl validator.FieldLevel) bool {
	return domain.TaskStatus(fl.Field().String()).Valid()
}

func taskPriorityValidator(fl validator.FieldLevel) bool {
	return domain.TaskPriority(fl.Field().String()).Valid()
}

func documentStatusValidator(fl validator.FieldLevel) bool {
	return domain.DocumentStatus(fl.Field().String()).Valid()
}
