package services

import (
	"regexp"
	"sync"

	"vacai/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	themeColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	agentNameRe  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("themecolor", func(fl validator.FieldLevel) bool {
			return themeColorRe.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("agentname", func(fl validator.FieldLevel) bool {
			return agentNameRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateThemeColor accepts #rgb and #rrggbb.
func ValidateThemeColor(color string) error {
	if err := validatorInstance().Var(color, "required,themecolor"); err != nil {
		return domain.ValidationError{Field: "themeColor", Msg: "must be #rgb or #rrggbb", Err: err}
	}
	return nil
}

func validateAgentName(name string) error {
	if err := validatorInstance().Var(name, "required,agentname"); err != nil {
		return domain.ValidationError{Field: "agent", Msg: "must be 1-64 letters, digits, '_' or '-'", Err: err}
	}
	return nil
}
