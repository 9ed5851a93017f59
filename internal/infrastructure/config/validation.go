package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks a loaded Config against its struct tags and cross-field rules
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their config keys
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	v.RegisterStructValidation(validateLogging, LoggingConfig{})
	v.RegisterStructValidation(validateServer, ServerConfig{})
	v.RegisterStructValidation(validateRetry, RetryConfig{})

	return &Validator{validate: v}
}

// Validate runs the tag and struct-level rules against i
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s: %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			problems = append(problems, fmt.Sprintf("%s: %s (got %v)", key, fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(problems, "\n  "))
}

func validateLogging(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(LoggingConfig)
	if cfg.Output == "file" && cfg.FilePath == "" {
		sl.ReportError(cfg.FilePath, "file_path", "FilePath", "required_for_file_output", "")
	}
}

func validateServer(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(ServerConfig)
	if cfg.RequestTimeout < 0 {
		sl.ReportError(cfg.RequestTimeout, "request_timeout", "RequestTimeout", "non_negative", "")
	}
}

func validateRetry(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(RetryConfig)
	if cfg.BackoffMax > 0 && cfg.BackoffMax < cfg.BackoffBase {
		sl.ReportError(cfg.BackoffMax, "backoff_max", "BackoffMax", "gtefield", "backoff_base")
	}
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
