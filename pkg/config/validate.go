package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/getmockd/harplay/pkg/replay"
)

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validator checks a resolved Config.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with harplay's custom rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("behaviour", func(fl validator.FieldLevel) bool {
		_, err := replay.ParseBehaviour(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return logLevels[strings.ToLower(fl.Field().String())]
	})
	return &Validator{validate: v}
}

// Validate checks struct rules, then the cross-field rules tags cannot
// express.
func (cv *Validator) Validate(cfg *Config) error {
	if err := cv.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, describe(e))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.AdminAddr != "" && sameAddr(cfg.Bind, cfg.AdminAddr) {
		return fmt.Errorf("invalid configuration: bind and adminAddr cannot be the same (%s)", cfg.Bind)
	}
	return nil
}

// Validate checks cfg with a fresh Validator.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

func describe(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "hostname_port":
		return fmt.Sprintf("%s %q is not a host:port address", field, e.Value())
	case "behaviour":
		return fmt.Sprintf("%s %q is not one of %s", field, e.Value(), strings.Join(replay.Behaviours(), ", "))
	case "loglevel":
		return fmt.Sprintf("%s %q is not a log level", field, e.Value())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of %s", field, e.Value(), e.Param())
	case "min", "max", "gte":
		return fmt.Sprintf("%s %v is out of range (%s %s)", field, e.Value(), e.Tag(), e.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, e.Tag())
	}
}

func sameAddr(a, b string) bool {
	ha, pa, errA := net.SplitHostPort(a)
	hb, pb, errB := net.SplitHostPort(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return pa == pb && (ha == hb || ha == "" || hb == "" || ha == "0.0.0.0" || hb == "0.0.0.0")
}
