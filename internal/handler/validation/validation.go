// Package validation registers the binding tags used by the request DTOs on
// gin's validator engine.
package validation

import (
	"fmt"

	"affiliate-notify/internal/domain/marketplace"
	"affiliate-notify/internal/domain/request"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register installs the platform and request_status tags. It is
// safe to call more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"platform":       validPlatform,
		"request_status": validRequestStatus,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func validPlatform(fl validator.FieldLevel) bool {
	_, err := marketplace.ParsePlatform(fl.Field().String())
	return err == nil
}

func validRequestStatus(fl validator.FieldLevel) bool {
	_, err := request.NewStatus(fl.Field().String())
	return err == nil
}
