package server

import (
	"sync"

	"classbuzz/internal/zone"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
			_, err := zone.ParseMode(fl.Field().String())
			return err == nil
		})
	})
}

// validatePayload checks websocket payloads with the same validator and tags
// gin uses for HTTP bindings.
func validatePayload(payload any) error {
	registerValidators()
	return binding.Validator.ValidateStruct(payload)
}
