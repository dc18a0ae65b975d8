package service

import (
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("alphanum_underscore", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for i, char := range value {
				// Cannot be started with a digit or underscore
				if i == 0 && (unicode.IsDigit(char) || char == '_') {
					return false
				}
				// Digits, letters or underscore
				if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
					return false
				}
			}
			return true
		})
		// Zero-padded YYYY-MM-DD only, so date range filtering can rely on
		// plain string comparison.
		validate.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if len(value) != 10 {
				return false
			}
			_, err := time.Parse("2006-01-02", value)
			return err == nil
		})
	})
}
