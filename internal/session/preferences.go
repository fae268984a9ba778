package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Варианты темы
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

var validate = validator.New()

// Preferences настройки отображения. Ядро их не интерпретирует, только
// хранит рядом с документом.
type Preferences struct {
	PrimaryColor    string `json:"primaryColor" validate:"omitempty,hexcolor"`
	ThemeVariant    string `json:"themeVariant" validate:"omitempty,oneof=light dark system"`
	BackgroundImage string `json:"backgroundImage,omitempty" validate:"omitempty,url"`
	DarkMode        bool   `json:"darkMode"`
}

// DefaultPreferences настройки новой сессии.
func DefaultPreferences() Preferences {
	return Preferences{
		PrimaryColor: "#1976d2",
		ThemeVariant: ThemeSystem,
	}
}

// Validate проверяет значения полей.
func (p Preferences) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fmt.Sprintf("%s: %s", ve.Field(), describe(ve)))
	}
	return fmt.Errorf("invalid preferences: %s", strings.Join(messages, "; "))
}

func describe(ve validator.FieldError) string {
	switch ve.Tag() {
	case "hexcolor":
		return "must be a hex color like #1976d2"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
