package validation

import (
	"fmt"
	"regexp"
)

// PageKeyPattern определяет допустимый формат ключа страницы
// Только строчные латинские буквы (a-z), цифры (0-9) и дефис (-),
// первый символ буква или цифра
var PageKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ColorPattern определяет допустимый формат цвета кисти: #RGB или #RRGGBB
var ColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

const (
	// MinPageKeyLen минимальная длина ключа страницы
	MinPageKeyLen = 2
	// MaxPageKeyLen максимальная длина ключа страницы
	MaxPageKeyLen = 64
)

// ValidatePageKey проверяет, что ключ страницы соответствует требованиям
// Формат: строчные латинские буквы, цифры и дефис, длина 2-64 символа
func ValidatePageKey(key string) error {
	if key == "" {
		return fmt.Errorf("page key cannot be empty")
	}

	if len(key) < MinPageKeyLen {
		return fmt.Errorf("page key must be at least %d characters long", MinPageKeyLen)
	}

	if len(key) > MaxPageKeyLen {
		return fmt.Errorf("page key must not exceed %d characters", MaxPageKeyLen)
	}

	if !PageKeyPattern.MatchString(key) {
		return fmt.Errorf("page key can only contain lowercase letters (a-z), numbers (0-9), and dashes (-)")
	}

	return nil
}

// ValidateColor проверяет формат цвета кисти (#RGB или #RRGGBB)
func ValidateColor(color string) error {
	if color == "" {
		return fmt.Errorf("color cannot be empty")
	}

	if !ColorPattern.MatchString(color) {
		return fmt.Errorf("color must be in #RGB or #RRGGBB format, got %q", color)
	}

	return nil
}
