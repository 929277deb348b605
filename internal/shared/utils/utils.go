// Утилитарные функции общего назначения
package utils

import "strings"

func StrPtr(s string) *string {
	return &s
}

// NilIfBlank возвращает nil для пустой (или из одних пробелов) строки.
// Нужен, чтобы необязательные поля форм попадали в БД как NULL.
func NilIfBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// NormalizeEmail приводит email к единому виду: без пробелов по краям и в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
