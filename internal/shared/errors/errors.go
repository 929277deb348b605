// Package errors содержит общие доменные ошибки приложения.
//
// Эти ошибки используются в service и repository слоях
// и маппятся на страницы-извинения (apology) в api слое.
package errors

import "errors"

var (
	// Неверные учётные данные
	ErrInvalidCredentials = errors.New("invalid credentials")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
	// Ресурс уже существует (например email уже занят)
	ErrAlreadyExists = errors.New("already exists")
	// Ресурс не найден
	ErrNotFound = errors.New("not found")
)

// ошибки форм регистрации и смены пароля
var (
	ErrEmailRequired        = errors.New("email required")
	ErrPasswordRequired     = errors.New("password required")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrOldPasswordRequired  = errors.New("old password required")
	ErrNewPasswordRequired  = errors.New("new password required")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")
	ErrUserIDEmpty          = errors.New("user id cannot be empty")
)
