// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: {"success": bool, "error": "..."}.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
)

// Общие тексты ошибок.
const (
	MsgInternal        = "Internal server error"
	MsgInvalidBody     = "Invalid request body"
	MsgUserNotFound    = "User not found"
	MsgTooManyRequests = "Too many requests from this IP, please try again later."
)

// Response описывает базовую структуру JSON‑ответа сервера.
// Обработчики встраивают её в собственные структуры ответа.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK возвращает успешный Response с сообщением (может быть пустым).
func OK(msg string) Response {
	return Response{Success: true, Message: msg}
}

// Error возвращает Response с ошибкой.
func Error(msg string) Response {
	return Response{Success: false, Error: msg}
}

// WriteError пишет ошибку с HTTP-статусом.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
}

// ValidationError формирует Response на основе ошибок валидатора.
// Сообщения объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", err.Field()))
		case "email":
			msgs = append(msgs, "Valid email is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", err.Field(), strings.ReplaceAll(err.Param(), " ", ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(msgs, ", "))
}

// WriteValidationError пишет 400 с текстом ошибки валидации. Ошибки другого типа
// превращаются в общий текст про некорректное тело запроса.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		render.JSON(w, r, ValidationError(verrs))
		return
	}
	render.JSON(w, r, Error(MsgInvalidBody))
}
