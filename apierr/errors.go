// Package apierr содержит типизированные ошибки клиента маркетплейса.
// Каждая ошибка относится к одному из видов (Kind); вид определяет,
// как вызывающий код может восстановиться после сбоя.
package apierr

import (
	"errors"
	"fmt"
)

// Kind — вид ошибки клиента.
type Kind uint8

const (
	// KindUnknown — ошибка сервера без локальной классификации.
	// Сообщение сервера передаётся вызывающему коду как есть.
	KindUnknown Kind = iota

	// KindValidation — некорректный ввод, обнаруженный до отправки запроса.
	KindValidation

	// KindAuthorization — роль или идентичность вызывающего не позволяет операцию.
	KindAuthorization

	// KindAuthentication — токен отсутствует, истёк или недействителен.
	// Единственный вид с побочным эффектом: принудительный сброс сессии.
	KindAuthentication

	// KindState — операция недопустима в текущем состоянии сущности.
	KindState

	// KindConflict — конкурентное изменение обесценило операцию
	// (товар уже продан, заказ уже оценён).
	KindConflict

	// KindTransport — ответ не получен: сетевая ошибка или таймаут.
	KindTransport
)

// String возвращает строковое представление вида ошибки.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindAuthentication:
		return "authentication"
	case KindState:
		return "state"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error — ошибка клиента с видом и человекочитаемым сообщением.
type Error struct {
	Kind    Kind   // Вид ошибки
	Code    int    // Код из конверта ответа (0 для локальных ошибок)
	Message string // Человекочитаемое сообщение для пользователя
	Err     error  // Обёрнутая причина (может быть nil)
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap возвращает обёрнутую причину для errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку заданного вида.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf создаёт ошибку заданного вида с форматированием сообщения.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation создаёт ошибку валидации (до отправки запроса).
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Authorization создаёт ошибку недостатка прав.
func Authorization(message string) *Error {
	return New(KindAuthorization, message)
}

// Authentication создаёт ошибку аутентификации.
func Authentication(message string) *Error {
	return New(KindAuthentication, message)
}

// State создаёт ошибку недопустимого состояния сущности.
func State(message string) *Error {
	return New(KindState, message)
}

// Conflict создаёт ошибку конкурентного изменения.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Transport создаёт транспортную ошибку, оборачивая причину.
func Transport(message string, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, Err: err}
}

// Server создаёт ошибку из конверта ответа сервера.
// Вид подбирается по коду конверта; неизвестные коды дают KindUnknown.
func Server(code int, message string) *Error {
	kind := KindUnknown
	switch code {
	case 400:
		kind = KindValidation
	case 401:
		kind = KindAuthentication
	case 403:
		kind = KindAuthorization
	case 409:
		kind = KindConflict
	}
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf возвращает вид ошибки.
// Для ошибок, не созданных этим пакетом, возвращает KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind проверяет, что ошибка относится к заданному виду.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
