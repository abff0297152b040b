// Package apierr содержит unit тесты типизированных ошибок.
package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestError_KindOf тестирует определение вида ошибки.
func TestError_KindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{
			name:     "ошибка валидации",
			err:      Validation("количество должно быть больше нуля"),
			expected: KindValidation,
		},
		{
			name:     "ошибка прав",
			err:      Authorization("операция доступна только продавцу"),
			expected: KindAuthorization,
		},
		{
			name:     "ошибка аутентификации",
			err:      Authentication("сессия истекла"),
			expected: KindAuthentication,
		},
		{
			name:     "ошибка состояния",
			err:      State("заказ нельзя отменить в текущем статусе"),
			expected: KindState,
		},
		{
			name:     "конфликт",
			err:      Conflict("заказ уже оценён"),
			expected: KindConflict,
		},
		{
			name:     "транспортная ошибка",
			err:      Transport("сетевая ошибка", errors.New("connection refused")),
			expected: KindTransport,
		},
		{
			name:     "обёрнутая ошибка сохраняет вид",
			err:      fmt.Errorf("отмена заказа: %w", State("недопустимый статус")),
			expected: KindState,
		},
		{
			name:     "посторонняя ошибка",
			err:      errors.New("что-то пошло не так"),
			expected: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.expected) || tt.expected == KindUnknown)
		})
	}
}

// TestError_Server тестирует маппинг кодов конверта в виды ошибок.
func TestError_Server(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected Kind
	}{
		{name: "код 400 — валидация", code: 400, expected: KindValidation},
		{name: "код 401 — аутентификация", code: 401, expected: KindAuthentication},
		{name: "код 403 — права", code: 403, expected: KindAuthorization},
		{name: "код 409 — конфликт", code: 409, expected: KindConflict},
		{name: "код 500 — без классификации", code: 500, expected: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Server(tt.code, "сообщение сервера")
			assert.Equal(t, tt.expected, err.Kind)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, "сообщение сервера", err.Message)
		})
	}
}

// TestError_Unwrap тестирует доступ к обёрнутой причине.
func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport("сетевая ошибка", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "сетевая ошибка")
	assert.Contains(t, err.Error(), "transport")
}
