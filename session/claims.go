package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry возвращает срок действия текущего токена, если токен
// оказался JWT с заявленным exp. Подпись НЕ проверяется — токен для
// клиента непрозрачен, а срок действия нужен только как подсказка
// пользователю ("сессия истекает через N минут"). Авторитетный ответ
// всегда за сервером: просроченный токен даст 401.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
