// Package auth содержит операции аутентификации клиента маркетплейса:
// вход, регистрацию и работу с профилем текущего пользователя.
package auth

import (
	"context"
	"fmt"

	"example.com/campus-market/api"
	"example.com/campus-market/apierr"
	"example.com/campus-market/pkg/logger"
	"example.com/campus-market/session"
)

// Service — операции аутентификации поверх шлюза запросов.
type Service struct {
	client  *api.Client
	session *session.Store
}

// NewService создаёт сервис аутентификации.
func NewService(client *api.Client, sess *session.Store) *Service {
	return &Service{
		client:  client,
		session: sess,
	}
}

// Login выполняет вход и атомарно устанавливает сессию.
func (s *Service) Login(ctx context.Context, account, password string) (*session.UserInfo, error) {
	log := logger.FromContext(ctx)

	req := LoginRequest{Account: account, Password: password}
	if err := validate.Struct(&req); err != nil {
		return nil, apierr.Validation("требуются логин и пароль")
	}

	var result LoginResult
	if err := s.client.Post(ctx, "/api/user/login", req, &result); err != nil {
		return nil, err
	}

	if err := s.session.SetSession(result.Token, &result.User); err != nil {
		return nil, fmt.Errorf("ошибка сохранения сессии: %w", err)
	}

	log.Info().
		Str("username", result.User.Username).
		Str("role", string(result.User.Role)).
		Msg("Вход выполнен")

	return s.session.User(), nil
}

// Register регистрирует нового пользователя.
// Сессию не устанавливает: сервер не выдаёт токен при регистрации,
// пользователь входит отдельным вызовом Login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.client.Post(ctx, "/api/user/register", req, nil); err != nil {
		return err
	}

	lg := logger.FromContext(ctx)
	lg.Info().
		Str("username", req.Username).
		Msg("Регистрация выполнена")
	return nil
}

// UserInfo запрашивает профиль текущего пользователя и
// обновляет копию в хранилище сессии.
func (s *Service) UserInfo(ctx context.Context) (*session.UserInfo, error) {
	var user session.UserInfo
	if err := s.client.Get(ctx, "/api/user/info", nil, &user); err != nil {
		return nil, err
	}

	// Свежий профиль дублируется в сессию, чтобы Role() и User()
	// отражали актуальное состояние.
	if s.session.Authenticated() {
		if err := s.session.SetUser(&user); err != nil {
			return nil, fmt.Errorf("ошибка обновления сессии: %w", err)
		}
	}

	return &user, nil
}

// UpdateUserInfo изменяет профиль текущего пользователя
// и перечитывает его в сессию.
func (s *Service) UpdateUserInfo(ctx context.Context, req UpdateUserInfoRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.client.Put(ctx, "/api/user/info", req, nil); err != nil {
		return err
	}

	_, err := s.UserInfo(ctx)
	return err
}

// Logout завершает сессию локально.
// Серверного вызова нет: токен перестаёт использоваться,
// срок его действия контролирует сервер.
func (s *Service) Logout() {
	if s.session.Logout() {
		logger.Info().Msg("Выход выполнен")
	}
}
