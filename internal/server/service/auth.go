package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/crypto"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/utils"
)

// AuthService реализует бизнес-логику аутентификации.
//
// Ответственность:
//   - регистрация пользователей
//   - аутентификация (логин)
//   - смена пароля с отзывом всех сессий
type AuthService struct {
	users    UsersRepo
	sessions SessionsRepo
	hasher   crypto.Hasher
}

// NewAuthService создаёт AuthService с зависимостями.
func NewAuthService(users UsersRepo, sessions SessionsRepo, hasher crypto.Hasher) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Register регистрирует нового пользователя.
//
// Проверки (без изменения БД при ошибке), в этом порядке:
//   - email и пароль обязательны
//   - email ещё не занят (в любом регистре)
//   - пароль совпадает с подтверждением
//
// Email приводится к нижнему регистру. Гонку двух одновременных регистраций
// отсекает уникальный индекс в БД, это тоже приходит как ErrAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, password, confirmation string) (uuid.UUID, error) {
	email = utils.NormalizeEmail(email)

	switch {
	case email == "":
		return uuid.Nil, serr.ErrEmailRequired
	case password == "":
		return uuid.Nil, serr.ErrPasswordRequired
	}

	_, _, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return uuid.Nil, serr.ErrAlreadyExists
	case !errors.Is(err, serr.ErrNotFound):
		return uuid.Nil, err
	}

	if password != confirmation {
		return uuid.Nil, serr.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return uuid.Nil, serr.ErrInternal
	}
	return s.users.Create(ctx, email, hash)
}

// Login проверяет email и пароль.
//
// Поведение:
//   - не раскрывает факт существования email: пустые поля, неизвестный email
//     и неверный пароль дают одну ошибку ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return uuid.Nil, serr.ErrInvalidCredentials
	}
	// получаем юзера по email
	userID, hash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// не палим существование email
		if errors.Is(err, serr.ErrNotFound) {
			return uuid.Nil, serr.ErrInvalidCredentials
		}
		return uuid.Nil, err
	}
	// проверяем пароль
	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		return uuid.Nil, serr.ErrInternal
	}
	if !ok {
		return uuid.Nil, serr.ErrInvalidCredentials
	}
	return userID, nil
}

// Email возвращает email пользователя для приветствия на главной.
func (s *AuthService) Email(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

// ChangePassword меняет пароль пользователя.
//
// Порядок проверок: все поля заполнены, старый пароль верный, новый совпадает
// с подтверждением. Сначала удаляются все сессии пользователя, затем
// пишется новый хэш: при сбое отзыва пароль остаётся прежним, а при сбое
// записи пользователь просто разлогинен.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmation string) error {
	switch {
	case userID == uuid.Nil:
		return serr.ErrUserIDEmpty
	case oldPassword == "":
		return serr.ErrOldPasswordRequired
	case newPassword == "":
		return serr.ErrNewPasswordRequired
	case confirmation == "":
		return serr.ErrConfirmationRequired
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(oldPassword, u.PasswordHash)
	if err != nil {
		return serr.ErrInternal
	}
	if !ok {
		return serr.ErrOldPasswordIncorrect
	}
	if newPassword != confirmation {
		return serr.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return serr.ErrInternal
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}
