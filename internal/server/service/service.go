// Package service содержит бизнес-логику приложения (VaxReport).
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
package service

//go:generate mockgen -destination=mocks/mock_repos.go -package=mocks . UsersRepo,ReportsRepo,SessionsRepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/config"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/models"
)

// Repositories — набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users    UsersRepo
	Reports  ReportsRepo
	Sessions SessionsRepo
}

// Services — агрегатор всех сервисов приложения.
type Services struct {
	Auth    *AuthService
	Reports *ReportsService
}

// NewServices собирает все сервисы приложения.
// cfg нужен AuthService (параметры хеширования пароля) и ReportsService (лимит главной).
func NewServices(repos Repositories, cfg *config.Config) (*Services, error) {
	hasher, err := crypto.NewHasher(
		cfg.Password.Hasher,
		crypto.Argon2Params{
			Time:      cfg.Password.Argon2.Time,
			MemoryKiB: cfg.Password.Argon2.MemoryKiB,
			Threads:   cfg.Password.Argon2.Threads,
			KeyLen:    cfg.Password.Argon2.KeyLen,
			SaltLen:   cfg.Password.Argon2.SaltLen,
		},
		cfg.Password.Bcrypt.Cost,
	)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth:    NewAuthService(repos.Users, repos.Sessions, hasher),
		Reports: NewReportsService(repos.Reports, cfg.Reports.HomeLimit),
	}, nil
}

// UsersRepo — репозиторий пользователей (register/login/смена пароля).
type UsersRepo interface {
	Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (uuid.UUID, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// ReportsRepo — репозиторий отчётов.
type ReportsRepo interface {
	Create(ctx context.Context, userID uuid.UUID, in models.NewReport) (uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Report, error)
}

// SessionsRepo — то, что AuthService нужно от хранилища сессий.
type SessionsRepo interface {
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
