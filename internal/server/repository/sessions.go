// Package repository содержит реализации слоя доступа к данным (Repository layer).
//
// Репозитории инкапсулируют работу с БД и не содержат бизнес-логики.
// Все ошибки приводятся к доменным ошибкам из internal/shared/errors.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
)

// SessionsRepository хранит серверные сессии браузера в PostgreSQL.
//
// Браузер держит только непрозрачный токен, в таблице лежит его sha256
// и id пользователя. Используется как store=db для session.Manager.
type SessionsRepository struct {
	db *sql.DB
}

// NewSessionsRepository создает новый SessionsRepository.
func NewSessionsRepository(db *sql.DB) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// Create сохраняет сессию пользователя по хэшу токена.
//
// Ошибки:
//   - ErrAlreadyExists при коллизии хэша или ErrInternal при других ошибках БД
func (r *SessionsRepository) Create(ctx context.Context, tokenHash []byte, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id)
		 VALUES ($1,$2)`,
		tokenHash, userID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return serr.ErrAlreadyExists
		}
		return serr.ErrInternal
	}
	return nil
}

// Lookup возвращает id пользователя по хэшу токена.
//
// Ошибки:
//   - ErrNotFound если сессии нет или ErrInternal при ошибке БД
func (r *SessionsRepository) Lookup(ctx context.Context, tokenHash []byte) (uuid.UUID, error) {
	var userID uuid.UUID

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM sessions WHERE token_hash=$1`,
		tokenHash,
	).Scan(&userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, serr.ErrNotFound
		}
		return uuid.Nil, serr.ErrInternal
	}
	return userID, nil
}

// Delete удаляет одну сессию (logout). Отсутствие сессии ошибкой не считается.
func (r *SessionsRepository) Delete(ctx context.Context, tokenHash []byte) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash=$1`,
		tokenHash,
	); err != nil {
		return serr.ErrInternal
	}
	return nil
}

// DeleteAllForUser удаляет все сессии пользователя.
//
// Используется после смены пароля.
func (r *SessionsRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id=$1`,
		userID,
	); err != nil {
		return serr.ErrInternal
	}
	return nil
}
