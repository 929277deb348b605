package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
)

// pgUniqueViolation — SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

type UsersRepository struct {
	db *sql.DB
}

func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create добавляет пользователя. Email должен быть уже нормализован.
//
// Уникальность email обеспечивает индекс users_email_lower_uidx,
// нарушение возвращается как ErrAlreadyExists.
func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	var id uuid.UUID

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash)
		 VALUES ($1,$2)
		 RETURNING id`,
		email, passwordHash,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return uuid.Nil, serr.ErrAlreadyExists
		}
		return uuid.Nil, serr.ErrInternal
	}

	return id, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (uuid.UUID, string, error) {
	var (
		id   uuid.UUID
		hash string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE lower(email)=lower($1)`,
		email,
	).Scan(&id, &hash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, "", serr.ErrNotFound
		}
		return uuid.Nil, "", serr.ErrInternal
	}

	return id, hash, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	u := models.User{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id=$1`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, serr.ErrNotFound
		}
		return models.User{}, serr.ErrInternal
	}

	return u, nil
}

// UpdatePasswordHash перезаписывает хэш пароля пользователя.
func (r *UsersRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash=$1 WHERE id=$2`,
		passwordHash, id,
	)
	if err != nil {
		return serr.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		return serr.ErrInternal
	}
	if n == 0 {
		return serr.ErrNotFound
	}
	return nil
}
