package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
)

// ReportsRepository реализует доступ к отчётам о распределении вакцин (PostgreSQL).
// Отвечает исключительно за сохранение и извлечение данных без бизнес-логики.
type ReportsRepository struct {
	db *sql.DB
}

// NewReportsRepository создаёт новый экземпляр ReportsRepository.
func NewReportsRepository(db *sql.DB) *ReportsRepository {
	return &ReportsRepository{db: db}
}

// Create сохраняет новый отчёт пользователя.
//
// created_at проставляет база, notes == nil сохраняется как NULL.
func (r *ReportsRepository) Create(ctx context.Context, userID uuid.UUID, in models.NewReport) (uuid.UUID, error) {
	var id uuid.UUID

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reports (user_id, vaccine, quantity, location, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		userID,
		in.Vaccine,
		in.Quantity,
		in.Location,
		in.Date,
		in.Notes,
	).Scan(&id)

	if err != nil {
		return uuid.Nil, serr.ErrInternal
	}
	return id, nil
}

const listReportsQuery = `
	SELECT id, user_id, vaccine, quantity, location, date, notes, created_at
	FROM reports
	WHERE user_id = $1
	ORDER BY created_at DESC, seq DESC`

// ListByUser возвращает отчёты пользователя, самые новые первыми.
//
// limit <= 0 — без ограничения.
func (r *ReportsRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Report, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, listReportsQuery+` LIMIT $2`, userID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, listReportsQuery, userID)
	}
	if err != nil {
		return nil, serr.ErrInternal
	}
	defer rows.Close()

	out := make([]models.Report, 0)
	for rows.Next() {
		var (
			rep   models.Report
			notes sql.NullString
		)
		if err := rows.Scan(
			&rep.ID,
			&rep.UserID,
			&rep.Vaccine,
			&rep.Quantity,
			&rep.Location,
			&rep.Date,
			&notes,
			&rep.CreatedAt,
		); err != nil {
			return nil, serr.ErrInternal
		}
		if notes.Valid {
			s := notes.String
			rep.Notes = &s
		}
		out = append(out, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, serr.ErrInternal
	}
	return out, nil
}
