package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/utils"
)

// ReportsService — отчёты о распределении вакцин.
//
// Количество и дата не валидируются и сохраняются как введены.
type ReportsService struct {
	repo      ReportsRepo
	homeLimit int
}

// NewReportsService создаёт сервис; homeLimit — сколько отчётов показывать на главной.
func NewReportsService(repo ReportsRepo, homeLimit int) *ReportsService {
	return &ReportsService{repo: repo, homeLimit: homeLimit}
}

// Submit сохраняет отчёт пользователя. Пустые заметки сохраняются как NULL.
func (s *ReportsService) Submit(ctx context.Context, userID uuid.UUID, in models.NewReport) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, serr.ErrUserIDEmpty
	}
	if in.Notes != nil {
		in.Notes = utils.NilIfBlank(*in.Notes)
	}
	return s.repo.Create(ctx, userID, in)
}

// History — все отчёты пользователя, новые первыми.
func (s *ReportsService) History(ctx context.Context, userID uuid.UUID) ([]models.Report, error) {
	if userID == uuid.Nil {
		return nil, serr.ErrUserIDEmpty
	}
	return s.repo.ListByUser(ctx, userID, 0)
}

// Recent — последние отчёты пользователя для главной страницы (не больше homeLimit).
func (s *ReportsService) Recent(ctx context.Context, userID uuid.UUID) ([]models.Report, error) {
	if userID == uuid.Nil {
		return nil, serr.ErrUserIDEmpty
	}
	return s.repo.ListByUser(ctx, userID, s.homeLimit)
}
