package models

import (
	"time"

	"github.com/google/uuid"
)

// Report — одна запись о распределении вакцины.
//
// Quantity и Date хранятся как введены пользователем, без разбора.
// Notes == nil, если заметки не заполнены.
type Report struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Vaccine   string
	Quantity  string
	Location  string
	Date      string
	Notes     *string
	CreatedAt time.Time
}

// NewReport — данные формы отправки отчёта.
type NewReport struct {
	Vaccine  string
	Quantity string
	Location string
	Date     string
	Notes    *string
}
