// Package letterdates содержит расчёты дат для писем: окно обучения и
// стажировки в оффере, период стажировки по месяцу из клиентской таблицы.
// Здесь же живёт единственная валидация пользовательского ввода во всём
// диалоге — формат даты начала обучения.
package letterdates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// InputLayout формат дат, который вводит пользователь и который
// печатается в письмах.
const InputLayout = "02-01-2006"

// ErrInvalidDate дата не соответствует формату InputLayout.
// Диалог при этой ошибке повторяет запрос, не продвигая состояние.
var ErrInvalidDate = errors.New("invalid date format, expected DD-MM-YYYY")

// OfferWindow рассчитанные даты оффера.
type OfferWindow struct {
	Today           string // Дата выдачи письма
	TrainingRange   string // "начало to конец" обучения
	InternshipStart string
	InternshipEnd   string
}

// BuildOfferWindow считает окно обучения и стажировки от даты начала
// обучения: обучение 10 дней, стажировка начинается на следующий день
// и длится 6 месяцев.
func BuildOfferWindow(trainingFrom string, now time.Time) (OfferWindow, error) {
	start, err := time.Parse(InputLayout, strings.TrimSpace(trainingFrom))
	if err != nil {
		return OfferWindow{}, fmt.Errorf("%w: %q", ErrInvalidDate, trainingFrom)
	}

	trainingTo := start.AddDate(0, 0, 10)
	internshipStart := trainingTo.AddDate(0, 0, 1)
	internshipEnd := internshipStart.AddDate(0, 6, 0)

	return OfferWindow{
		Today:           now.Format(InputLayout),
		TrainingRange:   start.Format(InputLayout) + " to " + trainingTo.Format(InputLayout),
		InternshipStart: internshipStart.Format(InputLayout),
		InternshipEnd:   internshipEnd.Format(InputLayout),
	}, nil
}

// BuildInternshipPeriod считает период стажировки по названию месяца из
// клиентской таблицы: с 10-го числа этого месяца текущего года, два месяца.
func BuildInternshipPeriod(month string, now time.Time) (from, to string, err error) {
	name := normalizeMonth(month)
	start, parseErr := time.Parse("2 January 2006", fmt.Sprintf("10 %s %d", name, now.Year()))
	if parseErr != nil {
		return "", "", fmt.Errorf("invalid month from sheet %q: %w", month, ErrInvalidDate)
	}
	end := start.AddDate(0, 2, 0)
	return start.Format(InputLayout), end.Format(InputLayout), nil
}

// LongDate возвращает дату в длинном формате для шапки письма.
func LongDate(now time.Time) string {
	return now.Format("January 02, 2006")
}

func normalizeMonth(month string) string {
	m := strings.ToLower(strings.TrimSpace(month))
	if m == "" {
		return m
	}
	return strings.ToUpper(m[:1]) + m[1:]
}
