// Package models содержит доменные структуры, описывающие письма:
// вид письма, собранные в диалоге поля и пару сгенерированных файлов.
package models

// LetterKind вид выдаваемого письма.
type LetterKind string

const (
	LetterCampusAmbassador LetterKind = "campus_ambassador"
	LetterInternship       LetterKind = "internship_acceptance"
	LetterOffer            LetterKind = "offer_letter"
)

// Title возвращает человекочитаемое название вида письма,
// оно же используется в журнале активности.
func (k LetterKind) Title() string {
	switch k {
	case LetterCampusAmbassador:
		return "Campus Ambassador"
	case LetterInternship:
		return "Internship Acceptance"
	case LetterOffer:
		return "Offer Letter"
	default:
		return "Unknown"
	}
}

// LetterFields поля, собранные в диалоге для одного письма.
// Для каждого вида письма заполняется своё подмножество полей.
type LetterFields struct {
	Name         string // Полное имя получателя
	Email        string // Адрес получателя
	Domain       string // Направление стажировки (только internship)
	Month        string // Месяц начала стажировки (только internship)
	TrainingDate string // Дата начала обучения в формате 02-01-2006 (только offer)
}

// Artifact пара сгенерированных файлов: письмо и превью первой страницы.
// Файлы принадлежат сессии и удаляются при любом выходе из подтверждения.
type Artifact struct {
	DocumentPath string // Путь к PDF письма
	PreviewPath  string // Путь к PNG превью
}

// Student запись студента из клиентской таблицы (действие findStudent).
type Student struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Month  string `json:"month"`
	Domain string `json:"domain"`
}
