// Package renderer готовит персонализированные письма: выбирает шаблон,
// считает даты, расставляет текст по координатам шаблона и получает превью
// первой страницы. Само наложение текста и растеризация — забота внешнего
// движка, который описан интерфейсом Overlay.
package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/grishankov/letter-issuer/internal/lib/letterdates"
	"github.com/grishankov/letter-issuer/internal/models"
)

// TextStamp один фрагмент текста с координатами на первой странице шаблона.
type TextStamp struct {
	X, Y     float64
	Text     string
	FontSize float64
}

// Overlay внешний движок наложения: печатает текст по координатам и
// рендерит превью первой страницы. keepPages ограничивает число страниц
// результата; ноль означает все страницы шаблона.
type Overlay interface {
	Stamp(ctx context.Context, templatePath, outputPath string, keepPages int, stamps []TextStamp) error
	Preview(ctx context.Context, documentPath, previewPath string) error
}

// Соответствие направления стажировки шаблону письма.
var domainTemplates = map[string]string{
	"artificial intelligence":       "ai-internship.pdf",
	"machine learning":              "ml-internship.pdf",
	"web development":               "wd-internship.pdf",
	"cybersecurity":                 "cs-internship.pdf",
	"data science":                  "ds-internship.pdf",
	"digital marketing":             "dm-internship.pdf",
	"human resourses":               "hr-internship.pdf",
	"finance":                       "fi-internship.pdf",
	"financial modeling & analysis": "fi-internship.pdf",
	"financial modeling & valuation": "fi-internship.pdf",
	"cloud computing":               "cc-internship.pdf",
}

// Service рендерер писем.
type Service struct {
	overlay      Overlay
	templatesDir string
	outputDir    string
	log          *slog.Logger
	now          func() time.Time
}

// New создает новый экземпляр Service.
func New(overlay Overlay, templatesDir, outputDir string, log *slog.Logger) *Service {
	return &Service{
		overlay:      overlay,
		templatesDir: templatesDir,
		outputDir:    outputDir,
		log:          log,
		now:          time.Now,
	}
}

// Render генерирует письмо и превью для указанного вида и полей.
// Ошибка формата даты обучения возвращается как letterdates.ErrInvalidDate,
// чтобы диалог мог повторить запрос вместо прерывания.
func (s *Service) Render(ctx context.Context, kind models.LetterKind, fields models.LetterFields) (*models.Artifact, error) {
	const op = "renderer.Render"

	var (
		template  string
		prefix    string
		keepPages int
		stamps    []TextStamp
	)

	switch kind {
	case models.LetterCampusAmbassador:
		template = "campus_ambassador.pdf"
		prefix = "CA"
		keepPages = 2
		stamps = []TextStamp{
			{X: 110, Y: 244, Text: fields.Name, FontSize: 18},
			{X: 423, Y: 245, Text: letterdates.LongDate(s.now()), FontSize: 14},
		}

	case models.LetterInternship:
		tpl, ok := domainTemplates[strings.ToLower(strings.TrimSpace(fields.Domain))]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownDomain, fields.Domain)
		}
		from, to, err := letterdates.BuildInternshipPeriod(fields.Month, s.now())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		template = tpl
		prefix = "Internship"
		stamps = []TextStamp{
			{X: 262, Y: 307, Text: fields.Name, FontSize: 12},
			{X: 365, Y: 560, Text: from, FontSize: 11},
			{X: 448, Y: 560, Text: to, FontSize: 11},
		}

	case models.LetterOffer:
		window, err := letterdates.BuildOfferWindow(fields.TrainingDate, s.now())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		template = "offer_letter.pdf"
		prefix = "Offer"
		keepPages = 3
		stamps = []TextStamp{
			{X: 91, Y: 293, Text: fields.Name, FontSize: 10},
			{X: 94, Y: 253, Text: window.Today, FontSize: 10},
			{X: 136, Y: 374, Text: window.TrainingRange, FontSize: 10},
			{X: 170, Y: 401, Text: window.InternshipStart, FontSize: 10},
			{X: 163, Y: 428, Text: window.InternshipEnd, FontSize: 10},
		}

	default:
		return nil, fmt.Errorf("%s: unknown letter kind %q", op, kind)
	}

	documentPath := filepath.Join(s.outputDir,
		fmt.Sprintf("%s_Letter_%s.pdf", prefix, strings.ReplaceAll(fields.Name, " ", "_")))
	previewPath := strings.TrimSuffix(documentPath, ".pdf") + ".png"

	if err := s.overlay.Stamp(ctx, filepath.Join(s.templatesDir, template), documentPath, keepPages, stamps); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.overlay.Preview(ctx, documentPath, previewPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("letter rendered",
		slog.String("kind", string(kind)), slog.String("document", documentPath))

	return &models.Artifact{DocumentPath: documentPath, PreviewPath: previewPath}, nil
}
