// Package artifact управляет жизненным циклом сгенерированных файлов.
// Пара документ+превью принадлежит одной сессии диалога; Release обязан
// вызываться на каждом пути выхода из подтверждения — успех, сбой,
// отмена или отказ гейткипера.
package artifact

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
)

// Renderer генерирует пару файлов для письма.
type Renderer interface {
	Render(ctx context.Context, kind models.LetterKind, fields models.LetterFields) (*models.Artifact, error)
}

// Manager владеет сгенерированными файлами на время сессии.
type Manager struct {
	renderer Renderer
	log      *slog.Logger
}

// New создает новый экземпляр Manager.
func New(renderer Renderer, log *slog.Logger) *Manager {
	return &Manager{renderer: renderer, log: log}
}

// Create генерирует письмо и превью через рендерер.
func (m *Manager) Create(ctx context.Context, kind models.LetterKind, fields models.LetterFields) (*models.Artifact, error) {
	return m.renderer.Render(ctx, kind, fields)
}

// Release удаляет оба файла артефакта. Вызов идемпотентен: повторный
// Release, nil-артефакт или уже отсутствующий файл не являются ошибкой.
func (m *Manager) Release(a *models.Artifact) {
	if a == nil {
		return
	}
	m.removeFile(&a.DocumentPath)
	m.removeFile(&a.PreviewPath)
}

func (m *Manager) removeFile(path *string) {
	if *path == "" {
		return
	}
	if err := os.Remove(*path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.log.Warn("failed to remove artifact file", slog.String("path", *path), sl.Err(err))
		return
	}
	*path = ""
}
