package artifact

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grishankov/letter-issuer/internal/models"
)

// RendererMock реализует интерфейс Renderer
type RendererMock struct {
	mock.Mock
}

func (m *RendererMock) Render(ctx context.Context, kind models.LetterKind, fields models.LetterFields) (*models.Artifact, error) {
	args := m.Called(ctx, kind, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artifact), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTempFiles(t *testing.T) *models.Artifact {
	dir := t.TempDir()
	doc := filepath.Join(dir, "letter.pdf")
	preview := filepath.Join(dir, "letter.png")
	require.NoError(t, os.WriteFile(doc, []byte("pdf"), 0o644))
	require.NoError(t, os.WriteFile(preview, []byte("png"), 0o644))
	return &models.Artifact{DocumentPath: doc, PreviewPath: preview}
}

func TestCreate_DelegatesToRenderer(t *testing.T) {
	rendererMock := new(RendererMock)
	want := &models.Artifact{DocumentPath: "doc.pdf", PreviewPath: "doc.png"}
	rendererMock.On("Render", mock.Anything, models.LetterOffer,
		models.LetterFields{Name: "Jane Roe"}).Return(want, nil)

	mgr := New(rendererMock, newNoopLogger())

	got, err := mgr.Create(context.Background(), models.LetterOffer, models.LetterFields{Name: "Jane Roe"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRelease_RemovesBothFiles(t *testing.T) {
	mgr := New(new(RendererMock), newNoopLogger())
	art := writeTempFiles(t)
	doc, preview := art.DocumentPath, art.PreviewPath

	mgr.Release(art)

	assert.NoFileExists(t, doc)
	assert.NoFileExists(t, preview)
	// Пути очищены, повторный Release ничего не делает
	assert.Empty(t, art.DocumentPath)
	assert.Empty(t, art.PreviewPath)
}

func TestRelease_Idempotent(t *testing.T) {
	mgr := New(new(RendererMock), newNoopLogger())
	art := writeTempFiles(t)

	mgr.Release(art)
	mgr.Release(art)
	mgr.Release(nil)
}

func TestRelease_MissingFileIsNotAnError(t *testing.T) {
	mgr := New(new(RendererMock), newNoopLogger())
	art := &models.Artifact{
		DocumentPath: filepath.Join(t.TempDir(), "never_created.pdf"),
		PreviewPath:  filepath.Join(t.TempDir(), "never_created.png"),
	}

	mgr.Release(art)

	assert.Empty(t, art.DocumentPath)
	assert.Empty(t, art.PreviewPath)
}
