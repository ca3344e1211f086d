package renderer

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// ExecOverlay адаптер к внешним утилитам наложения текста и растеризации.
// Формат аргументов фиксирован контрактом утилит:
//
//	<stamp_bin> -in tpl.pdf -out letter.pdf [-pages N] -text "x,y,size,строка"...
//	<preview_bin> -in letter.pdf -out preview.png
type ExecOverlay struct {
	StampBin   string
	PreviewBin string
}

// Stamp накладывает текст на шаблон и пишет результат в outputPath.
func (o *ExecOverlay) Stamp(ctx context.Context, templatePath, outputPath string, keepPages int, stamps []TextStamp) error {
	const op = "renderer.ExecOverlay.Stamp"

	args := []string{"-in", templatePath, "-out", outputPath}
	if keepPages > 0 {
		args = append(args, "-pages", strconv.Itoa(keepPages))
	}
	for _, s := range stamps {
		args = append(args, "-text", fmt.Sprintf("%g,%g,%g,%s", s.X, s.Y, s.FontSize, s.Text))
	}

	if out, err := exec.CommandContext(ctx, o.StampBin, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", op, err, out)
	}
	return nil
}

// Preview рендерит первую страницу документа в PNG.
func (o *ExecOverlay) Preview(ctx context.Context, documentPath, previewPath string) error {
	const op = "renderer.ExecOverlay.Preview"

	if out, err := exec.CommandContext(ctx, o.PreviewBin, "-in", documentPath, "-out", previewPath).CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", op, err, out)
	}
	return nil
}
