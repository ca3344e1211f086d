// Package dispatch реализует отправку готовых писем по электронной почте.
// Письмо собирается как multipart MIME: HTML-текст плюс вложение PDF.
// Офферы уходят от имени HR, остальные виды — от служебного адреса.
package dispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/lib/smtp"
	"github.com/grishankov/letter-issuer/internal/models"
)

// Service сервис отправки писем.
type Service struct {
	defaultTransport smtp.TransportInterface
	hrTransport      smtp.TransportInterface
	log              *slog.Logger
}

// New создает новый экземпляр Service.
func New(defaultTransport, hrTransport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		defaultTransport: defaultTransport,
		hrTransport:      hrTransport,
		log:              log,
	}
}

// Send отправляет письмо получателю с вложенным документом.
// Любая ошибка означает, что письмо не доставлено; повторная отправка
// не выполняется — решение остаётся за пользователем.
func (s *Service) Send(ctx context.Context, kind models.LetterKind, fields models.LetterFields, attachmentPath string) error {
	const op = "dispatch.Send"
	log := s.log.With(slog.String("op", op), slog.String("kind", string(kind)))

	transport := s.defaultTransport
	if kind == models.LetterOffer {
		transport = s.hrTransport
	}

	attachment, err := os.ReadFile(attachmentPath)
	if err != nil {
		return fmt.Errorf("%s: read attachment: %w", op, err)
	}

	subject, body := letterTemplate(kind, fields)
	msg, err := buildMessage(transport.Sender(), fields.Email, subject, body,
		filepath.Base(attachmentPath), attachment)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	client, err := transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(transport.Sender()); err != nil {
		log.Error("failed to set MAIL FROM", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(fields.Email); err != nil {
		log.Error("failed to set RCPT TO", slog.String("recipient", fields.Email), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = wc.Write(msg); err != nil {
		log.Error("failed to write message", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		log.Error("failed to close data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("letter dispatched", slog.String("recipient", fields.Email))
	return nil
}

// buildMessage собирает multipart/mixed сообщение: HTML плюс PDF вложение.
func buildMessage(from, to, subject, htmlBody, attachmentName string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n"+
		"Content-Type: multipart/mixed; boundary=%q\r\n\r\n", from, to, subject, mw.Boundary())

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=\"UTF-8\""},
	})
	if err != nil {
		return nil, err
	}
	if _, err = htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	attPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachmentName)},
	})
	if err != nil {
		return nil, err
	}
	if err = writeBase64(attPart, attachment); err != nil {
		return nil, err
	}

	if err = mw.Close(); err != nil {
		return nil, err
	}

	return append([]byte(headers), buf.Bytes()...), nil
}

// writeBase64 кодирует вложение строками по 76 символов, как требует MIME.
func writeBase64(w interface{ Write([]byte) (int, error) }, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
