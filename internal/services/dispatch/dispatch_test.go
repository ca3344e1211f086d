package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grishankov/letter-issuer/internal/lib/smtp"
	"github.com/grishankov/letter-issuer/internal/models"
)

// ClientMock реализует интерфейс smtp.Client
type ClientMock struct {
	mock.Mock
	data bytes.Buffer
}

func (m *ClientMock) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *ClientMock) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *ClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *ClientMock) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *ClientMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ smtp.Client = (*ClientMock)(nil)

type nopWriteCloser struct {
	*bytes.Buffer
}

func (nopWriteCloser) Close() error { return nil }

// TransportMock реализует интерфейс smtp.TransportInterface
type TransportMock struct {
	mock.Mock
	sender string
}

func (m *TransportMock) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *TransportMock) Sender() string { return m.sender }

var _ smtp.TransportInterface = (*TransportMock)(nil)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeAttachment(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "Offer_Letter_Jane_Roe.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))
	return path
}

func newHappyClient(t *testing.T, from, to string) (*ClientMock, *bytes.Buffer) {
	clientMock := new(ClientMock)
	body := &bytes.Buffer{}
	clientMock.On("Mail", from).Return(nil)
	clientMock.On("Rcpt", to).Return(nil)
	clientMock.On("Data").Return(nopWriteCloser{body}, nil)
	clientMock.On("Quit").Return(nil)
	clientMock.On("Close").Return(nil)
	return clientMock, body
}

func TestSend_OfferUsesHRTransport(t *testing.T) {
	defaultTransport := &TransportMock{sender: "letters@example.com"}
	hrTransport := &TransportMock{sender: "hr@example.com"}

	clientMock, body := newHappyClient(t, "hr@example.com", "jane@example.com")
	hrTransport.On("Connect").Return(clientMock, nil)

	svc := New(defaultTransport, hrTransport, newNoopLogger())

	err := svc.Send(context.Background(), models.LetterOffer,
		models.LetterFields{Name: "Jane Roe", Email: "jane@example.com"}, writeAttachment(t))
	require.NoError(t, err)

	// Служебный транспорт не использовался
	defaultTransport.AssertNotCalled(t, "Connect")

	message := body.String()
	assert.Contains(t, message, "Subject: ")
	assert.Contains(t, message, "Content-Type: application/pdf")
	assert.Contains(t, message, `filename="Offer_Letter_Jane_Roe.pdf"`)
	assert.Contains(t, message, "Jane Roe")
}

func TestSend_OtherKindsUseDefaultTransport(t *testing.T) {
	defaultTransport := &TransportMock{sender: "letters@example.com"}
	hrTransport := &TransportMock{sender: "hr@example.com"}

	clientMock, _ := newHappyClient(t, "letters@example.com", "john@example.com")
	defaultTransport.On("Connect").Return(clientMock, nil)

	svc := New(defaultTransport, hrTransport, newNoopLogger())

	err := svc.Send(context.Background(), models.LetterCampusAmbassador,
		models.LetterFields{Name: "John Doe", Email: "john@example.com"}, writeAttachment(t))
	require.NoError(t, err)
	hrTransport.AssertNotCalled(t, "Connect")
}

func TestSend_MissingAttachment(t *testing.T) {
	defaultTransport := &TransportMock{sender: "letters@example.com"}
	hrTransport := &TransportMock{sender: "hr@example.com"}

	svc := New(defaultTransport, hrTransport, newNoopLogger())

	err := svc.Send(context.Background(), models.LetterCampusAmbassador,
		models.LetterFields{Name: "John Doe", Email: "john@example.com"},
		filepath.Join(t.TempDir(), "gone.pdf"))

	require.Error(t, err)
	// До SMTP дело не дошло
	defaultTransport.AssertNotCalled(t, "Connect")
}

func TestSend_ConnectFailure(t *testing.T) {
	defaultTransport := &TransportMock{sender: "letters@example.com"}
	hrTransport := &TransportMock{sender: "hr@example.com"}
	defaultTransport.On("Connect").Return(nil, errors.New("dial tcp: connection refused"))

	svc := New(defaultTransport, hrTransport, newNoopLogger())

	err := svc.Send(context.Background(), models.LetterInternship,
		models.LetterFields{Name: "Rahul S", Email: "rahul@example.com"}, writeAttachment(t))
	require.Error(t, err)
}

func TestSend_RcptFailure(t *testing.T) {
	defaultTransport := &TransportMock{sender: "letters@example.com"}
	hrTransport := &TransportMock{sender: "hr@example.com"}

	clientMock := new(ClientMock)
	clientMock.On("Mail", "letters@example.com").Return(nil)
	clientMock.On("Rcpt", "bad@example.com").Return(errors.New("550 mailbox unavailable"))
	clientMock.On("Close").Return(nil)
	defaultTransport.On("Connect").Return(clientMock, nil)

	svc := New(defaultTransport, hrTransport, newNoopLogger())

	err := svc.Send(context.Background(), models.LetterCampusAmbassador,
		models.LetterFields{Name: "John Doe", Email: "bad@example.com"}, writeAttachment(t))
	require.Error(t, err)
	clientMock.AssertNotCalled(t, "Data")
}

func TestLetterTemplate(t *testing.T) {
	tests := []struct {
		name        string
		kind        models.LetterKind
		wantSubject string
		wantInBody  string
	}{
		{
			name:        "campus ambassador",
			kind:        models.LetterCampusAmbassador,
			wantSubject: "Campus Ambassador",
			wantInBody:  "John Doe",
		},
		{
			name:        "internship acceptance",
			kind:        models.LetterInternship,
			wantSubject: "Internship",
			wantInBody:  "John Doe",
		},
		{
			name:        "offer",
			kind:        models.LetterOffer,
			wantSubject: "Offer",
			wantInBody:  "Business Development Associate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := letterTemplate(tt.kind, models.LetterFields{Name: "John Doe", Domain: "Data Science"})
			assert.Contains(t, subject, tt.wantSubject)
			assert.Contains(t, body, tt.wantInBody)
		})
	}
}
