package sheets

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grishankov/letter-issuer/internal/config"
	"github.com/grishankov/letter-issuer/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.Sheets{
		ScriptURL:        srv.URL,
		StudentScriptURL: srv.URL,
		Timeout:          5 * time.Second,
	}, newNoopLogger())
}

func TestGetUserStatus_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getUserStatus", r.URL.Query().Get("action"))
		assert.Equal(t, "42", r.URL.Query().Get("user_id"))
		// Скрипт отдаёт JSON только браузерам
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(`{"status":"success","data":{"status":"active","expiry_date":"2026-12-31"}}`))
	})

	rec, err := client.GetUserStatus(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), rec.ExpiryDate)
}

func TestGetUserStatus_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"not_found","message":"no such user"}`))
	})

	_, err := client.GetUserStatus(context.Background(), 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserStatus_DirectoryError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"quota exceeded"}`))
	})

	_, err := client.GetUserStatus(context.Background(), 42)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserStatus_NonJSONResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>Temporarily unavailable</body></html>"))
	})

	_, err := client.GetUserStatus(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-JSON")
}

func TestRegisterNewUser(t *testing.T) {
	var gotParams map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotParams = map[string]string{
			"action":   r.URL.Query().Get("action"),
			"user_id":  r.URL.Query().Get("user_id"),
			"username": r.URL.Query().Get("username"),
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	err := client.RegisterNewUser(context.Background(), 42, "newbie")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"action":   "registerNewUser",
		"user_id":  "42",
		"username": "newbie",
	}, gotParams)
}

func TestUpdateSubscription_DirectoryError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"row not found"}`))
	})

	err := client.UpdateSubscription(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row not found")
}

func TestLogActivity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "logActivity", r.URL.Query().Get("action"))
		assert.Equal(t, "Offer Letter", r.URL.Query().Get("letter_type"))
		assert.Equal(t, "sent", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	err := client.LogActivity(context.Background(), models.ActivityRecord{
		LetterType:     "Offer Letter",
		RecipientName:  "Jane Roe",
		RecipientEmail: "jane@example.com",
		SentBy:         "tester",
		Outcome:        "sent",
	})
	require.NoError(t, err)
}

func TestFindStudent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "findStudent", r.URL.Query().Get("action"))
		assert.Equal(t, "Rahul S", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"name":"Rahul S","email":"rahul@example.com","month":"July","domain":"Data Science"}}`))
	})

	student, err := client.FindStudent(context.Background(), "Rahul S")
	require.NoError(t, err)
	assert.Equal(t, &models.Student{
		Name:   "Rahul S",
		Email:  "rahul@example.com",
		Month:  "July",
		Domain: "Data Science",
	}, student)
}

func TestFindStudent_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"not_found"}`))
	})

	_, err := client.FindStudent(context.Background(), "Missing Person")
	require.ErrorIs(t, err, ErrStudentNotFound)
}
