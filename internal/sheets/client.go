// Package sheets реализует клиент удалённого справочника — веб-приложения
// поверх таблицы. Справочник является источником истины о подписках,
// ведёт журнал отправленных писем и хранит клиентский список студентов.
// Все операции — GET-запросы с параметром action; ответ всегда JSON.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/grishankov/letter-issuer/internal/config"
	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
)

// Скрипт за прокси отдаёт HTML вместо JSON, если запрос похож на бота,
// поэтому представляемся браузером.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client клиент справочника.
type Client struct {
	scriptURL        string
	studentScriptURL string
	httpClient       *http.Client
	log              *slog.Logger
}

// New создаёт клиент справочника.
func New(cfg config.Sheets, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		scriptURL:        cfg.ScriptURL,
		studentScriptURL: cfg.StudentScriptURL,
		httpClient:       &http.Client{Timeout: timeout},
		log:              log,
	}
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type userStatusData struct {
	Status     string `json:"status"`
	ExpiryDate string `json:"expiry_date"`
}

func (c *Client) call(ctx context.Context, baseURL string, params url.Values) (*response, error) {
	const op = "sheets.call"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		// Скрипт иногда отвечает HTML-страницей об ошибке.
		c.log.Error("directory returned non-JSON response",
			slog.String("url", resp.Request.URL.Host), sl.Err(err))
		return nil, fmt.Errorf("%s: non-JSON response: %w", op, err)
	}
	return &out, nil
}

// GetUserStatus возвращает запись о подписке пользователя.
// Возвращает ErrUserNotFound, если пользователь не зарегистрирован,
// и обычную ошибку при любом транспортном или протокольном сбое.
func (c *Client) GetUserStatus(ctx context.Context, userID int64) (*models.UserRecord, error) {
	const op = "sheets.GetUserStatus"

	params := url.Values{}
	params.Set("action", "getUserStatus")
	params.Set("user_id", strconv.FormatInt(userID, 10))

	resp, err := c.call(ctx, c.scriptURL, params)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case "success":
		var data userStatusData
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fmt.Errorf("%s: malformed data: %w", op, err)
		}
		expiry, err := time.Parse(models.ExpiryLayout, data.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("%s: malformed expiry date %q: %w", op, data.ExpiryDate, err)
		}
		return &models.UserRecord{
			UserID:     userID,
			Status:     models.Status(data.Status),
			ExpiryDate: expiry,
		}, nil
	case "not_found":
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("%s: directory error: %s", op, resp.Message)
	}
}

// RegisterNewUser регистрирует нового пользователя в справочнике.
func (c *Client) RegisterNewUser(ctx context.Context, userID int64, username string) error {
	const op = "sheets.RegisterNewUser"

	params := url.Values{}
	params.Set("action", "registerNewUser")
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("username", username)

	resp, err := c.call(ctx, c.scriptURL, params)
	if err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("%s: directory error: %s", op, resp.Message)
	}
	return nil
}

// UpdateSubscription продлевает подписку пользователя в справочнике.
// Вызывается обработчиком платёжного вебхука; после успеха вызывающий
// обязан инвалидировать локальный кеш статуса.
func (c *Client) UpdateSubscription(ctx context.Context, userID int64) error {
	const op = "sheets.UpdateSubscription"

	params := url.Values{}
	params.Set("action", "updateSubscription")
	params.Set("user_id", strconv.FormatInt(userID, 10))

	resp, err := c.call(ctx, c.scriptURL, params)
	if err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("%s: directory error: %s", op, resp.Message)
	}
	return nil
}

// LogActivity добавляет запись в журнал справочника.
func (c *Client) LogActivity(ctx context.Context, rec models.ActivityRecord) error {
	const op = "sheets.LogActivity"

	params := url.Values{}
	params.Set("action", "logActivity")
	params.Set("letter_type", rec.LetterType)
	params.Set("recipient_name", rec.RecipientName)
	params.Set("recipient_email", rec.RecipientEmail)
	params.Set("sent_by", rec.SentBy)
	params.Set("status", rec.Outcome)

	resp, err := c.call(ctx, c.scriptURL, params)
	if err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("%s: directory error: %s", op, resp.Message)
	}
	return nil
}

// FindStudent ищет студента по имени в клиентской таблице.
// Возвращает ErrStudentNotFound, если записи нет.
func (c *Client) FindStudent(ctx context.Context, name string) (*models.Student, error) {
	const op = "sheets.FindStudent"

	params := url.Values{}
	params.Set("action", "findStudent")
	params.Set("name", name)

	resp, err := c.call(ctx, c.studentScriptURL, params)
	if err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, ErrStudentNotFound
	}

	var student models.Student
	if err := json.Unmarshal(resp.Data, &student); err != nil {
		return nil, fmt.Errorf("%s: malformed data: %w", op, err)
	}
	return &student, nil
}
