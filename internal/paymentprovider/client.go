// Package paymentprovider реализует клиент платёжного провайдера:
// создание одноразовых платёжных ссылок для оплаты доступа на 30 дней.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/grishankov/letter-issuer/internal/config"
)

// Client клиент платёжного провайдера.
type Client struct {
	keyID       string
	keySecret   string
	apiURL      string
	amountMinor int
	currency    string
	httpClient  *http.Client
}

// NewClient создаёт новый клиент платёжного провайдера.
func NewClient(cfg config.Payments) *Client {
	return &Client{
		keyID:       cfg.KeyID,
		keySecret:   cfg.KeySecret,
		apiURL:      cfg.APIURL,
		amountMinor: cfg.AmountMinor,
		currency:    cfg.Currency,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateLink создаёт одноразовую платёжную ссылку для пользователя.
// Идентификатор пользователя кладётся в notes: по нему вебхук провайдера
// потом определяет, чью подписку продлевать.
func (c *Client) CreateLink(ctx context.Context, userID int64) (string, error) {
	reqBody := CreateLinkRequest{
		Amount:        c.amountMinor,
		Currency:      c.currency,
		AcceptPartial: false,
		Description:   "30 days of full access",
		Notes: map[string]string{
			"chat_user_id": strconv.FormatInt(userID, 10),
		},
		ReminderEnable: false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/payment_links", &buf)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errors.New("unexpected status: " + resp.Status)
	}

	var linkResp CreateLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&linkResp); err != nil {
		return "", err
	}
	if linkResp.ShortURL == "" {
		return "", errors.New("provider returned empty payment link")
	}
	return linkResp.ShortURL, nil
}
