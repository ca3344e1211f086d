package paymentprovider

// CreateLinkRequest запрос на создание платёжной ссылки.
type CreateLinkRequest struct {
	Amount         int               `json:"amount"` // Сумма в минорных единицах
	Currency       string            `json:"currency"`
	AcceptPartial  bool              `json:"accept_partial"`
	Description    string            `json:"description"`
	Notes          map[string]string `json:"notes"`
	ReminderEnable bool              `json:"reminder_enable"`
}

// CreateLinkResponse ответ провайдера на создание ссылки.
type CreateLinkResponse struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	Status   string `json:"status"`
}

// WebhookPayload тело вебхука провайдера о событии платежа.
type WebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink struct {
			Entity struct {
				ID     string            `json:"id"`
				Status string            `json:"status"`
				Notes  map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}
