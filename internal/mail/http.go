package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPSender posts messages to a Resend-compatible JSON email API.
type HTTPSender struct {
	client *resty.Client
	from   string
}

type httpEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type httpEmailError struct {
	Message string `json:"message"`
}

func NewHTTPSender(baseURL string, apiKey string, from string) (*HTTPSender, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("mail api url is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPSender{client: client, from: from}, nil
}

func (sender *HTTPSender) Send(ctx context.Context, message Message) error {
	if strings.TrimSpace(message.To) == "" {
		return ErrNoRecipient
	}

	request := sender.client.R().
		SetContext(ctx).
		SetBody(&httpEmailRequest{
			From:    sender.from,
			To:      []string{message.To},
			Subject: message.Subject,
			HTML:    message.HTML,
		}).
		SetError(&httpEmailError{})
	if message.ID != "" {
		request.SetHeader("Idempotency-Key", message.ID)
	}

	resp, err := request.Post("/emails")
	if err != nil {
		return fmt.Errorf("mail api request: %w", err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*httpEmailError); ok && apiErr.Message != "" {
			return fmt.Errorf("mail api status %d: %s", resp.StatusCode(), apiErr.Message)
		}
		return fmt.Errorf("mail api status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
