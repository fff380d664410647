package brevo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sagealpha/backend/email"
)

const endpoint = "https://api.brevo.com/v3/smtp/email"

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type sendRequest struct {
	Sender      address      `json:"sender"`
	To          []address    `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
	Attachment  []attachment `json:"attachment,omitempty"`
}

type brevoSender struct {
	options email.Options
	client  *http.Client
}

func (s *brevoSender) Send(ctx context.Context, msg email.Message) error {
	if !s.Configured() {
		return email.ErrNotConfigured
	}

	payload := sendRequest{
		Sender:      address{Email: s.options.From, Name: s.options.FromName},
		To:          []address{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}

	for _, att := range msg.Attachments {
		payload.Attachment = append(payload.Attachment, attachment{
			Name:    att.Filename,
			Content: base64.StdEncoding.EncodeToString(att.Content),
		})
	}

	bs, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("api-key", s.options.ApiKey)

	rsp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 400 {
		body, _ := io.ReadAll(rsp.Body)
		return fmt.Errorf("brevo status %s: %s", rsp.Status, body)
	}

	return nil
}

func (s *brevoSender) Configured() bool {
	return len(s.options.ApiKey) > 0
}

func NewSender(opts ...email.Option) email.Sender {
	options := email.NewOptions(opts...)

	return &brevoSender{
		options: options,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}
