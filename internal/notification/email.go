// internal/notification/email.go

package notification

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendFunc delivers one message and returns the provider's HTTP status
type SendFunc func(ctx context.Context, msg *mail.SGMailV3) (int, error)

// SendGridSender returns a SendFunc backed by the SendGrid API
func SendGridSender(apiKey string) SendFunc {
	client := sendgrid.NewSendClient(apiKey)
	return func(ctx context.Context, msg *mail.SGMailV3) (int, error) {
		resp, err := client.SendWithContext(ctx, msg)
		if err != nil {
			return 0, err
		}
		return resp.StatusCode, nil
	}
}

// EmailDispatcher sends events by email
type EmailDispatcher struct {
	send     SendFunc
	from     *mail.Email
	contacts ContactLookup
}

func NewEmailDispatcher(send SendFunc, fromAddress string, contacts ContactLookup) *EmailDispatcher {
	return &EmailDispatcher{
		send:     send,
		from:     mail.NewEmail("Covenant", fromAddress),
		contacts: contacts,
	}
}

func (d *EmailDispatcher) Name() string { return "email" }

func (d *EmailDispatcher) Dispatch(ctx context.Context, ev Event) error {
	if d.send == nil {
		return ErrNotConfigured
	}
	contact, err := d.contacts.Contact(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if contact.Email == "" {
		return ErrNoContact
	}

	to := mail.NewEmail(contact.Name, contact.Email)
	htmlContent := fmt.Sprintf("<h2>%s</h2><p>%s</p>", html.EscapeString(ev.Title), html.EscapeString(ev.Body))
	msg := mail.NewSingleEmail(d.from, ev.Title, to, ev.Body, htmlContent)

	status, err := d.send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", status)
	}
	return nil
}
