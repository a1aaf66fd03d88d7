// internal/notification/sms.go

package notification

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender is satisfied by (*twilio.RestClient).Api
type SMSSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// NewTwilioSender builds the Twilio messages API client
func NewTwilioSender(accountSID, authToken string) SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return client.Api
}

// SMSDispatcher texts the event body to the user's phone
type SMSDispatcher struct {
	client   SMSSender
	from     string
	contacts ContactLookup
}

func NewSMSDispatcher(client SMSSender, from string, contacts ContactLookup) *SMSDispatcher {
	return &SMSDispatcher{client: client, from: from, contacts: contacts}
}

func (d *SMSDispatcher) Name() string { return "sms" }

func (d *SMSDispatcher) Dispatch(ctx context.Context, ev Event) error {
	if d.client == nil || d.from == "" {
		return ErrNotConfigured
	}
	contact, err := d.contacts.Contact(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if contact.Phone == "" {
		return ErrNoContact
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(contact.Phone)
	params.SetFrom(d.from)
	params.SetBody(fmt.Sprintf("Covenant: %s", ev.Body))

	if _, err := d.client.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
